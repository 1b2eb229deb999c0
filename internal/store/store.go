package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
)

const (
	defaultPageSize = 200
	paymentPageSize = 100

	uniqueViolation = "23505"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("store: duplicate record")
)

// Store provides database-backed accessors for application data.
type Store struct {
	db *sql.DB
}

// New creates a Store using the provided sql.DB connection.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &Store{db: db}, nil
}

// --- users ---

// CreateUser inserts a user and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	user.ID = uuid.NewString()

	err := s.db.QueryRowContext(ctx, `
INSERT INTO users (id, email, username, password, first_name, last_name, avatar_url, stripe_customer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at
`,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.AvatarURL,
		user.StripeCustomerID,
	).Scan(&user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store: create user %s: %w", user.Email, ErrDuplicate)
		}
		return nil, fmt.Errorf("store: create user: %w", err)
	}

	return &user, nil
}

const userColumns = `id, email, username, password, first_name, last_name, avatar_url, stripe_customer_id, created_at`

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUserBy(ctx, "id", id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserBy(ctx, "email", email)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUserBy(ctx, "username", username)
}

func (s *Store) getUserBy(ctx context.Context, column, value string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1 LIMIT 1`, userColumns, column)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get user by %s: %w", column, err)
	}
	return user, nil
}

// UpdateUserStripeCustomer records the Stripe customer id for a user.
func (s *Store) UpdateUserStripeCustomer(ctx context.Context, userID, customerID string) (*models.User, error) {
	query := fmt.Sprintf(`
UPDATE users
SET stripe_customer_id = $1
WHERE id = $2
RETURNING %s
`, userColumns)

	user, err := scanUser(s.db.QueryRowContext(ctx, query, customerID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update user stripe customer: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		user       models.User
		firstName  sql.NullString
		lastName   sql.NullString
		avatarURL  sql.NullString
		customerID sql.NullString
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&firstName,
		&lastName,
		&avatarURL,
		&customerID,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.FirstName = nullStringPtr(firstName)
	user.LastName = nullStringPtr(lastName)
	user.AvatarURL = nullStringPtr(avatarURL)
	user.StripeCustomerID = nullStringPtr(customerID)
	return &user, nil
}

// --- contacts ---

// CreateContact stores a contact form submission. New rows always start in status "new".
func (s *Store) CreateContact(ctx context.Context, contact models.Contact) (*models.Contact, error) {
	contact.ID = uuid.NewString()

	err := s.db.QueryRowContext(ctx, `
INSERT INTO contacts (id, name, email, subject, message)
VALUES ($1, $2, $3, $4, $5)
RETURNING status, created_at
`,
		contact.ID,
		contact.Name,
		contact.Email,
		contact.Subject,
		contact.Message,
	).Scan(&contact.Status, &contact.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create contact: %w", err)
	}

	return &contact, nil
}

// ListContacts returns up to `limit` contact submissions, newest first.
func (s *Store) ListContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	if limit <= 0 || limit > defaultPageSize {
		limit = defaultPageSize
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, email, subject, message, status, created_at
FROM contacts
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var (
			c       models.Contact
			subject sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &subject, &c.Message, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan contact: %w", err)
		}
		c.Subject = nullStringPtr(subject)
		contacts = append(contacts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate contacts: %w", err)
	}

	return contacts, nil
}

// --- newsletters ---

// CreateNewsletterSubscription inserts a subscriber row. The email column is
// unique, so inserting an address that already has a row marks that row as
// subscribed again instead of failing.
func (s *Store) CreateNewsletterSubscription(ctx context.Context, email string) (*models.Newsletter, error) {
	var n models.Newsletter

	err := s.db.QueryRowContext(ctx, `
INSERT INTO newsletters (id, email, subscribed)
VALUES ($1, $2, TRUE)
ON CONFLICT (email) DO UPDATE SET subscribed = TRUE
RETURNING id, email, subscribed, created_at
`, uuid.NewString(), email).Scan(&n.ID, &n.Email, &n.Subscribed, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create newsletter subscription: %w", err)
	}

	return &n, nil
}

// GetNewsletterByEmail returns the subscriber row for email.
func (s *Store) GetNewsletterByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	var n models.Newsletter

	err := s.db.QueryRowContext(ctx, `
SELECT id, email, subscribed, created_at
FROM newsletters
WHERE email = $1
ORDER BY created_at DESC
LIMIT 1
`, email).Scan(&n.ID, &n.Email, &n.Subscribed, &n.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get newsletter by email: %w", err)
	}

	return &n, nil
}

// UnsubscribeNewsletter clears the subscribed flag for email. Unknown addresses are a no-op.
func (s *Store) UnsubscribeNewsletter(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE newsletters SET subscribed = FALSE WHERE email = $1`, email); err != nil {
		return fmt.Errorf("store: unsubscribe newsletter: %w", err)
	}
	return nil
}

// --- subscriptions ---

const subscriptionColumns = `id, user_id, stripe_subscription_id, stripe_price_id, plan, status,
	current_period_start, current_period_end, cancel_at_period_end, created_at`

// CreateSubscription inserts a subscription row for a user.
func (s *Store) CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	sub.ID = uuid.NewString()
	if sub.Plan == "" {
		sub.Plan = models.PlanFree
	}
	if sub.Status == "" {
		sub.Status = models.SubscriptionActive
	}

	err := s.db.QueryRowContext(ctx, `
INSERT INTO subscriptions (
	id, user_id, stripe_subscription_id, stripe_price_id, plan, status,
	current_period_start, current_period_end, cancel_at_period_end
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING created_at
`,
		sub.ID,
		sub.UserID,
		sub.StripeSubscriptionID,
		sub.StripePriceID,
		sub.Plan,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
	).Scan(&sub.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("store: create subscription: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("store: create subscription: %w", err)
	}

	return &sub, nil
}

// GetSubscriptionByUserID returns the newest subscription row for a user.
func (s *Store) GetSubscriptionByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM subscriptions
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT 1
`, subscriptionColumns)

	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get subscription by user: %w", err)
	}
	return sub, nil
}

// GetCurrentSubscriptionByEmail returns the newest active or past-due
// subscription of the user with the given email.
func (s *Store) GetCurrentSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	query := `
SELECT
	s.id, s.user_id, s.stripe_subscription_id, s.stripe_price_id, s.plan, s.status,
	s.current_period_start, s.current_period_end, s.cancel_at_period_end, s.created_at
FROM subscriptions s
JOIN users u ON s.user_id = u.id
WHERE u.email = $1 AND s.status IN ('active', 'past_due')
ORDER BY s.created_at DESC
LIMIT 1
`

	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get current subscription: %w", err)
	}
	return sub, nil
}

// UpdateSubscription overwrites the mutable columns of a subscription by id. Last write wins.
func (s *Store) UpdateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	query := fmt.Sprintf(`
UPDATE subscriptions
SET stripe_subscription_id = $1,
	stripe_price_id = $2,
	plan = $3,
	status = $4,
	current_period_start = $5,
	current_period_end = $6,
	cancel_at_period_end = $7
WHERE id = $8
RETURNING %s
`, subscriptionColumns)

	updated, err := scanSubscription(s.db.QueryRowContext(ctx, query,
		sub.StripeSubscriptionID,
		sub.StripePriceID,
		sub.Plan,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.CancelAtPeriodEnd,
		sub.ID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: update subscription: %w", err)
	}
	return updated, nil
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	var (
		sub         models.Subscription
		externalID  sql.NullString
		priceID     sql.NullString
		periodStart sql.NullTime
		periodEnd   sql.NullTime
		cancelAtEnd sql.NullBool
	)
	if err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&externalID,
		&priceID,
		&sub.Plan,
		&sub.Status,
		&periodStart,
		&periodEnd,
		&cancelAtEnd,
		&sub.CreatedAt,
	); err != nil {
		return nil, err
	}
	sub.StripeSubscriptionID = nullStringPtr(externalID)
	sub.StripePriceID = nullStringPtr(priceID)
	sub.CurrentPeriodStart = nullTimePtr(periodStart)
	sub.CurrentPeriodEnd = nullTimePtr(periodEnd)
	sub.CancelAtPeriodEnd = cancelAtEnd.Valid && cancelAtEnd.Bool
	return &sub, nil
}

// --- payments ---

// CreatePayment inserts a payment record.
func (s *Store) CreatePayment(ctx context.Context, payment models.Payment) (*models.Payment, error) {
	payment.ID = uuid.NewString()
	if payment.Currency == "" {
		payment.Currency = "usd"
	}
	payment.Currency = strings.ToLower(payment.Currency)

	err := s.db.QueryRowContext(ctx, `
INSERT INTO payments (id, user_id, stripe_payment_intent_id, amount, currency, status, description)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at
`,
		payment.ID,
		payment.UserID,
		payment.StripePaymentIntentID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Description,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: create payment: %w", err)
	}

	return &payment, nil
}

// ListPaymentsByUserID returns a user's payments, newest first.
func (s *Store) ListPaymentsByUserID(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.listPayments(ctx, `
SELECT id, user_id, stripe_payment_intent_id, amount, currency, status, description, created_at
FROM payments
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`, userID)
}

// ListPaymentsByEmail returns the payments of the user with the given email, newest first.
func (s *Store) ListPaymentsByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	return s.listPayments(ctx, `
SELECT p.id, p.user_id, p.stripe_payment_intent_id, p.amount, p.currency, p.status, p.description, p.created_at
FROM payments p
JOIN users u ON p.user_id = u.id
WHERE u.email = $1
ORDER BY p.created_at DESC
LIMIT $2
`, email)
}

func (s *Store) listPayments(ctx context.Context, query, key string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, key, paymentPageSize)
	if err != nil {
		return nil, fmt.Errorf("store: list payments: %w", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var (
			p           models.Payment
			userID      sql.NullString
			intentID    sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(
			&p.ID,
			&userID,
			&intentID,
			&p.Amount,
			&p.Currency,
			&p.Status,
			&description,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("store: scan payment: %w", err)
		}
		p.UserID = nullStringPtr(userID)
		p.StripePaymentIntentID = nullStringPtr(intentID)
		p.Description = nullStringPtr(description)
		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate payments: %w", err)
	}

	return payments, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func nullTimePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	return &value.Time
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
)

// CatalogStore reads the Stripe objects replicated into the "stripe" schema by
// the provider's sync tooling. It never writes to that schema.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a CatalogStore instance.
func NewCatalogStore(db *sql.DB) (*CatalogStore, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	return &CatalogStore{db: db}, nil
}

// ListProductsWithPrices returns the products with the given active flag, each
// with its active prices ordered by unit amount.
func (s *CatalogStore) ListProductsWithPrices(ctx context.Context, active bool) ([]models.CatalogProduct, error) {
	query := `
		WITH products AS (
			SELECT id, name, description, metadata, active
			FROM stripe.products
			WHERE active = $1
		)
		SELECT
			p.id, p.name, p.description, p.active, p.metadata,
			pr.id, pr.unit_amount, pr.currency, pr.recurring, pr.active, pr.metadata
		FROM products p
		LEFT JOIN stripe.prices pr ON pr.product = p.id AND pr.active = TRUE
		ORDER BY p.id, pr.unit_amount
	`

	rows, err := s.db.QueryContext(ctx, query, active)
	if err != nil {
		return nil, fmt.Errorf("list catalog products: %w", err)
	}
	defer rows.Close()

	products := []models.CatalogProduct{}
	index := map[string]int{}
	for rows.Next() {
		var (
			product       models.CatalogProduct
			description   sql.NullString
			productMeta   []byte
			priceID       sql.NullString
			unitAmount    sql.NullInt64
			currency      sql.NullString
			recurring     []byte
			priceActive   sql.NullBool
			priceMetadata []byte
		)
		if err := rows.Scan(
			&product.ID, &product.Name, &description, &product.Active, &productMeta,
			&priceID, &unitAmount, &currency, &recurring, &priceActive, &priceMetadata,
		); err != nil {
			return nil, fmt.Errorf("scan catalog product: %w", err)
		}

		i, seen := index[product.ID]
		if !seen {
			product.Description = nullStringPtr(description)
			product.Metadata = rawJSON(productMeta)
			product.Prices = []models.CatalogPrice{}
			products = append(products, product)
			i = len(products) - 1
			index[product.ID] = i
		}

		if priceID.Valid {
			products[i].Prices = append(products[i].Prices, models.CatalogPrice{
				ID:         priceID.String,
				UnitAmount: nullInt64Ptr(unitAmount),
				Currency:   currency.String,
				Recurring:  rawJSON(recurring),
				Active:     priceActive.Valid && priceActive.Bool,
				Metadata:   rawJSON(priceMetadata),
			})
		}
	}

	return products, rows.Err()
}

// GetProduct returns a replicated product by id, without prices.
func (s *CatalogStore) GetProduct(ctx context.Context, productID string) (*models.CatalogProduct, error) {
	var (
		p           models.CatalogProduct
		description sql.NullString
		metadata    []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, active, metadata FROM stripe.products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.Name, &description, &p.Active, &metadata)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get catalog product: %w", err)
	}
	p.Description = nullStringPtr(description)
	p.Metadata = rawJSON(metadata)
	p.Prices = []models.CatalogPrice{}
	return &p, nil
}

const priceColumns = `id, product, unit_amount, currency, recurring, active, metadata`

// ListPricesForProduct returns the active prices of a product ordered by unit amount.
func (s *CatalogStore) ListPricesForProduct(ctx context.Context, productID string) ([]models.CatalogPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+priceColumns+`
		FROM stripe.prices
		WHERE product = $1 AND active = TRUE
		ORDER BY unit_amount
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list catalog prices: %w", err)
	}
	defer rows.Close()

	prices := []models.CatalogPrice{}
	for rows.Next() {
		price, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan catalog price: %w", err)
		}
		prices = append(prices, *price)
	}
	return prices, rows.Err()
}

// GetPrice returns a replicated price by id.
func (s *CatalogStore) GetPrice(ctx context.Context, priceID string) (*models.CatalogPrice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+priceColumns+` FROM stripe.prices WHERE id = $1`, priceID)
	price, err := scanPrice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get catalog price: %w", err)
	}
	return price, nil
}

// GetProviderSubscription returns the replicated provider view of a subscription.
func (s *CatalogStore) GetProviderSubscription(ctx context.Context, subscriptionID string) (*models.ProviderSubscription, error) {
	var (
		sub         models.ProviderSubscription
		cancelAtEnd sql.NullBool
		periodStart sql.NullInt64
		periodEnd   sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer, status, cancel_at_period_end, current_period_start, current_period_end
		FROM stripe.subscriptions
		WHERE id = $1
	`, subscriptionID).Scan(&sub.ID, &sub.CustomerID, &sub.Status, &cancelAtEnd, &periodStart, &periodEnd)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get provider subscription: %w", err)
	}
	sub.CancelAtPeriodEnd = cancelAtEnd.Valid && cancelAtEnd.Bool
	sub.CurrentPeriodStart = unixTimePtr(periodStart)
	sub.CurrentPeriodEnd = unixTimePtr(periodEnd)
	return &sub, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrice(row rowScanner) (*models.CatalogPrice, error) {
	var (
		p          models.CatalogPrice
		product    sql.NullString
		unitAmount sql.NullInt64
		currency   sql.NullString
		recurring  []byte
		active     sql.NullBool
		metadata   []byte
	)
	if err := row.Scan(&p.ID, &product, &unitAmount, &currency, &recurring, &active, &metadata); err != nil {
		return nil, err
	}
	p.ProductID = product.String
	p.UnitAmount = nullInt64Ptr(unitAmount)
	p.Currency = currency.String
	p.Recurring = rawJSON(recurring)
	p.Active = active.Valid && active.Bool
	p.Metadata = rawJSON(metadata)
	return &p, nil
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func unixTimePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

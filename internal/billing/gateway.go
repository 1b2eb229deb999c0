// Package billing adapts the Stripe API to the operations the site needs:
// hosted checkout, session lookups, the customer portal and catalog seeding.
package billing

import (
	"context"
	"errors"
	"net/http"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	portalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/price"
	"github.com/stripe/stripe-go/v82/product"

	"github.com/PortNumber53/lifesync-pro/backend/internal/apperr"
)

const (
	successPath = "/payment/success?session_id={CHECKOUT_SESSION_ID}"
	cancelPath  = "/payment/cancel"
)

// Config holds the credentials and transport used by a Gateway.
type Config struct {
	SecretKey      string
	PublishableKey string
	// Backend overrides the Stripe API backend. Nil uses the live API.
	Backend stripe.Backend
}

// Gateway talks to Stripe on behalf of the HTTP handlers. It is safe for
// concurrent use; every call is a single attempt.
type Gateway struct {
	secretKey      string
	publishableKey string

	sessions session.Client
	portals  portalsession.Client
	products product.Client
	prices   price.Client
}

// NewGateway builds a Gateway. Missing keys are not an error here; the
// affected operations fail with a configuration error when first used.
func NewGateway(cfg Config) *Gateway {
	backend := cfg.Backend
	if backend == nil {
		backend = NewBackend(stripe.APIURL, nil)
	}

	key := strings.TrimSpace(cfg.SecretKey)
	return &Gateway{
		secretKey:      key,
		publishableKey: strings.TrimSpace(cfg.PublishableKey),
		sessions:       session.Client{B: backend, Key: key},
		portals:        portalsession.Client{B: backend, Key: key},
		products:       product.Client{B: backend, Key: key},
		prices:         price.Client{B: backend, Key: key},
	}
}

// NewBackend returns a Stripe API backend rooted at baseURL with local
// retries disabled.
func NewBackend(baseURL string, httpClient *http.Client) stripe.Backend {
	return stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(baseURL),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
	})
}

// CheckoutParams describes a subscription checkout.
type CheckoutParams struct {
	PriceID string
	Plan    string
	Email   string
	BaseURL string
}

// CheckoutSession is the hosted checkout page created for a customer.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// SessionStatus is the read-only view of a checkout session.
type SessionStatus struct {
	Status         string `json:"status"`
	CustomerEmail  string `json:"customerEmail"`
	SubscriptionID string `json:"subscriptionId"`
	Plan           string `json:"plan"`
}

// PortalSession is a customer-portal link.
type PortalSession struct {
	URL string `json:"url"`
}

// PublishableKey returns the client-side key.
func (g *Gateway) PublishableKey() (string, error) {
	if g.publishableKey == "" {
		return "", apperr.Configuration("billing.PublishableKey", "STRIPE_PUBLISHABLE_KEY is not set")
	}
	return g.publishableKey, nil
}

// CreateCheckoutSession creates a subscription checkout session for one unit
// of the given price.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	const op = "billing.CreateCheckoutSession"

	if strings.TrimSpace(p.PriceID) == "" || strings.TrimSpace(p.Plan) == "" {
		return nil, apperr.Configuration(op, "price id and plan are required")
	}
	if err := g.requireKey(op); err != nil {
		return nil, err
	}

	base := strings.TrimRight(p.BaseURL, "/")
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(p.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(base + successPath),
		CancelURL:  stripe.String(base + cancelPath),
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("plan", p.Plan)
	params.Context = ctx

	sess, err := g.sessions.New(params)
	if err != nil {
		return nil, apperr.Gateway(op, err)
	}

	return &CheckoutSession{URL: sess.URL, SessionID: sess.ID}, nil
}

// GetSessionStatus retrieves a checkout session. It never mutates provider state.
func (g *Gateway) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	const op = "billing.GetSessionStatus"

	if strings.TrimSpace(sessionID) == "" {
		return nil, apperr.Configuration(op, "session id is required")
	}
	if err := g.requireKey(op); err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.sessions.Get(sessionID, params)
	if err != nil {
		if isMissingResource(err) {
			return nil, apperr.NotFound(op, err)
		}
		return nil, apperr.Gateway(op, err)
	}

	status := &SessionStatus{
		Status:        string(sess.Status),
		CustomerEmail: sess.CustomerEmail,
		Plan:          sess.Metadata["plan"],
	}
	if sess.Subscription != nil {
		status.SubscriptionID = sess.Subscription.ID
	}
	return status, nil
}

// CreatePortalSession opens a customer-portal session that returns to returnURL.
func (g *Gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	const op = "billing.CreatePortalSession"

	if strings.TrimSpace(customerID) == "" {
		return nil, apperr.Configuration(op, "customer id is required")
	}
	if err := g.requireKey(op); err != nil {
		return nil, err
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := g.portals.New(params)
	if err != nil {
		return nil, apperr.Gateway(op, err)
	}

	return &PortalSession{URL: sess.URL}, nil
}

func (g *Gateway) requireKey(op string) error {
	if g.secretKey == "" {
		return apperr.Configuration(op, "STRIPE_SECRET_KEY is not set")
	}
	return nil
}

func isMissingResource(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing
}

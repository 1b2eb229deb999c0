package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/PortNumber53/lifesync-pro/backend/internal/billing"
)

const defaultHost = "localhost:5000"

// BillingGateway defines the Stripe operations used by the checkout handlers.
type BillingGateway interface {
	PublishableKey() (string, error)
	CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*billing.SessionStatus, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.PortalSession, error)
}

type checkoutRequest struct {
	PriceID string `json:"priceId"`
	Plan    string `json:"plan"`
	Email   string `json:"email"`
}

type portalRequest struct {
	CustomerID string `json:"customerId"`
}

// StripeConfig returns the publishable key the frontend needs to load Stripe.js.
func StripeConfig(gw BillingGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := gw.PublishableKey()
		if err != nil {
			respondError(w, "StripeConfig", err, "Failed to get Stripe configuration")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"publishableKey": key})
	}
}

// CreateCheckout starts a hosted subscription checkout for one price.
func CreateCheckout(gw BillingGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		if strings.TrimSpace(req.PriceID) == "" || strings.TrimSpace(req.Plan) == "" {
			writeError(w, http.StatusBadRequest, "Price ID and plan are required")
			return
		}

		sess, err := gw.CreateCheckoutSession(r.Context(), billing.CheckoutParams{
			PriceID: req.PriceID,
			Plan:    req.Plan,
			Email:   req.Email,
			BaseURL: requestBaseURL(r),
		})
		if err != nil {
			respondError(w, "CreateCheckout", err, "Failed to create checkout session")
			return
		}

		writeJSON(w, http.StatusOK, sess)
	}
}

// GetCheckoutSession reports the state of a checkout session.
func GetCheckoutSession(gw BillingGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")

		status, err := gw.GetSessionStatus(r.Context(), sessionID)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "Session not found")
				return
			}
			respondError(w, "GetCheckoutSession", err, "Failed to retrieve session")
			return
		}

		writeJSON(w, http.StatusOK, status)
	}
}

// CustomerPortal opens a Stripe customer-portal session returning to the dashboard.
func CustomerPortal(gw BillingGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req portalRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		if strings.TrimSpace(req.CustomerID) == "" {
			writeError(w, http.StatusBadRequest, "Customer ID is required")
			return
		}

		portal, err := gw.CreatePortalSession(r.Context(), req.CustomerID, requestBaseURL(r)+"/dashboard")
		if err != nil {
			respondError(w, "CustomerPortal", err, "Failed to create portal session")
			return
		}

		writeJSON(w, http.StatusOK, portal)
	}
}

// requestBaseURL rebuilds the public origin from the Host and
// X-Forwarded-Proto headers.
func requestBaseURL(r *http.Request) string {
	host := r.Host
	if host == "" {
		host = defaultHost
	}
	proto := r.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "https"
	}
	// Proxies may append one entry per hop.
	if i := strings.Index(proto, ","); i >= 0 {
		proto = strings.TrimSpace(proto[:i])
	}
	return proto + "://" + host
}

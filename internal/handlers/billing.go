package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
)

// BillingStore defines the behaviour required from the storage client
// backing the billing handlers.
type BillingStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetCurrentSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error)
	ListPaymentsByEmail(ctx context.Context, email string) ([]models.Payment, error)
}

// ProviderSubscriptionStore reads the replicated Stripe view of a subscription.
type ProviderSubscriptionStore interface {
	GetProviderSubscription(ctx context.Context, subscriptionID string) (*models.ProviderSubscription, error)
}

type subscriptionResponse struct {
	Plan                 models.Plan                  `json:"plan"`
	Subscription         *models.Subscription         `json:"subscription"`
	ProviderSubscription *models.ProviderSubscription `json:"providerSubscription"`
}

// GetSubscription returns the current subscription of the user with the given
// email. Users without an active subscription are on the free plan.
func GetSubscription(billingStore BillingStore, provider ProviderSubscriptionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			writeError(w, http.StatusBadRequest, "Email is required")
			return
		}

		if _, err := billingStore.GetUserByEmail(ctx, email); err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "User not found")
				return
			}
			respondError(w, "GetSubscription", err, "Failed to load subscription")
			return
		}

		resp := subscriptionResponse{Plan: models.PlanFree}

		sub, err := billingStore.GetCurrentSubscriptionByEmail(ctx, email)
		switch {
		case err == nil:
			resp.Plan = sub.Plan
			resp.Subscription = sub
		case isNotFound(err):
		default:
			respondError(w, "GetSubscription", err, "Failed to load subscription")
			return
		}

		if sub != nil && sub.StripeSubscriptionID != nil && provider != nil {
			mirror, err := provider.GetProviderSubscription(ctx, *sub.StripeSubscriptionID)
			switch {
			case err == nil:
				resp.ProviderSubscription = mirror
			case isNotFound(err):
			default:
				log.Printf("GetSubscription: provider mirror unavailable for %s: %v", *sub.StripeSubscriptionID, err)
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// GetPaymentHistory returns the payments of the user with the given email, newest first.
func GetPaymentHistory(billingStore BillingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.URL.Query().Get("email"))
		if email == "" {
			writeError(w, http.StatusBadRequest, "Email is required")
			return
		}

		payments, err := billingStore.ListPaymentsByEmail(r.Context(), email)
		if err != nil {
			respondError(w, "GetPaymentHistory", err, "Failed to load payment history")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"payments": payments})
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
	"github.com/PortNumber53/lifesync-pro/backend/internal/store"
)

// NewsletterStore defines the behaviour required from the storage client
// backing the newsletter handlers.
type NewsletterStore interface {
	GetNewsletterByEmail(ctx context.Context, email string) (*models.Newsletter, error)
	CreateNewsletterSubscription(ctx context.Context, email string) (*models.Newsletter, error)
	UnsubscribeNewsletter(ctx context.Context, email string) error
}

type newsletterRequest struct {
	Email string `json:"email"`
}

// Subscribe adds an email to the newsletter, or re-subscribes an address
// that previously opted out.
func Subscribe(newsletters NewsletterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newsletterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}

		email := strings.TrimSpace(req.Email)
		if !validEmail(email) {
			writeError(w, http.StatusBadRequest, "Invalid email address")
			return
		}

		existing, err := newsletters.GetNewsletterByEmail(r.Context(), email)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			respondError(w, "Subscribe", err, "Failed to subscribe to newsletter")
			return
		}

		if existing != nil && existing.Subscribed {
			writeError(w, http.StatusBadRequest, "Email is already subscribed")
			return
		}

		newsletter, err := newsletters.CreateNewsletterSubscription(r.Context(), email)
		if err != nil {
			respondError(w, "Subscribe", err, "Failed to subscribe to newsletter")
			return
		}

		if existing != nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": "Welcome back! You've been re-subscribed.",
			})
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success":    true,
			"message":    "Successfully subscribed to our newsletter!",
			"newsletter": newsletter,
		})
	}
}

// Unsubscribe clears the subscribed flag for an email. Unknown addresses succeed.
func Unsubscribe(newsletters NewsletterStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req newsletterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		email := strings.TrimSpace(req.Email)
		if email == "" {
			writeError(w, http.StatusBadRequest, "Email is required")
			return
		}

		if err := newsletters.UnsubscribeNewsletter(r.Context(), email); err != nil {
			respondError(w, "Unsubscribe", err, "Failed to unsubscribe")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Successfully unsubscribed from newsletter",
		})
	}
}

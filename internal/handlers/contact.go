package handlers

import (
	"context"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/PortNumber53/lifesync-pro/backend/internal/apperr"
	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
)

const defaultContactPageSize = 50

// ContactStore defines the behaviour required from the storage client
// backing the contact handlers.
type ContactStore interface {
	CreateContact(ctx context.Context, contact models.Contact) (*models.Contact, error)
	ListContacts(ctx context.Context, limit int) ([]models.Contact, error)
}

type contactRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Subject *string `json:"subject"`
	Message string  `json:"message"`
}

// validate trims the submission and reports every invalid field.
func (c *contactRequest) validate() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	if c.Subject != nil {
		subject := strings.TrimSpace(*c.Subject)
		if subject == "" {
			c.Subject = nil
		} else {
			c.Subject = &subject
		}
	}

	var fields []apperr.FieldError
	if c.Name == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "Name is required"})
	}
	if c.Email == "" {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Email is required"})
	} else if !validEmail(c.Email) {
		fields = append(fields, apperr.FieldError{Field: "email", Message: "Invalid email address"})
	}
	if c.Message == "" {
		fields = append(fields, apperr.FieldError{Field: "message", Message: "Message is required"})
	}

	if len(fields) > 0 {
		return apperr.Validation("Invalid form data", fields...)
	}
	return nil
}

// validEmail accepts a bare address only, not a display-name form.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// SubmitContact stores a contact form submission.
func SubmitContact(contacts ContactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form data")
			return
		}

		if err := req.validate(); err != nil {
			respondError(w, "SubmitContact", err, "Invalid form data")
			return
		}

		contact, err := contacts.CreateContact(r.Context(), models.Contact{
			Name:    req.Name,
			Email:   req.Email,
			Subject: req.Subject,
			Message: req.Message,
		})
		if err != nil {
			respondError(w, "SubmitContact", err, "Failed to submit contact form")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "Thank you for your message! We'll get back to you soon.",
			"contact": contact,
		})
	}
}

// ListContacts returns stored contact submissions, newest first.
func ListContacts(contacts ContactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultContactPageSize
		if override := r.URL.Query().Get("limit"); override != "" {
			if parsed, err := strconv.Atoi(override); err == nil && parsed > 0 {
				limit = parsed
			}
		}

		list, err := contacts.ListContacts(r.Context(), limit)
		if err != nil {
			respondError(w, "ListContacts", err, "Failed to load contacts")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"contacts": list})
	}
}

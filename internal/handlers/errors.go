package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/PortNumber53/lifesync-pro/backend/internal/apperr"
	"github.com/PortNumber53/lifesync-pro/backend/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string              `json:"error"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("writeJSON: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusFor maps an error to its response status through the apperr kind table.
func statusFor(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.KindNotFound.HTTPStatus()
	}
	return apperr.KindOf(err).HTTPStatus()
}

func isNotFound(err error) bool {
	return statusFor(err) == http.StatusNotFound
}

// respondError logs the failure with its detail and sends the client only message.
func respondError(w http.ResponseWriter, op string, err error, message string) {
	status := statusFor(err)
	log.Printf("%s: %s (%v)", op, apperr.KindOf(err), err)
	writeJSON(w, status, errorResponse{Error: message, Details: apperr.FieldsOf(err)})
}

// decodeJSON reads a JSON request body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

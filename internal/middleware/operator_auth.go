package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// OperatorAuth guards routes that expose stored customer data. Requests must
// carry "Authorization: Bearer <token>" matching the configured operator token.
type OperatorAuth struct {
	tokenHash [sha256.Size]byte
	enabled   bool
}

// NewOperatorAuth builds an OperatorAuth for token. An empty token rejects
// every request.
func NewOperatorAuth(token string) *OperatorAuth {
	token = strings.TrimSpace(token)
	if token == "" {
		return &OperatorAuth{}
	}
	return &OperatorAuth{tokenHash: sha256.Sum256([]byte(token)), enabled: true}
}

// Require returns 401 unless the request presents the operator token.
func (a *OperatorAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.authorized(r) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("WWW-Authenticate", "Bearer")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *OperatorAuth) authorized(r *http.Request) bool {
	if !a.enabled {
		return false
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return false
	}
	// Hashing first keeps the comparison length-independent.
	provided := sha256.Sum256([]byte(strings.TrimSpace(parts[1])))
	return subtle.ConstantTimeCompare(a.tokenHash[:], provided[:]) == 1
}

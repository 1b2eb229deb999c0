package handlers

import (
	"context"
	"log"
	"net/http"
	"time"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health responds with status 200 while the service and its database are
// reachable, and 503 when the database ping fails. A nil db skips the ping.
func Health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		}

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
			defer cancel()

			if err := db.PingContext(ctx); err != nil {
				log.Printf("Health: database ping failed: %v", err)
				payload["status"] = "degraded"
				payload["database"] = "unavailable"
				writeJSON(w, http.StatusServiceUnavailable, payload)
				return
			}
			payload["database"] = "ok"
		}

		writeJSON(w, http.StatusOK, payload)
	}
}

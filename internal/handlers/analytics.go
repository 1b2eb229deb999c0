package handlers

import (
	"net/http"
	"strings"
)

// AnalyticsConfig exposes the Google Analytics measurement id to the frontend.
// Analytics is disabled when no id is configured.
func AnalyticsConfig(measurementID string) http.HandlerFunc {
	measurementID = strings.TrimSpace(measurementID)
	payload := map[string]any{
		"measurementId": measurementID,
		"enabled":       measurementID != "",
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	}
}

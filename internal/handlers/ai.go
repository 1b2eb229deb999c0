package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// Assistant defines the prompt templates served by the AI handlers.
type Assistant interface {
	Chat(ctx context.Context, message, userContext string) (string, error)
	GoalRecommendations(ctx context.Context, userContext string) (string, error)
	FinancialInsights(ctx context.Context, financialData string) (string, error)
	AnalyzeProgress(ctx context.Context, goalDescription string, progress float64) (string, error)
}

type chatRequest struct {
	Message json.RawMessage `json:"message"`
	Context json.RawMessage `json:"context"`
}

type goalRequest struct {
	UserContext json.RawMessage `json:"userContext"`
}

type insightsRequest struct {
	FinancialData json.RawMessage `json:"financialData"`
}

type progressRequest struct {
	GoalDescription json.RawMessage `json:"goalDescription"`
	Progress        json.RawMessage `json:"progress"`
}

// AIChat answers a free-form message.
func AIChat(assistant Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		message := textField(req.Message)
		if message == "" {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}

		reply, err := assistant.Chat(r.Context(), message, textField(req.Context))
		if err != nil {
			respondError(w, "AIChat", err, "Failed to generate AI response")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
	}
}

// AIGoalRecommendations suggests goals for the described user.
func AIGoalRecommendations(assistant Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req goalRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		userContext := textField(req.UserContext)
		if userContext == "" {
			writeError(w, http.StatusBadRequest, "User context is required")
			return
		}

		recommendations, err := assistant.GoalRecommendations(r.Context(), userContext)
		if err != nil {
			respondError(w, "AIGoalRecommendations", err, "Failed to generate recommendations")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"recommendations": recommendations})
	}
}

// AIFinancialInsights analyses the submitted financial data.
func AIFinancialInsights(assistant Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req insightsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		financialData := textField(req.FinancialData)
		if financialData == "" {
			writeError(w, http.StatusBadRequest, "Financial data is required")
			return
		}

		insights, err := assistant.FinancialInsights(r.Context(), financialData)
		if err != nil {
			respondError(w, "AIFinancialInsights", err, "Failed to generate insights")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"insights": insights})
	}
}

// AIAnalyzeProgress reviews progress on a goal. A progress of 0 is valid.
func AIAnalyzeProgress(assistant Assistant) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req progressRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}

		goal := textField(req.GoalDescription)
		if goal == "" || isAbsent(req.Progress) {
			writeError(w, http.StatusBadRequest, "Goal description and progress are required")
			return
		}

		progress, ok := numberField(req.Progress)
		if !ok {
			writeError(w, http.StatusBadRequest, "Progress must be a number")
			return
		}

		analysis, err := assistant.AnalyzeProgress(r.Context(), goal, progress)
		if err != nil {
			respondError(w, "AIAnalyzeProgress", err, "Failed to analyze progress")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// textField returns a JSON string value as-is and any other JSON value as
// compact JSON text. Absent, null, false, zero and empty strings yield "".
func textField(raw json.RawMessage) string {
	if isAbsent(raw) || isFalsy(raw) {
		return ""
	}

	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return ""
	}
	return buf.String()
}

func isFalsy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("false")) {
		return true
	}
	var n float64
	return json.Unmarshal(raw, &n) == nil && n == 0
}

// numberField accepts a JSON number or a numeric string.
func numberField(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

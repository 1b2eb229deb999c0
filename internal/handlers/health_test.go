package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(pingFunc(func(context.Context) error { return nil })).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["status"] != "ok" || body["database"] != "ok" || body["timestamp"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestAnalyticsConfig(t *testing.T) {
	rr := httptest.NewRecorder()
	AnalyticsConfig(" G-TEST ").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analytics/config", nil))

	body := decodeBody(t, rr)
	if body["measurementId"] != "G-TEST" || body["enabled"] != true {
		t.Fatalf("unexpected body: %v", body)
	}

	rr = httptest.NewRecorder()
	AnalyticsConfig("").ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analytics/config", nil))
	if body := decodeBody(t, rr); body["enabled"] != false {
		t.Fatalf("unexpected body: %v", body)
	}
}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PortNumber53/lifesync-pro/backend/internal/billing"
	"github.com/PortNumber53/lifesync-pro/backend/internal/config"
	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
	"github.com/PortNumber53/lifesync-pro/backend/internal/store"
)

type stubStore struct {
	newsletters map[string]bool
	contacts    []models.Contact
	user        *models.User
}

func (s *stubStore) CreateContact(ctx context.Context, c models.Contact) (*models.Contact, error) {
	c.ID, c.Status = "c1", models.ContactNew
	return &c, nil
}

func (s *stubStore) ListContacts(ctx context.Context, limit int) ([]models.Contact, error) {
	return append([]models.Contact{}, s.contacts...), nil
}

func (s *stubStore) GetNewsletterByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	subscribed, ok := s.newsletters[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &models.Newsletter{Email: email, Subscribed: subscribed}, nil
}

func (s *stubStore) CreateNewsletterSubscription(ctx context.Context, email string) (*models.Newsletter, error) {
	s.newsletters[email] = true
	return &models.Newsletter{ID: "n1", Email: email, Subscribed: true}, nil
}

func (s *stubStore) UnsubscribeNewsletter(ctx context.Context, email string) error {
	if _, ok := s.newsletters[email]; ok {
		s.newsletters[email] = false
	}
	return nil
}

func (s *stubStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, store.ErrNotFound
	}
	return s.user, nil
}

func (s *stubStore) GetCurrentSubscriptionByEmail(ctx context.Context, email string) (*models.Subscription, error) {
	return nil, store.ErrNotFound
}

func (s *stubStore) ListPaymentsByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	return []models.Payment{}, nil
}

type stubCatalog struct{}

func (stubCatalog) ListProductsWithPrices(ctx context.Context, active bool) ([]models.CatalogProduct, error) {
	return nil, errors.New("catalog unavailable")
}

func (stubCatalog) GetProduct(ctx context.Context, id string) (*models.CatalogProduct, error) {
	return nil, store.ErrNotFound
}

func (stubCatalog) ListPricesForProduct(ctx context.Context, id string) ([]models.CatalogPrice, error) {
	return nil, nil
}

func (stubCatalog) GetPrice(ctx context.Context, id string) (*models.CatalogPrice, error) {
	return nil, store.ErrNotFound
}

func (stubCatalog) GetProviderSubscription(ctx context.Context, id string) (*models.ProviderSubscription, error) {
	return nil, store.ErrNotFound
}

type stubGateway struct {
	calls int
}

func (g *stubGateway) PublishableKey() (string, error) { return "pk_test", nil }

func (g *stubGateway) CreateCheckoutSession(ctx context.Context, p billing.CheckoutParams) (*billing.CheckoutSession, error) {
	g.calls++
	return &billing.CheckoutSession{URL: "https://checkout.example/cs_1", SessionID: "cs_1"}, nil
}

func (g *stubGateway) GetSessionStatus(ctx context.Context, id string) (*billing.SessionStatus, error) {
	g.calls++
	return &billing.SessionStatus{Status: "open", Plan: id}, nil
}

func (g *stubGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.PortalSession, error) {
	g.calls++
	return &billing.PortalSession{URL: returnURL}, nil
}

type stubAssistant struct{}

func (stubAssistant) Chat(ctx context.Context, message, userContext string) (string, error) {
	return "reply", nil
}

func (stubAssistant) GoalRecommendations(ctx context.Context, userContext string) (string, error) {
	return "[]", nil
}

func (stubAssistant) FinancialInsights(ctx context.Context, financialData string) (string, error) {
	return "{}", nil
}

func (stubAssistant) AnalyzeProgress(ctx context.Context, goal string, progress float64) (string, error) {
	return "ok", nil
}

const testOperatorToken = "ops-token"

func newTestServer() (*Server, *stubGateway) {
	customerID := "cus_private"
	st := &stubStore{
		newsletters: map[string]bool{},
		contacts:    []models.Contact{{ID: "c1", Name: "Dana", Email: "dana@x.com", Message: "private"}},
		user:        &models.User{ID: "u1", Email: "dana@x.com", StripeCustomerID: &customerID},
	}
	gw := &stubGateway{}
	cfg := config.Config{ServerAddress: ":0", AnalyticsMeasurementID: "G-TEST", OperatorToken: testOperatorToken}
	return New(cfg, Dependencies{
		Contacts:              st,
		Newsletters:           st,
		Billing:               st,
		Catalog:               stubCatalog{},
		ProviderSubscriptions: stubCatalog{},
		Gateway:               gw,
		Assistant:             stubAssistant{},
	}), gw
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return doWithHeaders(t, s, method, path, body, nil)
}

func doWithHeaders(t *testing.T, s *Server, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var decoded map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &decoded)
	return rr, decoded
}

func TestHealthRoute(t *testing.T) {
	server, _ := newTestServer()

	rr, _ := do(t, server, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
}

func TestNewsletterEndToEnd(t *testing.T) {
	server, _ := newTestServer()

	rr, body := do(t, server, http.MethodPost, "/api/newsletter", `{"email":"a@x.com"}`)
	if rr.Code != http.StatusCreated || !strings.Contains(body["message"].(string), "Successfully subscribed") {
		t.Fatalf("first subscribe: %d %v", rr.Code, body)
	}

	rr, body = do(t, server, http.MethodPost, "/api/newsletter", `{"email":"a@x.com"}`)
	if rr.Code != http.StatusBadRequest || !strings.Contains(body["error"].(string), "already subscribed") {
		t.Fatalf("second subscribe: %d %v", rr.Code, body)
	}
}

func TestCheckoutRoutes(t *testing.T) {
	server, gw := newTestServer()

	rr, body := do(t, server, http.MethodPost, "/api/checkout", `{"plan":"pro"}`)
	if rr.Code != http.StatusBadRequest || body["error"] != "Price ID and plan are required" {
		t.Fatalf("missing price: %d %v", rr.Code, body)
	}
	if gw.calls != 0 {
		t.Fatal("provider called for invalid checkout")
	}

	rr, body = do(t, server, http.MethodPost, "/api/checkout", `{"priceId":"price_pro","plan":"pro"}`)
	if rr.Code != http.StatusOK || body["sessionId"] != "cs_1" {
		t.Fatalf("checkout: %d %v", rr.Code, body)
	}

	rr, body = do(t, server, http.MethodGet, "/api/checkout/session/cs_42", "")
	if rr.Code != http.StatusOK || body["plan"] != "cs_42" {
		t.Fatalf("session route did not receive the id: %d %v", rr.Code, body)
	}
}

func TestPricingRouteFallsBack(t *testing.T) {
	server, _ := newTestServer()

	rr, body := do(t, server, http.MethodGet, "/api/pricing", "")
	if rr.Code != http.StatusOK || body["source"] != "static" {
		t.Fatalf("pricing: %d %v", rr.Code, body)
	}
}

func TestAnalyticsRoute(t *testing.T) {
	server, _ := newTestServer()

	_, body := do(t, server, http.MethodGet, "/api/analytics/config", "")
	if body["measurementId"] != "G-TEST" || body["enabled"] != true {
		t.Fatalf("unexpected analytics config: %v", body)
	}
}

func TestUnknownRoute(t *testing.T) {
	server, _ := newTestServer()

	rr, _ := do(t, server, http.MethodGet, "/api/games/play", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	server, _ := newTestServer()
	paths := []string{
		"/api/contacts",
		"/api/billing/subscription?email=dana@x.com",
		"/api/billing/payments?email=dana@x.com",
	}

	for _, path := range paths {
		rr, _ := do(t, server, http.MethodGet, path, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s without token: expected 401 got %d", path, rr.Code)
		}
		if strings.Contains(rr.Body.String(), "dana@x.com") || strings.Contains(rr.Body.String(), "cus_private") {
			t.Fatalf("%s leaked data: %s", path, rr.Body.String())
		}

		rr, _ = doWithHeaders(t, server, http.MethodGet, path, "", map[string]string{"Authorization": "Bearer wrong"})
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s with wrong token: expected 401 got %d", path, rr.Code)
		}
	}
}

func TestOperatorRoutesWithToken(t *testing.T) {
	server, _ := newTestServer()
	auth := map[string]string{"Authorization": "Bearer " + testOperatorToken}

	rr, body := doWithHeaders(t, server, http.MethodGet, "/api/contacts", "", auth)
	if rr.Code != http.StatusOK {
		t.Fatalf("contacts: %d %v", rr.Code, body)
	}

	rr, body = doWithHeaders(t, server, http.MethodGet, "/api/billing/subscription?email=dana@x.com", "", auth)
	if rr.Code != http.StatusOK || body["plan"] != "free" {
		t.Fatalf("subscription: %d %v", rr.Code, body)
	}
	if strings.Contains(rr.Body.String(), "cus_private") {
		t.Fatalf("subscription response exposes the customer id: %s", rr.Body.String())
	}
}

func TestOperatorRoutesDisabledWithoutConfiguredToken(t *testing.T) {
	st := &stubStore{newsletters: map[string]bool{}}
	server := New(config.Config{ServerAddress: ":0"}, Dependencies{Contacts: st, Newsletters: st, Billing: st})

	rr, _ := doWithHeaders(t, server, http.MethodGet, "/api/contacts", "", map[string]string{"Authorization": "Bearer "})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

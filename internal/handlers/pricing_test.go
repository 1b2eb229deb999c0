package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
	"github.com/PortNumber53/lifesync-pro/backend/internal/store"
)

type mockCatalog struct {
	products []models.CatalogProduct
	listErr  error
	prices   []models.CatalogPrice
}

func (m *mockCatalog) ListProductsWithPrices(ctx context.Context, active bool) ([]models.CatalogProduct, error) {
	return m.products, m.listErr
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID string) (*models.CatalogProduct, error) {
	for _, p := range m.products {
		if p.ID == productID {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCatalog) ListPricesForProduct(ctx context.Context, productID string) ([]models.CatalogPrice, error) {
	return m.prices, nil
}

func (m *mockCatalog) GetPrice(ctx context.Context, priceID string) (*models.CatalogPrice, error) {
	for _, p := range m.prices {
		if p.ID == priceID {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func TestPricingFromCatalog(t *testing.T) {
	catalog := &mockCatalog{products: []models.CatalogProduct{
		{ID: "prod_pro", Name: "LifeSync Pro", Active: true, Prices: []models.CatalogPrice{{ID: "price_pro_m"}}},
	}}

	rr := httptest.NewRecorder()
	Pricing(catalog).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pricing", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["source"] != pricingSourceStripe {
		t.Fatalf("expected stripe source, got %v", body["source"])
	}
	plans, ok := body["plans"].([]any)
	if !ok || len(plans) != 1 {
		t.Fatalf("unexpected plans: %v", body["plans"])
	}
}

func TestPricingFallsBackToStatic(t *testing.T) {
	cases := map[string]*mockCatalog{
		"error": {listErr: errors.New(`relation "stripe.products" does not exist`)},
		"empty": {products: []models.CatalogProduct{}},
	}
	for name, catalog := range cases {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			Pricing(catalog).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pricing", nil))

			if rr.Code != http.StatusOK {
				t.Fatalf("unexpected status: %d", rr.Code)
			}
			body := decodeBody(t, rr)
			if body["source"] != pricingSourceStatic {
				t.Fatalf("expected static source, got %v", body["source"])
			}
			plans, ok := body["plans"].(map[string]any)
			if !ok {
				t.Fatalf("unexpected plans: %v", body["plans"])
			}
			for _, key := range []string{"basic", "pro", "enterprise"} {
				if _, ok := plans[key]; !ok {
					t.Fatalf("static plans missing %s", key)
				}
			}
		})
	}
}

func TestPricingProduct(t *testing.T) {
	amount := int64(7900)
	catalog := &mockCatalog{
		products: []models.CatalogProduct{{ID: "prod_pro", Name: "LifeSync Pro"}},
		prices:   []models.CatalogPrice{{ID: "price_pro_m", ProductID: "prod_pro", UnitAmount: &amount, Currency: "usd"}},
	}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/pricing/products/prod_pro", nil), "productId", "prod_pro")
	rr := httptest.NewRecorder()
	PricingProduct(catalog).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	product, ok := decodeBody(t, rr)["product"].(map[string]any)
	if !ok {
		t.Fatalf("missing product in %s", rr.Body.String())
	}
	if prices, ok := product["prices"].([]any); !ok || len(prices) != 1 {
		t.Fatalf("unexpected prices: %v", product["prices"])
	}
}

func TestPricingProductNotFound(t *testing.T) {
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/pricing/products/nope", nil), "productId", "nope")
	rr := httptest.NewRecorder()
	PricingProduct(&mockCatalog{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestPricingPrice(t *testing.T) {
	catalog := &mockCatalog{prices: []models.CatalogPrice{{ID: "price_basic_m", Currency: "usd", Active: true}}}

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/pricing/prices/price_basic_m", nil), "priceId", "price_basic_m")
	rr := httptest.NewRecorder()
	PricingPrice(catalog).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}

	req = withURLParam(httptest.NewRequest(http.MethodGet, "/api/pricing/prices/missing", nil), "priceId", "missing")
	rr = httptest.NewRecorder()
	PricingPrice(catalog).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for missing price: %d", rr.Code)
	}
}

package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PortNumber53/lifesync-pro/backend/internal/models"
)

const (
	pricingSourceStripe = "stripe"
	pricingSourceStatic = "static"
)

// CatalogStore defines the read-only catalog queries behind the pricing handlers.
type CatalogStore interface {
	ListProductsWithPrices(ctx context.Context, active bool) ([]models.CatalogProduct, error)
	GetProduct(ctx context.Context, productID string) (*models.CatalogProduct, error)
	ListPricesForProduct(ctx context.Context, productID string) ([]models.CatalogPrice, error)
	GetPrice(ctx context.Context, priceID string) (*models.CatalogPrice, error)
}

// Pricing serves the replicated Stripe catalog, falling back to the static
// plan table when the catalog is empty or cannot be read.
func Pricing(catalog CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := catalog.ListProductsWithPrices(r.Context(), true)
		if err != nil {
			log.Printf("Pricing: catalog unavailable, serving static plans: %v", err)
		}

		if err != nil || len(products) == 0 {
			writeJSON(w, http.StatusOK, map[string]any{
				"plans":  models.StaticPricingPlans(),
				"source": pricingSourceStatic,
			})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"plans":  products,
			"source": pricingSourceStripe,
		})
	}
}

// PricingProduct returns one catalog product with its active prices.
func PricingProduct(catalog CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID := chi.URLParam(r, "productId")

		product, err := catalog.GetProduct(r.Context(), productID)
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "Product not found")
				return
			}
			respondError(w, "PricingProduct", err, "Failed to load product")
			return
		}

		prices, err := catalog.ListPricesForProduct(r.Context(), productID)
		if err != nil {
			respondError(w, "PricingProduct", err, "Failed to load product")
			return
		}
		product.Prices = prices

		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	}
}

// PricingPrice returns one catalog price.
func PricingPrice(catalog CatalogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		price, err := catalog.GetPrice(r.Context(), chi.URLParam(r, "priceId"))
		if err != nil {
			if isNotFound(err) {
				writeError(w, http.StatusNotFound, "Price not found")
				return
			}
			respondError(w, "PricingPrice", err, "Failed to load price")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"price": price})
	}
}

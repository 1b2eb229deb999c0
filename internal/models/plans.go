package models

import (
	"encoding/json"
	"time"
)

// StaticPlan is an entry of the hardcoded pricing table served when the
// replicated Stripe catalog is empty or unreachable.
type StaticPlan struct {
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	PriceID  string   `json:"priceId"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular,omitempty"`
}

// StaticPricingPlans returns a fresh copy of the fallback pricing table keyed by plan.
func StaticPricingPlans() map[Plan]StaticPlan {
	return map[Plan]StaticPlan{
		PlanBasic: {
			Name:    "Basic",
			Price:   29,
			PriceID: "price_basic",
			Features: []string{
				"Finance tracking",
				"Up to 5 projects",
				"Basic analytics",
				"Email support",
				"Mobile app access",
			},
		},
		PlanPro: {
			Name:    "Pro",
			Price:   79,
			PriceID: "price_pro",
			Features: []string{
				"Everything in Basic",
				"Unlimited projects",
				"Side hustle toolkit",
				"Advanced analytics",
				"Priority support",
				"Team collaboration",
				"Custom integrations",
			},
			Popular: true,
		},
		PlanEnterprise: {
			Name:    "Enterprise",
			Price:   199,
			PriceID: "price_enterprise",
			Features: []string{
				"Everything in Pro",
				"White-label options",
				"Dedicated account manager",
				"Custom workflows",
				"SLA guarantee",
				"On-premise deployment",
				"Advanced security",
				"API access",
			},
		},
	}
}

// CatalogPrice is a read-only projection of a row in stripe.prices.
type CatalogPrice struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product,omitempty"`
	UnitAmount *int64          `json:"unit_amount"`
	Currency   string          `json:"currency"`
	Recurring  json.RawMessage `json:"recurring,omitempty"`
	Active     bool            `json:"active"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// CatalogProduct is a read-only projection of a row in stripe.products with its active prices.
type CatalogProduct struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Active      bool            `json:"active"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Prices      []CatalogPrice  `json:"prices"`
}

// ProviderSubscription is a read-only projection of a row in stripe.subscriptions.
type ProviderSubscription struct {
	ID                 string     `json:"id"`
	CustomerID         string     `json:"-"`
	Status             string     `json:"status"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
}

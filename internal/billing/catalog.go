package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go/v82"
)

// existingCatalogQuery finds products created by a previous seed run.
const existingCatalogQuery = "name:'LifeSync Pro'"

// SeedPlan describes one product and its monthly and yearly prices, in cents.
type SeedPlan struct {
	Plan        string
	Name        string
	Description string
	Features    []string
	Popular     bool
	Monthly     int64
	Yearly      int64
}

// SeededPlan records the ids created for one SeedPlan.
type SeededPlan struct {
	Plan           string
	ProductID      string
	MonthlyPriceID string
	YearlyPriceID  string
}

// SeedResult summarises a SeedCatalog run.
type SeedResult struct {
	Skipped bool
	Plans   []SeededPlan
}

// DefaultSeedPlans returns the Basic, Pro and Enterprise catalog.
func DefaultSeedPlans() []SeedPlan {
	return []SeedPlan{
		{
			Plan:        "basic",
			Name:        "LifeSync Pro Basic",
			Description: "Perfect for individuals getting started with productivity tracking",
			Features: []string{
				"Finance tracking",
				"Up to 5 projects",
				"Basic analytics",
				"Email support",
				"Mobile app access",
			},
			Monthly: 2900,
			Yearly:  29000,
		},
		{
			Plan:        "pro",
			Name:        "LifeSync Pro",
			Description: "For professionals who want unlimited productivity features",
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
			Monthly: 7900,
			Yearly:  79000,
		},
		{
			Plan:        "enterprise",
			Name:        "LifeSync Pro Enterprise",
			Description: "For teams and organizations that need advanced features",
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
			Monthly: 19900,
			Yearly:  199000,
		},
	}
}

// SeedCatalog creates the given products and prices in Stripe. It does nothing
// when products from an earlier run already exist.
func (g *Gateway) SeedCatalog(ctx context.Context, plans []SeedPlan) (*SeedResult, error) {
	const op = "billing.SeedCatalog"

	if err := g.requireKey(op); err != nil {
		return nil, err
	}

	exists, err := g.catalogExists(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: search products: %w", op, err)
	}
	if exists {
		log.Printf("[seed] products already exist, skipping creation")
		return &SeedResult{Skipped: true}, nil
	}

	result := &SeedResult{}
	for _, plan := range plans {
		seeded, err := g.seedPlan(ctx, plan)
		if err != nil {
			return result, fmt.Errorf("%s: %s: %w", op, plan.Plan, err)
		}
		log.Printf("[seed] %s plan created: %s (monthly %s, yearly %s)",
			plan.Plan, seeded.ProductID, seeded.MonthlyPriceID, seeded.YearlyPriceID)
		result.Plans = append(result.Plans, *seeded)
	}
	return result, nil
}

func (g *Gateway) catalogExists(ctx context.Context) (bool, error) {
	params := &stripe.ProductSearchParams{}
	params.Query = existingCatalogQuery
	params.Context = ctx

	iter := g.products.Search(params)
	if iter.Next() {
		return true, nil
	}
	return false, iter.Err()
}

func (g *Gateway) seedPlan(ctx context.Context, plan SeedPlan) (*SeededPlan, error) {
	features, err := json.Marshal(plan.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}

	productParams := &stripe.ProductParams{
		Name:        stripe.String(plan.Name),
		Description: stripe.String(plan.Description),
	}
	productParams.AddMetadata("plan", plan.Plan)
	productParams.AddMetadata("features", string(features))
	if plan.Popular {
		productParams.AddMetadata("popular", "true")
	}
	productParams.Context = ctx

	prod, err := g.products.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	monthly, err := g.createPrice(ctx, prod.ID, plan.Plan, plan.Monthly, stripe.PriceRecurringIntervalMonth, "monthly")
	if err != nil {
		return nil, err
	}
	yearly, err := g.createPrice(ctx, prod.ID, plan.Plan, plan.Yearly, stripe.PriceRecurringIntervalYear, "yearly")
	if err != nil {
		return nil, err
	}

	return &SeededPlan{
		Plan:           plan.Plan,
		ProductID:      prod.ID,
		MonthlyPriceID: monthly,
		YearlyPriceID:  yearly,
	}, nil
}

func (g *Gateway) createPrice(ctx context.Context, productID, plan string, amount int64, interval stripe.PriceRecurringInterval, billing string) (string, error) {
	params := &stripe.PriceParams{
		Product:    stripe.String(productID),
		UnitAmount: stripe.Int64(amount),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(string(interval)),
		},
	}
	params.AddMetadata("plan", plan)
	params.AddMetadata("billing", billing)
	params.Context = ctx

	p, err := g.prices.New(params)
	if err != nil {
		return "", fmt.Errorf("create %s price: %w", billing, err)
	}
	return p.ID, nil
}

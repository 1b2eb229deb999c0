package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PortNumber53/lifesync-pro/backend/internal/billing"
	"github.com/PortNumber53/lifesync-pro/backend/internal/config"
)

func main() {
	_ = godotenv.Load(
		"../.env",
		".env",
	)

	cfg, err := config.LoadStripe()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	gateway := billing.NewGateway(billing.Config{SecretKey: cfg.StripeSecretKey})

	log.Printf("Creating LifeSync Pro products in Stripe...")
	result, err := gateway.SeedCatalog(ctx, billing.DefaultSeedPlans())
	if err != nil {
		log.Fatalf("failed to seed products: %v", err)
	}
	if result.Skipped {
		log.Printf("Products already exist, skipping creation")
		return
	}

	log.Printf("All products created successfully. Price ids for the pricing page:")
	for _, plan := range result.Plans {
		log.Printf("  %s monthly: %s", plan.Plan, plan.MonthlyPriceID)
		log.Printf("  %s yearly:  %s", plan.Plan, plan.YearlyPriceID)
	}
}

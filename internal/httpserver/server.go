package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PortNumber53/lifesync-pro/backend/internal/config"
	"github.com/PortNumber53/lifesync-pro/backend/internal/handlers"
	appmiddleware "github.com/PortNumber53/lifesync-pro/backend/internal/middleware"
)

// Dependencies are the storage clients and provider adapters served by the router.
type Dependencies struct {
	// DB is pinged by the health check. Leave nil to skip the ping.
	DB                    handlers.Pinger
	Contacts              handlers.ContactStore
	Newsletters           handlers.NewsletterStore
	Billing               handlers.BillingStore
	Catalog               handlers.CatalogStore
	ProviderSubscriptions handlers.ProviderSubscriptionStore
	Gateway               handlers.BillingGateway
	Assistant             handlers.Assistant
}

// Server wraps an http.Server with convenience helpers for startup/shutdown.
type Server struct {
	httpServer *http.Server
}

// New constructs an HTTP server using the provided configuration and dependencies.
func New(cfg config.Config, deps Dependencies) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(appmiddleware.NewRequestTracker().Middleware())

	operatorAuth := appmiddleware.NewOperatorAuth(cfg.OperatorToken)

	router.Get("/healthz", handlers.Health(deps.DB))

	router.Route("/api", func(r chi.Router) {
		// Stripe checkout
		r.Get("/stripe/config", handlers.StripeConfig(deps.Gateway))
		r.Post("/checkout", handlers.CreateCheckout(deps.Gateway))
		r.Get("/checkout/session/{sessionId}", handlers.GetCheckoutSession(deps.Gateway))
		r.Post("/customer-portal", handlers.CustomerPortal(deps.Gateway))

		// Pricing catalog
		r.Get("/pricing", handlers.Pricing(deps.Catalog))
		r.Get("/pricing/products/{productId}", handlers.PricingProduct(deps.Catalog))
		r.Get("/pricing/prices/{priceId}", handlers.PricingPrice(deps.Catalog))

		// Contact form and newsletter
		r.Post("/contact", handlers.SubmitContact(deps.Contacts))
		r.Post("/newsletter", handlers.Subscribe(deps.Newsletters))
		r.Post("/newsletter/unsubscribe", handlers.Unsubscribe(deps.Newsletters))

		// Operator-only lookups over stored customer data
		r.Group(func(r chi.Router) {
			r.Use(operatorAuth.Require)
			r.Get("/contacts", handlers.ListContacts(deps.Contacts))
			r.Get("/billing/subscription", handlers.GetSubscription(deps.Billing, deps.ProviderSubscriptions))
			r.Get("/billing/payments", handlers.GetPaymentHistory(deps.Billing))
		})

		r.Get("/analytics/config", handlers.AnalyticsConfig(cfg.AnalyticsMeasurementID))

		// AI assistant
		r.Post("/ai/chat", handlers.AIChat(deps.Assistant))
		r.Post("/ai/goal-recommendations", handlers.AIGoalRecommendations(deps.Assistant))
		r.Post("/ai/financial-insights", handlers.AIFinancialInsights(deps.Assistant))
		r.Post("/ai/analyze-progress", handlers.AIAnalyzeProgress(deps.Assistant))
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: srv}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

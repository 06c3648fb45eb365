package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/talent-ledger/internal/api/http/handlers"
	"github.com/spec-kit/talent-ledger/internal/auth"
	"github.com/spec-kit/talent-ledger/internal/domain"
	"github.com/spec-kit/talent-ledger/internal/observability"
	"github.com/spec-kit/talent-ledger/internal/repository"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Wallet         *handlers.WalletHandler
	Admin          *handlers.AdminHandler
	Auctions       *handlers.AuctionsHandler
	Calls          *handlers.CallsHandler
	Gigs           *handlers.GigsHandler
	AuthMiddleware *auth.AuthMiddleware
	Actors         repository.ActorRepository
	LinkLimiter    fiber.Handler
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	links := app.Group("/links")
	if cfg.LinkLimiter != nil {
		links.Use(cfg.LinkLimiter)
	}
	links.Get("/gig-accept", cfg.Gigs.Accept)

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthenticated()}

	wallet := app.Group("/wallet", authenticated...)
	wallet.Get("/balance", cfg.Wallet.Balance)
	wallet.Get("/transactions", cfg.Wallet.Transactions)
	wallet.Post("/transfers", cfg.Wallet.Transfer)
	wallet.Post("/spend", cfg.Wallet.Spend)

	admin := app.Group("/admin", append(authenticated, auth.RequireActorType(cfg.Actors, domain.ActorTypeAdmin))...)
	admin.Post("/grants", cfg.Admin.Grant)

	auctions := app.Group("/auctions", authenticated...)
	auctions.Get("/", cfg.Auctions.List)
	auctions.Get("/:id", cfg.Auctions.Get)
	auctions.Post("/:id/bids", cfg.Auctions.PlaceBid)
	auctions.Post("/:id/buy-now", cfg.Auctions.BuyNow)
	auctions.Post("/:id/cancel", cfg.Auctions.Cancel)

	calls := app.Group("/calls", authenticated...)
	calls.Get("/:id/quote", cfg.Calls.Quote)
	calls.Post("/:id/settle", cfg.Calls.Settle)

	gigs := app.Group("/gigs", authenticated...)
	gigs.Post("/:id/invitations", cfg.Gigs.Invite)
}

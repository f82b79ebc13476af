// Package server assembles the Fiber application and its routes.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/YogendraSinghChouhan/ElectionPortal/internal/auth"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/config"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/handlers"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/middleware"
	"github.com/YogendraSinghChouhan/ElectionPortal/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	bodyLimit       = 8 << 20
	loginAttempts   = 10
	loginRateWindow = time.Minute
)

// New builds the API. The returned app is ready to Listen or to serve app.Test.
func New(svc *services.Services, tokens *auth.TokenIssuer, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "election-portal",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	h := handlers.New(svc, tokens, cfg.CookieSecure)
	requireAuth := middleware.RequireAuth(tokens)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth Routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        loginAttempts,
		Expiration: loginRateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many login attempts, try again later"})
		},
	}), h.Login)
	authGroup.Post("/logout", h.Logout)
	authGroup.Get("/session", requireAuth, h.Session)

	// User Routes
	user := api.Group("/user", requireAuth)
	user.Get("/profile", h.Profile)
	user.Put("/profile", h.UpdateProfile)
	user.Get("/voting-history", h.VotingHistory)

	constituencies := api.Group("/constituencies", requireAuth)
	constituencies.Get("/", h.ListConstituencies)
	constituencies.Post("/create", middleware.RequireAdmin, h.CreateConstituency)

	candidates := api.Group("/candidates", requireAuth)
	candidates.Get("/", h.ListCandidates)
	candidates.Post("/create", middleware.RequireAdmin, h.CreateCandidate)

	// Election Routes; /upcoming must precede /:id
	elections := api.Group("/elections", requireAuth)
	elections.Get("/", h.ListElections)
	elections.Get("/upcoming", h.UpcomingElections)
	elections.Post("/create", middleware.RequireAdmin, h.CreateElection)
	elections.Get("/:id", h.GetElection)
	elections.Post("/:id/vote", h.Vote)
	elections.Get("/:id/voting-status", h.VotingStatus)
	elections.Post("/:id/apply", h.Apply)

	// Admin Routes
	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin)
	admin.Get("/users", h.ListUsers)
	admin.Get("/users/:id", h.GetUser)
	admin.Patch("/users/:id/verify", h.VerifyUser)
	admin.Get("/users/:id/id-proof", h.IDProofURL)
	admin.Post("/elections/sync-status", h.SyncElectionStatuses)
	admin.Get("/elections/audit", h.AuditElections)
	admin.Get("/elections/:id/audit", h.AuditElection)

	return app
}

// errorHandler catches what the handlers did not answer themselves: unknown
// routes, oversized bodies and recovered panics.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
}

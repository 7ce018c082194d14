// Package server assembles the Fiber application: middleware, routes and the
// uniform error envelope.
package server

import (
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"inventory/internal/config"
	"inventory/internal/database"
	"inventory/internal/handlers"
	"inventory/internal/metrics"
	"inventory/internal/middleware"
	"inventory/internal/services"
)

// Dependencies are the collaborators New wires together.
type Dependencies struct {
	Config config.Config
	Log    *slog.Logger
	Store  *database.Store
	// Publisher is optional; product events are skipped without it.
	Publisher services.EventPublisher
	// AccessLog receives one line per request; nil disables access logging.
	AccessLog io.Writer
}

// Server is the assembled application together with its services.
type Server struct {
	App      *fiber.App
	Auth     *services.AuthService
	Products *services.ProductService
	Metrics  *metrics.Metrics
}

// New builds the services and mounts every route.
func New(deps Dependencies) *Server {
	cfg, log, store := deps.Config, deps.Log, deps.Store

	m := metrics.New(store.Status)
	authService := services.NewAuthService(store.Users, cfg.JWTSecret, cfg.JWTTTL, log)

	productOpts := []services.ProductOption{services.WithMutationObserver(m)}
	if deps.Publisher != nil {
		productOpts = append(productOpts, services.WithEventPublisher(deps.Publisher))
	}
	productService := services.NewProductService(store.Products, store.Users, log, productOpts...)

	app := fiber.New(fiber.Config{
		AppName:               "inventory",
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	if deps.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: deps.AccessLog,
		}))
	}
	app.Use(m.Middleware())
	app.Use(cors.New())

	app.Get("/metrics", m.Handler())

	health := handlers.NewHealthHandler(store.Status)
	health.RegisterRoutes(app)

	api := app.Group("/api")
	health.RegisterRoutes(api)

	// The store check runs before authentication so an offline store never
	// sees a token lookup.
	requireStore := middleware.RequireStore(store.Status)
	api.Use("/auth", requireStore)
	api.Use("/products", requireStore)

	handlers.NewAuthHandler(authService, log).RegisterRoutes(api)
	handlers.NewProductHandler(productService).RegisterRoutes(api, authService)

	app.Use(handlers.NotFound)

	return &Server{
		App:      app,
		Auth:     authService,
		Products: productService,
		Metrics:  m,
	}
}

// Package server assembles the Fiber application: error mapping, middleware
// and every route of the traceability API.
package server

import (
	"errors"
	"log/slog"
	"strings"

	"herbtrace-backend/internal/apperr"
	"herbtrace-backend/internal/audit"
	"herbtrace-backend/internal/auth"
	"herbtrace-backend/internal/config"
	"herbtrace-backend/internal/dashboard"
	"herbtrace-backend/internal/logging"
	"herbtrace-backend/internal/models"
	"herbtrace-backend/internal/qr"
	"herbtrace-backend/internal/stage"
	"herbtrace-backend/internal/store"
	"herbtrace-backend/internal/trace"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// ErrorHandler answers every failure as {"message": ...}. Taxonomy errors map
// to 401/400/404/500; storage details are logged, never sent.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		body := fiber.Map{"message": ae.Message}
		if len(ae.Fields) > 0 {
			body["fields"] = ae.Fields
		}
		if ae.Kind == apperr.KindStorage {
			slog.Error("storage failure", "path", c.Path(), "err", err)
		}
		return c.Status(ae.Status()).JSON(body)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
	}

	slog.Error("unexpected error", "path", c.Path(), "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Server error",
	})
}

// New wires stores, recorder and assembler on top of db and registers routes.
func New(cfg *config.Config, db *gorm.DB) (*fiber.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	st := store.New(db)
	usernames, err := store.NewUsernameCache(st, cfg.UsernameCacheSize)
	if err != nil {
		return nil, err
	}
	recorder := stage.NewRecorder(st, audit.NewWriter(db))
	assembler := trace.NewAssembler(st, usernames)
	enc := qr.NewEncoder(cfg.QRSize)

	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
		UnescapePath: true,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Origins(), ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowCredentials: true,
	}))
	app.Use(logging.Requests())
	app.Use(auth.Middleware(cfg))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Identity
	app.Post("/signup", auth.SignupHandler(cfg, st))
	app.Post("/login", auth.LoginHandler(cfg, st))
	app.Post("/logout", auth.LogoutHandler(cfg))
	app.Get("/me", auth.MeHandler(st))

	// Stage submissions
	app.Post("/collector", roleGate(cfg, models.RoleCollector), stage.CreateCollectorHandler(recorder, enc))
	app.Post("/transport", roleGate(cfg, models.RoleTransporter), stage.CreateTransportHandler(recorder, enc))
	app.Post("/processing", roleGate(cfg, models.RoleProcessingPlant), stage.CreateProcessingHandler(recorder, enc))
	app.Post("/labtesting", roleGate(cfg, models.RoleLabTesting), stage.CreateLabTestHandler(recorder, enc))

	// Chain reads
	app.Get("/trace/lab/:id", trace.LabTraceHandler(assembler))
	app.Get("/trace/product-batch/:batchId", trace.ProductBatchTraceHandler(assembler))
	app.Get("/chains", trace.ListChainsHandler(assembler))
	app.Get("/chains/:id", trace.ChainHandler(assembler))

	api := app.Group("/api")
	api.Get("/lab-batches", trace.LabBatchesHandler(assembler))
	api.Post("/product-batch", roleGate(cfg, models.RoleManufacturer), stage.CreateProductBatchHandler(recorder, enc))
	api.Get("/dashboard/summary", dashboard.SummaryHandler(assembler))
	api.Get("/audit-logs", auth.RequireActor(), auth.RequireRole(
		models.RoleCollector,
		models.RoleTransporter,
		models.RoleProcessingPlant,
		models.RoleLabTesting,
		models.RoleManufacturer,
	), audit.ListAuditLogsHandler(db))

	return app, nil
}

// roleGate restricts a stage route to its role when strict roles are on.
func roleGate(cfg *config.Config, role models.UserRole) fiber.Handler {
	if !cfg.StrictRoles {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return auth.RequireRole(role)
}

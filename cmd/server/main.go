package main

import (
	"strings"

	"fodi-backend/internal/audit"
	"fodi-backend/internal/auth"
	"fodi-backend/internal/config"
	"fodi-backend/internal/dashboard"
	"fodi-backend/internal/database"
	"fodi-backend/internal/inventory"
	"fodi-backend/internal/logger"
	"fodi-backend/internal/menu"
	"fodi-backend/internal/metrics"
	"fodi-backend/internal/models"
	"fodi-backend/internal/semifinished"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	cfg.Validate(log)
	database.Init(cfg, log)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Внутренняя ошибка сервера",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.Middleware(log))
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Static(menu.ImageRoute, cfg.ProductImagePath)

	api := app.Group("/api")

	// Public
	api.Post("/auth/register-admin", auth.RegisterAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg, auth.GormUserFinder{DB: database.DB}))
	api.Get("/auth/session", auth.SessionHandler(cfg.JWTSecret))
	api.Get("/auth/redirect", auth.RedirectHandler(cfg.PublicBaseURL))
	api.Get("/products", menu.PublicProductsHandler())

	// Back office
	admin := api.Group("/admin")
	admin.Use(auth.JWTMiddleware(cfg.JWTSecret))
	admin.Use(auth.RequireRole(models.RoleAdmin, models.RoleManager))

	// Ingredients (batches)
	admin.Get("/ingredients", inventory.ListIngredientsHandler())
	admin.Get("/ingredients/search", inventory.SearchIngredientsHandler())
	admin.Get("/ingredients/lookups", inventory.LookupsHandler())
	admin.Get("/ingredients/export", inventory.ExportIngredientsHandler())
	admin.Post("/ingredients/import", inventory.ImportIngredientsHandler())
	admin.Get("/ingredients/:id", inventory.GetIngredientHandler())
	admin.Post("/ingredients", inventory.CreateIngredientHandler())
	admin.Put("/ingredients/:id", inventory.UpdateIngredientHandler())
	admin.Delete("/ingredients/:id", inventory.DeleteIngredientHandler())
	admin.Get("/ingredients/:id/movements", inventory.ListMovementsHandler())
	admin.Post("/ingredients/:id/movements", inventory.CreateMovementHandler())

	// Semi-finished
	admin.Get("/semi-finished", semifinished.ListSemiFinishedHandler())
	admin.Get("/semi-finished/:id", semifinished.GetSemiFinishedHandler())
	admin.Post("/semi-finished", semifinished.CreateSemiFinishedHandler())
	admin.Put("/semi-finished/:id", semifinished.UpdateSemiFinishedHandler())
	admin.Delete("/semi-finished/:id", semifinished.DeleteSemiFinishedHandler())

	// Products
	admin.Get("/products", menu.ListProductsHandler())
	admin.Post("/products/quote", menu.QuoteHandler(cfg))
	admin.Get("/products/:id", menu.GetProductHandler())
	admin.Post("/products", menu.CreateProductHandler(cfg))
	admin.Put("/products/:id", menu.UpdateProductHandler(cfg))
	admin.Delete("/products/:id", menu.DeleteProductHandler())
	admin.Post("/products/:id/image", menu.UploadImageHandler(cfg))

	// Dashboard
	admin.Get("/dashboard/stock", dashboard.StockSummaryHandler())

	// Audit logs
	admin.Get("/audit-logs", audit.ListAuditLogsHandler())
	admin.Post("/audit-logs/:id/undo", audit.UndoAuditLogHandler())

	log.Info("server listening", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

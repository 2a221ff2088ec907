package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/alert"
	"github.com/corebank/corebank/internal/config"
	"github.com/corebank/corebank/internal/ledger"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/middleware"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/report"
)

// Deps aggregates the constructed components required to wire routes. DB and
// Cache may be nil in development mode.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Accounts *account.Store
	Engine   *ledger.Engine
	Monitor  *alert.Monitor
	Reports  *report.Service
	Metrics  *metrics.Metrics
	Notifier notification.Notifier
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))

	accountHandler := account.NewHandler(d.Accounts, d.Notifier, d.Metrics)
	ledgerHandler := ledger.NewHandler(d.Engine)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler)

	// Money-moving endpoints carry idempotency and rate limiting when Redis
	// is configured; both middlewares are scoped so reads stay untouched.
	movements := api.Group("")
	if d.Cache != nil {
		movements.Use(middleware.OperationRateLimit(d.Cache, 30))
		movements.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterTransactionRoutes(movements, api, ledgerHandler)

	RegisterAlertRoutes(api, d)
	RegisterReportRoutes(api, d)

	return nil
}

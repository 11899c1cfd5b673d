package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/invorya/stock-ledger/internal/application/alerts"
	"github.com/invorya/stock-ledger/internal/application/ledger"
	"github.com/invorya/stock-ledger/internal/application/usecase"
	"github.com/invorya/stock-ledger/internal/infrastructure/audit"
	"github.com/invorya/stock-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/invorya/stock-ledger/internal/interfaces/http"
	"github.com/invorya/stock-ledger/pkg/config"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// runMigrations aplica las migraciones goose con el driver stdlib de pgx.
func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	if err := runMigrations(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	log.Info().Msg("migraciones aplicadas")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	alertRepo := postgres.NewStockAlertRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	auditSink := audit.NewLogNotifier(log)
	movementUC := ledger.NewMovementUseCase(txRunner, productRepo, movementRepo, auditSink)
	productUC := usecase.NewProductUseCase(productRepo)

	fallback := decimal.NewFromFloat(cfg.Alerts.LowStockThreshold)
	reconciler := alerts.NewReconciler(productRepo, alertRepo, auditSink, fallback, log)
	scheduler := alerts.NewScheduler(reconciler, cfg.Alerts.Interval(), log)
	scheduler.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC: productUC,
		Movement:  movementUC,
		AlertRepo: alertRepo,
		Scheduler: scheduler,
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	// El ctx cancelado detiene el timer del scheduler; la corrida en curso termina sola.
	scheduler.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

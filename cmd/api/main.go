package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	_ "github.com/jhoicas/stock-ledger-api/docs"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/catalog"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/jobs"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

// @title                       Stock Ledger API
// @version                     1.0
// @description                 Ledger de movimientos de stock por producto y tienda.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Name:  cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	policy, err := ledger.ParseStockPolicy(cfg.Ledger.AllowNegativeStock, cfg.Ledger.NegativeAllowance)
	if err != nil {
		log.Fatal().Err(err).Msg("política de stock")
	}

	ctx := context.Background()

	var (
		txRunner inventory.TxRunner
		reads    inventory.ReadRepos
	)
	switch cfg.Storage.Driver {
	case "memory":
		db := memory.NewStore()
		if cfg.Storage.CatalogFile != "" {
			c, err := catalog.Load(cfg.Storage.CatalogFile)
			if err != nil {
				log.Fatal().Err(err).Msg("catálogo")
			}
			c.Apply(db, time.Now().UTC())
		}
		txRunner, reads = db, db.ReadRepos()
		log.Warn().Msg("STORAGE_DRIVER=memory: los datos no se persisten")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner, reads = postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout), postgres.NewReadRepos(pool)
	}

	// Redis es opcional: sin REDIS_ADDR no hay idempotencia ni recálculo asíncrono.
	var (
		idem     inventory.IdempotencyStore
		enqueuer httpRouter.RecalculateEnqueuer
	)
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		idem = infraredis.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)

		jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer jobsClient.Close()
		enqueuer = jobsClient
	}

	projector := inventory.NewStockProjector(txRunner, reads, policy, log)
	movementUC := inventory.NewMovementUseCase(txRunner, reads, projector, idem, inventory.Config{Policy: policy}, log)
	queryUC := inventory.NewQueryUseCase(reads)
	replenishmentUC := inventory.NewReplenishmentUseCase(reads)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Stock Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Movements: httpRouter.NewMovementHandler(movementUC, queryUC, log),
		Stock:     httpRouter.NewStockHandler(projector, movementUC, queryUC, replenishmentUC, enqueuer, log),
		JWTSecret: cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	ledger "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/jobs"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
	"github.com/jhoicas/stock-ledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		Name:  cfg.App.Name + "-worker",
	})

	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}
	if cfg.Storage.Driver != "postgres" {
		log.Fatal().Str("storage", cfg.Storage.Driver).Msg("el worker solo opera sobre PostgreSQL")
	}

	policy, err := ledger.ParseStockPolicy(cfg.Ledger.AllowNegativeStock, cfg.Ledger.NegativeAllowance)
	if err != nil {
		log.Fatal().Err(err).Msg("política de stock")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	reads := postgres.NewReadRepos(pool)
	projector := inventory.NewStockProjector(postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout), reads, policy, log)
	auditor := jobs.NewLedgerAuditor(projector, reads.Movements, cfg.Worker.Concurrency, log)

	var cron []jobs.CronRegistration
	if cfg.Worker.AuditCron != "" {
		// La auditoría programada solo detecta; la reparación se pide de forma explícita.
		task, err := jobs.NewAuditTask(jobs.AuditPayload{Repair: false})
		if err != nil {
			log.Fatal().Err(err).Msg("tarea de auditoría")
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.Worker.AuditCron,
			Task:    task,
			Options: []asynq.Option{asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(1)},
		})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Concurrency: cfg.Worker.Concurrency,
		Logger:      log.Component("worker"),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskRecalculateStock, Handler: jobs.NewRecalculateHandler(projector, log)},
			{Type: jobs.TaskAuditLedger, Handler: jobs.NewAuditHandler(auditor)},
		},
		Cron: cron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar worker")
	}

	log.Info().
		Int("concurrency", cfg.Worker.Concurrency).
		Str("audit_cron", cfg.Worker.AuditCron).
		Msg("iniciando worker")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado con error")
	}
	log.Info().Msg("worker detenido")
}

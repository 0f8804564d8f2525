package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	notifierservice "herald/contexts/workspace-collab/notifier-service"
	postgresadapter "herald/contexts/workspace-collab/notifier-service/adapters/postgres"
	workerapp "herald/contexts/workspace-collab/notifier-service/application/workers"
	"herald/internal/platform/config"
	"herald/internal/platform/db"
	"herald/internal/platform/httpserver"
	"herald/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	consumer     workerapp.EventConsumer
	outboxRelay  workerapp.OutboxRelay
	consumerOn   bool
	relayOn      bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := notifierservice.NewModule(notifierservice.Dependencies{
		Documents:     repo,
		Collections:   repo,
		Teams:         repo,
		Subscriptions: repo,
		Access:        repo,
		Views:         repo,
		Dispatcher: postgresadapter.OutboxDispatcher{
			Outbox: repo,
			Clock:  postgresadapter.SystemClock{},
			IDGen:  postgresadapter.UUIDGenerator{},
			Logger: logger,
		},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
	})

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := notifierservice.NewModule(notifierservice.Dependencies{
		Documents:     repo,
		Collections:   repo,
		Teams:         repo,
		Subscriptions: repo,
		Access:        repo,
		Views:         repo,
		Dispatcher: postgresadapter.OutboxDispatcher{
			Outbox: repo,
			Clock:  postgresadapter.SystemClock{},
			IDGen:  postgresadapter.UUIDGenerator{},
			Logger: logger,
		},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
	})

	return &WorkerApp{
		postgres: pg,
		consumer: workerapp.EventConsumer{
			Subscriber: kafka,
			Service:    module.Service,
			Logger:     logger,
		},
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		consumerOn:   cfg.EnableNotifierConsumer,
		relayOn:      cfg.EnableOutboxRelay,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.consumerOn {
		if err := w.consumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.relayOn {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

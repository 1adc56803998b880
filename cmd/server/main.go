// Package main is the entry point for the learning hub API server.
//
// Architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repositories, caches, messaging, scheduler
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orbita-hub/orbita-learning-hub/config"

	// Application layer
	"github.com/orbita-hub/orbita-learning-hub/internal/application/command"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/eventhandler"
	"github.com/orbita-hub/orbita-learning-hub/internal/application/query"

	// Domain layer
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/ranking"
	"github.com/orbita-hub/orbita-learning-hub/internal/domain/shared"

	// Infrastructure layer
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/messaging"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/persistence/memory"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/persistence/postgres"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/persistence/redis"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/scheduler"
	"github.com/orbita-hub/orbita-learning-hub/internal/infrastructure/scheduler/jobs"

	// Interface layer
	httpserver "github.com/orbita-hub/orbita-learning-hub/internal/interface/http"

	// Packages
	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
	"github.com/orbita-hub/orbita-learning-hub/pkg/retry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.App.LogLevel)).
		With(logger.String("app", cfg.App.Name))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──────────────────────────────────────────────────────────────────
	// infrastructure
	// ──────────────────────────────────────────────────────────────────

	var conn *postgres.Connection
	err = retry.Do(ctx, retry.DefaultConfig(), func(ctx context.Context) error {
		var connErr error
		conn, connErr = postgres.NewConnection(ctx, postgres.Config{
			URL:             cfg.Database.URL,
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
			ConnectTimeout:  cfg.Database.ConnectTimeout,
		})
		return connErr
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	if err := conn.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ledgerRepo := postgres.NewLedgerRepository(conn)
	aggregateRepo := postgres.NewAggregateRepository(conn)
	communityRepo := postgres.NewCommunityRepository(conn)

	var rankingCache ranking.Cache
	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		rankingCache = redis.NewRankingCache(client, cfg.Cache.RankingTTL)
		log.Info("using redis ranking cache")
	} else {
		rankingCache = memory.NewRankingCache(cfg.Cache.RankingTTL)
		log.Info("using in-process ranking cache")
	}

	bus := messaging.NewEventBus(log)
	defer bus.Close()

	// ──────────────────────────────────────────────────────────────────
	// application
	// ──────────────────────────────────────────────────────────────────

	awardHandler := command.NewAwardXPHandler(ledgerRepo, aggregateRepo, bus, log)
	reconcileHandler := command.NewReconcileMonthlyXPHandler(ledgerRepo, aggregateRepo, bus, log)
	syncLevelHandler := command.NewSyncLevelHandler(aggregateRepo, log)
	syncCeilingHandler := command.NewSyncMonthlyCeilingHandler(aggregateRepo, log)

	rankingHandler := query.NewGetRankingHandler(aggregateRepo, rankingCache, log)
	topMemberHandler := query.NewGetTopMemberHandler(communityRepo)
	profileHandler := query.NewGetProfileHandler(aggregateRepo, ledgerRepo)

	invalidator := eventhandler.NewOnXPAwarded(rankingCache, log)
	if err := bus.Subscribe(shared.EventTypeXPAwarded, invalidator.Handle); err != nil {
		return fmt.Errorf("subscribe cache invalidator: %w", err)
	}

	// ──────────────────────────────────────────────────────────────────
	// scheduler
	// ──────────────────────────────────────────────────────────────────

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(cfg.Scheduler.JobTimeout, log)
		if err := sched.Register(
			jobs.NewReconcileMonthlyJob(reconcileHandler, log),
			cfg.Scheduler.ReconcileInterval,
		); err != nil {
			return fmt.Errorf("register reconcile job: %w", err)
		}
		if err := sched.Register(
			jobs.NewSyncIntegrityJob(syncLevelHandler, syncCeilingHandler, log),
			cfg.Scheduler.SyncLevelInterval,
		); err != nil {
			return fmt.Errorf("register sync job: %w", err)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	// ──────────────────────────────────────────────────────────────────
	// http
	// ──────────────────────────────────────────────────────────────────

	server := httpserver.NewServer(httpserver.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AdminKeyHash: cfg.Admin.KeyHash,
	}, httpserver.Dependencies{
		AwardXP:      awardHandler,
		Reconcile:    reconcileHandler,
		SyncLevels:   syncLevelHandler,
		SyncCeilings: syncCeilingHandler,
		GetRanking:   rankingHandler,
		GetTopMember: topMemberHandler,
		GetProfile:   profileHandler,
		Health:       &dbHealth{conn: conn},
		Logger:       log,
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

// dbHealth gates readiness on the database connection.
type dbHealth struct {
	conn *postgres.Connection
}

func (h *dbHealth) Check(ctx context.Context) error {
	return h.conn.Ping(ctx)
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"usersvc/internal/api"
	"usersvc/internal/api/handler/v1handler"
	"usersvc/internal/config"
	"usersvc/internal/user"
	"usersvc/internal/worker"
	"usersvc/pkg/events"
	"usersvc/pkg/logger"
	"usersvc/pkg/ratelimit"
	"usersvc/pkg/storage"
	"usersvc/pkg/storage/memory"
	"usersvc/pkg/storage/postgres"
)

func setupPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, func()) {
	if cfg.Events.AMQPURL == "" {
		logger.Info(ctx, "no amqp url configured, user events are only logged")

		return events.LogPublisher{}, func() {}
	}

	publisher, err := events.NewAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		logger.Fatal(ctx, "could not create amqp publisher", zap.Error(err))
	}

	return publisher, func() {
		logger.Info(ctx, "closing amqp publisher...")
		if err := publisher.Close(); err != nil {
			logger.Warn(ctx, "could not close amqp publisher", zap.Error(err))
		}
	}
}

// setupStorage returns the configured storage. pg is nil unless the postgres
// driver is used.
func setupStorage(ctx context.Context,
	cfg *config.Config,
	publisher events.Publisher) (strg storage.Storage, pg *postgres.PgSQL, closeFn func()) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		mem := memory.New(memory.Options{
			OnJobs: worker.MemoryDispatcher(worker.NewUserCreatedWorker(publisher)),
		})

		return mem, nil, func() { _ = mem.Close() }
	}

	pg, closeFn = getPostgres(ctx, cfg)

	return pg, pg, closeFn
}

func setupLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}
	}

	if cfg.RateLimit.Backend == config.RateLimitBackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn(ctx, "could not ping redis, requests are allowed while it is down", zap.Error(err))
		}

		return ratelimit.NewRedis(client, cfg.RateLimit.Requests, cfg.RateLimit.Window), func() {
			_ = client.Close()
		}
	}

	limiter := ratelimit.NewMemory(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	limiter.StartJanitor(ctx)

	return limiter, func() {}
}

func setupWorkers(ctx context.Context,
	cfg *config.Config,
	pg *postgres.PgSQL,
	publisher events.Publisher) func(ctx context.Context) {
	if pg == nil || !cfg.Worker.Enabled {
		return func(context.Context) {}
	}

	client, err := worker.Start(ctx, pg.Pool, publisher, worker.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not start workers", zap.Error(err))
	}

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping workers...")
		if err := client.Stop(ctx); err != nil {
			logger.Error(ctx, "could not stop workers", zap.Error(err))
		}
	}
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			publisher, closePublisher := setupPublisher(ctx, cfg)
			defer closePublisher()

			strg, pg, closeStrg := setupStorage(ctx, cfg, publisher)
			defer closeStrg()

			limiter, closeLimiter := setupLimiter(ctx, cfg)
			defer closeLimiter()

			stopWorkers := setupWorkers(ctx, cfg, pg, publisher)

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Users: user.New(strg, user.NewOptions(cfg)),
				},
				Limiter: limiter,
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			stopWorkers(shutdownCtx)
		},
	}

	return cmd
}

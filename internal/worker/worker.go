package worker

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"usersvc/internal/config"
	"usersvc/pkg/events"
	"usersvc/pkg/logger"
)

// Options configure the river client processing background jobs.
type Options struct {
	// MaxWorkers is the number of jobs processed concurrently by this instance.
	MaxWorkers int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers: cfg.Worker.MaxWorkers,
	}
}

// Start registers the workers and starts processing jobs of the default queue.
// The returned client must be stopped by the caller.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	publisher events.Publisher,
	opts Options) (*river.Client[pgx.Tx], error) {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewUserCreatedWorker(publisher))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: workers,
		Logger:  logger.Slog(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}

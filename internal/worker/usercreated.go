package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"usersvc/internal/user"
	"usersvc/pkg/events"
	"usersvc/pkg/logger"
	"usersvc/pkg/serrors"
	"usersvc/pkg/storage/memory"
)

const publishJobTimeout = 30 * time.Second

// UserCreatedWorker publishes a UserCreated event for every stored user.
// Failed publications are retried by river; conflicts cancel the job.
type UserCreatedWorker struct {
	river.WorkerDefaults[user.CreatedArgs]

	publisher events.Publisher
}

func NewUserCreatedWorker(publisher events.Publisher) *UserCreatedWorker {
	return &UserCreatedWorker{publisher: publisher}
}

func (w *UserCreatedWorker) Timeout(*river.Job[user.CreatedArgs]) time.Duration {
	return publishJobTimeout
}

func (w *UserCreatedWorker) Work(ctx context.Context, job *river.Job[user.CreatedArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("job_id", job.ID), zap.String("user_id", job.Args.UserID))

	err := w.publisher.PublishUserCreated(ctx, events.UserCreated{
		ID:         job.Args.UserID,
		Name:       job.Args.Name,
		DocumentID: job.Args.DocumentID,
		CreatedAt:  job.Args.CreatedAt,
	})
	switch {
	case err == nil:
		logger.Debug(ctx, "published user created event")

		return nil
	case errors.Is(err, serrors.ErrConflict):
		logger.Warn(ctx, "user created event rejected, cancelling job", zap.Error(err))

		return river.JobCancel(err)
	default:
		logger.Error(ctx, "could not publish user created event", zap.Error(err))

		return fmt.Errorf("could not publish user created event: %w", err)
	}
}

// MemoryDispatcher returns a callback for memory.Options.OnJobs. Committed
// jobs are worked off the caller's goroutine, each bounded by the worker
// timeout. Failures are logged and not retried.
func MemoryDispatcher(w *UserCreatedWorker) func(ctx context.Context, jobs []memory.Job) {
	return func(ctx context.Context, jobs []memory.Job) {
		go func() {
			for _, j := range jobs {
				w.dispatch(ctx, j)
			}
		}()
	}
}

func (w *UserCreatedWorker) dispatch(ctx context.Context, j memory.Job) {
	args, ok := j.Args.(user.CreatedArgs)
	if !ok {
		logger.Warn(ctx, "no worker for job", zap.String("kind", j.Args.Kind()))

		return
	}

	job := &river.Job[user.CreatedArgs]{
		JobRow: &rivertype.JobRow{Kind: args.Kind(), Attempt: 1},
		Args:   args,
	}

	ctx, cancel := context.WithTimeout(ctx, w.Timeout(job))
	defer cancel()

	if err := w.Work(ctx, job); err != nil {
		logger.Warn(ctx, "dropped user created event", zap.String("user_id", args.UserID), zap.Error(err))
	}
}

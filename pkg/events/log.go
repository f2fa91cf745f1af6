package events

import (
	"context"

	"go.uber.org/zap"

	"usersvc/pkg/logger"
)

// LogPublisher writes events to the context logger instead of a broker.
type LogPublisher struct{}

var _ Publisher = LogPublisher{}

func (LogPublisher) PublishUserCreated(ctx context.Context, event UserCreated) error {
	logger.Info(ctx, "user created",
		zap.String("user_id", event.ID),
		zap.String("document_id", event.DocumentID),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

func (LogPublisher) Close() error { return nil }

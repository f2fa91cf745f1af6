package user

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"usersvc/internal/config"
	"usersvc/pkg/domain"
	"usersvc/pkg/serrors"
	"usersvc/pkg/storage"
)

const instrumentationName = "usersvc/internal/user"

// ErrMsgDocumentIDExists is the message of the conflict returned when a
// document ID is already registered.
const ErrMsgDocumentIDExists = "Document ID already exists."

// Options configure paging and job enqueueing of the user service.
type Options struct {
	// DefaultPageSize is used when List is called with a zero limit.
	DefaultPageSize uint
	// MaxPageSize caps the limit accepted by List.
	MaxPageSize uint
	// MaxAttempts is the maximum number of attempts of the UserCreated job.
	MaxAttempts int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		DefaultPageSize: cfg.Users.DefaultPageSize,
		MaxPageSize:     cfg.Users.MaxPageSize,
		MaxAttempts:     cfg.Worker.MaxAttempts,
	}
}

type service struct {
	options Options
	storage storage.Storage

	tracer  trace.Tracer
	created metric.Int64Counter
}

// Create registers a new user. The document ID check, the insert and the
// UserCreated job run in one transaction; a duplicate detected by either the
// check or the storage constraint is reported as a conflict.
func (s service) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Create")
	defer span.End()

	if user.DocumentID == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "documentId is required")
	}

	var stored *domain.User
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		exists, err := tx.UserExistsByDocumentID(ctx, user.DocumentID)
		if err != nil {
			return fmt.Errorf("could not check document id: %w", err)
		}
		if exists {
			return serrors.With(serrors.ErrConflict, ErrMsgDocumentIDExists)
		}

		stored, err = tx.StoreUser(ctx, domain.User{
			Name:       user.Name,
			DocumentID: user.DocumentID,
		})
		if errors.Is(err, storage.ErrDuplicateDocumentID) {
			return serrors.Wrap(serrors.ErrConflict, err, ErrMsgDocumentIDExists)
		}
		if err != nil {
			return fmt.Errorf("could not store user: %w", err)
		}

		if _, err := tx.AddJob(ctx, CreatedArgs{
			UserID:      stored.ID.String(),
			Name:        stored.Name,
			DocumentID:  stored.DocumentID,
			CreatedAt:   stored.CreatedAt,
			maxAttempts: s.options.MaxAttempts,
		}, nil); err != nil {
			return fmt.Errorf("could not add job: %w", err)
		}

		return nil
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "could not create user")

		return nil, fmt.Errorf("could not create user: %w", err)
	}

	span.SetAttributes(attribute.String("user.id", stored.ID.String()))
	s.created.Add(ctx, 1)

	return stored, nil
}

// List returns a page of users, newest first. cursor is an optional token
// returned by a previous call; the next cursor is empty on the last page.
func (s service) List(ctx context.Context, cursor string, limit uint) ([]domain.User, string, error) {
	ctx, span := s.tracer.Start(ctx, "user.List")
	defer span.End()

	after, err := DecodeCursor(cursor)
	if err != nil {
		return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
	}

	switch {
	case limit == 0:
		limit = s.options.DefaultPageSize
	case limit > s.options.MaxPageSize:
		limit = s.options.MaxPageSize
	}

	page, err := s.storage.Users(ctx, after, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not get users: %w", err)
	}

	return page.Users, EncodeCursor(page.NextCursor), nil
}

// Get fetches a single user by ID. It returns a not-found error when no user
// matches.
func (s service) Get(ctx context.Context, id domain.UserID) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "user.Get")
	defer span.End()

	res, err := s.storage.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get user: %w", err)
	}
	if res == nil {
		return nil, serrors.With(serrors.ErrNotFound, "user not found")
	}

	return res, nil
}

// New creates a new Service backed by the provided storage. Spans and the
// users.created counter are reported through the global OpenTelemetry providers.
func New(storage storage.Storage, options Options) Service {
	if options.DefaultPageSize == 0 {
		options.DefaultPageSize = 20
	}
	if options.MaxPageSize == 0 {
		options.MaxPageSize = 100
	}
	if options.DefaultPageSize > options.MaxPageSize {
		options.DefaultPageSize = options.MaxPageSize
	}

	created, err := otel.Meter(instrumentationName).Int64Counter("users.created",
		metric.WithDescription("Number of users created"))
	if err != nil {
		created, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter("users.created")
	}

	return &service{
		options: options,
		storage: storage,
		tracer:  otel.Tracer(instrumentationName),
		created: created,
	}
}

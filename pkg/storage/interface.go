// Package storage defines the core storage interfaces that the application relies on.
// It abstracts persistence operations and transaction management so that different
// backends (PostgreSQL, in-memory) can provide concrete implementations.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"bytes"
	"context"
	"time"

	"github.com/riverqueue/river"

	"usersvc/pkg/domain"
)

// AllStorage is a composite interface that includes all domain-specific storage
// capabilities required by the application.
type AllStorage interface {
	UserStorage
	JobStorage
}

// TxStorage describes a storage handle that operates within a database
// transaction. It exposes the same domain-specific capabilities as AllStorage,
// and additionally allows committing or rolling back the ongoing transaction.
// Implementations should become unusable after Commit or Rollback is called.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions.
type Storage interface {
	AllStorage

	// Close releases any resources held by the storage implementation (e.g. the
	// underlying connection pool). After Close, the instance should not be used.
	Close() error

	// Begin starts a new transaction and returns a TxStorage that can be used to
	// perform further operations within that transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes the provided callback with a
	// TxStorage, and then commits on success or rolls back if the callback
	// returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}

// UserCursor is a position in the users ordering (created_at DESC, id DESC).
// The ID breaks ties between users created at the same instant.
type UserCursor struct {
	CreatedAt time.Time
	ID        domain.UserID
}

// CursorAt returns the cursor positioned on u.
func CursorAt(u domain.User) *UserCursor {
	return &UserCursor{CreatedAt: u.CreatedAt, ID: u.ID}
}

// After reports whether u sorts after the cursor position. A nil cursor
// admits every user.
func (c *UserCursor) After(u domain.User) bool {
	if c == nil {
		return true
	}
	if !u.CreatedAt.Equal(c.CreatedAt) {
		return u.CreatedAt.Before(c.CreatedAt)
	}

	return bytes.Compare(u.ID[:], c.ID[:]) < 0
}

// UserPage groups a page of users together with an optional NextCursor used
// for pagination.
type UserPage struct {
	// Users contains the current page, newest first.
	Users []domain.User
	// NextCursor points at the last user of the page. It is nil when there is
	// no next page.
	NextCursor *UserCursor
}

// UserStorage defines persistence operations for users.
type UserStorage interface {
	// StoreUser inserts a user and returns it as stored, with ID and CreatedAt
	// filled in. ErrDuplicateDocumentID is returned when the document ID is
	// already taken.
	StoreUser(ctx context.Context, user domain.User) (*domain.User, error)
	// UserExistsByDocumentID reports whether a user with the given document ID exists.
	UserExistsByDocumentID(ctx context.Context, documentID string) (bool, error)
	// UserByID returns the user with the given ID, or nil when not found.
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	// Users returns up to limit users sorting after cursor (or the newest ones
	// when cursor is nil), ordered by created_at DESC, id DESC.
	Users(ctx context.Context, cursor *UserCursor, limit uint) (UserPage, error)
}

// JobStorage defines the minimal interface for enqueueing background jobs.
// Implementations persist the job into the underlying queue backend and,
// when running inside a transaction, make it visible only on commit.
type JobStorage interface {
	// AddJob enqueues a new job with the given arguments. It reports whether
	// the job was inserted or skipped as a duplicate.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}

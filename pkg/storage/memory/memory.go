// Package memory provides an in-process implementation of storage.Storage.
//
// Transactions are serialised: only one transaction (or single write outside
// a transaction) runs at a time, and writes are staged until Commit. This
// gives the same check-then-write guarantees the PostgreSQL driver gets from
// its unique index. Calling write methods on the root Store from inside a
// WithTx callback blocks forever; use the handle passed to the callback.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riverqueue/river"

	"usersvc/pkg/domain"
	"usersvc/pkg/storage"
)

// Job is a job recorded by the store once its transaction commits.
type Job struct {
	Args river.JobArgs
	Opts *river.InsertOpts
}

// Options configures a Store.
type Options struct {
	// Now returns the creation time for new users. Defaults to time.Now.
	Now func() time.Time
	// OnJobs is invoked after a commit with the jobs enqueued by it. It runs
	// outside of the store lock and may be nil.
	OnJobs func(ctx context.Context, jobs []Job)
}

// Store keeps users in memory.
type Store struct {
	opts Options

	// sem serialises writers; a token is held for the lifetime of a transaction.
	sem chan struct{}

	mu    sync.RWMutex
	users map[domain.UserID]domain.User
	byDoc map[string]domain.UserID
	jobs  []Job
}

var (
	_ storage.Storage   = (*Store)(nil)
	_ storage.TxStorage = (*tx)(nil)
)

// New creates an empty Store.
func New(options Options) *Store {
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Store{
		opts:  options,
		sem:   make(chan struct{}, 1),
		users: make(map[domain.UserID]domain.User),
		byDoc: make(map[string]domain.UserID),
	}
}

// Close drops every stored user.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[domain.UserID]domain.User)
	s.byDoc = make(map[string]domain.UserID)
	s.jobs = nil

	return nil
}

// Jobs returns a copy of every committed job.
func (s *Store) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)

	return out
}

// Begin waits for any running transaction to finish and starts a new one.
func (s *Store) Begin(ctx context.Context) (storage.TxStorage, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err() //nolint: wrapcheck
	}

	return &tx{store: s, ctx: ctx}, nil
}

// WithTx runs cb inside a transaction, committing when it returns nil.
func (s *Store) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	t, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	if err := cb(t); err != nil {
		_ = t.Rollback()

		return err
	}

	return t.Commit()
}

// StoreUser stores a single user in its own transaction.
func (s *Store) StoreUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var stored *domain.User
	err := s.WithTx(ctx, func(st storage.AllStorage) error {
		var err error
		stored, err = st.StoreUser(ctx, user)

		return err //nolint: wrapcheck
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (s *Store) UserExistsByDocumentID(_ context.Context, documentID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byDoc[documentID]

	return ok, nil
}

func (s *Store) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	return &u, nil
}

func (s *Store) Users(_ context.Context, cursor *storage.UserCursor, limit uint) (storage.UserPage, error) {
	s.mu.RLock()
	all := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if cursor.After(u) {
			all = append(all, u)
		}
	}
	s.mu.RUnlock()

	sortNewestFirst(all)

	return page(all, limit), nil
}

// AddJob enqueues a job in its own transaction.
func (s *Store) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	var inserted bool
	err := s.WithTx(ctx, func(st storage.AllStorage) error {
		var err error
		inserted, err = st.AddJob(ctx, args, opts)

		return err //nolint: wrapcheck
	})

	return inserted, err
}

func sortNewestFirst(users []domain.User) {
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		}

		return bytes.Compare(users[i].ID[:], users[j].ID[:]) > 0
	})
}

func page(users []domain.User, limit uint) storage.UserPage {
	var nextCursor *storage.UserCursor
	if uint(len(users)) > limit {
		users = users[:limit]
		if limit > 0 {
			nextCursor = storage.CursorAt(users[len(users)-1])
		}
	}

	return storage.UserPage{Users: users, NextCursor: nextCursor}
}

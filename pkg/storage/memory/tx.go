package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"usersvc/pkg/domain"
	"usersvc/pkg/storage"
)

// tx stages writes on top of the committed state of its Store. It holds the
// store's writer token until Commit or Rollback.
type tx struct {
	store *Store
	ctx   context.Context //nolint: containedctx

	users []domain.User
	jobs  []Job
	done  bool
}

func (t *tx) release() {
	t.done = true
	<-t.store.sem
}

func (t *tx) Commit() error {
	if t.done {
		return storage.ErrNotInTx
	}

	s := t.store
	s.mu.Lock()
	for _, u := range t.users {
		s.users[u.ID] = u
		s.byDoc[u.DocumentID] = u.ID
	}
	s.jobs = append(s.jobs, t.jobs...)
	s.mu.Unlock()

	jobs := t.jobs
	t.release()

	if len(jobs) > 0 && s.opts.OnJobs != nil {
		s.opts.OnJobs(context.WithoutCancel(t.ctx), jobs)
	}

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return storage.ErrNotInTx
	}

	t.users = nil
	t.jobs = nil
	t.release()

	return nil
}

func (t *tx) staged(documentID string) bool {
	for _, u := range t.users {
		if u.DocumentID == documentID {
			return true
		}
	}

	return false
}

func (t *tx) StoreUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if t.done {
		return nil, storage.ErrNotInTx
	}

	exists, err := t.store.UserExistsByDocumentID(ctx, user.DocumentID)
	if err != nil {
		return nil, err
	}
	if exists || t.staged(user.DocumentID) {
		return nil, storage.ErrDuplicateDocumentID
	}

	user.ID = domain.UserID(uuid.New())
	user.CreatedAt = t.store.opts.Now().UTC()
	t.users = append(t.users, user)

	return &user, nil
}

func (t *tx) UserExistsByDocumentID(ctx context.Context, documentID string) (bool, error) {
	if t.staged(documentID) {
		return true, nil
	}

	return t.store.UserExistsByDocumentID(ctx, documentID)
}

func (t *tx) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	for _, u := range t.users {
		if u.ID == id {
			return &u, nil
		}
	}

	return t.store.UserByID(ctx, id)
}

func (t *tx) Users(ctx context.Context, cursor *storage.UserCursor, limit uint) (storage.UserPage, error) {
	committed, err := t.store.Users(ctx, cursor, ^uint(0)>>1)
	if err != nil {
		return storage.UserPage{}, err
	}

	all := committed.Users
	for _, u := range t.users {
		if cursor.After(u) {
			all = append(all, u)
		}
	}
	sortNewestFirst(all)

	return page(all, limit), nil
}

func (t *tx) AddJob(_ context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	if t.done {
		return false, storage.ErrNotInTx
	}

	t.jobs = append(t.jobs, Job{Args: args, Opts: opts})

	return true, nil
}

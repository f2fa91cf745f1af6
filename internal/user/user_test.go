package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"usersvc/internal/user"
	"usersvc/pkg/domain"
	"usersvc/pkg/serrors"
	"usersvc/pkg/storage"
	mockstorage "usersvc/pkg/storage/mock"
)

func newTestService(t *testing.T) (*gomock.Controller, *mockstorage.MockStorage, user.Service) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mockstorage.NewMockStorage(ctrl)
	s := user.New(st, user.Options{DefaultPageSize: 20, MaxPageSize: 100, MaxAttempts: 3})

	return ctrl, st, s
}

// helper to wire Storage.WithTx to execute callback with a MockAllStorage.
func expectWithTx(
	t *testing.T,
	ctrl *gomock.Controller,
	m *mockstorage.MockStorage,
	fn func(tx *mockstorage.MockAllStorage)) {
	t.Helper()

	m.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cb func(storage.AllStorage) error) error {
			tx := mockstorage.NewMockAllStorage(ctrl)
			if fn != nil {
				fn(tx)
			}

			return cb(tx)
		},
	)
}

func TestService_Create(t *testing.T) {
	ctrl, st, s := newTestService(t)

	id := domain.UserID(uuid.New())
	createdAt := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		gomock.InOrder(
			tx.EXPECT().UserExistsByDocumentID(gomock.Any(), "12345678").Return(false, nil),
			tx.EXPECT().StoreUser(gomock.Any(), domain.User{Name: "John Doe", DocumentID: "12345678"}).
				DoAndReturn(func(_ context.Context, u domain.User) (*domain.User, error) {
					u.ID = id
					u.CreatedAt = createdAt

					return &u, nil
				}),
			tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).
				DoAndReturn(func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
					created, ok := args.(user.CreatedArgs)
					require.True(t, ok)
					require.Equal(t, id.String(), created.UserID)
					require.Equal(t, "12345678", created.DocumentID)
					require.Equal(t, createdAt, created.CreatedAt)
					require.Equal(t, 3, created.InsertOpts().MaxAttempts)

					return true, nil
				}),
		)
	})

	res, err := s.Create(context.Background(), domain.User{Name: "John Doe", DocumentID: "12345678"})
	require.NoError(t, err)
	require.Equal(t, id, res.ID)
	require.Equal(t, "John Doe", res.Name)
	require.Equal(t, "12345678", res.DocumentID)
}

func TestService_Create_IgnoresCallerID(t *testing.T) {
	ctrl, st, s := newTestService(t)

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UserExistsByDocumentID(gomock.Any(), "doc").Return(false, nil)
		tx.EXPECT().StoreUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, u domain.User) (*domain.User, error) {
				require.True(t, u.ID.IsZero())
				u.ID = domain.UserID(uuid.New())

				return &u, nil
			})
		tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).Return(true, nil)
	})

	_, err := s.Create(context.Background(), domain.User{ID: domain.UserID(uuid.New()), Name: "n", DocumentID: "doc"})
	require.NoError(t, err)
}

func TestService_Create_DocumentIDExists(t *testing.T) {
	ctrl, st, s := newTestService(t)

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UserExistsByDocumentID(gomock.Any(), "12345678").Return(true, nil)
	})

	res, err := s.Create(context.Background(), domain.User{Name: "John Doe", DocumentID: "12345678"})
	require.Nil(t, res)
	require.ErrorIs(t, err, serrors.ErrConflict)
	require.Equal(t, user.ErrMsgDocumentIDExists, serrors.MessageOf(err))
}

func TestService_Create_ConstraintViolation(t *testing.T) {
	ctrl, st, s := newTestService(t)

	expectWithTx(t, ctrl, st, func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().UserExistsByDocumentID(gomock.Any(), "12345678").Return(false, nil)
		tx.EXPECT().StoreUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateDocumentID)
	})

	_, err := s.Create(context.Background(), domain.User{Name: "John Doe", DocumentID: "12345678"})
	require.ErrorIs(t, err, serrors.ErrConflict)
	require.ErrorIs(t, err, storage.ErrDuplicateDocumentID)
	require.Equal(t, user.ErrMsgDocumentIDExists, serrors.MessageOf(err))
}

func TestService_Create_StorageErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(tx *mockstorage.MockAllStorage)
	}{
		{
			name: "exists check fails",
			setup: func(tx *mockstorage.MockAllStorage) {
				tx.EXPECT().UserExistsByDocumentID(gomock.Any(), gomock.Any()).Return(false, boom)
			},
		},
		{
			name: "store fails",
			setup: func(tx *mockstorage.MockAllStorage) {
				tx.EXPECT().UserExistsByDocumentID(gomock.Any(), gomock.Any()).Return(false, nil)
				tx.EXPECT().StoreUser(gomock.Any(), gomock.Any()).Return(nil, boom)
			},
		},
		{
			name: "job fails",
			setup: func(tx *mockstorage.MockAllStorage) {
				tx.EXPECT().UserExistsByDocumentID(gomock.Any(), gomock.Any()).Return(false, nil)
				tx.EXPECT().StoreUser(gomock.Any(), gomock.Any()).Return(&domain.User{DocumentID: "doc"}, nil)
				tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).Return(false, boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, st, s := newTestService(t)
			expectWithTx(t, ctrl, st, tt.setup)

			_, err := s.Create(context.Background(), domain.User{Name: "n", DocumentID: "doc"})
			require.ErrorIs(t, err, boom)
			require.Nil(t, serrors.KindOf(err))
		})
	}
}

func TestService_Create_EmptyDocumentID(t *testing.T) {
	_, _, s := newTestService(t)

	_, err := s.Create(context.Background(), domain.User{Name: "n"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestService_List(t *testing.T) {
	next := &storage.UserCursor{
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 123000000, time.UTC),
		ID:        domain.UserID(uuid.MustParse("6c3a3f0e-5a1b-4a55-bb7e-0c4a5d3b2a10")),
	}
	users := []domain.User{{Name: "a", DocumentID: "1"}, {Name: "b", DocumentID: "2"}}

	t.Run("defaults and next cursor", func(t *testing.T) {
		_, st, s := newTestService(t)
		st.EXPECT().Users(gomock.Any(), (*storage.UserCursor)(nil), uint(20)).
			Return(storage.UserPage{Users: users, NextCursor: next}, nil)

		res, cursor, err := s.List(context.Background(), "", 0)
		require.NoError(t, err)
		require.Equal(t, users, res)
		require.Equal(t, user.EncodeCursor(next), cursor)
	})

	t.Run("clamps limit and parses cursor", func(t *testing.T) {
		_, st, s := newTestService(t)
		st.EXPECT().Users(gomock.Any(), next, uint(100)).Return(storage.UserPage{}, nil)

		res, cursor, err := s.List(context.Background(), user.EncodeCursor(next), 1000)
		require.NoError(t, err)
		require.Empty(t, res)
		require.Empty(t, cursor)
	})

	t.Run("invalid cursor", func(t *testing.T) {
		_, _, s := newTestService(t)

		for _, c := range []string{"yesterday", "2025-05-01T10:00:00Z", user.EncodeCursor(next) + "!"} {
			_, _, err := s.List(context.Background(), c, 10)
			require.ErrorIs(t, err, serrors.ErrBadRequest, c)
		}
	})

	t.Run("storage error", func(t *testing.T) {
		_, st, s := newTestService(t)
		st.EXPECT().Users(gomock.Any(), gomock.Any(), gomock.Any()).Return(storage.UserPage{}, errors.New("boom"))

		_, _, err := s.List(context.Background(), "", 10)
		require.Error(t, err)
	})
}

func TestCursor_RoundTrip(t *testing.T) {
	require.Empty(t, user.EncodeCursor(nil))

	c, err := user.DecodeCursor("")
	require.NoError(t, err)
	require.Nil(t, c)

	in := &storage.UserCursor{
		CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 123456000, time.FixedZone("X", 3600)),
		ID:        domain.UserID(uuid.New()),
	}
	out, err := user.DecodeCursor(user.EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestService_Get(t *testing.T) {
	id := domain.UserID(uuid.New())

	t.Run("found", func(t *testing.T) {
		_, st, s := newTestService(t)
		st.EXPECT().UserByID(gomock.Any(), id).Return(&domain.User{ID: id}, nil)

		res, err := s.Get(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, id, res.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, st, s := newTestService(t)
		st.EXPECT().UserByID(gomock.Any(), id).Return(nil, nil)

		_, err := s.Get(context.Background(), id)
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}

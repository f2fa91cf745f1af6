package v1handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"usersvc/internal/api/handler/v1handler"
	mockuser "usersvc/internal/user/mock"
	"usersvc/pkg/domain"
	"usersvc/pkg/serrors"
)

func newTestRouter(t *testing.T) (*mockuser.MockService, http.Handler) {
	t.Helper()

	ctrl := gomock.NewController(t)
	users := mockuser.NewMockService(ctrl)

	r := chi.NewRouter()
	v1handler.New(v1handler.Deps{Users: users}).Routes(r)

	return users, r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestCreateUser_Created(t *testing.T) {
	users, h := newTestRouter(t)

	id := domain.UserID(uuid.MustParse("1f0e4c1a-7d59-4f4e-9e3c-3c1d2a6b8e11"))
	users.EXPECT().Create(gomock.Any(), domain.User{Name: "John Doe", DocumentID: "12345678"}).
		DoAndReturn(func(_ context.Context, u domain.User) (*domain.User, error) {
			u.ID = id
			u.CreatedAt = time.Now()

			return &u, nil
		})

	rec := do(t, h, http.MethodPost, "/users", `{"name":"John Doe","documentId":"12345678"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t,
		`{"id":"1f0e4c1a-7d59-4f4e-9e3c-3c1d2a6b8e11","name":"John Doe","documentId":"12345678"}`,
		rec.Body.String())
}

func TestCreateUser_Conflict(t *testing.T) {
	users, h := newTestRouter(t)

	users.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("could not create user: %w",
			serrors.With(serrors.ErrConflict, "Document ID already exists."))).
		Times(1)

	rec := do(t, h, http.MethodPost, "/users", `{"name":"John Doe","documentId":"12345678"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"error":"Document ID already exists."}`, rec.Body.String())
}

func TestCreateUser_BadRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty document id", body: `{"name":"John Doe","documentId":""}`, message: "documentId is required"},
		{name: "missing document id", body: `{"name":"John Doe"}`, message: "documentId is required"},
		{name: "null document id", body: `{"name":"John Doe","documentId":null}`, message: "documentId is required"},
		{name: "missing name", body: `{"documentId":"1"}`, message: "name is required"},
		{name: "malformed json", body: `{"name":`, message: "invalid request body"},
		{name: "empty body", body: ``, message: "invalid request body"},
		{name: "wrong type", body: `{"name":"n","documentId":123}`, message: "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// no Create expectation: the use case must not be invoked
			_, h := newTestRouter(t)

			rec := do(t, h, http.MethodPost, "/users", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.JSONEq(t, fmt.Sprintf(`{"error":%q}`, tt.message), rec.Body.String())
		})
	}
}

func TestCreateUser_UnknownFieldsIgnored(t *testing.T) {
	users, h := newTestRouter(t)

	users.EXPECT().Create(gomock.Any(), domain.User{Name: "n", DocumentID: "1"}).
		Return(&domain.User{ID: domain.UserID(uuid.New()), Name: "n", DocumentID: "1"}, nil)

	rec := do(t, h, http.MethodPost, "/users", `{"id":"x","name":"n","documentId":"1","extra":{"a":[1,2]}}`)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateUser_InternalError(t *testing.T) {
	users, h := newTestRouter(t)

	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	rec := do(t, h, http.MethodPost, "/users", `{"name":"John Doe","documentId":"12345678"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestListUsers(t *testing.T) {
	t.Run("page with cursor", func(t *testing.T) {
		users, h := newTestRouter(t)

		id := domain.UserID(uuid.MustParse("6c3a3f0e-5a1b-4a55-bb7e-0c4a5d3b2a10"))
		users.EXPECT().List(gomock.Any(), "MjAyNS0wNS0wMQ", uint(10)).
			Return([]domain.User{{ID: id, Name: "a", DocumentID: "1"}}, "MjAyNS0wNC0wMQ", nil)

		rec := do(t, h, http.MethodGet, "/users?cursor=MjAyNS0wNS0wMQ&limit=10", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{
			"items":[{"id":"6c3a3f0e-5a1b-4a55-bb7e-0c4a5d3b2a10","name":"a","documentId":"1"}],
			"nextCursor":"MjAyNS0wNC0wMQ"
		}`, rec.Body.String())
	})

	t.Run("last page", func(t *testing.T) {
		users, h := newTestRouter(t)

		users.EXPECT().List(gomock.Any(), "", uint(0)).Return(nil, "", nil)

		rec := do(t, h, http.MethodGet, "/users", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"items":[],"nextCursor":null}`, rec.Body.String())
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, h := newTestRouter(t)

		rec := do(t, h, http.MethodGet, "/users?limit=-1", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetUser(t *testing.T) {
	id := domain.UserID(uuid.MustParse("6c3a3f0e-5a1b-4a55-bb7e-0c4a5d3b2a10"))

	t.Run("found", func(t *testing.T) {
		users, h := newTestRouter(t)
		users.EXPECT().Get(gomock.Any(), id).Return(&domain.User{ID: id, Name: "a", DocumentID: "1"}, nil)

		rec := do(t, h, http.MethodGet, "/users/"+id.String(), "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"id":"6c3a3f0e-5a1b-4a55-bb7e-0c4a5d3b2a10","name":"a","documentId":"1"}`,
			rec.Body.String())
	})

	t.Run("not found", func(t *testing.T) {
		users, h := newTestRouter(t)
		users.EXPECT().Get(gomock.Any(), id).Return(nil, serrors.With(serrors.ErrNotFound, "user not found"))

		rec := do(t, h, http.MethodGet, "/users/"+id.String(), "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
	})

	t.Run("invalid id", func(t *testing.T) {
		_, h := newTestRouter(t)

		rec := do(t, h, http.MethodGet, "/users/not-a-uuid", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.JSONEq(t, `{"error":"invalid user id"}`, rec.Body.String())
	})
}

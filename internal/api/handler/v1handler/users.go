package v1handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"

	"usersvc/pkg/domain"
	"usersvc/pkg/serrors"
)

// maxBodyBytes bounds the size of request bodies.
const maxBodyBytes = 1 << 20

type decoder interface {
	Decode(d *jx.Decoder) error
}

type encoder interface {
	Encode(e *jx.Encoder)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v decoder) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
	}

	if err := v.Decode(jx.DecodeBytes(body)); err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v encoder) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	v.Encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// CreateUser handles POST /users.
func (h Handler) CreateUser(w http.ResponseWriter, r *http.Request) error {
	var req UserRequest
	if err := decodeBody(w, r, &req); err != nil {
		return err
	}
	if err := Validate(req); err != nil {
		return err
	}

	created, err := h.deps.Users.Create(r.Context(), req.ToDomain())
	if err != nil {
		return err //nolint: wrapcheck
	}

	writeJSON(w, http.StatusCreated, NewUserResponse(created))

	return nil
}

// ListUsers handles GET /users?cursor=&limit=.
func (h Handler) ListUsers(w http.ResponseWriter, r *http.Request) error {
	var limit uint
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			return serrors.With(serrors.ErrBadRequest, "limit must be a positive integer")
		}
		limit = uint(v)
	}

	users, next, err := h.deps.Users.List(r.Context(), r.URL.Query().Get("cursor"), limit)
	if err != nil {
		return err //nolint: wrapcheck
	}

	writeJSON(w, http.StatusOK, NewUserList(users, next))

	return nil
}

// GetUser handles GET /users/{id}.
func (h Handler) GetUser(w http.ResponseWriter, r *http.Request) error {
	id, err := domain.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid user id")
	}

	u, err := h.deps.Users.Get(r.Context(), id)
	if err != nil {
		return err //nolint: wrapcheck
	}

	writeJSON(w, http.StatusOK, NewUserResponse(u))

	return nil
}

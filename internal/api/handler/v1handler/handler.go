package v1handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"usersvc/internal/user"
	"usersvc/pkg/logger"
	"usersvc/pkg/serrors"
)

// Deps holds the use cases served by the v1 handlers.
type Deps struct {
	Users user.Service
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// NewError classifies err by its semantic kind and returns the HTTP status
// code and body to answer with. Internal and unknown errors never expose
// their message.
func (h Handler) NewError(ctx context.Context, err error) (int, ErrorResponse) {
	status, fallback := http.StatusInternalServerError, "internal error"
	switch serrors.KindOf(err) {
	case serrors.ErrBadRequest:
		status, fallback = http.StatusBadRequest, "bad request"
	case serrors.ErrUnauthorized:
		status, fallback = http.StatusUnauthorized, "unauthorized"
	case serrors.ErrForbidden:
		status, fallback = http.StatusForbidden, "forbidden"
	case serrors.ErrNotFound:
		status, fallback = http.StatusNotFound, "resource not found"
	case serrors.ErrConflict:
		status, fallback = http.StatusConflict, "conflict"
	case serrors.ErrRateLimited:
		status, fallback = http.StatusTooManyRequests, "too many requests"
	case serrors.ErrUnavailable:
		status, fallback = http.StatusServiceUnavailable, "service unavailable"
	case serrors.ErrTimeout:
		status, fallback = http.StatusGatewayTimeout, "request timed out"
	}

	if status >= http.StatusInternalServerError {
		logger.Error(ctx, "could not handle request", zap.Error(err), zap.Int("status_code", status))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err), zap.Int("status_code", status))
	}

	msg := fallback
	if status != http.StatusInternalServerError {
		if m := serrors.MessageOf(err); m != "" {
			msg = m
		}
	}

	return status, ErrorResponse{Error: msg}
}

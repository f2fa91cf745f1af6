package controller

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"usersvc/pkg/logger"
	"usersvc/pkg/ratelimit"
	"usersvc/pkg/serrors"
)

// ErrorWriter answers a request with the HTTP representation of err.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// RemoteHost returns the host part of r.RemoteAddr. Forwarding headers are
// ignored; put middleware.RealIP in front to honour them behind a trusted proxy.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

// WithRateLimit returns a middleware that rejects requests once the client,
// identified by RemoteHost, exceeds its limit. Rejections carry a
// Retry-After header and are written by writeErr as ErrRateLimited errors.
// When the limiter itself fails the request is let through.
func WithRateLimit(l ratelimit.Limiter, writeErr ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			allowed, retryAfter, err := l.Allow(ctx, RemoteHost(r))
			if err != nil {
				logger.Warn(ctx, "could not check rate limit", zap.Error(err))
				next.ServeHTTP(w, r)

				return
			}
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
				writeErr(w, r, serrors.KindOnly(serrors.ErrRateLimited))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) int {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		return 1
	}

	return s
}

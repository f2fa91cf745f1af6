package controller

import (
	"net/http"

	"github.com/go-chi/cors"
)

// WithCORS returns a middleware that answers CORS preflight requests and sets
// CORS headers for the given origins. With no origins every origin is allowed.
func WithCORS(allowedOrigins ...string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Accept-Encoding", "Authorization", "Cache-Control",
			"Content-Type", "Content-Length", "Origin", "X-Request-Id",
		},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	})
}

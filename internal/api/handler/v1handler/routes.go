package v1handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandlerFunc is an HTTP handler whose failures are answered by Handler.NewError.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// WriteError answers the request with the status and body NewError maps err to.
func (h Handler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.NewError(r.Context(), err)
	writeJSON(w, status, body)
}

// Wrap adapts fn to an http.HandlerFunc that writes the mapped error response
// when fn fails.
func (h Handler) Wrap(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.WriteError(w, r, err)
		}
	}
}

// Routes registers the user endpoints on r.
func (h Handler) Routes(r chi.Router) {
	r.Post("/users", h.Wrap(h.CreateUser))
	r.Get("/users", h.Wrap(h.ListUsers))
	r.Get("/users/{id}", h.Wrap(h.GetUser))
}

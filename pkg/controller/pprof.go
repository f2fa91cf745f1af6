package controller

import (
	"net/http"
	"net/http/pprof"

	"github.com/go-chi/chi/v5"
)

// PprofMux returns a router with net/http/pprof handlers registered at the
// root. It can be mounted under a debug path in the main HTTP server.
func PprofMux() http.Handler {
	r := chi.NewRouter()

	r.Get("/", pprof.Index)
	r.Get("/cmdline", pprof.Cmdline)
	r.Get("/profile", pprof.Profile)
	r.HandleFunc("/symbol", pprof.Symbol)
	r.Get("/trace", pprof.Trace)
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		r.Handle("/"+name, pprof.Handler(name))
	}

	return r
}

// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the users service.
package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"usersvc/internal/api/handler/v1handler"
	"usersvc/internal/config"
	"usersvc/pkg/controller"
	"usersvc/pkg/metrics"
	"usersvc/pkg/ratelimit"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// AllowedOrigins lists the origins accepted by CORS. Empty allows all.
	AllowedOrigins []string
	// TrustProxyHeaders rewrites RemoteAddr from forwarding headers before
	// logging and rate limiting.
	TrustProxyHeaders bool

	// Registerer and Gatherer back the metrics endpoint. They default to the
	// prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		TrustProxyHeaders: cfg.HTTP.TrustProxyHeaders,
	}
}

type Deps struct {
	v1handler.Deps

	// Limiter throttles API requests per client. Nil disables rate limiting.
	Limiter ratelimit.Limiter
}

const timeoutBody = `{"error":"request timed out"}`

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - OpenTelemetry metrics exporter (Prometheus), installed as the global meter provider
// - Embedded OpenAPI v1 spec and Swagger UI
// - user API routes, optionally rate limited
// - pprof endpoints for profiling
// It also wraps the router with CORS, logging and recovery middlewares and applies a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	// otel
	exp, err := otelprom.New(otelprom.WithRegisterer(opts.Registerer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)))

	httpMetrics, err := metrics.NewHTTP(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("could not create http metrics: %w", err)
	}

	h := v1handler.New(deps.Deps)

	r := chi.NewRouter()
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(controller.WithLogger)
	r.Use(middleware.Recoverer)
	r.Use(controller.WithCORS(opts.AllowedOrigins...))
	r.Use(controller.WithMetrics(httpMetrics))

	// prometheus metrics server
	r.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// swagger playground
	r.Handle("/docs/*", v5emb.New(
		"Users Service",
		"/specs/v1.yaml",
		"/docs/",
	))

	// api
	r.Group(func(r chi.Router) {
		if deps.Limiter != nil {
			r.Use(controller.WithRateLimit(deps.Limiter, h.WriteError))
		}
		h.Routes(r)
	})

	// pprof
	r.Mount("/debug/pprof", controller.PprofMux())

	handler := http.Handler(r)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, timeoutBody)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}

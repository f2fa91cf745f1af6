// Package controller contains HTTP middlewares and helper handlers used by the API server.
//
// Provided middlewares:
//   - WithCORS: Answers preflight requests and sets CORS headers for the configured origins.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithMetrics: Records Prometheus request metrics labelled by chi route pattern.
//   - WithRateLimit: Rejects clients over their rate limit with 429 and Retry-After.
//
// Provided helpers:
//   - PprofMux: Returns a router exposing net/http/pprof handlers.
package controller

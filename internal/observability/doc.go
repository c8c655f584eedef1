// Package observability provides structured logging, Prometheus metrics, and
// request-scoped context propagation for the professor search service.
package observability

// Package metrics provides optional Prometheus metrics collection.
//
// Metrics are opt-in: if InitRegistry is never called, constructors in
// the prometheus subpackage hand back no-op implementations with zero
// overhead.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry. Safe to call
// multiple times; subsequent calls are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}

// HTTPMetrics records per-request and per-connection events for the
// server. Implementations must be safe for concurrent use.
type HTTPMetrics interface {
	// RecordRequest records one completed request with its response
	// status code and handling duration.
	RecordRequest(method string, status int, duration time.Duration)

	// RecordBytesWritten records response bytes written to peers.
	RecordBytesWritten(bytes int64)

	// SetActiveConnections records the current connection count.
	SetActiveConnections(count int32)

	RecordConnectionAccepted()
	RecordConnectionClosed()
}

// noopHTTPMetrics is used when metrics collection is disabled.
type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(method string, status int, duration time.Duration) {}
func (noopHTTPMetrics) RecordBytesWritten(bytes int64)                                  {}
func (noopHTTPMetrics) SetActiveConnections(count int32)                                {}
func (noopHTTPMetrics) RecordConnectionAccepted()                                       {}
func (noopHTTPMetrics) RecordConnectionClosed()                                         {}

// NewNoopHTTPMetrics returns an HTTPMetrics that records nothing.
func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

// Package metrics defines the restore session engine's observability
// surface: a small EngineMetrics interface consumers pass down through
// pkg/session.Context, plus a package-level optional Prometheus registry
// that concrete implementations (pkg/metrics/prometheus) register against.
// Metrics are opt-in — passing a nil EngineMetrics (the zero value of
// *session.Context.Metrics) disables collection with zero overhead, the
// same contract the teacher's pkg/metrics.NFSMetrics documents.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	enabled  atomic.Bool
	registry *prometheus.Registry
)

// InitRegistry creates and installs the package-level Prometheus registry,
// enabling metrics collection. Call once at process start before
// constructing any prometheus.EngineMetrics; returns the registry so the
// caller can mount it on an HTTP handler.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled.Store(true)
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool { return enabled.Load() }

// GetRegistry returns the package-level registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry { return registry }

// EngineMetrics observes the restore session engine: data-request
// dispatch, TSS round trips, baseband signing, and progress-bucket
// notifications (spec.md §4.2, §4.5, §4.6, §4.10). Every method must be
// safe to call on a nil receiver so a disabled implementation imposes zero
// overhead, matching the teacher's metrics interfaces.
type EngineMetrics interface {
	// RecordDataRequest observes one dispatched DataRequestMsg.
	//
	// Parameters:
	//   - dataType: the DataRequestMsg's DataType (e.g. "KernelCache")
	//   - duration: time spent in the handler
	//   - errorCode: a short error classification, empty on success
	RecordDataRequest(dataType string, duration time.Duration, errorCode string)

	// RecordTSSRequest observes one ticket-server round trip.
	//
	// Parameters:
	//   - class: the ticket class requested (e.g. "BB", "SE", "Rose")
	//   - duration: time spent waiting on the ticket server
	//   - success: whether the request returned without error
	RecordTSSRequest(class string, duration time.Duration, success bool)

	// RecordBasebandSign observes one baseband archive re-signing pass.
	//
	// Parameters:
	//   - reusedTicket: whether the cached bbtss ticket was reused instead
	//     of a fresh TSS round trip (spec.md §8 property 10)
	//   - success: whether signing completed without error
	RecordBasebandSign(reusedTicket bool, success bool)

	// RecordProgressBucket observes one remapped ProgressMsg notification.
	//
	// Parameters:
	//   - bucket: the host progress bucket (e.g. "FlashFirmware")
	//   - progress: the 0..100 progress value
	RecordProgressBucket(bucket string, progress int)

	// SetSessionActive marks whether a restore session is currently
	// running, for an at-most-one-session gauge.
	SetSessionActive(active bool)
}

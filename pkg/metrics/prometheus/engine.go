// Package prometheus implements pkg/metrics.EngineMetrics against
// client_golang, following the teacher's pkg/metrics/prometheus package:
// one promauto-registered metric family per observation, a constructor
// that returns nil when metrics.IsEnabled() is false, and nil-receiver
// methods so the nil return value is safe to call through.
package prometheus

import (
	"time"

	"github.com/restoreos/restored/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// engineMetrics is the Prometheus implementation of metrics.EngineMetrics.
type engineMetrics struct {
	dataRequests        *prometheus.CounterVec
	dataRequestDuration *prometheus.HistogramVec
	tssRequests         *prometheus.CounterVec
	tssRequestDuration  *prometheus.HistogramVec
	basebandSigns       *prometheus.CounterVec
	progressBucket      *prometheus.GaugeVec
	sessionActive       prometheus.Gauge
}

// NewEngineMetrics creates a new Prometheus-backed EngineMetrics instance.
//
// Returns nil if metrics are not enabled (metrics.InitRegistry not called),
// so callers can assign the result to session.Context.Metrics unconditionally.
func NewEngineMetrics() metrics.EngineMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &engineMetrics{
		dataRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restored_data_requests_total",
				Help: "Total number of dispatched DataRequestMsg handlers by data type and outcome",
			},
			[]string{"data_type", "error_code"},
		),
		dataRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "restored_data_request_duration_seconds",
				Help: "Duration of DataRequestMsg handler execution",
				Buckets: []float64{
					0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 180,
				},
			},
			[]string{"data_type"},
		),
		tssRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restored_tss_requests_total",
				Help: "Total number of ticket-server round trips by ticket class and outcome",
			},
			[]string{"class", "outcome"},
		),
		tssRequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "restored_tss_request_duration_seconds",
				Help: "Duration of ticket-server round trips",
				Buckets: []float64{
					0.05, 0.1, 0.5, 1, 2, 5, 10, 30,
				},
			},
			[]string{"class"},
		),
		basebandSigns: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restored_baseband_signs_total",
				Help: "Total number of baseband archive re-signing passes by ticket source and outcome",
			},
			[]string{"ticket_source", "outcome"}, // ticket_source: "fresh", "cached"
		),
		progressBucket: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "restored_progress_percent",
				Help: "Most recent progress percentage per host progress bucket",
			},
			[]string{"bucket"},
		),
		sessionActive: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "restored_session_active",
				Help: "1 while a restore session is running, 0 otherwise",
			},
		),
	}
}

func (m *engineMetrics) RecordDataRequest(dataType string, duration time.Duration, errorCode string) {
	if m == nil {
		return
	}
	m.dataRequests.WithLabelValues(dataType, errorCode).Inc()
	m.dataRequestDuration.WithLabelValues(dataType).Observe(duration.Seconds())
}

func (m *engineMetrics) RecordTSSRequest(class string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.tssRequests.WithLabelValues(class, outcome).Inc()
	m.tssRequestDuration.WithLabelValues(class).Observe(duration.Seconds())
}

func (m *engineMetrics) RecordBasebandSign(reusedTicket bool, success bool) {
	if m == nil {
		return
	}
	source := "fresh"
	if reusedTicket {
		source = "cached"
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.basebandSigns.WithLabelValues(source, outcome).Inc()
}

func (m *engineMetrics) RecordProgressBucket(bucket string, progress int) {
	if m == nil {
		return
	}
	m.progressBucket.WithLabelValues(bucket).Set(float64(progress))
}

func (m *engineMetrics) SetSessionActive(active bool) {
	if m == nil {
		return
	}
	if active {
		m.sessionActive.Set(1)
	} else {
		m.sessionActive.Set(0)
	}
}

package tokenward

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one engine counter or histogram.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected logins.
	MetricLoginFailure
	// MetricRefreshSuccess counts successful refresh rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts of any kind.
	MetricRefreshFailure
	// MetricReplayDetected counts rotations attempted on already-spent tokens.
	MetricReplayDetected
	// MetricUserMismatch counts rotations claiming the wrong owner.
	MetricUserMismatch
	// MetricSessionCreated counts refresh-token records created.
	MetricSessionCreated
	// MetricSessionInvalidated counts single-session invalidations.
	MetricSessionInvalidated
	// MetricLogoutAll counts bulk invalidations.
	MetricLogoutAll
	// MetricStoreUnavailable counts store timeouts and transport failures.
	MetricStoreUnavailable
	// MetricAccessIssued counts minted access tokens.
	MetricAccessIssued
	// MetricAccessRejected counts access tokens rejected by Authenticate.
	MetricAccessRejected
	// MetricAuthenticateLatency is the Authenticate latency histogram.
	MetricAuthenticateLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a lock-free set of engine counters. Counters are padded to
// avoid false sharing on the Authenticate hot path.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] set per the config.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counting is on.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to a counter. No-op when disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records an Authenticate latency sample. No-op unless latency
// histograms are enabled.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricAuthenticateLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histograms.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthenticateLatency].buckets[i])
		}
		s.Histograms[MetricAuthenticateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}

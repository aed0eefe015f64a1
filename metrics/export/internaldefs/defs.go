package internaldefs

import (
	tokenward "github.com/tokenward/tokenward"
)

// CounterDef binds one engine counter to its exported name and help text.
type CounterDef struct {
	ID   tokenward.MetricID
	Name string
	Help string
}

// HistogramDef binds one engine histogram to its exported name and help text.
type HistogramDef struct {
	ID   tokenward.MetricID
	Name string
	Help string
}

// CounterDefs is the canonical export order for engine counters. Both the
// Prometheus and OTel exporters iterate this list so the two surfaces always
// agree on names.
var CounterDefs = []CounterDef{
	{ID: tokenward.MetricLoginSuccess, Name: "tokenward_login_success_total", Help: "Successful login attempts."},
	{ID: tokenward.MetricLoginFailure, Name: "tokenward_login_failure_total", Help: "Rejected login attempts."},
	{ID: tokenward.MetricRefreshSuccess, Name: "tokenward_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: tokenward.MetricRefreshFailure, Name: "tokenward_refresh_failure_total", Help: "Rejected refresh attempts."},
	{ID: tokenward.MetricReplayDetected, Name: "tokenward_replay_detected_total", Help: "Rotations attempted on already-spent refresh tokens."},
	{ID: tokenward.MetricUserMismatch, Name: "tokenward_user_mismatch_total", Help: "Rotations claiming the wrong token owner."},
	{ID: tokenward.MetricSessionCreated, Name: "tokenward_session_created_total", Help: "Refresh-token records created."},
	{ID: tokenward.MetricSessionInvalidated, Name: "tokenward_session_invalidated_total", Help: "Single-session invalidations."},
	{ID: tokenward.MetricLogoutAll, Name: "tokenward_logout_all_total", Help: "Bulk session invalidations."},
	{ID: tokenward.MetricStoreUnavailable, Name: "tokenward_store_unavailable_total", Help: "Session store timeouts and transport failures."},
	{ID: tokenward.MetricAccessIssued, Name: "tokenward_access_issued_total", Help: "Minted access tokens."},
	{ID: tokenward.MetricAccessRejected, Name: "tokenward_access_rejected_total", Help: "Access tokens rejected by Authenticate."},
}

// HistogramDefs lists the exported histograms.
var HistogramDefs = []HistogramDef{
	{ID: tokenward.MetricAuthenticateLatency, Name: "tokenward_authenticate_latency_seconds", Help: "Authenticate latency histogram."},
}

// HistogramBounds are the upper bounds of the engine's fixed latency buckets,
// in seconds, as Prometheus le label values.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix are the same bounds as OTel-safe name suffixes.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets fits a snapshot bucket slice into the fixed bucket array,
// tolerating short or missing slices.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form both
// export formats expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

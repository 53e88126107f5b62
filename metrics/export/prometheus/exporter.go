// Package prometheus exposes authcore engine metrics to a Prometheus
// scrape endpoint.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authcore "github.com/veriport/authcore"
)

type metricsSource interface {
	MetricsSnapshot() authcore.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   authcore.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{authcore.MetricLoginSuccess, "authcore_login_success_total", "Successful logins."},
	{authcore.MetricLoginFailure, "authcore_login_failure_total", "Rejected logins."},
	{authcore.MetricLoginLocked, "authcore_login_locked_total", "Logins rejected by an active lockout."},
	{authcore.MetricLockoutTriggered, "authcore_lockout_triggered_total", "Lockout windows opened."},
	{authcore.MetricSessionCreated, "authcore_session_created_total", "Sessions issued."},
	{authcore.MetricSessionValidated, "authcore_session_validated_total", "Successful session validations."},
	{authcore.MetricSessionExpired, "authcore_session_expired_total", "Sessions rejected by expiry or idle timeout."},
	{authcore.MetricSessionDestroyed, "authcore_session_destroyed_total", "Explicit session destructions."},
	{authcore.MetricClientMismatch, "authcore_client_mismatch_total", "Strict client binding rejections."},
	{authcore.MetricCSRFMismatch, "authcore_csrf_mismatch_total", "CSRF token validation failures."},
	{authcore.MetricRateLimitHit, "authcore_rate_limit_hit_total", "Sliding window rate limit rejections."},
	{authcore.MetricPasswordHashed, "authcore_password_hashed_total", "Password hash operations."},
	{authcore.MetricPasswordVerifyFailed, "authcore_password_verify_failed_total", "Failed password verifications."},
	{authcore.MetricFieldEncrypted, "authcore_field_encrypted_total", "PII field encryptions."},
	{authcore.MetricDecryptFailure, "authcore_decrypt_failure_total", "Fail-closed PII decryptions."},
}

var auditDroppedDesc = prometheus.NewDesc(
	"authcore_audit_dropped_total",
	"Audit events dropped due to dispatcher backpressure.",
	nil, nil,
)

var validateLatencyDesc = prometheus.NewDesc(
	"authcore_validate_latency_ms",
	"ValidateSession latency in milliseconds.",
	nil, nil,
)

// Exporter implements prometheus.Collector over engine snapshots. Register
// it on a registry or use [Exporter.Handler] directly.
type Exporter struct {
	source       metricsSource
	counterDescs map[authcore.MetricID]*prometheus.Desc
}

// NewExporter creates an exporter reading from the given engine.
func NewExporter(engine *authcore.Engine) *Exporter {
	return NewExporterFromSource(engine)
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	descs := make(map[authcore.MetricID]*prometheus.Desc, len(counterDefs))
	for _, def := range counterDefs {
		descs[def.id] = prometheus.NewDesc(def.name, def.help, nil, nil)
	}
	return &Exporter{
		source:       source,
		counterDescs: descs,
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, def := range counterDefs {
		ch <- e.counterDescs[def.id]
	}
	ch <- validateLatencyDesc
	ch <- auditDroppedDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e == nil || e.source == nil {
		return
	}
	snapshot := e.source.MetricsSnapshot()

	for _, def := range counterDefs {
		ch <- prometheus.MustNewConstMetric(
			e.counterDescs[def.id],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.id]),
		)
	}

	ch <- e.latencyHistogram(snapshot)

	ch <- prometheus.MustNewConstMetric(
		auditDroppedDesc,
		prometheus.CounterValue,
		float64(e.source.AuditDropped()),
	)
}

func (e *Exporter) latencyHistogram(snapshot authcore.MetricsSnapshot) prometheus.Metric {
	bounds := authcore.MetricBucketBoundsMs()
	raw := snapshot.Histograms[authcore.MetricValidateLatency]

	buckets := make(map[float64]uint64, len(bounds))
	var count uint64
	var sum float64
	for i, bound := range bounds {
		var observed uint64
		if i < len(raw) {
			observed = raw[i]
		}
		count += observed
		// The snapshot carries bucket counts only; approximate the sum
		// with each bucket's upper bound.
		sum += float64(observed) * bound
		buckets[bound] = count
	}
	if len(raw) > len(bounds) {
		count += raw[len(bounds)]
	}

	return prometheus.MustNewConstHistogram(validateLatencyDesc, count, sum, buckets)
}

// Handler returns an http.Handler serving only this exporter's metrics.
func (e *Exporter) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(e)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

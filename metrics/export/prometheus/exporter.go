// Package prometheus renders portalauth counters in Prometheus text
// exposition format.
//
// [NewExporter] accepts a [portalauth.Engine] and exposes an [http.Handler]
// suitable for mounting at /metrics. Counter names are prefixed
// portalauth_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/opencivic/portalauth"
)

type metricsSource interface {
	MetricsSnapshot() portalauth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   portalauth.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{portalauth.MetricLoginSuccess, "portalauth_login_success_total", "Successful logins."},
	{portalauth.MetricLoginFailure, "portalauth_login_failure_total", "Rejected logins (unknown account or wrong secret)."},
	{portalauth.MetricLoginLocked, "portalauth_login_locked_total", "Logins rejected while the account was locked."},
	{portalauth.MetricPasswordSetSuccess, "portalauth_password_set_total", "Completed password-set operations."},
	{portalauth.MetricPasswordSetRejected, "portalauth_password_set_rejected_total", "Password-set attempts rejected by the strength policy."},
	{portalauth.MetricAdminResetSuccess, "portalauth_admin_reset_total", "Administrative force-resets to the default credential."},
	{portalauth.MetricTokenRejected, "portalauth_token_rejected_total", "Session tokens rejected during validation."},
	{portalauth.MetricStoreConflictRetry, "portalauth_store_conflict_retry_total", "Account updates retried after a version conflict."},
	{portalauth.MetricStoreRetryExhausted, "portalauth_store_retry_exhausted_total", "Operations failed after exhausting the update retry budget."},
}

// Exporter renders engine metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter reading from the given engine.
func NewExporter(engine *portalauth.Engine) *Exporter {
	return &Exporter{source: engine}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the metrics.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render writes the current counters in Prometheus text exposition format.
// Output order is fixed so scrapes diff cleanly.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()
	if len(snapshot.Counters) == 0 && dropped == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, snapshot.Counters[def.id])
	}
	writeCounter(&b, "portalauth_audit_dropped_total", "Audit events dropped under dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}

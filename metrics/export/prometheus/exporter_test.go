package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opencivic/portalauth"
)

type fakeSource struct {
	snapshot portalauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() portalauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                        { return f.dropped }

func TestRenderEmptyWhenNoData(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: portalauth.MetricsSnapshot{Counters: map[portalauth.MetricID]uint64{}},
	})
	if out := exp.Render(); out != "" {
		t.Errorf("Render() = %q, want empty", out)
	}
}

func TestRenderIncludesAllCounters(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: portalauth.MetricsSnapshot{Counters: map[portalauth.MetricID]uint64{
			portalauth.MetricLoginSuccess: 7,
			portalauth.MetricLoginLocked:  2,
		}},
		dropped: 3,
	})

	out := exp.Render()
	for _, want := range []string{
		"# TYPE portalauth_login_success_total counter",
		"portalauth_login_success_total 7",
		"portalauth_login_locked_total 2",
		"portalauth_login_failure_total 0",
		"portalauth_store_retry_exhausted_total 0",
		"portalauth_audit_dropped_total 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: portalauth.MetricsSnapshot{Counters: map[portalauth.MetricID]uint64{
			portalauth.MetricLoginSuccess: 1,
		}},
	})
	if exp.Render() != exp.Render() {
		t.Error("Render() output not stable")
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		snapshot: portalauth.MetricsSnapshot{Counters: map[portalauth.MetricID]uint64{
			portalauth.MetricLoginSuccess: 1,
		}},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain; version=0.0.4") {
		t.Errorf("Content-Type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "portalauth_login_success_total 1") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

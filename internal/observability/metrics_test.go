package observability

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/me", "200", time.Millisecond)
	m.IncProgressMutation("points", "ok")
	m.IncLeaderboardCache("hit")
	m.ApiInflightInc()
	m.SSEClientConnected()
	if err := m.WritePrometheus(&bytes.Buffer{}); err != nil {
		t.Fatalf("WritePrometheus on nil: %v", err)
	}
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("nil metrics should answer 503, got %d", rec.Code)
	}
	if Init(false, 0) != nil {
		t.Fatalf("Init(false) should return nil")
	}
}

func TestWritePrometheus(t *testing.T) {
	m := New(time.Second)
	m.ObserveAPI("POST", "/api/progress/points", "200", 30*time.Millisecond)
	m.IncProgressMutation("points", "ok")
	m.IncProgressMutation("points", "ok")
	m.IncLeaderboardCache("miss")
	m.SSEClientConnected()

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`prep_api_requests_total{method="POST",route="/api/progress/points",status="200"} 1.000000`,
		`prep_api_request_duration_seconds_bucket{method="POST",route="/api/progress/points",status="200",le="0.05"} 1`,
		`prep_api_request_duration_seconds_bucket{method="POST",route="/api/progress/points",status="200",le="0.025"} 0`,
		`prep_progress_mutations_total{kind="points",outcome="ok"} 2.000000`,
		`prep_leaderboard_cache_total{result="miss"} 1.000000`,
		`prep_sse_clients 1.000000`,
		`# TYPE prep_api_request_duration_seconds histogram`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestLabelHelpers(t *testing.T) {
	if got := labelString([]string{"a", "b"}, []string{`x"y`}); got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labelString=%s", got)
	}
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("withLe empty=%s", got)
	}
	if got := withLe(`{a="1"}`, "+Inf"); got != `{a="1",le="+Inf"}` {
		t.Fatalf("withLe=%s", got)
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" x-api-key = abc ,bad, =v,k=")
	if len(got) != 1 || got["x-api-key"] != "abc" {
		t.Fatalf("ParseHeaders=%v", got)
	}
	if ParseHeaders("") != nil {
		t.Fatalf("empty input should be nil")
	}
	if clampRatio(2) != 1 || clampRatio(-1) != 0 || clampRatio(0.25) != 0.25 {
		t.Fatalf("clampRatio out of range")
	}
}

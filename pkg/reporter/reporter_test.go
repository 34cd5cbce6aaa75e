package reporter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/model"
)

func quiet() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func newLocalReporter(t *testing.T, cfg Config) *Reporter {
	t.Helper()
	cfg.FlushInterval = -1
	if cfg.Diag == nil {
		cfg.Diag = quiet()
	}
	r := New(cfg)
	t.Cleanup(r.Close)
	return r
}

func TestReporter_Classification(t *testing.T) {
	r := newLocalReporter(t, Config{})

	id := r.Report(errors.New("Network request failed: GET /x (500)"), nil)
	reps := r.Snapshot(Filter{})
	if len(reps) != 1 || reps[0].ID != id {
		t.Fatalf("Expected 1 report with id %s, got %v", id, reps)
	}
	if reps[0].Category != model.CategoryNetwork {
		t.Errorf("Expected network category, got %s", reps[0].Category)
	}
	if reps[0].Severity != model.SeverityMedium {
		t.Errorf("Expected medium severity, got %s", reps[0].Severity)
	}
}

func TestReporter_ReportNetworkError(t *testing.T) {
	r := newLocalReporter(t, Config{})

	r.ReportNetworkError("/x", "GET", 500, "oops", nil)
	rep := r.Snapshot(Filter{})[0]

	if rep.Message != "Network request failed: GET /x (500)" {
		t.Errorf("Unexpected message %q", rep.Message)
	}
	if rep.Category != model.CategoryNetwork || rep.Severity != model.SeverityMedium {
		t.Errorf("Expected (medium,network), got (%s,%s)", rep.Severity, rep.Category)
	}
	if rep.Context["status"].Num() != 500 {
		t.Errorf("Expected status 500 in context, got %v", rep.Context["status"])
	}
}

func TestReporter_ReportAPIError(t *testing.T) {
	r := newLocalReporter(t, Config{})

	r.ReportAPIError("/admin", "GET", 403, "", nil)
	rep := r.Snapshot(Filter{})[0]

	if rep.Category != model.CategoryAPI {
		t.Errorf("Expected api category, got %s", rep.Category)
	}
	// 403 contributes "Forbidden" to the message, which classifies high.
	if rep.Severity != model.SeverityHigh {
		t.Errorf("Expected high severity, got %s", rep.Severity)
	}
}

func TestReporter_MarkResolvedIdempotent(t *testing.T) {
	r := newLocalReporter(t, Config{})

	id1 := r.ReportMessage("first", nil)
	id2 := r.ReportMessage("second", nil)

	if !r.MarkResolved(id1, "fixed upstream") {
		t.Fatal("Expected MarkResolved to find the report")
	}

	snap := r.Snapshot(Filter{})
	if len(snap) != 2 {
		t.Fatalf("Expected queue length 2, got %d", len(snap))
	}
	if !snap[0].Resolved || snap[0].Resolution != "fixed upstream" {
		t.Errorf("Expected first report resolved, got %+v", snap[0])
	}

	// Second call: no-op for state, length, and order.
	if !r.MarkResolved(id1, "another note") {
		t.Fatal("Expected second MarkResolved to still find the report")
	}
	again := r.Snapshot(Filter{})
	if len(again) != 2 || again[0].ID != id1 || again[1].ID != id2 {
		t.Errorf("Expected order unchanged, got %v", again)
	}
	if again[0].Resolution != "fixed upstream" {
		t.Errorf("Expected resolution unchanged, got %q", again[0].Resolution)
	}

	if r.MarkResolved("no-such-id", "") {
		t.Error("Expected false for unknown id")
	}
}

func TestReporter_Stats(t *testing.T) {
	r := newLocalReporter(t, Config{})

	r.ReportMessage("connection lost", nil)
	r.ReportMessage("TypeError: nil deref", nil)
	id := r.ReportMessage("plain failure", nil)
	r.MarkResolved(id, "ignored")

	st := r.Stats()
	if st.Total != 3 {
		t.Errorf("Expected total 3, got %d", st.Total)
	}
	if st.BySeverity[model.SeverityMedium] != 1 || st.BySeverity[model.SeverityHigh] != 1 || st.BySeverity[model.SeverityLow] != 1 {
		t.Errorf("Unexpected severity counts: %v", st.BySeverity)
	}
	if st.ByCategory[model.CategoryNetwork] != 1 || st.ByCategory[model.CategoryJavaScript] != 2 {
		t.Errorf("Unexpected category counts: %v", st.ByCategory)
	}
	if st.Unresolved != 2 {
		t.Errorf("Expected 2 unresolved, got %d", st.Unresolved)
	}
}

func TestReporter_CriticalEscalation(t *testing.T) {
	var deliveries atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newLocalReporter(t, Config{
		Endpoint:     srv.URL,
		EnableRemote: true,
	})

	r.ReportMessage("harmless", nil)
	if deliveries.Load() != 0 {
		t.Fatal("Non-critical report must not flush")
	}

	// Timer is off; only escalation can deliver.
	r.ReportMessage("meltdown", nil, WithSeverity(model.SeverityCritical))
	if deliveries.Load() != 1 {
		t.Errorf("Expected escalation flush, got %d deliveries", deliveries.Load())
	}
	if got := r.Stats().Total; got != 0 {
		t.Errorf("Expected drained queue after escalation, got %d", got)
	}
}

func TestReporter_FailedFlushKeepsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := newLocalReporter(t, Config{
		Endpoint:     srv.URL,
		EnableRemote: true,
		BatchSize:    2,
	})

	var ids []string
	for _, msg := range []string{"e1", "e2", "e3", "e4", "e5"} {
		ids = append(ids, r.ReportMessage(msg, nil))
	}

	if err := r.ForceFlush(context.Background()); err == nil {
		t.Fatal("Expected delivery failure")
	}

	snap := r.Snapshot(Filter{})
	if len(snap) != 5 {
		t.Fatalf("Expected queue length 5, got %d", len(snap))
	}
	for i := range ids {
		if snap[i].ID != ids[i] {
			t.Errorf("Snapshot[%d]: expected id %s, got %s", i, ids[i], snap[i].ID)
		}
	}
}

func TestReporter_WirePayload(t *testing.T) {
	type payload struct {
		Errors    []model.ErrorReport `json:"errors"`
		SessionID string              `json:"sessionId"`
		Timestamp string              `json:"timestamp"`
	}
	got := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var p payload
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		got <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newLocalReporter(t, Config{
		Endpoint:     srv.URL,
		EnableRemote: true,
		UserID:       "user-9",
	})

	r.ReportMessage("shipped", nil, WithRetryCount(3))
	if err := r.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush failed: %v", err)
	}

	p := <-got
	if len(p.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(p.Errors))
	}
	rep := p.Errors[0]
	if rep.Message != "shipped" || rep.RetryCount != 3 || rep.UserID != "user-9" {
		t.Errorf("Unexpected report %+v", rep)
	}
	if p.SessionID != r.SessionID() {
		t.Errorf("Expected session %s, got %s", r.SessionID(), p.SessionID)
	}
	if p.Timestamp == "" {
		t.Error("Expected send timestamp")
	}
	if rep.Environment.UserAgent == "" || !strings.Contains(rep.Environment.UserAgent, "logship") {
		t.Errorf("Expected runtime user agent, got %q", rep.Environment.UserAgent)
	}
}

func TestReporter_UserTrackingDisabled(t *testing.T) {
	r := newLocalReporter(t, Config{UserID: "user-9", DisableUserTracking: true})
	r.ReportMessage("anon", nil)
	if rep := r.Snapshot(Filter{})[0]; rep.UserID != "" {
		t.Errorf("Expected empty user id, got %q", rep.UserID)
	}
}

func TestReporter_ComponentStackForcesUI(t *testing.T) {
	r := newLocalReporter(t, Config{})
	r.ReportMessage("boom", nil, WithComponentStack("at Sidebar\nat App"))
	rep := r.Snapshot(Filter{})[0]
	if rep.Category != model.CategoryUI {
		t.Errorf("Expected ui category, got %s", rep.Category)
	}
	if rep.ComponentStack == "" {
		t.Error("Expected component stack recorded")
	}
}

func TestReporter_SnapshotFilters(t *testing.T) {
	r := newLocalReporter(t, Config{})
	r.ReportMessage("connection refused", nil)
	id := r.ReportMessage("oops", nil)
	r.MarkResolved(id, "")

	if got := r.Snapshot(Filter{Category: model.CategoryNetwork}); len(got) != 1 {
		t.Errorf("Expected 1 network report, got %d", len(got))
	}
	if got := r.Snapshot(Filter{UnresolvedOnly: true}); len(got) != 1 {
		t.Errorf("Expected 1 unresolved report, got %d", len(got))
	}
	if got := r.Snapshot(Filter{Severity: model.SeverityMedium}); len(got) != 1 {
		t.Errorf("Expected 1 medium report, got %d", len(got))
	}
}

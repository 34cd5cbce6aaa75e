package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/model"
)

func quiet() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}

func decodeJSON(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("decode payload: %v", err)
	}
}

func TestLogger_DropOldest(t *testing.T) {
	l := New(Config{
		MinLevel:      model.LevelDebug,
		MaxStoredLogs: 3,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	for _, msg := range []string{"A", "B", "C", "D"} {
		l.Info(msg, nil)
	}

	got := l.Snapshot(Filter{})
	want := []string{"B", "C", "D"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Message != want[i] {
			t.Errorf("Snapshot[%d]: expected %s, got %s", i, want[i], got[i].Message)
		}
	}
}

func TestLogger_MinLevelDiscardsBeforeQueue(t *testing.T) {
	l := New(Config{
		MinLevel:      model.LevelWarn,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	l.Debug("x", nil)
	l.Info("y", nil)

	if st := l.Stats(); st.Total != 0 {
		t.Errorf("Expected total 0, got %d", st.Total)
	}

	l.Warn("z", nil)
	st := l.Stats()
	if st.Total != 1 {
		t.Errorf("Expected total 1, got %d", st.Total)
	}
	if st.ByLevel[model.LevelWarn] != 1 {
		t.Errorf("Expected 1 warn, got %d", st.ByLevel[model.LevelWarn])
	}
}

func TestLogger_SnapshotFilter(t *testing.T) {
	l := New(Config{
		MinLevel:      model.LevelDebug,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	l.Log(model.LevelInfo, "one", nil, "api")
	l.Log(model.LevelError, "two", nil, "ui")
	l.Log(model.LevelError, "three", nil, "api")

	errs := l.Snapshot(Filter{Level: model.LevelError})
	if len(errs) != 2 {
		t.Errorf("Expected 2 error events, got %d", len(errs))
	}
	api := l.Snapshot(Filter{Component: "api"})
	if len(api) != 2 {
		t.Errorf("Expected 2 api events, got %d", len(api))
	}
	both := l.Snapshot(Filter{Level: model.LevelError, Component: "api"})
	if len(both) != 1 || both[0].Message != "three" {
		t.Errorf("Expected [three], got %v", both)
	}
}

func TestLogger_SessionTracking(t *testing.T) {
	l := New(Config{FlushInterval: -1, Diag: quiet()})
	defer l.Close()
	if l.SessionID() == "" {
		t.Error("Expected a session id by default")
	}
	l.Info("a", nil)
	if ev := l.Snapshot(Filter{})[0]; ev.SessionID != l.SessionID() {
		t.Errorf("Expected event session %s, got %s", l.SessionID(), ev.SessionID)
	}

	l2 := New(Config{FlushInterval: -1, DisableSessionTracking: true, Diag: quiet()})
	defer l2.Close()
	if l2.SessionID() != "" {
		t.Error("Expected empty session id when tracking disabled")
	}
}

func TestLogger_ConsoleSink(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{
		MinLevel:      model.LevelDebug,
		EnableConsole: true,
		Console:       &buf,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	l.Debug("below threshold", nil)
	l.Error("mirrored line", model.Context{"attempt": model.Int(2)})

	out := buf.String()
	if !strings.Contains(out, "mirrored line") {
		t.Errorf("Expected console mirror, got %q", out)
	}
	if !strings.Contains(out, `"attempt":2`) {
		t.Errorf("Expected context in console output, got %q", out)
	}
}

func TestLogger_Subscribe(t *testing.T) {
	l := New(Config{MinLevel: model.LevelDebug, FlushInterval: -1, Diag: quiet()})
	defer l.Close()

	var mu sync.Mutex
	var seen []model.LogEvent
	l.Subscribe(SinkFunc(func(ev model.LogEvent) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	}))

	l.Info("hello", nil)
	l.Debug("also delivered", nil)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("Expected 2 sink deliveries, got %d", len(seen))
	}
	if seen[0].Message != "hello" {
		t.Errorf("Expected hello first, got %s", seen[0].Message)
	}
}

func TestLogger_RemoteDisabledNeverCalls(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	// Endpoint present but remote logging off.
	l := New(Config{
		Endpoint:      srv.URL,
		EnableRemote:  false,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	l.Info("kept local", nil)
	if err := l.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected 0 network calls, got %d", calls)
	}
	if st := l.Stats(); st.Total != 1 {
		t.Errorf("Expected event still queued, got total %d", st.Total)
	}

	// Remote on but no endpoint configured degrades the same way.
	l2 := New(Config{EnableRemote: true, FlushInterval: -1, Diag: quiet()})
	defer l2.Close()
	l2.Info("also local", nil)
	if err := l2.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned %v", err)
	}
	if st := l2.Stats(); st.Total != 1 {
		t.Errorf("Expected event still queued, got total %d", st.Total)
	}
}

func TestLogger_RemoteDelivery(t *testing.T) {
	type payload struct {
		Events    []model.LogEvent `json:"events"`
		SessionID string           `json:"sessionId"`
	}
	got := make(chan payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		decodeJSON(t, r, &p)
		got <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	l := New(Config{
		Endpoint:      srv.URL,
		EnableRemote:  true,
		FlushInterval: -1,
		Diag:          quiet(),
	})
	defer l.Close()

	l.Info("ship me", nil)
	if err := l.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush failed: %v", err)
	}

	p := <-got
	if len(p.Events) != 1 || p.Events[0].Message != "ship me" {
		t.Fatalf("Unexpected payload %+v", p)
	}
	if p.SessionID != l.SessionID() {
		t.Errorf("Expected session %s, got %s", l.SessionID(), p.SessionID)
	}
	if st := l.Stats(); st.Total != 0 {
		t.Errorf("Expected drained queue, got %d", st.Total)
	}
}

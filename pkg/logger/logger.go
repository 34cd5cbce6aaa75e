// Package logger implements the structured leveled logging half of the
// telemetry pipeline: level-threshold filtering, a bounded in-memory queue,
// sink fan-out, and batched best-effort delivery to a remote collector.
package logger

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/model"
	"github.com/predatorx7/logship/pkg/pipeline"
	"github.com/predatorx7/logship/pkg/transport"
)

// Logger captures leveled log events. Safe for concurrent use.
type Logger struct {
	cfg       Config
	sessionID string
	pipe      *pipeline.Pipeline[model.LogEvent]

	mu    sync.RWMutex
	sinks []Sink
}

// New creates a Logger with the given configuration.
func New(cfg Config) *Logger {
	cfg = cfg.normalize()

	diag := cfg.Diag
	if diag == nil {
		d := zerolog.New(os.Stderr).With().Timestamp().Str("component", "logship.logger").Logger()
		diag = &d
	}

	sessionID := ""
	if !cfg.DisableSessionTracking {
		sessionID = model.NewSessionID()
	}

	var sender pipeline.Sender
	if cfg.Endpoint != "" {
		sender = transport.New(transport.Config{
			Endpoint:  cfg.Endpoint,
			SourceKey: cfg.SourceKey,
			Client:    cfg.HTTPClient,
		})
	}

	l := &Logger{
		cfg:       cfg,
		sessionID: sessionID,
		pipe: pipeline.New[model.LogEvent](pipeline.Config{
			Field:         "events",
			SessionID:     sessionID,
			Capacity:      cfg.MaxStoredLogs,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			MaxAttempts:   cfg.MaxDeliveryAttempts,
			Remote:        cfg.EnableRemote && cfg.Endpoint != "",
			Sender:        sender,
			Diag:          *diag,
		}),
	}
	if cfg.EnableConsole {
		l.Subscribe(NewConsoleSink(cfg.Console))
	}
	return l
}

// Log captures one event. Events below MinLevel are discarded before the
// queue: they are invisible to stats, snapshots, and sinks.
func (l *Logger) Log(level model.Level, msg string, ctx model.Context, component string) {
	if !level.AtLeast(l.cfg.MinLevel) {
		return
	}
	ev := model.LogEvent{
		Level:     level,
		Message:   msg,
		Time:      time.Now().UTC(),
		Context:   ctx.Clone(),
		Component: component,
		SessionID: l.sessionID,
	}
	l.pipe.Enqueue(ev)
	l.fanout(ev)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, ctx model.Context) {
	l.Log(model.LevelDebug, msg, ctx, "")
}

// Info logs at info level.
func (l *Logger) Info(msg string, ctx model.Context) {
	l.Log(model.LevelInfo, msg, ctx, "")
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, ctx model.Context) {
	l.Log(model.LevelWarn, msg, ctx, "")
}

// Error logs at error level.
func (l *Logger) Error(msg string, ctx model.Context) {
	l.Log(model.LevelError, msg, ctx, "")
}

// Subscribe registers a sink receiving every accepted event.
func (l *Logger) Subscribe(s Sink) {
	if s == nil {
		return
	}
	l.mu.Lock()
	l.sinks = append(l.sinks, s)
	l.mu.Unlock()
}

func (l *Logger) fanout(ev model.LogEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, s := range l.sinks {
		s.Write(ev)
	}
}

// Filter selects events for Snapshot. Zero values match everything.
type Filter struct {
	Level     model.Level
	Component string
}

// Snapshot returns a copy of the queued events, oldest first.
func (l *Logger) Snapshot(f Filter) []model.LogEvent {
	all := l.pipe.Snapshot()
	if f == (Filter{}) {
		return all
	}
	out := all[:0]
	for _, ev := range all {
		if f.Level != "" && ev.Level != f.Level {
			continue
		}
		if f.Component != "" && ev.Component != f.Component {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Stats summarizes the queue in one pass.
type Stats struct {
	Total   int
	ByLevel map[model.Level]int
	Evicted uint64
}

// Stats computes queue statistics on demand.
func (l *Logger) Stats() Stats {
	st := Stats{ByLevel: make(map[model.Level]int)}
	l.pipe.Each(func(ev model.LogEvent) bool {
		st.Total++
		st.ByLevel[ev.Level]++
		return true
	})
	st.Evicted = l.pipe.Evicted()
	return st
}

// ForceFlush attempts one delivery and waits for it to finish. The delivery
// error is informational: a failed batch is already requeued.
func (l *Logger) ForceFlush(ctx context.Context) error {
	return l.pipe.Flush(ctx)
}

// SessionID returns the session token attached to every event, or empty when
// session tracking is disabled.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Close cancels the flush timer. Queued events are retained in memory but no
// further flush is scheduled.
func (l *Logger) Close() {
	l.pipe.Close()
}

// Package reporter implements the error reporting half of the telemetry
// pipeline: severity and category inference, a bounded in-memory queue,
// critical-severity flush escalation, and batched best-effort delivery to a
// remote collector.
package reporter

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/classify"
	"github.com/predatorx7/logship/pkg/model"
	"github.com/predatorx7/logship/pkg/pipeline"
	"github.com/predatorx7/logship/pkg/transport"
)

// Reporter captures error reports. Safe for concurrent use.
type Reporter struct {
	cfg       Config
	sessionID string
	env       model.Environment
	diag      zerolog.Logger
	pipe      *pipeline.Pipeline[*model.ErrorReport]
}

// New creates a Reporter with the given configuration.
func New(cfg Config) *Reporter {
	cfg = cfg.normalize()

	var diag zerolog.Logger
	if cfg.Diag != nil {
		diag = *cfg.Diag
	} else {
		diag = zerolog.New(os.Stderr).With().Timestamp().Str("component", "logship.reporter").Logger()
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
			UserAgent: cfg.UserAgent,
		})
	}

	return &Reporter{
		cfg:       cfg,
		sessionID: sessionID,
		env:       model.Environment{UserAgent: cfg.UserAgent, URL: cfg.Origin},
		diag:      diag,
		pipe: pipeline.New[*model.ErrorReport](pipeline.Config{
			Field:         "errors",
			SessionID:     sessionID,
			Capacity:      cfg.MaxStoredErrors,
			BatchSize:     cfg.BatchSize,
			FlushInterval: cfg.FlushInterval,
			MaxAttempts:   cfg.MaxDeliveryAttempts,
			Remote:        cfg.EnableRemote && cfg.Endpoint != "",
			Sender:        sender,
			Diag:          diag,
		}),
	}
}

// Option adjusts one report before it is enqueued.
type Option func(*model.ErrorReport)

// WithSeverity overrides the inferred severity.
func WithSeverity(s model.Severity) Option {
	return func(r *model.ErrorReport) { r.Severity = s }
}

// WithCategory overrides the inferred category.
func WithCategory(c model.Category) Option {
	return func(r *model.ErrorReport) { r.Category = c }
}

// WithStack attaches a stack trace.
func WithStack(stack string) Option {
	return func(r *model.ErrorReport) { r.Stack = stack }
}

// WithComponentStack attaches a UI component stack.
func WithComponentStack(stack string) Option {
	return func(r *model.ErrorReport) { r.ComponentStack = stack }
}

// WithRetryCount records how many times the originating operation was
// retried before this report.
func WithRetryCount(n int) Option {
	return func(r *model.ErrorReport) { r.RetryCount = n }
}

// Report captures err with inferred severity and category and returns the
// report identifier. A critical report triggers an immediate flush attempt
// ahead of the timer; the caller is never exposed to delivery failures.
func (r *Reporter) Report(err error, ctx model.Context, opts ...Option) string {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return r.ReportMessage(msg, ctx, opts...)
}

// ReportMessage captures a raw error message.
func (r *Reporter) ReportMessage(msg string, ctx model.Context, opts ...Option) string {
	sev, cat := classify.Classify(msg, ctx)
	rep := &model.ErrorReport{
		ID:          model.NewReportID(),
		Time:        time.Now().UTC(),
		Message:     msg,
		Environment: r.env,
		SessionID:   r.sessionID,
		Severity:    sev,
		Category:    cat,
		Context:     ctx.Clone(),
	}
	if !r.cfg.DisableUserTracking {
		rep.UserID = r.cfg.UserID
	}
	for _, opt := range opts {
		opt(rep)
	}
	if rep.ComponentStack != "" && rep.Category == model.CategoryJavaScript {
		rep.Category = model.CategoryUI
	}

	r.pipe.Enqueue(rep)
	if r.cfg.EnableConsole {
		r.mirror(rep)
	}
	if rep.Severity == model.SeverityCritical {
		// Escalation: deliver ahead of the timer. The error is already
		// handled inside the flush (requeue + local log).
		_ = r.pipe.Flush(context.Background())
	}
	return rep.ID
}

// ReportNetworkError captures a failed network operation.
func (r *Reporter) ReportNetworkError(url, method string, status int, responseBody string, ctx model.Context) string {
	msg := "Network request failed: " + method + " " + url
	if status > 0 {
		msg += " (" + strconv.Itoa(status) + ")"
	}
	ctx = ctx.With("url", model.String(url)).
		With("method", model.String(method))
	if status > 0 {
		ctx = ctx.With("status", model.Int(status))
	}
	if responseBody != "" {
		ctx = ctx.With("response_body", model.String(responseBody))
	}
	return r.ReportMessage(msg, ctx)
}

// ReportAPIError captures a failed API call. The status text participates in
// classification, so a 401/403 response lands in the high-severity bucket.
func (r *Reporter) ReportAPIError(endpoint, method string, status int, responseData string, ctx model.Context) string {
	msg := "API request failed: " + method + " " + endpoint + " (" + strconv.Itoa(status) + " " + http.StatusText(status) + ")"
	ctx = ctx.With("endpoint", model.String(endpoint)).
		With("method", model.String(method)).
		With("status", model.Int(status))
	if responseData != "" {
		ctx = ctx.With("response_data", model.String(responseData))
	}
	return r.ReportMessage(msg, ctx)
}

// MarkResolved flags the report with the given id as handled. Idempotent:
// resolving an already-resolved report changes nothing. Returns false when
// the id is not in the queue.
func (r *Reporter) MarkResolved(id, resolution string) bool {
	found := false
	r.pipe.Each(func(rep *model.ErrorReport) bool {
		if rep.ID != id {
			return true
		}
		found = true
		if !rep.Resolved {
			rep.Resolved = true
			rep.Resolution = resolution
		}
		return false
	})
	return found
}

// Filter selects reports for Snapshot. Zero values match everything.
type Filter struct {
	Severity       model.Severity
	Category       model.Category
	UnresolvedOnly bool
}

// Snapshot returns copies of the queued reports, oldest first.
func (r *Reporter) Snapshot(f Filter) []model.ErrorReport {
	var out []model.ErrorReport
	r.pipe.Each(func(rep *model.ErrorReport) bool {
		if f.Severity != "" && rep.Severity != f.Severity {
			return true
		}
		if f.Category != "" && rep.Category != f.Category {
			return true
		}
		if f.UnresolvedOnly && rep.Resolved {
			return true
		}
		out = append(out, *rep)
		return true
	})
	return out
}

// Stats summarizes the queue in one pass.
type Stats struct {
	Total       int
	BySeverity  map[model.Severity]int
	ByCategory  map[model.Category]int
	Unresolved  int
	Evicted     uint64
	DeadDropped uint64
}

// Stats computes queue statistics on demand, so they are always consistent
// with the current snapshot.
func (r *Reporter) Stats() Stats {
	st := Stats{
		BySeverity: make(map[model.Severity]int),
		ByCategory: make(map[model.Category]int),
	}
	r.pipe.Each(func(rep *model.ErrorReport) bool {
		st.Total++
		st.BySeverity[rep.Severity]++
		st.ByCategory[rep.Category]++
		if !rep.Resolved {
			st.Unresolved++
		}
		return true
	})
	st.Evicted = r.pipe.Evicted()
	st.DeadDropped = r.pipe.DeadDropped()
	return st
}

// ForceFlush attempts one delivery and waits for it to finish. The delivery
// error is informational: a failed batch is already requeued.
func (r *Reporter) ForceFlush(ctx context.Context) error {
	return r.pipe.Flush(ctx)
}

// SessionID returns the session token attached to every report, or empty
// when session tracking is disabled.
func (r *Reporter) SessionID() string {
	return r.sessionID
}

// Close cancels the flush timer. Queued reports are retained in memory but
// no further flush is scheduled.
func (r *Reporter) Close() {
	r.pipe.Close()
}

func (r *Reporter) mirror(rep *model.ErrorReport) {
	r.diag.Error().
		Str("id", rep.ID).
		Str("severity", string(rep.Severity)).
		Str("category", string(rep.Category)).
		Msg(rep.Message)
}

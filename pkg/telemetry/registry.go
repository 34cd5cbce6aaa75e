// Package telemetry owns the process-wide telemetry instances and the
// convenience entry points surrounding code calls into.
//
// A Registry holds at most one Logger and one ErrorReporter, constructed
// lazily on first access; configuration passed to later accesses is ignored
// (first config wins). The package-level functions operate on a default
// registry so callers that do not need dependency injection can log and
// report with one import.
package telemetry

import (
	"context"
	"sync"

	"github.com/predatorx7/logship/pkg/logger"
	"github.com/predatorx7/logship/pkg/model"
	"github.com/predatorx7/logship/pkg/reporter"
)

// Registry owns at most one instance of each telemetry subsystem.
type Registry struct {
	mu       sync.Mutex
	logger   *logger.Logger
	reporter *reporter.Reporter

	logCapture *logCapture
}

// NewRegistry creates an empty registry; subsystems are built on first
// access.
func NewRegistry() *Registry {
	return &Registry{}
}

// Logger returns the registry's Logger, constructing it from the first
// supplied configuration. Configurations on later calls are ignored.
func (r *Registry) Logger(cfg ...logger.Config) *logger.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logger == nil {
		var c logger.Config
		if len(cfg) > 0 {
			c = cfg[0]
		}
		r.logger = logger.New(c)
	}
	return r.logger
}

// Reporter returns the registry's ErrorReporter, constructing it from the
// first supplied configuration. Configurations on later calls are ignored.
func (r *Registry) Reporter(cfg ...reporter.Config) *reporter.Reporter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reporter == nil {
		var c reporter.Config
		if len(cfg) > 0 {
			c = cfg[0]
		}
		r.reporter = reporter.New(c)
	}
	return r.reporter
}

// Flush forces one delivery attempt on both subsystems, waiting for
// completion. The first delivery error is returned for callers that await
// it; failed batches are already requeued.
func (r *Registry) Flush(ctx context.Context) error {
	var first error
	r.mu.Lock()
	lg, rp := r.logger, r.reporter
	r.mu.Unlock()
	if lg != nil {
		if err := lg.ForceFlush(ctx); err != nil && first == nil {
			first = err
		}
	}
	if rp != nil {
		if err := rp.ForceFlush(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close tears down both subsystems and removes the log capture hook if
// installed. Queued items are retained; no final flush is attempted.
func (r *Registry) Close() {
	r.mu.Lock()
	lg, rp := r.logger, r.reporter
	capture := r.logCapture
	r.logCapture = nil
	r.mu.Unlock()
	if capture != nil {
		capture.remove()
	}
	if lg != nil {
		lg.Close()
	}
	if rp != nil {
		rp.Close()
	}
}

var defaultRegistry = NewRegistry()

// Default returns the package-level registry.
func Default() *Registry {
	return defaultRegistry
}

// Debug logs at debug level on the default logger.
func Debug(msg string, ctx model.Context) {
	defaultRegistry.Logger().Debug(msg, ctx)
}

// Info logs at info level on the default logger.
func Info(msg string, ctx model.Context) {
	defaultRegistry.Logger().Info(msg, ctx)
}

// Warn logs at warn level on the default logger.
func Warn(msg string, ctx model.Context) {
	defaultRegistry.Logger().Warn(msg, ctx)
}

// Error logs at error level on the default logger.
func Error(msg string, ctx model.Context) {
	defaultRegistry.Logger().Error(msg, ctx)
}

// CaptureError reports err on the default reporter.
func CaptureError(err error, ctx model.Context, opts ...reporter.Option) string {
	return defaultRegistry.Reporter().Report(err, ctx, opts...)
}

// CaptureNetworkError reports a failed network operation on the default
// reporter.
func CaptureNetworkError(url, method string, status int, responseBody string, ctx model.Context) string {
	return defaultRegistry.Reporter().ReportNetworkError(url, method, status, responseBody, ctx)
}

// CaptureAPIError reports a failed API call on the default reporter.
func CaptureAPIError(endpoint, method string, status int, responseData string, ctx model.Context) string {
	return defaultRegistry.Reporter().ReportAPIError(endpoint, method, status, responseData, ctx)
}

// MarkResolved resolves a report on the default reporter.
func MarkResolved(id, resolution string) bool {
	return defaultRegistry.Reporter().MarkResolved(id, resolution)
}

// Flush forces delivery on the default registry.
func Flush(ctx context.Context) error {
	return defaultRegistry.Flush(ctx)
}

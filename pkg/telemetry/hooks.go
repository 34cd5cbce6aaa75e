package telemetry

import (
	"fmt"
	"io"
	"log"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/predatorx7/logship/pkg/model"
	"github.com/predatorx7/logship/pkg/reporter"
)

// logCapture wraps the standard library log output so lines written through
// the log package are also captured as error reports. The original writer
// still receives every byte, so existing console behavior is preserved.
type logCapture struct {
	reg  *Registry
	orig io.Writer

	mu        sync.Mutex
	reporting bool
}

func (c *logCapture) Write(p []byte) (int, error) {
	n, err := c.orig.Write(p)

	// The reporter may itself log through the log package on delivery
	// failure; re-entrant writes pass straight through to avoid a loop.
	c.mu.Lock()
	if c.reporting {
		c.mu.Unlock()
		return n, err
	}
	c.reporting = true
	c.mu.Unlock()

	line := strings.TrimRight(string(p), "\n")
	if line != "" {
		c.reg.Reporter().ReportMessage(line, model.Context{
			"origin": model.String("stdlog"),
		})
	}

	c.mu.Lock()
	c.reporting = false
	c.mu.Unlock()
	return n, err
}

func (c *logCapture) remove() {
	log.SetOutput(c.orig)
}

// InstallLogCapture routes standard library log output through the error
// reporter while preserving the original destination. Installing twice is a
// no-op: a second call never stacks a second interception layer. The
// returned function restores the previous writer.
func (r *Registry) InstallLogCapture() (restore func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.logCapture != nil {
		return func() {}
	}
	capture := &logCapture{reg: r, orig: log.Writer()}
	r.logCapture = capture
	log.SetOutput(capture)
	return func() {
		r.mu.Lock()
		if r.logCapture == capture {
			r.logCapture = nil
		}
		r.mu.Unlock()
		capture.remove()
	}
}

// Recover is meant to be deferred at the top of a goroutine or request
// handler. It reports a panic as a critical error (flushed immediately) and
// then re-panics so crash semantics are unchanged.
func (r *Registry) Recover(ctx model.Context) {
	v := recover()
	if v == nil {
		return
	}
	r.capturePanic(v, ctx)
	panic(v)
}

// Go runs fn on a new goroutine, reporting any panic as a critical error
// instead of crashing the process.
func (r *Registry) Go(fn func()) {
	go func() {
		defer func() {
			if v := recover(); v != nil {
				r.capturePanic(v, nil)
			}
		}()
		fn()
	}()
}

func (r *Registry) capturePanic(v any, ctx model.Context) {
	ctx = ctx.With("origin", model.String("panic"))
	r.Reporter().ReportMessage(
		fmt.Sprintf("panic: %v", v),
		ctx,
		reporter.WithSeverity(model.SeverityCritical),
		reporter.WithStack(string(debug.Stack())),
	)
}

// InstallLogCapture installs the hook on the default registry.
func InstallLogCapture() (restore func()) {
	return defaultRegistry.InstallLogCapture()
}

// Recover reports a panic on the default registry and re-panics.
func Recover(ctx model.Context) {
	v := recover()
	if v == nil {
		return
	}
	defaultRegistry.capturePanic(v, ctx)
	panic(v)
}

// Go runs fn on a new goroutine, reporting panics on the default registry.
func Go(fn func()) {
	defaultRegistry.Go(fn)
}

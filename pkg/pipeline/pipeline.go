// Package pipeline composes the bounded queue, the flush scheduler, and the
// transport into the capture pipeline both telemetry subsystems share.
//
// Capture is synchronous and never blocks on the network; the only
// suspension point is the delivery call inside a flush. A failed delivery
// requeues its batch at the head of the queue, so retry is at-least-once and
// ordering relative to newer arrivals is preserved.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/queue"
)

// Sender delivers one batch to the collector. Implemented by
// transport.Client.
type Sender interface {
	Send(ctx context.Context, field string, batch any, sessionID string) error
}

// Config configures one pipeline instance.
type Config struct {
	// Field is the top-level array name in the delivery payload:
	// "events" for the logger, "errors" for the reporter.
	Field string

	SessionID string

	// Capacity bounds the queue; overflow evicts the oldest element.
	Capacity int

	// BatchSize caps how many elements one flush delivers.
	BatchSize int

	// FlushInterval is the periodic flush timer. Zero or negative disables
	// the timer; flushes then happen only on escalation or ForceFlush.
	FlushInterval time.Duration

	// MaxAttempts caps delivery attempts per batch. Zero retries forever;
	// when the cap is reached the batch is dropped and counted.
	MaxAttempts int

	// Remote gates the transport entirely. When false (or Sender is nil)
	// flushes are no-ops and the queue only accumulates.
	Remote bool

	Sender Sender

	// Diag receives local diagnostics for delivery failures. Failures are
	// never returned to the capture path.
	Diag zerolog.Logger
}

const (
	defaultCapacity  = 100
	defaultBatchSize = 20
)

func (c Config) normalize() Config {
	if c.Capacity < 1 {
		c.Capacity = defaultCapacity
	}
	if c.BatchSize < 1 {
		c.BatchSize = defaultBatchSize
	}
	if c.Sender == nil {
		c.Remote = false
	}
	return c
}

// Pipeline owns one bounded queue and its delivery schedule.
type Pipeline[T any] struct {
	cfg Config

	mu       sync.Mutex
	ring     *queue.Ring[T]
	inFlight bool
	attempts int
	deadDrop uint64

	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// New creates a pipeline and starts its flush timer when configured.
func New[T any](cfg Config) *Pipeline[T] {
	cfg = cfg.normalize()
	p := &Pipeline[T]{
		cfg:  cfg,
		ring: queue.New[T](cfg.Capacity),
		done: make(chan struct{}),
	}
	if cfg.FlushInterval > 0 {
		p.ticker = time.NewTicker(cfg.FlushInterval)
		go p.run()
	}
	return p
}

func (p *Pipeline[T]) run() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			// Failure is logged inside Flush and retried next tick.
			_ = p.Flush(context.Background())
		}
	}
}

// Enqueue appends v at the tail, evicting the oldest element when full.
func (p *Pipeline[T]) Enqueue(v T) {
	p.mu.Lock()
	p.ring.Push(v)
	p.mu.Unlock()
}

// Flush delivers up to BatchSize of the oldest queued elements. When the
// transport is disabled it returns nil and leaves the queue untouched. A
// flush that finds another flush in progress returns immediately; the queued
// batch is never drained twice.
//
// The delivery error is returned for callers that await completion, but the
// pipeline has already recovered: the batch is back at the head of the
// queue (or dropped once MaxAttempts is reached).
func (p *Pipeline[T]) Flush(ctx context.Context) error {
	p.mu.Lock()
	if !p.cfg.Remote || p.inFlight || p.ring.Len() == 0 {
		p.mu.Unlock()
		return nil
	}
	batch := p.ring.PopBatch(p.cfg.BatchSize)
	p.inFlight = true
	p.mu.Unlock()

	err := p.cfg.Sender.Send(ctx, p.cfg.Field, batch, p.cfg.SessionID)

	p.mu.Lock()
	p.inFlight = false
	if err == nil {
		p.attempts = 0
		p.mu.Unlock()
		return nil
	}
	p.attempts++
	dropped := p.cfg.MaxAttempts > 0 && p.attempts >= p.cfg.MaxAttempts
	if dropped {
		p.deadDrop += uint64(len(batch))
		p.attempts = 0
	} else {
		p.ring.PushFront(batch)
	}
	p.mu.Unlock()

	evt := p.cfg.Diag.Error().Err(err).Str("field", p.cfg.Field).Int("batch", len(batch))
	if dropped {
		evt.Msg("delivery failed; batch dropped after max attempts")
	} else {
		evt.Msg("delivery failed; batch requeued")
	}
	return err
}

// Len returns the number of queued elements.
func (p *Pipeline[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ring.Len()
}

// Snapshot returns a copy of the queued elements, oldest first.
func (p *Pipeline[T]) Snapshot() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ring.Snapshot()
}

// Each visits queued elements oldest first, under the queue lock, until fn
// returns false. fn must not call back into the pipeline.
func (p *Pipeline[T]) Each(fn func(v T) bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ring.Each(fn)
}

// Evicted returns how many elements capacity eviction has discarded.
func (p *Pipeline[T]) Evicted() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ring.Dropped()
}

// DeadDropped returns how many elements were abandoned after exhausting
// MaxAttempts deliveries.
func (p *Pipeline[T]) DeadDropped() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deadDrop
}

// Close cancels the flush timer. Queued elements are retained and no final
// flush is attempted; callers wanting one issue ForceFlush beforehand.
func (p *Pipeline[T]) Close() {
	p.once.Do(func() {
		if p.ticker != nil {
			p.ticker.Stop()
		}
		close(p.done)
	})
}

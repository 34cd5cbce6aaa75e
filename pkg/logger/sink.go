package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/model"
)

// Sink receives every event the logger accepts. Console mirroring is one
// registered sink among possibly several; callers can register their own.
type Sink interface {
	Write(ev model.LogEvent)
}

// ConsoleSink mirrors accepted events to a local writer via zerolog.
type ConsoleSink struct {
	zl zerolog.Logger
}

// NewConsoleSink creates a console sink writing to w, or stderr when w is
// nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stderr
	}
	return &ConsoleSink{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// Write mirrors one event.
func (s *ConsoleSink) Write(ev model.LogEvent) {
	e := s.zl.WithLevel(zerologLevel(ev.Level))
	if ev.Component != "" {
		e = e.Str("component", ev.Component)
	}
	if ev.SessionID != "" {
		e = e.Str("session_id", ev.SessionID)
	}
	for k, v := range ev.Context {
		e = e.Interface(k, v)
	}
	e.Msg(ev.Message)
}

func zerologLevel(l model.Level) zerolog.Level {
	switch l {
	case model.LevelDebug:
		return zerolog.DebugLevel
	case model.LevelWarn:
		return zerolog.WarnLevel
	case model.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev model.LogEvent)

// Write calls f.
func (f SinkFunc) Write(ev model.LogEvent) {
	f(ev)
}

package model

import (
	"time"
)

// Level defines the severity of a log event.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// levelRank orders levels from least to most severe. Unknown levels rank
// below debug so they never pass a threshold check.
func levelRank(l Level) int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	default:
		return -1
	}
}

// Valid reports whether l is one of the four recognized levels.
func (l Level) Valid() bool {
	return levelRank(l) >= 0
}

// AtLeast reports whether l is at or above min in the
// debug < info < warn < error order.
func (l Level) AtLeast(min Level) bool {
	return levelRank(l) >= levelRank(min)
}

// LogEvent is one captured log line. Immutable once created.
type LogEvent struct {
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
	Context   Context   `json:"context,omitempty"`
	Component string    `json:"component,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
}

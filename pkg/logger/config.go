package logger

import (
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/predatorx7/logship/pkg/model"
)

// Config configures one Logger. Zero values fall back to the defaults
// below; configuration happens at construction only.
type Config struct {
	// MinLevel discards events below this level before they enter the
	// queue. Default info.
	MinLevel model.Level

	// MaxStoredLogs bounds the in-memory queue. Default 100.
	MaxStoredLogs int

	// BatchSize caps events per delivery. Default 20.
	BatchSize int

	// FlushInterval is the periodic flush timer. Zero uses the default of
	// 30s; negative disables periodic flushing.
	FlushInterval time.Duration

	// Endpoint is the remote collector URL. Empty disables remote delivery
	// even when EnableRemote is set.
	Endpoint string

	// SourceKey authenticates against collectors that require it.
	SourceKey string

	// EnableRemote gates network delivery entirely.
	EnableRemote bool

	// EnableConsole mirrors every accepted event to the console sink.
	EnableConsole bool

	// DisableSessionTracking leaves events without a session identifier.
	DisableSessionTracking bool

	// MaxDeliveryAttempts caps retries per batch; zero retries forever.
	MaxDeliveryAttempts int

	// Console is where the console sink writes. Default stderr.
	Console io.Writer

	// Diag receives the logger's own diagnostics (delivery failures).
	// Default writes to stderr.
	Diag *zerolog.Logger

	// HTTPClient overrides the transport's HTTP client.
	HTTPClient *http.Client
}

const (
	defaultMaxStoredLogs = 100
	defaultBatchSize     = 20
	defaultFlushInterval = 30 * time.Second
)

func (c Config) normalize() Config {
	if !c.MinLevel.Valid() {
		c.MinLevel = model.LevelInfo
	}
	if c.MaxStoredLogs < 1 {
		c.MaxStoredLogs = defaultMaxStoredLogs
	}
	if c.BatchSize < 1 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	return c
}

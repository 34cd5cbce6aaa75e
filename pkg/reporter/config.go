package reporter

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// Config configures one Reporter. Zero values fall back to the defaults
// below; configuration happens at construction only.
type Config struct {
	// MaxStoredErrors bounds the in-memory queue. Default 50.
	MaxStoredErrors int

	// BatchSize caps reports per delivery. Default 10.
	BatchSize int

	// FlushInterval is the periodic flush timer. Zero uses the default of
	// 30s; negative disables periodic flushing. Critical reports flush
	// immediately regardless.
	FlushInterval time.Duration

	// Endpoint is the remote collector URL. Empty disables remote delivery
	// even when EnableRemote is set.
	Endpoint string

	// SourceKey authenticates against collectors that require it.
	SourceKey string

	// EnableRemote gates network delivery entirely.
	EnableRemote bool

	// EnableConsole mirrors every captured report to local diagnostics.
	EnableConsole bool

	// DisableSessionTracking leaves reports without a session identifier.
	DisableSessionTracking bool

	// DisableUserTracking omits UserID from reports even when set.
	DisableUserTracking bool

	// UserID identifies the user on whose behalf this process runs.
	UserID string

	// UserAgent and Origin describe the capturing environment. UserAgent
	// defaults to a runtime-derived string; Origin stays empty unless set.
	UserAgent string
	Origin    string

	// MaxDeliveryAttempts caps retries per batch; zero retries forever.
	MaxDeliveryAttempts int

	// Diag receives the reporter's own diagnostics and the console mirror.
	// Default writes to stderr.
	Diag *zerolog.Logger

	// HTTPClient overrides the transport's HTTP client.
	HTTPClient *http.Client
}

const (
	defaultMaxStoredErrors = 50
	defaultBatchSize       = 10
	defaultFlushInterval   = 30 * time.Second
)

func (c Config) normalize() Config {
	if c.MaxStoredErrors < 1 {
		c.MaxStoredErrors = defaultMaxStoredErrors
	}
	if c.BatchSize < 1 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent()
	}
	return c
}

func defaultUserAgent() string {
	return fmt.Sprintf("logship (%s; %s; %s)", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

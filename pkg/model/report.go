package model

import (
	"time"

	"github.com/google/uuid"
)

// Severity indicates how alarming an error report is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category groups error reports by their origin.
type Category string

const (
	CategoryJavaScript Category = "javascript"
	CategoryNetwork    Category = "network"
	CategoryAPI        Category = "api"
	CategoryUI         Category = "ui"
	CategoryUnknown    Category = "unknown"
)

// Environment captures where a report originated.
type Environment struct {
	UserAgent string `json:"user_agent,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ErrorReport is one captured error or incident.
// Only Resolved and Resolution may change after creation; everything else is
// fixed at capture time.
type ErrorReport struct {
	ID             string      `json:"id"`
	Time           time.Time   `json:"time"`
	Message        string      `json:"message"`
	Stack          string      `json:"stack,omitempty"`
	ComponentStack string      `json:"component_stack,omitempty"`
	Environment    Environment `json:"environment"`
	UserID         string      `json:"user_id,omitempty"`
	SessionID      string      `json:"session_id,omitempty"`
	Severity       Severity    `json:"severity"`
	Category       Category    `json:"category"`
	Context        Context     `json:"context,omitempty"`

	// RetryCount is how many times the originating operation was retried
	// before this report, not how many delivery attempts the report has seen.
	RetryCount int `json:"retry_count,omitempty"`

	Resolved   bool   `json:"resolved"`
	Resolution string `json:"resolution,omitempty"`
}

// NewReportID returns a unique identifier for one report.
func NewReportID() string {
	return uuid.NewString()
}

// NewSessionID returns a process-lifetime session token.
func NewSessionID() string {
	return uuid.NewString()
}

// Package classify maps captured error messages to a severity and a
// category. Classification is keyword-based, first match wins, and is total:
// every input yields exactly one severity and one category, with unknowns
// falling to the least alarming bucket.
package classify

import (
	"strings"

	"github.com/predatorx7/logship/pkg/model"
)

type severityRule struct {
	keywords []string
	severity model.Severity
}

type categoryRule struct {
	keywords []string
	category model.Category
}

// Rules are evaluated in order against the lower-cased message.
var severityRules = []severityRule{
	{[]string{"network", "fetch", "connection"}, model.SeverityMedium},
	{[]string{"unauthorized", "forbidden", "auth"}, model.SeverityHigh},
	{[]string{"typeerror", "referenceerror", "syntaxerror"}, model.SeverityHigh},
	{[]string{"rangeerror", "urierror"}, model.SeverityMedium},
}

var categoryRules = []categoryRule{
	{[]string{"component", "render"}, model.CategoryUI},
	{[]string{"network", "fetch", "connection"}, model.CategoryNetwork},
	{[]string{"api", "http", "request"}, model.CategoryAPI},
}

// Severity infers how alarming an error is from its message.
func Severity(message string) model.Severity {
	msg := strings.ToLower(message)
	for _, r := range severityRules {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return r.severity
			}
		}
	}
	return model.SeverityLow
}

// Category infers where an error originated. A component marker in the
// supplied context forces the UI category before any keyword matching.
func Category(message string, ctx model.Context) model.Category {
	if hasComponentMarker(ctx) {
		return model.CategoryUI
	}
	msg := strings.ToLower(message)
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(msg, kw) {
				return r.category
			}
		}
	}
	return model.CategoryJavaScript
}

// Classify returns both inferences for one message.
func Classify(message string, ctx model.Context) (model.Severity, model.Category) {
	return Severity(message), Category(message, ctx)
}

func hasComponentMarker(ctx model.Context) bool {
	if ctx == nil {
		return false
	}
	for _, key := range []string{"component", "component_stack", "componentStack"} {
		if v, ok := ctx[key]; ok && v.Text() != "" {
			return true
		}
	}
	return false
}

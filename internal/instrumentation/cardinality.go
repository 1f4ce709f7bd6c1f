package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with calendar identifiers.

// ExtractCalendarDomain extracts the domain part from an email-style calendar ID.
// This reduces cardinality by using the domain instead of the full calendar ID.
// Google calendar IDs are email addresses for personal calendars and
// "<id>@group.calendar.google.com" for shared ones.
//
// Example:
//
//	ExtractCalendarDomain("jane@example.com")                    // "example.com"
//	ExtractCalendarDomain("abc123@group.calendar.google.com")    // "group.calendar.google.com"
//	ExtractCalendarDomain("primary")                             // "unknown"
//	ExtractCalendarDomain("")                                    // "unknown"
func ExtractCalendarDomain(calendarID string) string {
	if calendarID == "" {
		return "unknown"
	}

	parts := strings.Split(calendarID, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}

	return "unknown"
}

// Common operation types for calendar and LLM metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList     = "list"
	OperationGet      = "get"
	OperationCreate   = "create"
	OperationUpdate   = "update"
	OperationPatch    = "patch"
	OperationDelete   = "delete"
	OperationSearch   = "search"
	OperationGenerate = "generate"
)

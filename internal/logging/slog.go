package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation    = "operation"
	KeyService      = "service"
	KeyCalendarHash = "calendar_hash"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyTool         = "tool"
	KeyProvider     = "provider"
)

// Status values for consistent logging.
// Note: These are intentionally duplicated from instrumentation package
// to avoid circular dependencies (instrumentation imports logging).
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithService returns a logger with the service attribute set.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithCalendar returns a logger with the anonymized calendar attribute set.
func WithCalendar(logger *slog.Logger, calendarID string) *slog.Logger {
	return logger.With(slog.String(KeyCalendarHash, AnonymizeCalendarID(calendarID)))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Service returns a slog attribute for the service name.
func Service(svc string) slog.Attr {
	return slog.String(KeyService, svc)
}

// Tool returns a slog attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Provider returns a slog attribute for the LLM provider name.
func Provider(provider string) slog.Attr {
	return slog.String(KeyProvider, provider)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from output.
// This allows safely passing Err(maybeNilErr) without adding empty attributes.
//
// Usage:
//
//	logger.Info("operation", logging.Err(err))  // Safe even if err is nil
func Err(err error) slog.Attr {
	if err == nil {
		// Return an empty Group that slog will omit from output
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeCalendarID returns a hashed representation of a calendar ID for
// logging purposes. Calendar IDs are usually email addresses, so hashing
// allows correlation of log entries without exposing PII. The "primary"
// alias carries no identity and is passed through unchanged.
func AnonymizeCalendarID(calendarID string) string {
	if calendarID == "" {
		return ""
	}
	if calendarID == "primary" {
		return "primary"
	}
	hash := sha256.Sum256([]byte(calendarID))
	return "cal:" + hex.EncodeToString(hash[:8])
}

// CalendarHash returns a slog attribute with the anonymized calendar ID.
// This is a convenience function to reduce repetition in logging calls and ensure
// consistent attribute naming across the codebase.
//
// Usage:
//
//	logger.Info("events listed", logging.CalendarHash(calendarID))
func CalendarHash(calendarID string) slog.Attr {
	return slog.String(KeyCalendarHash, AnonymizeCalendarID(calendarID))
}

// SanitizeToken returns a masked version of a token for logging.
// It returns a length indicator without exposing any token content,
// as even partial token prefixes can aid attacks.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// ExtractDomain extracts the domain part from an email-shaped calendar ID.
// This is useful for lower-cardinality logging where the full ID would
// create too many unique values.
func ExtractDomain(calendarID string) string {
	if calendarID == "" {
		return ""
	}
	parts := strings.Split(calendarID, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the calendar ID's domain (lower cardinality
// than the full ID).
func Domain(calendarID string) slog.Attr {
	return slog.String("calendar_domain", ExtractDomain(calendarID))
}

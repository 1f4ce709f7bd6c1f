// Package logging provides structured logging utilities for calagent.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (calendar IDs are usually email addresses and are hashed)
//   - Consistent attribute naming across the codebase
//   - Logger adapter interface for flexibility
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "events.list")
//	logger.Info("listing events",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("calendar operation",
//	    logging.CalendarHash(calendarID))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Calendar IDs are hashed to prevent PII leakage while allowing correlation
//   - The proxy API key is never logged directly (see SanitizeToken)
package logging

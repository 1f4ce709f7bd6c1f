// Package common provides shared utilities for MCP tool implementations.
// It contains calendar argument helpers and instrumentation wrappers used
// across all tool packages to ensure consistent behavior.
package common

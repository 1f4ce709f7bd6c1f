// Package instrumentation provides comprehensive OpenTelemetry instrumentation
// for the calagent MCP server.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, calendar API calls, and LLM requests
//   - Distributed tracing for request flows and upstream calls
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// The package exposes the following metric categories:
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//   - active_sessions: Gauge of in-flight MCP connections
//
// Calendar API Metrics:
//   - calendar_api_operations_total: Counter of proxy-backed calendar operations by operation, status
//   - calendar_api_operation_duration_seconds: Histogram of calendar operation durations
//
// LLM Metrics:
//   - llm_requests_total: Counter of LLM requests by provider, operation, status
//   - llm_request_duration_seconds: Histogram of LLM request durations
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Distributed tracing spans are created for:
//   - MCP tool invocations (tool.<name>)
//   - Calendar API calls (calendar.<operation>)
//   - LLM requests (llm.<operation>)
//
// Span attributes never include raw calendar IDs; only anonymized hashes
// are attached.
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calagent)
//
// # Example Usage
//
//	// Initialize instrumentation
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.Config{
//		ServiceName:    "calagent",
//		ServiceVersion: "0.1.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	// Get metrics recorder
//	recorder := provider.Metrics()
//
//	// Record an HTTP request
//	recorder.RecordHTTPRequest(ctx, "POST", "/mcp", 200, time.Since(start))
//
//	// Record a calendar API operation
//	recorder.RecordCalendarAPIOperation(ctx, "list", "success", time.Since(start))
//
//	// Record an MCP tool invocation
//	recorder.RecordToolInvocation(ctx, "calendar_list_events", "success", time.Since(start))
package instrumentation

// Package server provides the MCP server context, HTTP transport, and
// operational endpoints for the calagent application.
//
// # Key Components
//
// ServerContext manages the shared dependencies of the MCP server: the
// proxy-backed calendar client (created lazily and cached), the optional
// LLM service, and the instrumentation hooks used by tool handlers. The
// server never holds Google credentials; all calendar traffic goes
// through the proxy, which injects authentication on its side.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport
// on /mcp, with optional request metrics and in-flight connection
// tracking. Health and Prometheus endpoints are intentionally kept off
// this listener.
//
// MetricsServer serves /metrics on a dedicated port so operational
// data never shares a listener with MCP traffic. When a HealthChecker
// is configured it also serves the Kubernetes probe endpoints:
//   - /healthz: liveness probe
//   - /readyz: readiness probe (ready flag plus shutdown state)
//   - /healthz/detailed: uptime, proxy target, and LLM provider
package server

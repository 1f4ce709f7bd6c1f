package server

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/instrumentation"
)

// HTTPServerConfig holds configuration for the streamable HTTP transport
type HTTPServerConfig struct {
	// DisableStreaming forces plain JSON responses instead of SSE streams.
	// Some MCP clients behind buffering proxies need this.
	DisableStreaming bool

	// Metrics, when set, records request counts, latencies and in-flight
	// connections for the MCP endpoint
	Metrics *instrumentation.Metrics
}

// HTTPServer exposes an MCP server over the streamable HTTP transport.
// The MCP endpoint is served on /mcp; health and metrics endpoints live
// on the dedicated metrics port instead of this one.
type HTTPServer struct {
	mcpServer        *mcpserver.MCPServer
	httpServer       *http.Server
	metrics          *instrumentation.Metrics
	disableStreaming bool
}

// NewHTTPServer creates a new HTTP server for MCP
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	return &HTTPServer{
		mcpServer:        mcpServer,
		metrics:          config.Metrics,
		disableStreaming: config.DisableStreaming,
	}
}

// Start starts the HTTP server on the given address. It blocks until the
// server stops, returning http.ErrServerClosed after a graceful shutdown.
func (s *HTTPServer) Start(addr string) error {
	mux := http.NewServeMux()

	var streamable http.Handler
	if s.disableStreaming {
		streamable = mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
			mcpserver.WithDisableStreaming(true),
		)
	} else {
		streamable = mcpserver.NewStreamableHTTPServer(s.mcpServer,
			mcpserver.WithEndpointPath("/mcp"),
		)
	}

	mux.Handle("/mcp", s.instrumented(streamable))

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// instrumented wraps the MCP handler with request metrics. Without a
// metrics recorder the handler is returned unchanged.
func (s *HTTPServer) instrumented(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()

		s.metrics.IncrementActiveSessions(ctx)
		defer s.metrics.DecrementActiveSessions(ctx)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		s.metrics.RecordHTTPRequest(ctx, r.Method, "/mcp", sw.status, time.Since(start))
	})
}

// statusWriter captures the response status code for metrics
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush forwards flushes so SSE streaming keeps working through the wrapper
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

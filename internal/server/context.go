package server

import (
	"context"
	"sync"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/llm"
	"github.com/timegrid/calagent/internal/proxy"
)

// ServerContext holds the shared dependencies for the MCP server
type ServerContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	proxyCfg proxy.Config

	// calendarClient is created on first use; the proxy may be
	// unreachable or misconfigured at startup
	calendarClient *calendar.Client

	llmService  *llm.Service
	llmProvider string

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The calendar client is
// initialized lazily so the server can start before the proxy is up.
func NewServerContext(ctx context.Context, proxyCfg proxy.Config) (*ServerContext, error) {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		proxyCfg: proxyCfg,
		shutdown: false,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// ProxyConfig returns the proxy connection settings
func (sc *ServerContext) ProxyConfig() proxy.Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.proxyCfg
}

// CalendarClient returns the calendar client, creating and caching it on
// first use. Creation fails when the proxy configuration is invalid.
func (sc *ServerContext) CalendarClient() (*calendar.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.calendarClient != nil {
		return sc.calendarClient, nil
	}

	client, err := calendar.NewClient(sc.ctx, sc.proxyCfg)
	if err != nil {
		return nil, err
	}

	sc.calendarClient = client
	return client, nil
}

// SetCalendarClient sets the calendar client, overriding lazy creation.
// Used by tests to inject a client bound to a fake proxy.
func (sc *ServerContext) SetCalendarClient(client *calendar.Client) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.calendarClient = client
}

// LLMService returns the configured LLM service, or nil when the server
// runs without an LLM provider
func (sc *ServerContext) LLMService() *llm.Service {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.llmService
}

// SetLLMService sets the LLM service and the provider name used for
// metrics labels ("local", "gemini")
func (sc *ServerContext) SetLLMService(svc *llm.Service, providerName string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.llmService = svc
	sc.llmProvider = providerName
}

// LLMProviderName returns the name of the configured LLM provider,
// or "none" when no provider is set
func (sc *ServerContext) LLMProviderName() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if sc.llmProvider == "" {
		return "none"
	}
	return sc.llmProvider
}

// Metrics returns the metrics recorder, or nil if instrumentation is not
// configured
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder for tool instrumentation
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil if audit logging is not
// configured
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger for tool instrumentation
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}

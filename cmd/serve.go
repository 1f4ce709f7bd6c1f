package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/llm"
	"github.com/timegrid/calagent/internal/proxy"
	"github.com/timegrid/calagent/internal/resources"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/calendar_tools"
)

// LLM provider names accepted by --llm-provider
const (
	llmProviderLocal  = "local"
	llmProviderGemini = "gemini"
	llmProviderNone   = "none"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

// LLMConfig holds the assistant provider selection
type LLMConfig struct {
	// Provider is the normalized provider name: "local", "gemini" or "none"
	Provider string

	// URL is the chat completions endpoint (local provider only)
	URL string

	// Model is the model name sent with each request
	Model string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode        bool
		transport        string
		httpAddr         string
		yolo             bool
		disableStreaming bool
		proxyURL         string
		proxyAPIKey      string
		llmProvider      string
		llmURL           string
		llmModel         string
		// Metrics server configuration
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide calendar
tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe operations.
  Use --yolo to enable write operations (event creation, updates, deletion).

Proxy Configuration:
  All calendar traffic goes through the calendar proxy:
    --proxy-url and --proxy-api-key flags
    OR PROXY_URL and PROXY_API_KEY env vars
  The proxy holds the Google credentials; this process only carries its API key.

Assistant Configuration:
  Summaries, schedule analysis and briefings need an LLM provider:
    --llm-provider local   OpenAI-compatible endpoint (--llm-url, --llm-model,
                           or LLM_URL / LLM_MODEL / LLM_API_KEY env vars)
    --llm-provider gemini  Google Gemini (GEMINI_API_KEY env var)
    --llm-provider none    run without assistant tools`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Proxy settings: flags override environment
			proxyConfig := proxy.ConfigFromEnv()
			if proxyURL != "" {
				proxyConfig.URL = proxyURL
			}
			if proxyAPIKey != "" {
				proxyConfig.APIKey = proxyAPIKey
			}

			llmConfig := LLMConfig{
				Provider: normalizeLLMProvider(llmProvider),
				URL:      llmURL,
				Model:    llmModel,
			}

			// Build metrics config
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}

			return runServe(transport, debugMode, httpAddr, yolo, disableStreaming, proxyConfig, llmConfig, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&yolo, "yolo", false, "Enable write operations (event creation, updates, deletion). Default is read-only mode.")
	cmd.Flags().BoolVar(&disableStreaming, "disable-streaming", false, "Disable streaming for HTTP transport (for compatibility with certain clients)")
	cmd.Flags().StringVar(&proxyURL, "proxy-url", "", "Calendar proxy base URL. Can also use PROXY_URL env var. Default: "+proxy.DefaultURL)
	cmd.Flags().StringVar(&proxyAPIKey, "proxy-api-key", "", "API key for the calendar proxy. Can also use PROXY_API_KEY env var.")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for assistant tools: local, gemini or none. Can also use LLM_PROVIDER env var. Default: local")
	cmd.Flags().StringVar(&llmURL, "llm-url", "", "Chat completions endpoint for the local LLM provider. Can also use LLM_URL env var.")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "Model name for the LLM provider. Can also use LLM_MODEL or GEMINI_MODEL env vars.")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr string, yolo bool, disableStreaming bool, proxyConfig proxy.Config, llmConfig LLMConfig, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if debugMode {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	// Load metrics config from environment if not set via flags
	if !metricsConfig.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			metricsConfig.Enabled = true
		}
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == server.DefaultMetricsAddr {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Warn about an incomplete proxy config but keep going: the calendar
	// client is created lazily, so tool calls report the problem instead
	if err := proxyConfig.Validate(); err != nil {
		if transport != "stdio" {
			log.Printf("Warning: calendar proxy not fully configured (tool calls will fail): %v", err)
		}
	}

	// Create server context
	serverContext, err := server.NewServerContext(shutdownCtx, proxyConfig)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	// Wire up the assistant provider
	closeLLM, err := configureLLMService(shutdownCtx, serverContext, llmConfig)
	if err != nil {
		return err
	}
	defer closeLLM()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging))
	}

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
			HealthChecker:           server.NewHealthChecker(serverContext),
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		// Wait for metrics server to be ready or fail
		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	// Note: mcp.Implementation has Title field but WithTitle() ServerOption not available in v0.43.0
	mcpSrv := mcpserver.NewMCPServer("calagent", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	// readOnly is the inverse of yolo
	readOnly := !yolo

	// Log the mode for visibility (only for non-stdio transports)
	if transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
		log.Printf("Assistant provider: %s", serverContext.LLMProviderName())
	}

	// Register all tools and resources
	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	// Start the appropriate server based on transport type
	switch transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, provider, httpAddr, disableStreaming, metricsConfig)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, instrProvider *instrumentation.Provider, addr string, disableStreaming bool, metricsConfig MetricsConfig) error {
	httpConfig := server.HTTPServerConfig{
		DisableStreaming: disableStreaming,
	}
	if instrProvider != nil && instrProvider.Enabled() {
		httpConfig.Metrics = instrProvider.Metrics()
	}

	httpServer := server.NewHTTPServer(mcpSrv, httpConfig)

	fmt.Printf("Starting calagent MCP server with streamable-http transport on %s\n", addr)
	fmt.Printf("  HTTP endpoint: /mcp\n")
	if metricsConfig.Enabled {
		fmt.Printf("  Metrics endpoint: %s/metrics\n", metricsConfig.Addr)
		fmt.Printf("  Health endpoints: %s/healthz, %s/readyz\n", metricsConfig.Addr, metricsConfig.Addr)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(addr); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		fmt.Println("Shutdown signal received, stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		fmt.Println("HTTP server stopped normally")
	}

	fmt.Println("HTTP server gracefully stopped")
	return nil
}

// registerAllTools registers all MCP tools and resources
// Extracted so doc generation sees the same surface as serve
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	// Define all tool registrations
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Calendar Resources",
			register: func() error {
				return resources.RegisterCalendarResources(mcpSrv, ctx)
			},
		},
	}

	// Register all tools
	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

// configureLLMService wires the selected provider into the server context.
// The returned cleanup releases provider resources and is never nil.
func configureLLMService(ctx context.Context, sc *server.ServerContext, cfg LLMConfig) (func(), error) {
	cleanup := func() {}

	switch cfg.Provider {
	case llmProviderLocal:
		provider := llm.NewLocalProvider(cfg.URL, cfg.Model, "")
		sc.SetLLMService(llm.NewService(provider), llmProviderLocal)
		return cleanup, nil

	case llmProviderGemini:
		provider, err := llm.NewGeminiProvider(ctx, "", cfg.Model)
		if err != nil {
			return cleanup, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		sc.SetLLMService(llm.NewService(provider), llmProviderGemini)
		return func() {
			if err := provider.Close(); err != nil {
				log.Printf("Error closing Gemini client: %v", err)
			}
		}, nil

	case llmProviderNone:
		// Assistant tools stay registered and report the missing provider
		// at call time
		return cleanup, nil
	}

	return cleanup, fmt.Errorf("unsupported LLM provider: %s (supported: local, gemini, none)", cfg.Provider)
}

// normalizeLLMProvider resolves the provider name from the flag value, the
// LLM_PROVIDER environment variable, and the default, in that order.
func normalizeLLMProvider(value string) string {
	provider := strings.ToLower(strings.TrimSpace(value))
	if provider == "" {
		provider = strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	}
	if provider == "" {
		provider = llmProviderLocal
	}
	return provider
}

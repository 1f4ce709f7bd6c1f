package calendar_tools

import (
	"errors"
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/llm"
	"github.com/timegrid/calagent/internal/proxy"
	"github.com/timegrid/calagent/internal/server"
)

// getCalendarClient returns the shared proxy-backed calendar client
func getCalendarClient(sc *server.ServerContext) (*calendar.Client, error) {
	client, err := sc.CalendarClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return client, nil
}

// getLLMService returns the configured LLM service. Assistant tools call
// this and report a clear error when the server runs without a provider.
func getLLMService(sc *server.ServerContext) (*llm.Service, error) {
	svc := sc.LLMService()
	if svc == nil {
		return nil, errors.New("assistant features are disabled (no LLM provider configured)")
	}
	return svc, nil
}

// formatProxyError renders an upstream failure for tool output. Auth and
// permission failures get their own prefixes so agents can react to them.
func formatProxyError(err error) string {
	var perr *proxy.Error
	if errors.As(err, &perr) {
		switch {
		case proxy.IsAuth(err):
			return "Authentication error: " + perr.Message
		case proxy.IsForbidden(err):
			return "Operation blocked: " + perr.Message
		default:
			return "Proxy error: " + perr.Message
		}
	}
	return fmt.Sprintf("Proxy error: %v", err)
}

// RegisterCalendarTools registers all calendar tools with the MCP server.
// Write tools are skipped when readOnly is set.
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// Register calendar list tools
	if err := RegisterCalendarListTools(s, sc); err != nil {
		return fmt.Errorf("failed to register calendar list tools: %w", err)
	}

	// Register event tools
	if err := RegisterEventTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register event tools: %w", err)
	}

	// Register scheduling tools
	if err := RegisterSchedulingTools(s, sc); err != nil {
		return fmt.Errorf("failed to register scheduling tools: %w", err)
	}

	// Register assistant tools
	if err := RegisterAssistTools(s, sc); err != nil {
		return fmt.Errorf("failed to register assist tools: %w", err)
	}

	// Register bulk tools
	if err := RegisterBulkTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register bulk tools: %w", err)
	}

	return nil
}

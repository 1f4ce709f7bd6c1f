package calendar_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/common"
)

// RegisterCalendarListTools registers calendar list tools with the MCP server
func RegisterCalendarListTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// List calendars tool
	listCalendarsTool := mcp.NewTool("calendar_list_calendars",
		mcp.WithDescription("List all calendars accessible through the proxy"),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of calendars to return"),
		),
		mcp.WithString("pageToken",
			mcp.Description("Page token from a previous listing"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include deleted calendar list entries"),
		),
		mcp.WithBoolean("showHidden",
			mcp.Description("Include hidden calendar list entries"),
		),
	)

	s.AddTool(listCalendarsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_calendars", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListCalendars(ctx, request, sc)
		}))

	// Get calendar tool
	getCalendarTool := mcp.NewTool("calendar_get_calendar",
		mcp.WithDescription("Get information about a specific calendar"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
	)

	s.AddTool(getCalendarTool, common.InstrumentedToolHandlerWithService(
		"calendar_get_calendar", instrumentation.ServiceCalendar, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetCalendar(ctx, request, sc)
		}))

	return nil
}

func handleListCalendars(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	opts := calendar.ListCalendarsOptions{}
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		opts.MaxResults = int64(maxResultsVal)
	}
	if pageToken, ok := args["pageToken"].(string); ok {
		opts.PageToken = pageToken
	}
	if showDeleted, ok := args["showDeleted"].(bool); ok {
		opts.ShowDeleted = showDeleted
	}
	if showHidden, ok := args["showHidden"].(bool); ok {
		opts.ShowHidden = showHidden
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	calendars, nextPageToken, err := client.ListCalendars(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Found %d calendar(s):\n\n", len(calendars))
	for i, cal := range calendars {
		result += fmt.Sprintf("%d. %s\n", i+1, cal.Summary)
		result += fmt.Sprintf("   ID: %s\n", cal.ID)
		if cal.AccessRole != "" {
			result += fmt.Sprintf("   Access Role: %s\n", cal.AccessRole)
		}
		if cal.Primary {
			result += "   [PRIMARY]\n"
		}
		if cal.Description != "" {
			result += fmt.Sprintf("   Description: %s\n", cal.Description)
		}
		if cal.TimeZone != "" {
			result += fmt.Sprintf("   Time Zone: %s\n", cal.TimeZone)
		}
		result += "\n"
	}

	if nextPageToken != "" {
		result += fmt.Sprintf("More calendars available. Next page token: %s\n", nextPageToken)
	}

	return mcp.NewToolResultText(result), nil
}

func handleGetCalendar(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cal, err := client.GetCalendar(ctx, calendarID)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Calendar: %s\n", cal.Summary)
	result += fmt.Sprintf("ID: %s\n", cal.ID)
	if cal.AccessRole != "" {
		result += fmt.Sprintf("Access Role: %s\n", cal.AccessRole)
	}
	if cal.Primary {
		result += "Type: PRIMARY\n"
	}
	if cal.Description != "" {
		result += fmt.Sprintf("Description: %s\n", cal.Description)
	}
	if cal.TimeZone != "" {
		result += fmt.Sprintf("Time Zone: %s\n", cal.TimeZone)
	}

	return mcp.NewToolResultText(result), nil
}

package calendar_tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/llm"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/common"
)

// maxSearchResults caps the search page size
const maxSearchResults = 500

// RegisterSchedulingTools registers search and availability tools with the MCP server
func RegisterSchedulingTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Search events tool
	searchEventsTool := mcp.NewTool("calendar_search_events",
		mcp.WithDescription("Search events in a calendar with structured filters"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("query",
			mcp.Description("Free-text search query"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of time range (RFC3339 format)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of time range (RFC3339 format)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum results (default: 100, capped at 500)"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order: 'startTime' or 'updated'"),
		),
		mcp.WithBoolean("showDeleted",
			mcp.Description("Include deleted events"),
		),
	)

	s.AddTool(searchEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_search_events", instrumentation.ServiceCalendar, instrumentation.OperationSearch, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchEvents(ctx, request, sc)
		}))

	// Find free time tool
	findFreeTimeTool := mcp.NewTool("calendar_find_free_time",
		mcp.WithDescription("Find available time slots in a calendar, with optional AI scheduling suggestions"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of search range (RFC3339 format, e.g., '2025-01-06T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of search range (RFC3339 format, e.g., '2025-01-10T23:59:59Z')"),
		),
		mcp.WithNumber("durationMinutes",
			mcp.Required(),
			mcp.Description("Required meeting duration in minutes"),
		),
		mcp.WithBoolean("workingHoursOnly",
			mcp.Description("Only consider 9am-5pm slots (default: true)"),
		),
		mcp.WithBoolean("preferMorning",
			mcp.Description("Prefer morning times in the suggestions"),
		),
		mcp.WithBoolean("preferAfternoon",
			mcp.Description("Prefer afternoon times in the suggestions"),
		),
		mcp.WithNumber("bufferMinutes",
			mcp.Description("Desired buffer between meetings, in minutes"),
		),
		mcp.WithBoolean("suggest",
			mcp.Description("Append AI scheduling recommendations (default: true)"),
		),
	)

	s.AddTool(findFreeTimeTool, common.InstrumentedToolHandlerWithService(
		"calendar_find_free_time", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleFindFreeTime(ctx, request, sc)
		}))

	return nil
}

func handleSearchEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	query := calendar.DefaultEventsQuery()
	if queryVal, ok := args["query"].(string); ok {
		query.Query = queryVal
	}
	if timeMin, ok := args["timeMin"].(string); ok {
		query.TimeMin = timeMin
	}
	if timeMax, ok := args["timeMax"].(string); ok {
		query.TimeMax = timeMax
	}
	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		query.MaxResults = int64(maxResultsVal)
		if query.MaxResults > maxSearchResults {
			query.MaxResults = maxSearchResults
		}
	}
	if orderBy, ok := args["orderBy"].(string); ok && orderBy != "" {
		query.OrderBy = orderBy
	}
	if showDeleted, ok := args["showDeleted"].(bool); ok {
		query.ShowDeleted = showDeleted
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, nextPageToken, err := client.ListEvents(ctx, calendarID, query)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	if len(events) == 0 {
		return mcp.NewToolResultText("No events found matching the search criteria"), nil
	}

	result := fmt.Sprintf("Found %d matching event(s):\n\n", len(events))
	for i, event := range events {
		summary := calendar.ToEventSummary(event, calendarID)
		result += fmt.Sprintf("%d. %s\n", i+1, summary.Summary)
		result += fmt.Sprintf("   ID: %s\n", summary.ID)
		result += fmt.Sprintf("   Start: %s\n", summary.Start)
		result += fmt.Sprintf("   End: %s\n", summary.End)
		if summary.Location != "" {
			result += fmt.Sprintf("   Location: %s\n", summary.Location)
		}
		if summary.Status != "" {
			result += fmt.Sprintf("   Status: %s\n", summary.Status)
		}
		result += "\n"
	}

	if nextPageToken != "" {
		result += fmt.Sprintf("More events available. Next page token: %s\n", nextPageToken)
	}

	return mcp.NewToolResultText(result), nil
}

func handleFindFreeTime(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	timeMin, ok := args["timeMin"].(string)
	if !ok || timeMin == "" {
		return mcp.NewToolResultError("timeMin is required"), nil
	}
	if _, err := calendar.ParseEventTime(timeMin); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMin format: %v", err)), nil
	}

	timeMax, ok := args["timeMax"].(string)
	if !ok || timeMax == "" {
		return mcp.NewToolResultError("timeMax is required"), nil
	}
	if _, err := calendar.ParseEventTime(timeMax); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid timeMax format: %v", err)), nil
	}

	durationVal, ok := args["durationMinutes"].(float64)
	if !ok || durationVal <= 0 {
		return mcp.NewToolResultError("durationMinutes is required and must be positive"), nil
	}
	durationMinutes := int(durationVal)

	workingHoursOnly := true
	if workingVal, ok := args["workingHoursOnly"].(bool); ok {
		workingHoursOnly = workingVal
	}

	suggest := true
	if suggestVal, ok := args["suggest"].(bool); ok {
		suggest = suggestVal
	}

	prefs := llm.Preferences{}
	if preferMorning, ok := args["preferMorning"].(bool); ok {
		prefs.PreferMorning = preferMorning
	}
	if preferAfternoon, ok := args["preferAfternoon"].(bool); ok {
		prefs.PreferAfternoon = preferAfternoon
	}
	if bufferVal, ok := args["bufferMinutes"].(float64); ok && bufferVal > 0 {
		prefs.BufferMinutes = int(bufferVal)
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	query := calendar.DefaultEventsQuery()
	query.TimeMin = timeMin
	query.TimeMax = timeMax

	events, _, err := client.ListEvents(ctx, calendarID, query)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	opts := calendar.DefaultSlotOptions()
	opts.MinDuration = time.Duration(durationMinutes) * time.Minute
	opts.WorkingHoursOnly = workingHoursOnly

	slots := calendar.FindFreeSlots(events, timeMin, timeMax, opts)

	if len(slots) == 0 {
		return mcp.NewToolResultText("No available time slots found for the specified criteria"), nil
	}

	result := fmt.Sprintf("Found %d available time slot(s) for a %d minute meeting:\n\n",
		len(slots), durationMinutes)
	for i, slot := range slots {
		result += fmt.Sprintf("%d. %s to %s (%d minutes free)\n",
			i+1,
			slot.Start.Format("Mon, Jan 2 at 3:04 PM"),
			slot.End.Format("3:04 PM"),
			slot.Minutes())
	}

	// Suggestions are best-effort; a missing provider or a model failure
	// never fails the availability listing itself
	if suggest {
		if svc := sc.LLMService(); svc != nil {
			suggestion, err := svc.SuggestFreeTime(ctx, slots, durationMinutes, prefs)
			if err != nil {
				result += fmt.Sprintf("\nAI suggestions unavailable: %v\n", err)
			} else {
				result += fmt.Sprintf("\nAI recommendations:\n%s\n", suggestion.Suggestions)
			}
		}
	}

	return mcp.NewToolResultText(result), nil
}

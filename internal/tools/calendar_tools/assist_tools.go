package calendar_tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/batch"
	"github.com/timegrid/calagent/internal/tools/common"
)

// RegisterAssistTools registers the LLM-backed assistant tools with the MCP
// server. Events are fetched through the proxy and processed locally; only
// the generated text leaves the server.
func RegisterAssistTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Summarize event tool
	summarizeEventTool := mcp.NewTool("calendar_summarize_event",
		mcp.WithDescription("Summarize a calendar event using AI"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID containing the event"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Event ID to summarize"),
		),
		mcp.WithString("format",
			mcp.Description("'brief' (default) or 'detailed'"),
		),
	)

	s.AddTool(summarizeEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_summarize_event", instrumentation.ServiceLLM, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSummarizeEvent(ctx, request, sc)
		}))

	// Ask about event tool
	askAboutEventTool := mcp.NewTool("calendar_ask_about_event",
		mcp.WithDescription("Ask a question about a specific calendar event"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID containing the event"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("Event ID to ask about"),
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to ask about the event"),
		),
	)

	s.AddTool(askAboutEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_ask_about_event", instrumentation.ServiceLLM, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAskAboutEvent(ctx, request, sc)
		}))

	// Batch summarize tool
	batchSummarizeTool := mcp.NewTool("calendar_batch_summarize",
		mcp.WithDescription("Summarize multiple events at once, optionally with triage classification"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID containing the events"),
		),
		mcp.WithString("eventIds",
			mcp.Required(),
			mcp.Description("Event ID, or JSON array of event IDs, to summarize"),
		),
		mcp.WithBoolean("triage",
			mcp.Description("Classify each event by action type (default: false)"),
		),
	)

	s.AddTool(batchSummarizeTool, common.InstrumentedToolHandlerWithService(
		"calendar_batch_summarize", instrumentation.ServiceLLM, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleBatchSummarize(ctx, request, sc)
		}))

	// Analyze schedule tool
	analyzeScheduleTool := mcp.NewTool("calendar_analyze_schedule",
		mcp.WithDescription("Analyze schedule patterns and get AI-powered insights"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID to analyze"),
		),
		mcp.WithString("timeMin",
			mcp.Required(),
			mcp.Description("Start of analysis period (RFC3339 format)"),
		),
		mcp.WithString("timeMax",
			mcp.Required(),
			mcp.Description("End of analysis period (RFC3339 format)"),
		),
		mcp.WithString("analysisType",
			mcp.Description("Type: 'overview' (default), 'workload', 'patterns', or 'conflicts'"),
		),
	)

	s.AddTool(analyzeScheduleTool, common.InstrumentedToolHandlerWithService(
		"calendar_analyze_schedule", instrumentation.ServiceLLM, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAnalyzeSchedule(ctx, request, sc)
		}))

	// Prepare briefing tool
	prepareBriefingTool := mcp.NewTool("calendar_prepare_briefing",
		mcp.WithDescription("Generate an AI-powered briefing of the upcoming schedule"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID for the briefing"),
		),
		mcp.WithString("briefingType",
			mcp.Description("'daily' (default) or 'weekly'"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start time (defaults to now)"),
		),
		mcp.WithString("timeMax",
			mcp.Description("End time (defaults to one day or one week out, based on the briefing type)"),
		),
	)

	s.AddTool(prepareBriefingTool, common.InstrumentedToolHandlerWithService(
		"calendar_prepare_briefing", instrumentation.ServiceLLM, instrumentation.OperationGenerate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handlePrepareBriefing(ctx, request, sc)
		}))

	return nil
}

func handleSummarizeEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	format := "brief"
	if formatVal, ok := args["format"].(string); ok && formatVal != "" {
		format = formatVal
	}

	svc, err := getLLMService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(ctx, calendarID, eventID, "")
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	summary, err := svc.SummarizeEvent(ctx, event, format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Summary for event %s:\n\n%s", summary.EventID, summary.Summary)), nil
}

func handleAskAboutEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	question, ok := args["question"].(string)
	if !ok || question == "" {
		return mcp.NewToolResultError("question is required"), nil
	}

	svc, err := getLLMService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(ctx, calendarID, eventID, "")
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	answer, err := svc.AskAboutEvent(ctx, event, question)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to answer question: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Question: %s\n\nAnswer: %s", answer.Question, answer.Answer)), nil
}

func handleBatchSummarize(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventIDs, err := batch.ParseStringOrArray(args["eventIds"], "eventIds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	triage := false
	if triageVal, ok := args["triage"].(bool); ok {
		triage = triageVal
	}

	svc, err := getLLMService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Fetch all events, continuing on individual failures
	events := make([]*gcal.Event, 0, len(eventIDs))
	var failures []string
	for _, id := range eventIDs {
		event, err := client.GetEvent(ctx, calendarID, id, "")
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", id, formatProxyError(err)))
			continue
		}
		events = append(events, event)
	}

	batchResult, err := svc.BatchSummarize(ctx, events, triage)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to summarize events: %v", err)), nil
	}

	var result string
	switch {
	case batchResult.Total == 0:
		result = "No events could be summarized.\n"
	case triage:
		jsonBytes, err := json.MarshalIndent(batchResult.Results, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to format triage results: %v", err)), nil
		}
		result = fmt.Sprintf("Triage of %d event(s):\n\n%s\n", batchResult.Total, string(jsonBytes))
	default:
		result = fmt.Sprintf("Summary of %d event(s):\n\n%s\n", batchResult.Total, batchResult.Results[0].Summary)
	}

	if len(failures) > 0 {
		result += fmt.Sprintf("\nFailed to fetch %d event(s):\n", len(failures))
		for _, failure := range failures {
			result += fmt.Sprintf("  - %s\n", failure)
		}
	}

	return mcp.NewToolResultText(result), nil
}

func handleAnalyzeSchedule(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	timeMin, ok := args["timeMin"].(string)
	if !ok || timeMin == "" {
		return mcp.NewToolResultError("timeMin is required"), nil
	}

	timeMax, ok := args["timeMax"].(string)
	if !ok || timeMax == "" {
		return mcp.NewToolResultError("timeMax is required"), nil
	}

	analysisType := "overview"
	if analysisVal, ok := args["analysisType"].(string); ok && analysisVal != "" {
		analysisType = analysisVal
	}

	svc, err := getLLMService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
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

	timeRange := fmt.Sprintf("%s to %s", timeMin, timeMax)
	analysis, err := svc.AnalyzeSchedule(ctx, events, timeRange, analysisType)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to analyze schedule: %v", err)), nil
	}

	result := fmt.Sprintf("Schedule analysis (%s) for %s:\n\n", analysis.AnalysisType, analysis.TimeRange)
	result += fmt.Sprintf("Events: %d\n", analysis.Metrics.TotalEvents)
	result += fmt.Sprintf("Scheduled hours: %.1f\n\n", analysis.Metrics.TotalHours)
	result += analysis.Insights

	return mcp.NewToolResultText(result), nil
}

func handlePrepareBriefing(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	briefingType := "daily"
	if briefingVal, ok := args["briefingType"].(string); ok && briefingVal != "" {
		briefingType = briefingVal
	}

	timeMin := ""
	if timeMinVal, ok := args["timeMin"].(string); ok {
		timeMin = timeMinVal
	}
	timeMax := ""
	if timeMaxVal, ok := args["timeMax"].(string); ok {
		timeMax = timeMaxVal
	}

	// Without an explicit range, cover the next day or week
	if timeMin == "" || timeMax == "" {
		if briefingType == "weekly" {
			timeMin, timeMax = calendar.TimeRange(7)
		} else {
			timeMin, timeMax = calendar.TimeRange(1)
		}
	}

	svc, err := getLLMService(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
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

	period := fmt.Sprintf("%s schedule", briefingType)
	briefing, err := svc.PrepareBriefing(ctx, events, briefingType, period)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare briefing: %v", err)), nil
	}

	result := fmt.Sprintf("Briefing (%s, %d event(s)):\n\n%s",
		briefing.BriefingType, briefing.EventCount, briefing.Briefing)

	return mcp.NewToolResultText(result), nil
}

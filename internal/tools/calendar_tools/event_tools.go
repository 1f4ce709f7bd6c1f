package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/instrumentation"
	"github.com/timegrid/calagent/internal/proxy"
	"github.com/timegrid/calagent/internal/server"
	"github.com/timegrid/calagent/internal/tools/common"
)

// RegisterEventTools registers event CRUD tools with the MCP server.
// Update, patch and delete are write operations and register only
// when the server allows writes.
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List events tool
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List calendar events within a time range"),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (default: 'primary')"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start time for the range (RFC3339 format, e.g., '2025-01-01T00:00:00Z')"),
		),
		mcp.WithString("timeMax",
			mcp.Description("End time for the range (RFC3339 format, e.g., '2025-01-31T23:59:59Z')"),
		),
		mcp.WithNumber("daysAhead",
			mcp.Description("Days ahead to list when no time range is given (default: 7)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of events to return (default: 100)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional free-text query to filter events"),
		),
		mcp.WithString("orderBy",
			mcp.Description("Sort order: 'startTime' or 'updated'"),
		),
	)

	s.AddTool(listEventsTool, common.InstrumentedToolHandlerWithService(
		"calendar_list_events", instrumentation.ServiceCalendar, instrumentation.OperationList, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	// Get event tool
	getEventTool := mcp.NewTool("calendar_get_event",
		mcp.WithDescription("Get details of a specific calendar event"),
		mcp.WithString("calendarId",
			mcp.Required(),
			mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to retrieve"),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone used in the response (e.g., 'America/New_York')"),
		),
	)

	s.AddTool(getEventTool, common.InstrumentedToolHandlerWithService(
		"calendar_get_event", instrumentation.ServiceCalendar, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetEvent(ctx, request, sc)
		}))

	// Write tools register only when writes are enabled
	if !readOnly {
		// Create event tool
		createEventTool := mcp.NewTool("calendar_create_event",
			mcp.WithDescription("Create a new calendar event (supports all-day and recurring events)"),
			mcp.WithString("calendarId",
				mcp.Required(),
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("summary",
				mcp.Required(),
				mcp.Description("Event title/summary"),
			),
			mcp.WithString("start",
				mcp.Required(),
				mcp.Description("Start time (RFC3339 format, e.g., '2025-01-15T14:00:00Z'; a bare date for all-day events)"),
			),
			mcp.WithString("end",
				mcp.Required(),
				mcp.Description("End time (RFC3339 format, e.g., '2025-01-15T15:00:00Z'; a bare date for all-day events)"),
			),
			mcp.WithString("description",
				mcp.Description("Event description"),
			),
			mcp.WithString("location",
				mcp.Description("Event location"),
			),
			mcp.WithString("timeZone",
				mcp.Description("Time zone (e.g., 'America/New_York'). Defaults to UTC."),
			),
			mcp.WithString("attendees",
				mcp.Description("Comma-separated list of attendee email addresses"),
			),
			mcp.WithString("recurrence",
				mcp.Description("Recurrence rule (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
			),
			mcp.WithString("sendUpdates",
				mcp.Description("Attendee notifications: 'all', 'externalOnly', or 'none'"),
			),
			mcp.WithBoolean("allDay",
				mcp.Description("Create as all-day event (ignores time portion of start/end)"),
			),
		)

		s.AddTool(createEventTool, common.InstrumentedToolHandlerWithService(
			"calendar_create_event", instrumentation.ServiceCalendar, instrumentation.OperationCreate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateEvent(ctx, request, sc)
			}))

		// Update event tool
		updateEventTool := mcp.NewTool("calendar_update_event",
			mcp.WithDescription("Update an existing calendar event (unset fields keep their values)"),
			mcp.WithString("calendarId",
				mcp.Required(),
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to update"),
			),
			mcp.WithString("summary",
				mcp.Description("New event title/summary"),
			),
			mcp.WithString("description",
				mcp.Description("New event description"),
			),
			mcp.WithString("location",
				mcp.Description("New event location"),
			),
			mcp.WithString("start",
				mcp.Description("New start time (RFC3339 format)"),
			),
			mcp.WithString("end",
				mcp.Description("New end time (RFC3339 format)"),
			),
			mcp.WithString("timeZone",
				mcp.Description("Time zone (e.g., 'America/New_York')"),
			),
			mcp.WithString("attendees",
				mcp.Description("New comma-separated list of attendee email addresses"),
			),
			mcp.WithString("recurrence",
				mcp.Description("New recurrence rule"),
			),
			mcp.WithString("sendUpdates",
				mcp.Description("Attendee notifications: 'all', 'externalOnly', or 'none'"),
			),
			mcp.WithBoolean("allDay",
				mcp.Description("Update to be an all-day event (ignores time portion of start/end)"),
			),
		)

		s.AddTool(updateEventTool, common.InstrumentedToolHandlerWithService(
			"calendar_update_event", instrumentation.ServiceCalendar, instrumentation.OperationUpdate, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateEvent(ctx, request, sc)
			}))

		// Patch event tool
		patchEventTool := mcp.NewTool("calendar_patch_event",
			mcp.WithDescription("Partially update a calendar event; only the given fields are sent upstream"),
			mcp.WithString("calendarId",
				mcp.Required(),
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to patch"),
			),
			mcp.WithString("summary",
				mcp.Description("New event title/summary"),
			),
			mcp.WithString("description",
				mcp.Description("New event description"),
			),
			mcp.WithString("location",
				mcp.Description("New event location"),
			),
			mcp.WithString("start",
				mcp.Description("New start time (RFC3339 format, or a bare date)"),
			),
			mcp.WithString("end",
				mcp.Description("New end time (RFC3339 format, or a bare date)"),
			),
			mcp.WithString("colorId",
				mcp.Description("New color ID for the event"),
			),
			mcp.WithString("sendUpdates",
				mcp.Description("Attendee notifications: 'all', 'externalOnly', or 'none'"),
			),
		)

		s.AddTool(patchEventTool, common.InstrumentedToolHandlerWithService(
			"calendar_patch_event", instrumentation.ServiceCalendar, instrumentation.OperationPatch, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handlePatchEvent(ctx, request, sc)
			}))

		// Delete event tool
		deleteEventTool := mcp.NewTool("calendar_delete_event",
			mcp.WithDescription("Delete a calendar event (the proxy may require confirmation)"),
			mcp.WithString("calendarId",
				mcp.Required(),
				mcp.Description("Calendar ID (use 'primary' for the primary calendar)"),
			),
			mcp.WithString("eventId",
				mcp.Required(),
				mcp.Description("The ID of the event to delete"),
			),
			mcp.WithString("sendUpdates",
				mcp.Description("Attendee notifications: 'all', 'externalOnly', or 'none'"),
			),
		)

		s.AddTool(deleteEventTool, common.InstrumentedToolHandlerWithService(
			"calendar_delete_event", instrumentation.ServiceCalendar, instrumentation.OperationDelete, sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleDeleteEvent(ctx, request, sc)
			}))
	}

	return nil
}

// parseTimeArg parses an event boundary argument. RFC 3339 and naive
// timestamps are accepted, plus bare dates for all-day events.
func parseTimeArg(value string) (time.Time, error) {
	if t, err := calendar.ParseEventTime(value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// parseAttendeesArg splits a comma-separated attendee list
func parseAttendeesArg(value string) []string {
	attendees := strings.Split(value, ",")
	for i := range attendees {
		attendees[i] = strings.TrimSpace(attendees[i])
	}
	return attendees
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	calendarID := common.GetCalendarIDFromArgs(args)

	timeMin := ""
	if timeMinVal, ok := args["timeMin"].(string); ok {
		timeMin = timeMinVal
	}
	timeMax := ""
	if timeMaxVal, ok := args["timeMax"].(string); ok {
		timeMax = timeMaxVal
	}

	// Without an explicit range, list the days ahead
	if timeMin == "" && timeMax == "" {
		daysAhead := 7
		if daysVal, ok := args["daysAhead"].(float64); ok && daysVal > 0 {
			daysAhead = int(daysVal)
		}
		timeMin, timeMax = calendar.TimeRange(daysAhead)
	}

	query := calendar.DefaultEventsQuery()
	query.TimeMin = timeMin
	query.TimeMax = timeMax

	if maxResultsVal, ok := args["maxResults"].(float64); ok && maxResultsVal > 0 {
		query.MaxResults = int64(maxResultsVal)
	}
	if queryVal, ok := args["query"].(string); ok {
		query.Query = queryVal
	}
	if orderBy, ok := args["orderBy"].(string); ok && orderBy != "" {
		query.OrderBy = orderBy
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, nextPageToken, err := client.ListEvents(ctx, calendarID, query)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Found %d event(s):\n\n", len(events))
	for i, event := range events {
		summary := calendar.ToEventSummary(event, calendarID)
		result += fmt.Sprintf("%d. %s\n", i+1, summary.Summary)
		result += fmt.Sprintf("   ID: %s\n", summary.ID)
		result += fmt.Sprintf("   Start: %s\n", summary.Start)
		result += fmt.Sprintf("   End: %s\n", summary.End)
		if summary.IsAllDay {
			result += "   All day\n"
		}
		if summary.Location != "" {
			result += fmt.Sprintf("   Location: %s\n", summary.Location)
		}
		if summary.AttendeeCount > 0 {
			result += fmt.Sprintf("   Attendees: %d\n", summary.AttendeeCount)
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

func handleGetEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	timeZone := ""
	if timeZoneVal, ok := args["timeZone"].(string); ok {
		timeZone = timeZoneVal
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.GetEvent(ctx, calendarID, eventID, timeZone)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	summary := event.Summary
	if summary == "" {
		summary = "Untitled Event"
	}

	result := fmt.Sprintf("Event: %s\n", summary)
	result += fmt.Sprintf("ID: %s\n", event.Id)
	result += fmt.Sprintf("Start: %s\n", calendar.FormatEventTime(event.Start))
	result += fmt.Sprintf("End: %s\n", calendar.FormatEventTime(event.End))
	if minutes, ok := calendar.EventDurationMinutes(event.Start, event.End); ok {
		result += fmt.Sprintf("Duration: %d minutes\n", minutes)
	}
	if event.Status != "" {
		result += fmt.Sprintf("Status: %s\n", event.Status)
	}
	if event.Description != "" {
		result += fmt.Sprintf("Description: %s\n", event.Description)
	}
	if event.Location != "" {
		result += fmt.Sprintf("Location: %s\n", event.Location)
	}
	if event.Creator != nil && event.Creator.Email != "" {
		result += fmt.Sprintf("Creator: %s\n", event.Creator.Email)
	}
	if event.Organizer != nil && event.Organizer.Email != "" {
		result += fmt.Sprintf("Organizer: %s\n", event.Organizer.Email)
	}
	if len(event.Recurrence) > 0 {
		result += fmt.Sprintf("Recurrence: %s\n", strings.Join(event.Recurrence, "; "))
	}
	if event.HtmlLink != "" {
		result += fmt.Sprintf("Link: %s\n", event.HtmlLink)
	}

	if len(event.Attendees) > 0 {
		result += fmt.Sprintf("\nAttendees (%d):\n", len(event.Attendees))
		for _, att := range event.Attendees {
			result += fmt.Sprintf("  - %s (%s)", att.Email, att.ResponseStatus)
			if att.DisplayName != "" {
				result += fmt.Sprintf(" - %s", att.DisplayName)
			}
			if att.Optional {
				result += " [optional]"
			}
			result += "\n"
		}
	}

	return mcp.NewToolResultText(result), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	summary, ok := args["summary"].(string)
	if !ok || summary == "" {
		return mcp.NewToolResultError("summary is required"), nil
	}

	startStr, ok := args["start"].(string)
	if !ok || startStr == "" {
		return mcp.NewToolResultError("start is required"), nil
	}
	start, err := parseTimeArg(startStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
	}

	endStr, ok := args["end"].(string)
	if !ok || endStr == "" {
		return mcp.NewToolResultError("end is required"), nil
	}
	end, err := parseTimeArg(endStr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
	}

	input := calendar.EventInput{
		Summary: summary,
		Start:   start,
		End:     end,
	}

	if desc, ok := args["description"].(string); ok {
		input.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		input.Location = loc
	}
	if tz, ok := args["timeZone"].(string); ok {
		input.TimeZone = tz
	}
	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		input.Attendees = parseAttendeesArg(attendeesStr)
	}
	if recurrence, ok := args["recurrence"].(string); ok && recurrence != "" {
		input.Recurrence = []string{recurrence}
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}

	opts := calendar.CallOptions{}
	if sendUpdates, ok := args["sendUpdates"].(string); ok {
		opts.SendUpdates = sendUpdates
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(ctx, calendarID, input, opts)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Successfully created event: %s\n", event.Summary)
	result += fmt.Sprintf("ID: %s\n", event.Id)
	result += fmt.Sprintf("Start: %s\n", calendar.FormatEventTime(event.Start))
	result += fmt.Sprintf("End: %s\n", calendar.FormatEventTime(event.End))
	if event.HtmlLink != "" {
		result += fmt.Sprintf("Link: %s\n", event.HtmlLink)
	}

	return mcp.NewToolResultText(result), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	input := calendar.EventInput{}

	if summary, ok := args["summary"].(string); ok {
		input.Summary = summary
	}
	if desc, ok := args["description"].(string); ok {
		input.Description = desc
	}
	if loc, ok := args["location"].(string); ok {
		input.Location = loc
	}
	if tz, ok := args["timeZone"].(string); ok {
		input.TimeZone = tz
	}

	if startStr, ok := args["start"].(string); ok && startStr != "" {
		start, err := parseTimeArg(startStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
		}
		input.Start = start
	}

	if endStr, ok := args["end"].(string); ok && endStr != "" {
		end, err := parseTimeArg(endStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
		}
		input.End = end
	}

	if attendeesStr, ok := args["attendees"].(string); ok && attendeesStr != "" {
		input.Attendees = parseAttendeesArg(attendeesStr)
	}
	if recurrence, ok := args["recurrence"].(string); ok && recurrence != "" {
		input.Recurrence = []string{recurrence}
	}
	if allDay, ok := args["allDay"].(bool); ok {
		input.AllDay = allDay
	}

	opts := calendar.CallOptions{}
	if sendUpdates, ok := args["sendUpdates"].(string); ok {
		opts.SendUpdates = sendUpdates
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.UpdateEvent(ctx, calendarID, eventID, input, opts)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Successfully updated event: %s\n", event.Summary)
	result += fmt.Sprintf("ID: %s\n", event.Id)
	result += fmt.Sprintf("Start: %s\n", calendar.FormatEventTime(event.Start))
	result += fmt.Sprintf("End: %s\n", calendar.FormatEventTime(event.End))

	return mcp.NewToolResultText(result), nil
}

func handlePatchEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	patch := &gcal.Event{}
	changed := false

	if summary, ok := args["summary"].(string); ok && summary != "" {
		patch.Summary = summary
		changed = true
	}
	if desc, ok := args["description"].(string); ok && desc != "" {
		patch.Description = desc
		changed = true
	}
	if loc, ok := args["location"].(string); ok && loc != "" {
		patch.Location = loc
		changed = true
	}
	if colorID, ok := args["colorId"].(string); ok && colorID != "" {
		patch.ColorId = colorID
		changed = true
	}

	if startStr, ok := args["start"].(string); ok && startStr != "" {
		edt, err := eventDateTimeFromValue(startStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid start format: %v", err)), nil
		}
		patch.Start = edt
		changed = true
	}

	if endStr, ok := args["end"].(string); ok && endStr != "" {
		edt, err := eventDateTimeFromValue(endStr)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid end format: %v", err)), nil
		}
		patch.End = edt
		changed = true
	}

	if !changed {
		return mcp.NewToolResultError("No fields to patch (provide summary, description, location, start, end or colorId)"), nil
	}

	opts := calendar.CallOptions{}
	if sendUpdates, ok := args["sendUpdates"].(string); ok {
		opts.SendUpdates = sendUpdates
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.PatchEvent(ctx, calendarID, eventID, patch, opts)
	if err != nil {
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	result := fmt.Sprintf("Successfully patched event: %s\n", event.Summary)
	result += fmt.Sprintf("ID: %s\n", event.Id)
	result += fmt.Sprintf("Start: %s\n", calendar.FormatEventTime(event.Start))
	result += fmt.Sprintf("End: %s\n", calendar.FormatEventTime(event.End))

	return mcp.NewToolResultText(result), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	calendarID, ok := args["calendarId"].(string)
	if !ok || calendarID == "" {
		return mcp.NewToolResultError("calendarId is required"), nil
	}

	eventID, ok := args["eventId"].(string)
	if !ok || eventID == "" {
		return mcp.NewToolResultError("eventId is required"), nil
	}

	opts := calendar.CallOptions{}
	if sendUpdates, ok := args["sendUpdates"].(string); ok {
		opts.SendUpdates = sendUpdates
	}

	client, err := getCalendarClient(sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteEvent(ctx, calendarID, eventID, opts); err != nil {
		// The proxy answers 403 when a deletion needs explicit confirmation
		if proxy.IsForbidden(err) {
			return mcp.NewToolResultError(fmt.Sprintf("Deletion requires confirmation: %v", err)), nil
		}
		return mcp.NewToolResultError(formatProxyError(err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Successfully deleted event %s", eventID)), nil
}

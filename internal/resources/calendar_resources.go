package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/timegrid/calagent/internal/calendar"
	"github.com/timegrid/calagent/internal/server"
)

// agendaCalendarID is the calendar the agenda resource reads from
const agendaCalendarID = "primary"

// RegisterCalendarResources registers read-only calendar resources.
// These give MCP clients ambient context without a tool round-trip.
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// Register calendar list resource
	calendarsResource := mcp.NewResource(
		"calendar://calendars",
		"Available Calendars",
		mcp.WithResourceDescription("All calendars visible through the calendar proxy, with access roles"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(calendarsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendarList(ctx, request, sc)
	})

	// Register today's agenda resource
	agendaResource := mcp.NewResource(
		"calendar://agenda/today",
		"Today's Agenda",
		mcp.WithResourceDescription("Today's events on the primary calendar as metadata-only summaries"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(agendaResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleTodayAgenda(ctx, request, sc)
	})

	return nil
}

// handleCalendarList returns every calendar the proxy exposes
func handleCalendarList(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.CalendarClient()
	if err != nil {
		return nil, fmt.Errorf("no calendar client available: %w", err)
	}

	calendars, _, err := client.ListCalendars(ctx, calendar.ListCalendarsOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list calendars: %w", err)
	}

	calendarData := map[string]interface{}{
		"calendars":   calendars,
		"count":       len(calendars),
		"description": "Calendars visible through the calendar proxy",
	}

	jsonData, err := json.MarshalIndent(calendarData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal calendar data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

// handleTodayAgenda returns today's events on the primary calendar.
// Day boundaries are computed in UTC; summaries carry no description
// bodies or attendee identities.
func handleTodayAgenda(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	client, err := sc.CalendarClient()
	if err != nil {
		return nil, fmt.Errorf("no calendar client available: %w", err)
	}

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := calendar.DefaultEventsQuery()
	query.TimeMin = dayStart.Format(time.RFC3339)
	query.TimeMax = dayEnd.Format(time.RFC3339)

	events, _, err := client.ListEvents(ctx, agendaCalendarID, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's events: %w", err)
	}

	summaries := make([]calendar.EventSummary, 0, len(events))
	for _, event := range events {
		summaries = append(summaries, calendar.ToEventSummary(event, agendaCalendarID))
	}

	agendaData := map[string]interface{}{
		"date":       dayStart.Format("2006-01-02"),
		"calendarId": agendaCalendarID,
		"events":     summaries,
		"count":      len(summaries),
	}

	jsonData, err := json.MarshalIndent(agendaData, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal agenda data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}

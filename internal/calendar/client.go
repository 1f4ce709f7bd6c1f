package calendar

import (
	"context"
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/timegrid/calagent/internal/proxy"
)

// Client wraps the generated Calendar service pointed at the proxy
type Client struct {
	svc *calendar.Service
	cfg proxy.Config
}

// NewClient creates a Calendar client that sends every request to the
// proxy endpoint, authenticated with the configured API key
func NewClient(ctx context.Context, cfg proxy.Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid proxy configuration: %w", err)
	}

	svc, err := calendar.NewService(ctx,
		option.WithEndpoint(cfg.Endpoint()),
		option.WithHTTPClient(cfg.HTTPClient(ctx)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc: svc,
		cfg: cfg,
	}, nil
}

// ProxyURL returns the proxy base URL this client talks to
func (c *Client) ProxyURL() string {
	return c.cfg.URL
}

// ListCalendars lists the calendars visible to the proxy identity.
// The second result is the next page token, empty on the last page.
func (c *Client) ListCalendars(ctx context.Context, opts ListCalendarsOptions) ([]CalendarInfo, string, error) {
	call := c.svc.CalendarList.List().Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.ShowDeleted {
		call = call.ShowDeleted(true)
	}
	if opts.ShowHidden {
		call = call.ShowHidden(true)
	}

	list, err := call.Do()
	if err != nil {
		return nil, "", proxy.Classify("list calendars", err)
	}

	calendars := make([]CalendarInfo, 0, len(list.Items))
	for _, entry := range list.Items {
		calendars = append(calendars, toCalendarInfo(entry))
	}

	return calendars, list.NextPageToken, nil
}

// GetCalendar retrieves metadata for a specific calendar
func (c *Client) GetCalendar(ctx context.Context, calendarID string) (*CalendarInfo, error) {
	cal, err := c.svc.Calendars.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return nil, proxy.Classify("get calendar", err)
	}

	info := calendarInfoFromCalendar(cal)
	return &info, nil
}

// ListEvents lists events in a calendar. The second result is the
// next page token, empty on the last page.
func (c *Client) ListEvents(ctx context.Context, calendarID string, q ListEventsQuery) ([]*calendar.Event, string, error) {
	call := c.svc.Events.List(calendarID).Context(ctx).SingleEvents(q.SingleEvents)
	if q.TimeMin != "" {
		call = call.TimeMin(q.TimeMin)
	}
	if q.TimeMax != "" {
		call = call.TimeMax(q.TimeMax)
	}
	if q.Query != "" {
		call = call.Q(q.Query)
	}
	if q.OrderBy != "" {
		call = call.OrderBy(q.OrderBy)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}
	if q.ShowDeleted {
		call = call.ShowDeleted(true)
	}
	if q.UpdatedMin != "" {
		call = call.UpdatedMin(q.UpdatedMin)
	}
	if q.SyncToken != "" {
		call = call.SyncToken(q.SyncToken)
	}
	if q.TimeZone != "" {
		call = call.TimeZone(q.TimeZone)
	}

	events, err := call.Do()
	if err != nil {
		return nil, "", proxy.Classify("list events", err)
	}

	return events.Items, events.NextPageToken, nil
}

// GetEvent retrieves a specific event by ID
func (c *Client) GetEvent(ctx context.Context, calendarID, eventID, timeZone string) (*calendar.Event, error) {
	call := c.svc.Events.Get(calendarID, eventID).Context(ctx)
	if timeZone != "" {
		call = call.TimeZone(timeZone)
	}

	event, err := call.Do()
	if err != nil {
		return nil, proxy.Classify("get event", err)
	}

	return event, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput, opts CallOptions) (*calendar.Event, error) {
	call := c.svc.Events.Insert(calendarID, input.toEvent()).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}

	created, err := call.Do()
	if err != nil {
		return nil, proxy.Classify("create event", err)
	}

	return created, nil
}

// UpdateEvent updates an existing event. The input is merged over the
// stored event first, so fields left unset survive the full
// replacement the update call performs.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput, opts CallOptions) (*calendar.Event, error) {
	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, proxy.Classify("update event", err)
	}

	fresh := input.toEvent()
	if input.Summary != "" {
		existing.Summary = fresh.Summary
	}
	if input.Description != "" {
		existing.Description = fresh.Description
	}
	if input.Location != "" {
		existing.Location = fresh.Location
	}
	if !input.Start.IsZero() {
		existing.Start = fresh.Start
	}
	if !input.End.IsZero() {
		existing.End = fresh.End
	}
	if len(input.Attendees) > 0 {
		existing.Attendees = fresh.Attendees
	}
	if len(input.Recurrence) > 0 {
		existing.Recurrence = fresh.Recurrence
	}

	call := c.svc.Events.Update(calendarID, eventID, existing).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}

	updated, err := call.Do()
	if err != nil {
		return nil, proxy.Classify("update event", err)
	}

	return updated, nil
}

// PatchEvent applies a sparse patch to an event; only fields set on
// the patch are sent upstream
func (c *Client) PatchEvent(ctx context.Context, calendarID, eventID string, patch *calendar.Event, opts CallOptions) (*calendar.Event, error) {
	call := c.svc.Events.Patch(calendarID, eventID, patch).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}
	if opts.ConferenceDataVersion > 0 {
		call = call.ConferenceDataVersion(opts.ConferenceDataVersion)
	}

	patched, err := call.Do()
	if err != nil {
		return nil, proxy.Classify("patch event", err)
	}

	return patched, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string, opts CallOptions) error {
	call := c.svc.Events.Delete(calendarID, eventID).Context(ctx)
	if opts.SendUpdates != "" {
		call = call.SendUpdates(opts.SendUpdates)
	}

	if err := call.Do(); err != nil {
		return proxy.Classify("delete event", err)
	}

	return nil
}

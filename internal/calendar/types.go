package calendar

import (
	"encoding/json"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// SlotOptions configures the free-slot search
type SlotOptions struct {
	// MinDuration is the shortest slot worth reporting, in whole minutes
	MinDuration time.Duration

	// WorkingHoursOnly clips slots to the working day
	WorkingHoursOnly bool

	// WorkingDayStart is the first working hour of the day (0-23)
	WorkingDayStart int

	// WorkingDayEnd is the hour the working day closes (0-23, exclusive)
	WorkingDayEnd int
}

// DefaultSlotOptions returns the slot search defaults: slots of at
// least 30 minutes, clipped to a 9:00 to 17:00 working day
func DefaultSlotOptions() SlotOptions {
	return SlotOptions{
		MinDuration:      DefaultMinSlotDuration,
		WorkingHoursOnly: true,
		WorkingDayStart:  DefaultWorkingDayStart,
		WorkingDayEnd:    DefaultWorkingDayEnd,
	}
}

// AvailableSlot is one free interval between events
type AvailableSlot struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// Minutes returns the slot length in whole minutes
func (s AvailableSlot) Minutes() int {
	return int(s.Duration / time.Minute)
}

// MarshalJSON renders the slot boundaries as UTC timestamps with
// second precision and the duration as whole minutes
func (s AvailableSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Start           string `json:"start"`
		End             string `json:"end"`
		DurationMinutes int    `json:"durationMinutes"`
	}{
		Start:           s.Start.Format(slotTimeLayout),
		End:             s.End.Format(slotTimeLayout),
		DurationMinutes: s.Minutes(),
	})
}

// EventSummary is a metadata-only projection of an event. It carries
// no description body and no attendee identities, only a count.
type EventSummary struct {
	ID            string `json:"id"`
	CalendarID    string `json:"calendar_id"`
	Summary       string `json:"summary"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Location      string `json:"location,omitempty"`
	AttendeeCount int    `json:"attendee_count"`
	IsAllDay      bool   `json:"is_all_day"`
	Status        string `json:"status,omitempty"`
	HTMLLink      string `json:"html_link,omitempty"`
}

// ToEventSummary projects an event onto its metadata summary.
// Untitled events show as "Untitled Event".
func ToEventSummary(event *calendar.Event, calendarID string) EventSummary {
	summary := EventSummary{
		ID:         event.Id,
		CalendarID: calendarID,
		Summary:    event.Summary,
		Location:   event.Location,
		Status:     event.Status,
		HTMLLink:   event.HtmlLink,
	}
	if summary.Summary == "" {
		summary.Summary = "Untitled Event"
	}

	summary.Start = EventTimeString(event.Start)
	summary.End = EventTimeString(event.End)
	summary.IsAllDay = IsAllDayEvent(event)
	summary.AttendeeCount = len(event.Attendees)

	return summary
}

// CalendarInfo represents information about a calendar
type CalendarInfo struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
	Primary     bool   `json:"primary"`
	AccessRole  string `json:"accessRole,omitempty"`
}

// toCalendarInfo converts a calendar list entry to CalendarInfo
func toCalendarInfo(entry *calendar.CalendarListEntry) CalendarInfo {
	return CalendarInfo{
		ID:          entry.Id,
		Summary:     entry.Summary,
		Description: entry.Description,
		TimeZone:    entry.TimeZone,
		Primary:     entry.Primary,
		AccessRole:  entry.AccessRole,
	}
}

// calendarInfoFromCalendar converts a bare calendar resource to
// CalendarInfo. The calendars collection carries no primary flag or
// access role, so those fields stay zero.
func calendarInfoFromCalendar(cal *calendar.Calendar) CalendarInfo {
	return CalendarInfo{
		ID:          cal.Id,
		Summary:     cal.Summary,
		Description: cal.Description,
		TimeZone:    cal.TimeZone,
	}
}

// EventInput represents the input for creating or updating an event
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Attendees   []string
	Recurrence  []string // RRULE, EXRULE, RDATE, EXDATE

	// AllDay events carry bare dates instead of timestamps
	AllDay bool
}

// toEvent builds the wire event for create and update calls.
// For all-day events the boundaries are rendered as bare dates;
// timed events default to UTC when no timezone is given.
func (in EventInput) toEvent() *calendar.Event {
	event := &calendar.Event{
		Summary:     in.Summary,
		Description: in.Description,
		Location:    in.Location,
	}

	if in.AllDay {
		event.Start = &calendar.EventDateTime{
			Date: in.Start.Format(dateLayout),
		}
		event.End = &calendar.EventDateTime{
			Date: in.End.Format(dateLayout),
		}
	} else {
		tz := in.TimeZone
		if tz == "" {
			tz = "UTC"
		}
		event.Start = &calendar.EventDateTime{
			DateTime: in.Start.Format(time.RFC3339),
			TimeZone: tz,
		}
		event.End = &calendar.EventDateTime{
			DateTime: in.End.Format(time.RFC3339),
			TimeZone: tz,
		}
	}

	if len(in.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range in.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	if len(in.Recurrence) > 0 {
		event.Recurrence = in.Recurrence
	}

	return event
}

// ListCalendarsOptions narrows a calendar listing
type ListCalendarsOptions struct {
	MaxResults  int64
	PageToken   string
	ShowDeleted bool
	ShowHidden  bool
}

// ListEventsQuery narrows an event listing
type ListEventsQuery struct {
	TimeMin     string
	TimeMax     string
	Query       string
	OrderBy     string // "startTime" or "updated"
	MaxResults  int64
	PageToken   string
	ShowDeleted bool
	UpdatedMin  string
	SyncToken   string
	TimeZone    string

	// SingleEvents expands recurring events into instances
	SingleEvents bool
}

// DefaultEventsQuery returns the standard listing query: recurring
// events expanded, ordered by start time, at most 100 results
func DefaultEventsQuery() ListEventsQuery {
	return ListEventsQuery{
		SingleEvents: true,
		OrderBy:      "startTime",
		MaxResults:   100,
	}
}

// CallOptions carries the optional parameters shared by event write calls
type CallOptions struct {
	// SendUpdates controls attendee notifications:
	// "all", "externalOnly", or "none"
	SendUpdates string

	// ConferenceDataVersion enables conference data handling when set to 1
	ConferenceDataVersion int64
}

package calendar

import (
	"fmt"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// Human-readable event time layouts
const (
	displayTimeLayout = "January 02, 2006 at 03:04 PM"
	displayDateLayout = "January 02, 2006 (all day)"
)

// maxDescriptionLength bounds the description text included in prompts
const maxDescriptionLength = 2000

// EventTimeString extracts the raw boundary string from an event
// boundary, preferring dateTime over date
func EventTimeString(edt *calendar.EventDateTime) string {
	if edt == nil {
		return ""
	}
	if edt.DateTime != "" {
		return edt.DateTime
	}
	return edt.Date
}

// IsAllDayEvent reports whether an event is all-day: its start carries
// a date and no dateTime
func IsAllDayEvent(event *calendar.Event) bool {
	return event != nil && event.Start != nil &&
		event.Start.Date != "" && event.Start.DateTime == ""
}

// FormatEventTime renders an event boundary for display. Timed events
// read like "January 15, 2024 at 02:30 PM" in the event's own
// timezone; all-day events like "January 15, 2024 (all day)".
// Unparseable values pass through untouched.
func FormatEventTime(edt *calendar.EventDateTime) string {
	if edt == nil {
		return "No time specified"
	}

	if edt.DateTime != "" {
		if strings.Contains(edt.DateTime, "T") {
			if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
				return t.Format(displayTimeLayout)
			}
			if t, err := time.Parse(naiveTimeLayout, edt.DateTime); err == nil {
				return t.Format(displayTimeLayout)
			}
		}
		return edt.DateTime
	}

	if edt.Date != "" {
		if t, err := time.Parse(dateLayout, edt.Date); err == nil {
			return t.Format(displayDateLayout)
		}
		return edt.Date
	}

	return "No time specified"
}

// EventDurationMinutes calculates an event's length in whole minutes.
// The second result is false when a boundary is missing, unparseable,
// or when an all-day event ends before it starts.
func EventDurationMinutes(start, end *calendar.EventDateTime) (int, bool) {
	startRaw := EventTimeString(start)
	endRaw := EventTimeString(end)
	if startRaw == "" || endRaw == "" {
		return 0, false
	}

	if strings.Contains(startRaw, "T") {
		startTime, err := ParseEventTime(startRaw)
		if err != nil {
			return 0, false
		}
		endTime, err := ParseEventTime(endRaw)
		if err != nil {
			return 0, false
		}
		return int(endTime.Sub(startTime) / time.Minute), true
	}

	startDate, err := time.Parse(dateLayout, startRaw)
	if err != nil {
		return 0, false
	}
	endDate, err := time.Parse(dateLayout, endRaw)
	if err != nil {
		return 0, false
	}
	if endDate.Before(startDate) {
		return 0, false
	}
	return int(endDate.Sub(startDate) / time.Minute), true
}

// FormatAttendees renders an attendee list for display
func FormatAttendees(attendees []*calendar.EventAttendee) string {
	if len(attendees) == 0 {
		return "No attendees"
	}

	formatted := make([]string, 0, len(attendees))
	for _, attendee := range attendees {
		if attendee.DisplayName != "" {
			formatted = append(formatted, fmt.Sprintf("%s <%s> (%s)",
				attendee.DisplayName, attendee.Email, attendee.ResponseStatus))
		} else {
			formatted = append(formatted, fmt.Sprintf("%s (%s)",
				attendee.Email, attendee.ResponseStatus))
		}
	}

	return strings.Join(formatted, ", ")
}

// AttendeeName returns an attendee's display name, falling back to the
// email address and then to "Unknown"
func AttendeeName(attendee *calendar.EventAttendee) string {
	if attendee == nil {
		return "Unknown"
	}
	if attendee.DisplayName != "" {
		return attendee.DisplayName
	}
	if attendee.Email != "" {
		return attendee.Email
	}
	return "Unknown"
}

// SummaryText builds the text block describing an event for language
// model prompts. Descriptions are truncated at 2000 characters.
func SummaryText(event *calendar.Event) string {
	summary := event.Summary
	if summary == "" {
		summary = "Untitled Event"
	}

	parts := []string{
		"Title: " + summary,
		fmt.Sprintf("Time: %s to %s", FormatEventTime(event.Start), FormatEventTime(event.End)),
	}

	if event.Location != "" {
		parts = append(parts, "Location: "+event.Location)
	}

	if event.Description != "" {
		description := event.Description
		if runes := []rune(description); len(runes) > maxDescriptionLength {
			description = string(runes[:maxDescriptionLength]) + "..."
		}
		parts = append(parts, "Description: "+description)
	}

	if len(event.Attendees) > 0 {
		parts = append(parts, "Attendees: "+FormatAttendees(event.Attendees))
	}

	return strings.Join(parts, "\n")
}

// NowRFC3339 returns the current UTC time with second precision
func NowRFC3339() string {
	return time.Now().UTC().Format(slotTimeLayout)
}

// TimeRange returns the window from now until daysAhead days out,
// both boundaries in RFC 3339 UTC with second precision
func TimeRange(daysAhead int) (string, string) {
	now := time.Now().UTC()
	end := now.AddDate(0, 0, daysAhead)
	return now.Format(slotTimeLayout), end.Format(slotTimeLayout)
}

package calendar_tools

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/timegrid/calagent/internal/proxy"
)

func TestFormatProxyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "authentication failure",
			err:      &proxy.Error{Op: "list events", StatusCode: http.StatusUnauthorized, Message: "Invalid or missing API key"},
			expected: "Authentication error: Invalid or missing API key",
		},
		{
			name:     "forbidden operation",
			err:      &proxy.Error{Op: "delete event", StatusCode: http.StatusForbidden, Message: "Operation forbidden or requires confirmation"},
			expected: "Operation blocked: Operation forbidden or requires confirmation",
		},
		{
			name:     "server failure",
			err:      &proxy.Error{Op: "get event", StatusCode: http.StatusBadGateway, Message: "Proxy server error"},
			expected: "Proxy error: Proxy server error",
		},
		{
			name:     "not found",
			err:      &proxy.Error{Op: "get event", StatusCode: http.StatusNotFound, Message: "Bad request: event not found"},
			expected: "Proxy error: Bad request: event not found",
		},
		{
			name:     "wrapped proxy error",
			err:      fmt.Errorf("fetching event: %w", &proxy.Error{Op: "get event", StatusCode: http.StatusUnauthorized, Message: "Invalid or missing API key"}),
			expected: "Authentication error: Invalid or missing API key",
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			expected: "Proxy error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatProxyError(tt.err)
			if result != tt.expected {
				t.Errorf("formatProxyError() = %q, expected %q", result, tt.expected)
			}
		})
	}
}

func TestParseTimeArg(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "RFC3339 timestamp",
			value: "2025-06-15T09:30:00Z",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "timestamp without zone",
			value: "2025-06-15T09:30:00",
			want:  time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "bare date",
			value: "2025-06-15",
			want:  time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "invalid value",
			value:   "next tuesday",
			wantErr: true,
		},
		{
			name:    "empty value",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeArg(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTimeArg(%q) expected error, got %v", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimeArg(%q) unexpected error: %v", tt.value, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseTimeArg(%q) = %v, expected %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestParseAttendeesArg(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{
			name:     "single attendee",
			value:    "alice@example.com",
			expected: []string{"alice@example.com"},
		},
		{
			name:     "comma separated",
			value:    "alice@example.com,bob@example.com",
			expected: []string{"alice@example.com", "bob@example.com"},
		},
		{
			name:     "spaces around commas",
			value:    "alice@example.com , bob@example.com",
			expected: []string{"alice@example.com", "bob@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseAttendeesArg(tt.value)
			if len(result) != len(tt.expected) {
				t.Fatalf("parseAttendeesArg() returned %d entries, expected %d", len(result), len(tt.expected))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseAttendeesArg()[%d] = %q, expected %q", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestEventDateTimeFromValue(t *testing.T) {
	tests := []struct {
		name         string
		value        interface{}
		wantDate     string
		wantDateTime string
		wantTimeZone string
		wantErr      bool
	}{
		{
			name:     "bare date string",
			value:    "2025-06-15",
			wantDate: "2025-06-15",
		},
		{
			name:         "timestamp string",
			value:        "2025-06-15T09:30:00Z",
			wantDateTime: "2025-06-15T09:30:00Z",
		},
		{
			name:         "object with dateTime and timeZone",
			value:        map[string]interface{}{"dateTime": "2025-06-15T09:30:00", "timeZone": "Europe/Berlin"},
			wantDateTime: "2025-06-15T09:30:00",
			wantTimeZone: "Europe/Berlin",
		},
		{
			name:     "object with date",
			value:    map[string]interface{}{"date": "2025-06-15"},
			wantDate: "2025-06-15",
		},
		{
			name:    "object without date or dateTime",
			value:   map[string]interface{}{"timeZone": "Europe/Berlin"},
			wantErr: true,
		},
		{
			name:    "empty string",
			value:   "",
			wantErr: true,
		},
		{
			name:    "malformed timestamp",
			value:   "2025-06-15T99:99:99",
			wantErr: true,
		},
		{
			name:    "unsupported type",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edt, err := eventDateTimeFromValue(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("eventDateTimeFromValue(%v) expected error, got %+v", tt.value, edt)
				}
				return
			}
			if err != nil {
				t.Fatalf("eventDateTimeFromValue(%v) unexpected error: %v", tt.value, err)
			}
			if edt.Date != tt.wantDate {
				t.Errorf("Date = %q, expected %q", edt.Date, tt.wantDate)
			}
			if edt.DateTime != tt.wantDateTime {
				t.Errorf("DateTime = %q, expected %q", edt.DateTime, tt.wantDateTime)
			}
			if edt.TimeZone != tt.wantTimeZone {
				t.Errorf("TimeZone = %q, expected %q", edt.TimeZone, tt.wantTimeZone)
			}
		})
	}
}

func TestEventInputFromUpdates(t *testing.T) {
	updates := map[string]interface{}{
		"summary":     "Team sync",
		"description": "Weekly status round",
		"location":    "Room 2",
		"timeZone":    "Europe/Berlin",
		"start":       "2025-06-15T09:00:00Z",
		"end":         "2025-06-15T09:30:00Z",
		"attendees":   "alice@example.com,bob@example.com",
	}

	input, err := eventInputFromUpdates(updates)
	if err != nil {
		t.Fatalf("eventInputFromUpdates() unexpected error: %v", err)
	}

	if input.Summary != "Team sync" {
		t.Errorf("Summary = %q, expected %q", input.Summary, "Team sync")
	}
	if input.Location != "Room 2" {
		t.Errorf("Location = %q, expected %q", input.Location, "Room 2")
	}
	if input.TimeZone != "Europe/Berlin" {
		t.Errorf("TimeZone = %q, expected %q", input.TimeZone, "Europe/Berlin")
	}
	wantStart := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	if !input.Start.Equal(wantStart) {
		t.Errorf("Start = %v, expected %v", input.Start, wantStart)
	}
	if len(input.Attendees) != 2 {
		t.Errorf("Attendees = %v, expected 2 entries", input.Attendees)
	}
}

func TestEventInputFromUpdates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		updates map[string]interface{}
	}{
		{
			name:    "unsupported field",
			updates: map[string]interface{}{"reminders": "popup"},
		},
		{
			name:    "wrong summary type",
			updates: map[string]interface{}{"summary": 7},
		},
		{
			name:    "invalid start",
			updates: map[string]interface{}{"start": "whenever"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := eventInputFromUpdates(tt.updates); err == nil {
				t.Errorf("eventInputFromUpdates(%v) expected error", tt.updates)
			}
		})
	}
}

func TestEventPatchFromUpdates(t *testing.T) {
	updates := map[string]interface{}{
		"summary": "Renamed",
		"colorId": "5",
		"start":   map[string]interface{}{"dateTime": "2025-06-15T10:00:00", "timeZone": "Europe/Berlin"},
	}

	patch, err := eventPatchFromUpdates(updates)
	if err != nil {
		t.Fatalf("eventPatchFromUpdates() unexpected error: %v", err)
	}

	if patch.Summary != "Renamed" {
		t.Errorf("Summary = %q, expected %q", patch.Summary, "Renamed")
	}
	if patch.ColorId != "5" {
		t.Errorf("ColorId = %q, expected %q", patch.ColorId, "5")
	}
	if patch.Start == nil || patch.Start.DateTime != "2025-06-15T10:00:00" {
		t.Errorf("Start = %+v, expected dateTime 2025-06-15T10:00:00", patch.Start)
	}
	if patch.Start != nil && patch.Start.TimeZone != "Europe/Berlin" {
		t.Errorf("Start.TimeZone = %q, expected Europe/Berlin", patch.Start.TimeZone)
	}
}

func TestEventPatchFromUpdates_UnsupportedField(t *testing.T) {
	if _, err := eventPatchFromUpdates(map[string]interface{}{"attendees": "x@example.com"}); err == nil {
		t.Error("eventPatchFromUpdates() expected error for unsupported field")
	}
}

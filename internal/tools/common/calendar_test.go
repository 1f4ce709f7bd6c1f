package common

import "testing"

func TestGetCalendarIDFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]interface{}
		expected string
	}{
		{
			name:     "no calendar specified returns primary",
			args:     map[string]interface{}{},
			expected: "primary",
		},
		{
			name: "calendar specified returns calendar",
			args: map[string]interface{}{
				"calendarId": "team@group.calendar.google.com",
			},
			expected: "team@group.calendar.google.com",
		},
		{
			name: "empty calendar returns primary",
			args: map[string]interface{}{
				"calendarId": "",
			},
			expected: "primary",
		},
		{
			name: "calendar with other params",
			args: map[string]interface{}{
				"calendarId": "jane@example.com",
				"other":      "value",
			},
			expected: "jane@example.com",
		},
		{
			name:     "nil args returns primary",
			args:     nil,
			expected: "primary",
		},
		{
			name: "non-string calendar type returns primary",
			args: map[string]interface{}{
				"calendarId": 123,
			},
			expected: "primary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetCalendarIDFromArgs(tt.args)
			if result != tt.expected {
				t.Errorf("GetCalendarIDFromArgs() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

package batch

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "evt123",
			paramName: "eventIds",
			want:      []string{"evt123"},
			wantErr:   false,
		},
		{
			name:      "array of strings",
			input:     []interface{}{"id1", "id2", "id3"},
			paramName: "eventIds",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"id1", 123, "id3"},
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"id1", "", "id3"},
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     123,
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "JSON string array",
			input:     `["id1", "id2", "id3"]`,
			paramName: "eventIds",
			want:      []string{"id1", "id2", "id3"},
			wantErr:   false,
		},
		{
			name:      "JSON string single element array",
			input:     `["evt_abc"]`,
			paramName: "eventIds",
			want:      []string{"evt_abc"},
			wantErr:   false,
		},
		{
			name:      "JSON string empty array",
			input:     `[]`,
			paramName: "eventIds",
			want:      nil,
			wantErr:   true,
		},
		{
			name:      "invalid JSON string",
			input:     `[invalid json`,
			paramName: "eventIds",
			want:      []string{`[invalid json`},
			wantErr:   false,
		},
		{
			name:      "string starting with bracket (not JSON)",
			input:     `[team] standup`,
			paramName: "eventIds",
			want:      []string{`[team] standup`},
			wantErr:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStringOrArray() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !stringSliceEqual(got, tt.want) {
				t.Errorf("ParseStringOrArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseOperations(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		wantLen int
		wantErr bool
	}{
		{
			name: "decoded array",
			input: []interface{}{
				map[string]interface{}{
					"operation":  "delete",
					"calendarId": "primary",
					"eventId":    "evt1",
				},
				map[string]interface{}{
					"operation": "patch",
					"eventId":   "evt2",
					"updates":   map[string]interface{}{"summary": "New title"},
				},
			},
			wantLen: 2,
			wantErr: false,
		},
		{
			name:    "JSON string",
			input:   `[{"operation": "update", "calendarId": "work@example.com", "eventId": "evt3", "updates": {"location": "Room 4"}}]`,
			wantLen: 1,
			wantErr: false,
		},
		{
			name:    "nil input",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "  ",
			wantErr: true,
		},
		{
			name:    "empty array",
			input:   []interface{}{},
			wantErr: true,
		},
		{
			name:    "empty JSON array string",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "invalid JSON string",
			input:   `[{"operation": "delete"`,
			wantErr: true,
		},
		{
			name:    "wrong type",
			input:   42,
			wantErr: true,
		},
		{
			name: "missing operation",
			input: []interface{}{
				map[string]interface{}{"eventId": "evt1"},
			},
			wantErr: true,
		},
		{
			name: "unknown operation",
			input: []interface{}{
				map[string]interface{}{"operation": "destroy", "eventId": "evt1"},
			},
			wantErr: true,
		},
		{
			name: "missing eventId",
			input: []interface{}{
				map[string]interface{}{"operation": "delete"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOperations(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOperations() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && len(got) != tt.wantLen {
				t.Errorf("len(ParseOperations()) = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestParseOperations_DefaultCalendarID(t *testing.T) {
	ops, err := ParseOperations([]interface{}{
		map[string]interface{}{"operation": "delete", "eventId": "evt1"},
	})
	if err != nil {
		t.Fatalf("ParseOperations() error = %v", err)
	}
	if ops[0].CalendarID != "primary" {
		t.Errorf("CalendarID = %q, want primary", ops[0].CalendarID)
	}
}

func TestParseOperations_PreservesFields(t *testing.T) {
	ops, err := ParseOperations(`[{
		"operation": "patch",
		"calendarId": "team@group.calendar.google.com",
		"eventId": "evt42",
		"updates": {"summary": "Renamed", "location": "HQ"},
		"sendUpdates": "all"
	}]`)
	if err != nil {
		t.Fatalf("ParseOperations() error = %v", err)
	}

	op := ops[0]
	if op.Operation != OpPatch {
		t.Errorf("Operation = %q, want patch", op.Operation)
	}
	if op.CalendarID != "team@group.calendar.google.com" {
		t.Errorf("CalendarID = %q", op.CalendarID)
	}
	if op.EventID != "evt42" {
		t.Errorf("EventID = %q, want evt42", op.EventID)
	}
	if op.SendUpdates != "all" {
		t.Errorf("SendUpdates = %q, want all", op.SendUpdates)
	}
	if op.Updates["summary"] != "Renamed" {
		t.Errorf("Updates[summary] = %v, want Renamed", op.Updates["summary"])
	}
}

func TestExecute(t *testing.T) {
	ops := []Operation{
		{Operation: OpDelete, CalendarID: "primary", EventID: "evt1"},
		{Operation: OpPatch, CalendarID: "primary", EventID: "evt2"},
		{Operation: OpUpdate, CalendarID: "primary", EventID: "evt3"},
	}

	// Mock function that fails on evt2
	fn := func(op Operation) error {
		if op.EventID == "evt2" {
			return errors.New("event not found")
		}
		return nil
	}

	summary := Execute(ops, fn)

	if len(summary.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3", len(summary.Results))
	}
	if summary.SuccessCount != 2 {
		t.Errorf("SuccessCount = %d, want 2", summary.SuccessCount)
	}
	if summary.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", summary.ErrorCount)
	}

	// Check evt1 - success
	if !summary.Results[0].Success {
		t.Error("Results[0].Success = false, want true")
	}
	if summary.Results[0].Operation != "delete" {
		t.Errorf("Results[0].Operation = %s, want delete", summary.Results[0].Operation)
	}

	// Check evt2 - error
	if summary.Results[1].Success {
		t.Error("Results[1].Success = true, want false")
	}
	if summary.Results[1].Error != "event not found" {
		t.Errorf("Results[1].Error = %s, want 'event not found'", summary.Results[1].Error)
	}

	// Check evt3 - success
	if !summary.Results[2].Success {
		t.Error("Results[2].Success = false, want true")
	}
}

func TestExecute_ContinuesAfterFailure(t *testing.T) {
	ops := []Operation{
		{Operation: OpDelete, CalendarID: "primary", EventID: "evt1"},
		{Operation: OpDelete, CalendarID: "primary", EventID: "evt2"},
	}

	calls := 0
	fn := func(op Operation) error {
		calls++
		return errors.New("boom")
	}

	summary := Execute(ops, fn)

	if calls != 2 {
		t.Errorf("fn called %d times, want 2", calls)
	}
	if summary.ErrorCount != 2 {
		t.Errorf("ErrorCount = %d, want 2", summary.ErrorCount)
	}
}

func TestSummaryFormat(t *testing.T) {
	summary := Execute([]Operation{
		{Operation: OpDelete, CalendarID: "primary", EventID: "evt1"},
		{Operation: OpPatch, CalendarID: "primary", EventID: "evt2"},
	}, func(op Operation) error {
		if op.EventID == "evt2" {
			return errors.New("patch failed")
		}
		return nil
	})

	output := summary.Format()

	var parsed Summary
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("Failed to parse output JSON: %v", err)
	}

	if parsed.SuccessCount != 1 {
		t.Errorf("success_count = %d, want 1", parsed.SuccessCount)
	}
	if parsed.ErrorCount != 1 {
		t.Errorf("error_count = %d, want 1", parsed.ErrorCount)
	}
	if len(parsed.Results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(parsed.Results))
	}
	if parsed.Results[1].Error != "patch failed" {
		t.Errorf("results[1].error = %q, want 'patch failed'", parsed.Results[1].Error)
	}
}

// Helper function to compare string slices
func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

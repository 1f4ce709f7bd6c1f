package instrumentation

import "testing"

func TestExtractCalendarDomain(t *testing.T) {
	tests := []struct {
		calendarID string
		expected   string
	}{
		{"jane@example.com", "example.com"},
		{"user@gmail.com", "gmail.com"},
		{"abc123@group.calendar.google.com", "group.calendar.google.com"},
		{"test@subdomain.example.com", "subdomain.example.com"},
		{"primary", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.calendarID, func(t *testing.T) {
			result := ExtractCalendarDomain(tt.calendarID)
			if result != tt.expected {
				t.Errorf("ExtractCalendarDomain(%q) = %q, want %q", tt.calendarID, result, tt.expected)
			}
		})
	}
}

func TestOperationConstants(t *testing.T) {
	operations := map[string]string{
		OperationList:     "list",
		OperationGet:      "get",
		OperationCreate:   "create",
		OperationUpdate:   "update",
		OperationPatch:    "patch",
		OperationDelete:   "delete",
		OperationSearch:   "search",
		OperationGenerate: "generate",
	}

	for constant, expected := range operations {
		if constant != expected {
			t.Errorf("Operation constant = %q, want %q", constant, expected)
		}
	}
}

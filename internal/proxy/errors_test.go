package proxy

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unauthorized",
			err:         &googleapi.Error{Code: 401, Message: "token expired"},
			wantStatus:  401,
			wantMessage: "Invalid or missing API key",
		},
		{
			name:        "forbidden",
			err:         &googleapi.Error{Code: 403, Message: "insufficient scope"},
			wantStatus:  403,
			wantMessage: "Operation forbidden or requires confirmation",
		},
		{
			name:        "server error keeps detail",
			err:         &googleapi.Error{Code: 502, Message: "upstream timeout"},
			wantStatus:  502,
			wantMessage: "Proxy server error: upstream timeout",
		},
		{
			name:        "server error without detail",
			err:         &googleapi.Error{Code: 500},
			wantStatus:  500,
			wantMessage: "Proxy server error",
		},
		{
			name:        "bad request keeps detail",
			err:         &googleapi.Error{Code: 400, Message: "invalid timeMin"},
			wantStatus:  400,
			wantMessage: "Bad request: invalid timeMin",
		},
		{
			name:        "not found maps to bad request class",
			err:         &googleapi.Error{Code: 404, Message: "event not found"},
			wantStatus:  404,
			wantMessage: "Bad request: event not found",
		},
		{
			name:        "non-HTTP error passes through",
			err:         fmt.Errorf("connection refused"),
			wantStatus:  0,
			wantMessage: "connection refused",
		},
		{
			name:        "wrapped googleapi error",
			err:         fmt.Errorf("calling proxy: %w", &googleapi.Error{Code: 401}),
			wantStatus:  401,
			wantMessage: "Invalid or missing API key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("list events", tt.err)
			var perr *Error
			if !errors.As(err, &perr) {
				t.Fatalf("Classify() = %T, want *Error", err)
			}
			if perr.Op != "list events" {
				t.Errorf("Op = %q, want %q", perr.Op, "list events")
			}
			if perr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", perr.StatusCode, tt.wantStatus)
			}
			if perr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", perr.Message, tt.wantMessage)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if err := Classify("get event", nil); err != nil {
		t.Errorf("Classify(nil) = %v, want nil", err)
	}
}

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "with status code",
			err: &Error{
				Op:         "delete event",
				StatusCode: 403,
				Message:    "Operation forbidden or requires confirmation",
			},
			contains: []string{"delete event", "403", "forbidden"},
		},
		{
			name: "without status code",
			err: &Error{
				Op:      "list calendars",
				Message: "connection refused",
			},
			contains: []string{"list calendars", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(got, substr) {
					t.Errorf("Error() = %q, want to contain %q", got, substr)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := &googleapi.Error{Code: 500}
	err := Classify("get calendar", inner)

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Error("Classify() result should unwrap to the googleapi error")
	}
}

func TestErrorPredicates(t *testing.T) {
	auth := Classify("op", &googleapi.Error{Code: 401})
	forbidden := Classify("op", &googleapi.Error{Code: 403})
	notFound := Classify("op", &googleapi.Error{Code: 404})
	plain := errors.New("boom")

	if !IsAuth(auth) {
		t.Error("IsAuth() = false for 401")
	}
	if IsAuth(forbidden) || IsAuth(plain) {
		t.Error("IsAuth() = true for non-401")
	}
	if !IsForbidden(forbidden) {
		t.Error("IsForbidden() = false for 403")
	}
	if IsForbidden(auth) {
		t.Error("IsForbidden() = true for 401")
	}
	if !IsNotFound(notFound) {
		t.Error("IsNotFound() = false for 404")
	}
	if IsNotFound(plain) {
		t.Error("IsNotFound() = true for plain error")
	}

	wrapped := fmt.Errorf("outer: %w", auth)
	if !IsAuth(wrapped) {
		t.Error("IsAuth() = false for wrapped proxy error")
	}
}

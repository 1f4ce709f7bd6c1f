package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

// captureLogger returns an adapter writing to a buffer at debug level.
func captureLogger() (*SlogAdapter, *bytes.Buffer) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogAdapter(slog.New(handler)), &buf
}

func TestNewSlogAdapterWithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter == nil {
		t.Fatal("NewSlogAdapter returned nil")
	}
	if adapter.Logger() == nil {
		t.Error("adapter should fall back to slog.Default() when created with nil")
	}
}

func TestNewSlogAdapterWithLogger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the provided logger")
	}
}

func TestSlogAdapterLevels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l Logger)
		level string
	}{
		{
			name:  "debug",
			log:   func(l Logger) { l.Debug("debug message", "key", "value") },
			level: "DEBUG",
		},
		{
			name:  "info",
			log:   func(l Logger) { l.Info("info message", "key", "value") },
			level: "INFO",
		},
		{
			name:  "warn",
			log:   func(l Logger) { l.Warn("warn message", "key", "value") },
			level: "WARN",
		},
		{
			name:  "error",
			log:   func(l Logger) { l.Error("error message", "key", "value") },
			level: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, buf := captureLogger()
			tt.log(adapter)

			out := buf.String()
			if !strings.Contains(out, "level="+tt.level) {
				t.Errorf("output missing level %s: %s", tt.level, out)
			}
			if !strings.Contains(out, tt.name+" message") {
				t.Errorf("output missing message: %s", out)
			}
			if !strings.Contains(out, "key=value") {
				t.Errorf("output missing attribute: %s", out)
			}
		})
	}
}

func TestSlogAdapterCarriesAttrs(t *testing.T) {
	adapter, buf := captureLogger()
	adapter.Info("calendar operation", Operation("events.list"), CalendarHash("primary"))

	out := buf.String()
	if !strings.Contains(out, "operation=events.list") {
		t.Errorf("output missing operation attr: %s", out)
	}
	if !strings.Contains(out, "calendar_hash=primary") {
		t.Errorf("output missing calendar_hash attr: %s", out)
	}
}

func TestDefaultLogger(t *testing.T) {
	adapter := DefaultLogger()
	if adapter == nil {
		t.Fatal("DefaultLogger returned nil")
	}
	if adapter.Logger() == nil {
		t.Error("DefaultLogger().Logger() should not be nil")
	}
}

func TestLoggerInterface(t *testing.T) {
	// Verify SlogAdapter implements Logger interface
	var _ Logger = (*SlogAdapter)(nil)
}

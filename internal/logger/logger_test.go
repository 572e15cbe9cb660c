package logger

import "testing"

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"debug console", "debug", "console"},
		{"info console", "info", "console"},
		{"warn json", "warn", "json"},
		{"error json", "error", "json"},
		{"uppercase level", "DEBUG", "console"},
		{"unknown level falls back to info", "verbose", "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Setup(tt.level, tt.format)
			if Log == nil {
				t.Fatal("expected Log to be initialized")
			}
		})
	}
}

func TestKeyValuePairs(t *testing.T) {
	Setup("debug", "json")

	// Must not panic on well-formed, odd-length, or non-string-key args.
	Log.Info("info message", "key", "value")
	Log.Debug("debug message", "count", 42, "dangling")
	Log.Warn("warn message", 12, "numeric key")
	Log.Error("error message")
}

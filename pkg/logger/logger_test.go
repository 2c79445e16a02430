package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	fn()
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"unknown", InfoLevel},
		{" info ", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestInfoCFFormat(t *testing.T) {
	out := capture(t, func() {
		InfoCF("gateway", "client connected", map[string]interface{}{
			"user_id": "alice",
			"count":   3,
		})
	})

	if !strings.Contains(out, "[INFO] gateway: client connected") {
		t.Errorf("output = %q", out)
	}
	// fields render sorted by key
	if !strings.Contains(out, "count=3 user_id=alice") {
		t.Errorf("fields not sorted: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	SetLevel(WarnLevel)
	defer SetLevel(InfoLevel)

	out := capture(t, func() {
		Info("test", "hidden")
		Warn("test", "visible")
	})

	if strings.Contains(out, "hidden") {
		t.Error("info line leaked past warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn line missing")
	}
}

func TestFieldQuoting(t *testing.T) {
	out := capture(t, func() {
		InfoCF("test", "msg", map[string]interface{}{"text": "has spaces"})
	})
	if !strings.Contains(out, `text="has spaces"`) {
		t.Errorf("output = %q", out)
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		checkFunc func(t *testing.T, output string)
	}{
		{
			name: "Text Logger Info Level",
			config: Config{
				Level:  "info",
				Format: "text",
				Output: "stdout",
			},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") ||
					!strings.Contains(output, "msg=\"test message\"") {
					t.Errorf("Expected text log output with info level and message, got: %s", output)
				}
			},
		},
		{
			name: "JSON Logger Debug Level",
			config: Config{
				Level:  "debug",
				Format: "json",
				Output: "stdout",
			},
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				err := json.Unmarshal([]byte(output), &logEntry)
				if err != nil {
					t.Fatalf("Failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if logEntry["level"] != "DEBUG" || logEntry["msg"] != "test message" {
					t.Errorf("Expected JSON log output with debug level and message, got: %v", logEntry)
				}
			},
		},
		{
			name: "Unknown level falls back to info",
			config: Config{
				Level:  "chatty",
				Format: "text",
			},
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") {
					t.Errorf("Expected info fallback, got: %s", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.config, &buf)

			if tt.config.Level == "debug" {
				log.Debug("test message")
			} else {
				log.Info("test message")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}

func TestForRun(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(Config{Level: "info", Format: "text"}, &buf)

	runLog := ForRun(base, "run-42", "https://github.com/acme/billing/pull/7")
	runLog.Info("state entered")

	out := buf.String()
	if !strings.Contains(out, "run_id=run-42") {
		t.Errorf("expected run_id field, got: %s", out)
	}
	if !strings.Contains(out, "pull/7") {
		t.Errorf("expected ref field, got: %s", out)
	}
}

// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:     "debug",
		Format:    "json",
		Timestamp: true,
		Output:    &buf,
	})

	Info().Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"TRACE", zerolog.TraceLevel},
		{"INFO", zerolog.InfoLevel},
		{"invalid", zerolog.InfoLevel}, // default
		{"", zerolog.InfoLevel},        // empty
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("parseLevel(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestInitAppliesDefaults(t *testing.T) {
	var buf bytes.Buffer

	// Empty level and format fall back to info/json
	Init(Config{Output: &buf})

	Info().Msg("defaulted")

	output := buf.String()
	if !strings.Contains(output, `"message":"defaulted"`) {
		t.Errorf("expected JSON output with message field, got: %s", output)
	}
}

func TestInitConsoleFormat(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "info",
		Format: "console",
		Output: &buf,
	})

	Info().Msg("console message")

	output := buf.String()
	if !strings.Contains(output, "console message") {
		t.Errorf("expected console output to contain message, got: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	defer SetLevel(zerolog.InfoLevel)

	var buf bytes.Buffer

	Init(Config{
		Level:  "warn",
		Format: "json",
		Output: &buf,
	})

	Debug().Msg("should not appear")
	Info().Msg("should not appear either")
	Warn().Msg("warning appears")

	output := buf.String()
	if strings.Contains(output, "should not appear") {
		t.Errorf("expected debug/info to be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warning appears") {
		t.Errorf("expected warning to pass filter, got: %s", output)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	custom := NewTestLogger(&buf)

	SetLogger(custom)
	defer Init(DefaultConfig())

	Info().Msg("via custom logger")

	if !strings.Contains(buf.String(), "via custom logger") {
		t.Errorf("expected custom logger to receive output, got: %s", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	})

	child := With().Str("component", "hub").Logger()
	child.Info().Msg("child logger message")

	output := buf.String()
	if !strings.Contains(output, `"component":"hub"`) {
		t.Errorf("expected child field in output, got: %s", output)
	}
}

func TestErr(t *testing.T) {
	var buf bytes.Buffer

	Init(Config{
		Level:  "info",
		Format: "json",
		Output: &buf,
	})

	Err(errTest).Msg("operation failed")

	output := buf.String()
	if !strings.Contains(output, `"error":"boom"`) {
		t.Errorf("expected error field, got: %s", output)
	}
	if !strings.Contains(output, `"level":"error"`) {
		t.Errorf("expected error level, got: %s", output)
	}
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestSetLevelString(t *testing.T) {
	defer SetLevel(zerolog.InfoLevel)

	SetLevelString("error")
	if GetLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %v", GetLevel())
	}

	SetLevelString("debug")
	if GetLevel() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", GetLevel())
	}
}

func TestNewTestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewTestLogger(&buf)

	logger.Info().Str("key", "value").Msg("test")

	output := buf.String()
	if !strings.Contains(output, `"key":"value"`) {
		t.Errorf("expected structured field, got: %s", output)
	}
	if !strings.Contains(output, `"time"`) {
		t.Errorf("expected timestamp field, got: %s", output)
	}
}

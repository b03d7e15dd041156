package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func resetLogger() {
	Init(Options{})
}

// --- Init Tests ---

func TestInit_DefaultLevel_Info(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	Info("test info")
	if !strings.Contains(buf.String(), "test info") {
		t.Error("Info message should be logged at default level")
	}

	buf.Reset()
	Debug("test debug")
	if strings.Contains(buf.String(), "test debug") {
		t.Error("Debug message should not be logged at default level")
	}
}

func TestInit_DebugLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	Debug("test debug message")
	if !strings.Contains(buf.String(), "test debug message") {
		t.Error("Debug message should be logged when Debug=true")
	}
}

func TestInit_QuietOverridesDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Quiet: true, Output: buf})
	defer resetLogger()

	Debug("debug message")
	Warn("warn message")
	Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "warn message") {
		t.Errorf("only errors should be logged when Quiet=true, got %q", output)
	}
	if !strings.Contains(output, "error message") {
		t.Error("Error should be logged when Quiet=true")
	}
}

func TestInit_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{JSON: true, Output: buf})
	defer resetLogger()

	Warn("stored value rejected", "field", "licence")

	output := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("expected JSON output, got %q", output)
	}
	if !strings.Contains(output, `"field":"licence"`) {
		t.Errorf("expected field attribute in JSON output, got %q", output)
	}
}

func TestInit_CustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	custom := slog.New(slog.NewTextHandler(buf, nil))
	Init(Options{Logger: custom, Output: io.Discard})
	defer resetLogger()

	Info("through custom")
	if !strings.Contains(buf.String(), "through custom") {
		t.Error("custom logger should receive messages")
	}
}

func TestDiscard(t *testing.T) {
	Discard()
	defer resetLogger()

	// Nothing to assert on beyond not panicking; Discard must accept all levels.
	Error("dropped")
}

// --- With / Context Tests ---

func TestWith_CarriesAttributes(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	With("load_id", "abc123").Info("page loaded")

	output := buf.String()
	if !strings.Contains(output, "load_id=abc123") {
		t.Errorf("expected load_id attribute, got %q", output)
	}
}

func TestContextVariants(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Debug: true, Output: buf})
	defer resetLogger()

	ctx := context.Background()
	DebugContext(ctx, "debug ctx")
	InfoContext(ctx, "info ctx")
	WarnContext(ctx, "warn ctx")
	ErrorContext(ctx, "error ctx")

	for _, want := range []string{"debug ctx", "info ctx", "warn ctx", "error ctx"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in output", want)
		}
	}
}

// --- Logf Tests ---

func TestLogf_OnlyAtDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(Options{Output: buf})
	defer resetLogger()

	logf := Logf("chromedp")
	logf("frame %d attached", 3)
	if buf.Len() != 0 {
		t.Errorf("Logf should be silent at info level, got %q", buf.String())
	}

	Init(Options{Debug: true, Output: buf})
	logf("frame %d attached", 3)
	if !strings.Contains(buf.String(), "frame 3 attached") {
		t.Errorf("expected formatted message at debug level, got %q", buf.String())
	}
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ddrpub/internal/services"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	handler := newConsoleHandler(&buf, slog.LevelInfo)
	logger := slog.New(handler)

	logger.Info("creating the JSON control file", String("path", "/tmp/ControlFile.json"))

	line := buf.String()
	if !strings.Contains(line, " - INFO: creating the JSON control file") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "path=/tmp/ControlFile.json") {
		t.Fatalf("missing attr: %q", line)
	}
	stamp := strings.SplitN(line, " - ", 2)[0]
	if _, err := time.Parse(consoleTimeFormat, stamp); err != nil {
		t.Fatalf("timestamp prefix %q not parseable: %v", stamp, err)
	}
}

func TestConsoleHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Warn("layer is not spatial")
	logger.Error("publish failed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be suppressed: %q", out)
	}
	if !strings.Contains(out, "WARNING: layer is not spatial") {
		t.Fatalf("missing warning: %q", out)
	}
	if !strings.Contains(out, "ERROR: publish failed") {
		t.Fatalf("missing error: %q", out)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithStage(context.Background(), "zip")
	ctx = services.WithOperation(ctx, "publish")
	WithContext(ctx, base).Info("stage started")

	out := buf.String()
	if !strings.Contains(out, `"stage":"zip"`) {
		t.Fatalf("missing stage field: %q", out)
	}
	if !strings.Contains(out, `"operation":"publish"`) {
		t.Fatalf("missing operation field: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mixdown/internal/config"
	"mixdown/internal/services"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.input); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestPrettyHandlerOutput(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelInfo)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("mixing streams",
		String(FieldComponent, "mixer"),
		Int("streams", 3),
		String("output", "movie mixed.mp4"),
	)

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO ") {
		t.Errorf("expected INFO label in %q", line)
	}
	if !strings.Contains(line, "mixer: mixing streams") {
		t.Errorf("expected component prefix in %q", line)
	}
	if !strings.Contains(line, "streams=3") {
		t.Errorf("expected streams attr in %q", line)
	}
	if !strings.Contains(line, `output="movie mixed.mp4"`) {
		t.Errorf("expected quoted output attr in %q", line)
	}
}

func TestPrettyHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be suppressed, got %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing from %q", out)
	}
}

func TestPrettyHandlerFlattensGroups(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, levelVar, false)).WithGroup("mix")

	logger.Info("done", Int("streams", 2))

	if !strings.Contains(buf.String(), "mix.streams=2") {
		t.Errorf("expected dotted group key in %q", buf.String())
	}
}

func TestJSONHandlerKeyMapping(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar, false))

	logger.Info("probe complete", Int("streams", 4))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if decoded["msg"] != "probe complete" {
		t.Errorf("msg = %v", decoded["msg"])
	}
	if decoded["level"] != "info" {
		t.Errorf("level = %v", decoded["level"])
	}
	ts, ok := decoded["ts"].(string)
	if !ok {
		t.Fatalf("ts missing or not a string: %v", decoded["ts"])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("ts %q not RFC3339: %v", ts, err)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		value slog.Value
		want  string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.StringValue("has space"), `"has space"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(7), "7"},
		{slog.Float64Value(1.5), "1.5"},
		{slog.BoolValue(true), "true"},
		{slog.DurationValue(1500 * time.Millisecond), "1.5s"},
		{slog.AnyValue(errors.New("mix failed")), `"mix failed"`},
	}
	for _, tc := range cases {
		if got := formatValue(tc.value); got != tc.want {
			t.Errorf("formatValue(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mixdown.log")
	logger, err := New(Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{path},
		ErrorOutputPaths: []string{path},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing message: %q", string(data))
	}
}

func TestNewFromConfigUsesLogDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "debug"

	logger, err := NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Debug("hello from config")

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "mixdown.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from config") {
		t.Errorf("log file missing message: %q", string(data))
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	base := slog.New(newPrettyHandler(&buf, levelVar, false))

	ctx := services.WithRunID(context.Background(), "run-42")
	ctx = services.WithInputPath(ctx, "/media/movie.mkv")

	WithContext(ctx, base).Info("processing")

	line := buf.String()
	if !strings.Contains(line, "run_id=run-42") {
		t.Errorf("expected run_id attr in %q", line)
	}
	if !strings.Contains(line, "input=/media/movie.mkv") {
		t.Errorf("expected input attr in %q", line)
	}
}

func TestWithContextNilLogger(t *testing.T) {
	logger := WithContext(context.Background(), nil)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "probe")
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	logger.Info("should not panic")
}

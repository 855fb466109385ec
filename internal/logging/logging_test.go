package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"err":     slog.LevelError,
	}
	for input, want := range cases {
		got, err := ParseLevel(input)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	if mode, err := ParseMode("json"); err != nil || mode != ModeJSON {
		t.Fatalf("ParseMode(json) = %v, %v", mode, err)
	}
	if mode, err := ParseMode("text"); err != nil || mode != ModeCLI {
		t.Fatalf("ParseMode(text) = %v, %v", mode, err)
	}
	if _, err := ParseMode("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCLIHandlerFormatsAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewCLI(&buf, slog.LevelInfo).With("build", "b1").WithGroup("pkg")
	logger.Info("creating package", "name", "hamlet", "path", "/tmp/with space", "error", errors.New("exit status 1"))
	logger.Debug("hidden")

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	for _, fragment := range []string{
		"INFO ",
		"| creating package",
		" build=b1",
		" pkg.name=hamlet",
		` pkg.path="/tmp/with space"`,
		` pkg.error="exit status 1"`,
	} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("output %q is missing %q", out, fragment)
		}
	}
}

func TestJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewJSON(&buf, slog.LevelWarn).Warn("converting", "original", "My_Project")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["msg"] != "converting" || record["original"] != "My_Project" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("discard logger should not be enabled")
	}
}

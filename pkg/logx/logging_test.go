package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("decode %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestWriterFieldsAndLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info").With(String("comp", "scheduler"))

	log.Debug("hidden")
	log.Info("run complete", Int("runs", 2), Duration("took", 1500*time.Millisecond), Err(errors.New("boom")))

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	got := lines[0]
	if got["message"] != "run complete" || got["level"] != "info" {
		t.Fatalf("unexpected event %v", got)
	}
	if got["comp"] != "scheduler" {
		t.Fatalf("comp = %v", got["comp"])
	}
	if got["runs"] != float64(2) {
		t.Fatalf("runs = %v", got["runs"])
	}
	if got["err"] != "boom" {
		t.Fatalf("err = %v", got["err"])
	}
	if c, _ := got["caller"].(string); !strings.HasPrefix(c, "logging_test.go:") {
		t.Fatalf("caller = %v, want this file", got["caller"])
	}
}

func TestLaterFieldsWin(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, "debug").With(String("k", "a")).Info("x", String("k", "b"))
	if !strings.Contains(buf.String(), `"k":"b"`) {
		t.Fatalf("got %q", buf.String())
	}
}

func TestEnabled(t *testing.T) {
	log := NewWriter(&bytes.Buffer{}, "warn")
	if log.Enabled(LevelInfo) {
		t.Fatal("info should be disabled at warn")
	}
	if !log.Enabled(LevelError) {
		t.Fatal("error should be enabled at warn")
	}
}

func TestZeroAndNop(t *testing.T) {
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero Logger should report IsZero")
	}
	zero.Info("dropped")
	Nop().Error("dropped", Err(nil))
	if Nop().IsZero() {
		t.Fatal("Nop should not be zero")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"":        LevelInfo,
		"DEBUG":   LevelDebug,
		"warning": LevelWarn,
		"error":   LevelError,
		"trace":   LevelTrace,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopIsNeverEnabled(t *testing.T) {
	if Nop().Enabled(LevelError) {
		t.Fatal("Nop should not be enabled")
	}
}

func TestStackTrace(t *testing.T) {
	st := StackTrace(1, 8)
	if !strings.Contains(st, "TestStackTrace") {
		t.Fatalf("stack does not include the caller:\n%s", st)
	}
	if n := strings.Count(st, "\n  "); n > 8 {
		t.Fatalf("got %d frames, want at most 8", n)
	}
}

func TestServiceApplySwapsLevel(t *testing.T) {
	svc, log := New(Config{Level: "info", Console: true})
	defer svc.Close()
	derived := log.With(String("comp", "x"))
	if derived.Enabled(LevelDebug) {
		t.Fatal("debug enabled at info")
	}
	svc.Apply(Config{Level: "debug", Console: true})
	if !derived.Enabled(LevelDebug) {
		t.Fatal("derived logger did not follow Apply")
	}
}

func TestServiceFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadenced.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	log.Info("hello", String("comp", "test"))
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStandardLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(
		WithOutput(&buf),
		WithLevel(LevelWarn),
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
	)

	log.Info("hidden")
	log.Warn("shown %d", 1)

	if got, want := buf.String(), "[WARN] shown 1\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestWithAddsFieldsToChild(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(
		WithOutput(&buf),
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
	)

	child := log.With(String("asset", "moon_patrol"))
	child.InfoContext(context.Background(), "fetched", Int("bytes", 232960))
	log.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
	if lines[0] != "[INFO] fetched asset=moon_patrol bytes=232960" {
		t.Fatalf("child line = %q", lines[0])
	}
	if lines[1] != "[INFO] parent" {
		t.Fatalf("parent line = %q", lines[1])
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := NewStandardLogger(WithOutput(&buf), WithFormatter(&JSONFormatter{}))
	log.ErrorContext(context.Background(), "boom", String("code", "INT-001"))

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if decoded["msg"] != "boom" || decoded["level"] != "ERROR" || decoded["code"] != "INT-001" {
		t.Fatalf("unexpected json: %v", decoded)
	}
}

func TestSetFormatterSwitchesToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewColoredLogger(WithOutput(&buf))
	log.SetFormatter(&JSONFormatter{})
	log.Info("hello")

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if decoded["msg"] != "hello" || decoded["level"] != "INFO" {
		t.Fatalf("unexpected json: %v", decoded)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "": LevelInfo, "Warning": LevelWarn, "ERROR": LevelError}
	for name, want := range cases {
		got, ok := ParseLevel(name)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Errorf("ParseLevel accepted an unknown name")
	}
}

func TestMockLoggerSharesEntriesWithChildren(t *testing.T) {
	log := NewMockLogger()
	log.With(String("k", "v")).Warn("child %s", "warned")
	log.Debug("parent")

	if !log.HasEntry(LevelWarn, "child warned") {
		t.Fatalf("child entry not recorded on parent")
	}
	if log.CountEntries(LevelDebug) != 1 {
		t.Fatalf("expected one debug entry")
	}
	entries := log.GetEntries()
	if len(entries[0].Fields) != 1 || entries[0].Fields[0].Key != "k" {
		t.Fatalf("child fields missing: %+v", entries[0])
	}
	log.Reset()
	if len(log.GetEntries()) != 0 {
		t.Fatalf("Reset kept entries")
	}
}

func TestStepProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewStepProgress(&buf)
	p.Start("Build disk images")
	if p.Active() != "Build disk images" {
		t.Fatalf("Active() = %q", p.Active())
	}
	p.Stop("Build disk images")
	if p.Active() != "" {
		t.Fatalf("step still active after Stop")
	}
	want := "→ Build disk images\n✓ Build disk images\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

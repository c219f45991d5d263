package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWith(t, logger.NewMockLogger(), args...)
}

func runWith(t *testing.T, log logger.Logger, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand(log)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	cmd := newRootCommand(logger.NewMockLogger())

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	want := []string{"all", "clean", "disks", "list", "roms"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected subcommands (-want +got):\n%s", diff)
	}
	for _, flag := range []string{"root", "config", "verbose", "no-progress", "log-level", "log-format"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("missing --%s", flag)
		}
	}
}

func TestListOnEmptyProject(t *testing.T) {
	out, err := run(t, "--root", t.TempDir(), "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "moon_patrol_prodos") {
		t.Fatalf("expected built-in disks in table, got:\n%s", out)
	}
	if !strings.Contains(out, "0 of 5 artifacts built") {
		t.Fatalf("expected summary, got:\n%s", out)
	}
}

func TestCleanWithYes(t *testing.T) {
	root := t.TempDir()
	header := filepath.Join(root, "src", "images", "moon_patrol.h")
	if err := os.MkdirAll(filepath.Dir(header), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(header, []byte("const uint8_t moon_patrol_nib_image[] = {\n};\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := run(t, "--root", root, "clean", "--yes"); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(header); !os.IsNotExist(err) {
		t.Fatalf("header should be removed, stat err=%v", err)
	}
}

func TestBadConfigFails(t *testing.T) {
	config := filepath.Join(t.TempDir(), "override.yaml")
	if err := os.WriteFile(config, []byte("disks:\n  - name: moon_patrol\n    hash: crc32\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := run(t, "--root", t.TempDir(), "--config", config, "list")
	if !apperrors.IsCategory(err, apperrors.ErrCategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRejectsExtraArguments(t *testing.T) {
	if _, err := run(t, "disks", "extra"); err == nil {
		t.Fatal("expected an error for unexpected arguments")
	}
}

func TestLogFlagsConfigureLogger(t *testing.T) {
	var logs bytes.Buffer
	log := logger.NewStandardLogger(logger.WithOutput(&logs))

	if _, err := runWith(t, log, "--root", t.TempDir(), "--log-level", "warn", "--log-format", "json", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if log.GetLevel() != logger.LevelWarn {
		t.Fatalf("level = %v, want WARN", log.GetLevel())
	}

	logs.Reset()
	log.Warn("checked")
	var decoded map[string]interface{}
	if err := json.Unmarshal(logs.Bytes(), &decoded); err != nil {
		t.Fatalf("expected a json log line, got %q: %v", logs.String(), err)
	}
	if decoded["msg"] != "checked" {
		t.Fatalf("unexpected entry %v", decoded)
	}
}

func TestVerboseOverridesLogLevel(t *testing.T) {
	log := logger.NewMockLogger()
	if _, err := runWith(t, log, "--root", t.TempDir(), "--log-level", "error", "--verbose", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if log.GetLevel() != logger.LevelDebug {
		t.Fatalf("level = %v, want DEBUG", log.GetLevel())
	}
}

func TestUnknownLogSettingsFail(t *testing.T) {
	for _, args := range [][]string{
		{"--log-level", "loud", "list"},
		{"--log-format", "xml", "list"},
	} {
		_, err := run(t, append([]string{"--root", t.TempDir()}, args...)...)
		if !apperrors.IsCategory(err, apperrors.ErrCategoryValidation) {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
	}
}

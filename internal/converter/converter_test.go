package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
)

// fakeExecutor records invocations and emulates a converter by writing a
// transformed copy of the input to the output path.
type fakeExecutor struct {
	calls   [][]string
	fail    bool
	noWrite bool
}

func (f *fakeExecutor) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.fail {
		return []byte("bad disk image"), errors.New("exit status 1")
	}
	if f.noWrite {
		return nil, nil
	}

	var in, out string
	if len(args) >= 4 && args[0] == "-i" {
		in, out = args[1], args[3]
	} else {
		in, out = args[0], args[1]
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, err
	}
	return nil, os.WriteFile(out, bytes.ToUpper(data), 0o644)
}

func (f *fakeExecutor) workspace(t *testing.T) string {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatalf("executor was not called")
	}
	args := f.calls[0]
	for i, a := range args {
		if a == "-i" {
			return filepath.Dir(args[i+1])
		}
	}
	return filepath.Dir(args[1])
}

func TestConvertDsk2NibProDOS(t *testing.T) {
	exec := &fakeExecutor{}
	c := New(logger.NewMockLogger(), WithExecutor(exec), WithTempRoot(t.TempDir()))

	got, err := c.Convert(context.Background(), Dsk2Nib("tools/dsk2nib/src/dsk2nib"), []byte("disk"), true)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if string(got) != "DISK" {
		t.Fatalf("output = %q", got)
	}

	dir := exec.workspace(t)
	want := []string{
		"tools/dsk2nib/src/dsk2nib",
		"-i", filepath.Join(dir, "input.dsk"),
		"-o", filepath.Join(dir, "input.nib"),
		"-pp",
	}
	if diff := cmp.Diff(want, exec.calls[0]); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("workspace %s not removed after success", dir)
	}
}

func TestConvertWoz2DskPositional(t *testing.T) {
	exec := &fakeExecutor{}
	c := New(nil, WithExecutor(exec), WithTempRoot(t.TempDir()))

	if _, err := c.Convert(context.Background(), Woz2Dsk("woz2dsk"), []byte("woz"), false); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	dir := exec.workspace(t)
	want := []string{"woz2dsk", filepath.Join(dir, "input.woz"), filepath.Join(dir, "input.nib")}
	if diff := cmp.Diff(want, exec.calls[0]); diff != "" {
		t.Fatalf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertToolFailureCleansUp(t *testing.T) {
	exec := &fakeExecutor{fail: true}
	c := New(nil, WithExecutor(exec), WithTempRoot(t.TempDir()))

	got, err := c.Convert(context.Background(), Dsk2Nib("dsk2nib"), []byte("disk"), false)
	if got != nil {
		t.Fatalf("expected no output on failure")
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Category != apperrors.ErrCategoryTool {
		t.Fatalf("expected tool error, got %v", err)
	}
	if appErr.Metadata["output"] != "bad disk image" {
		t.Fatalf("tool output not captured: %v", appErr.Metadata)
	}
	if _, err := os.Stat(exec.workspace(t)); !os.IsNotExist(err) {
		t.Fatalf("workspace not removed after tool failure")
	}
}

func TestConvertMissingOutputCleansUp(t *testing.T) {
	exec := &fakeExecutor{noWrite: true}
	c := New(nil, WithExecutor(exec), WithTempRoot(t.TempDir()))

	_, err := c.Convert(context.Background(), Dsk2Nib("dsk2nib"), []byte("disk"), false)
	if !apperrors.IsCategory(err, apperrors.ErrCategoryFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	if _, err := os.Stat(exec.workspace(t)); !os.IsNotExist(err) {
		t.Fatalf("workspace not removed after read failure")
	}
}

func TestConvertRejectsProDOSForWoz(t *testing.T) {
	exec := &fakeExecutor{}
	c := New(nil, WithExecutor(exec))

	_, err := c.Convert(context.Background(), Woz2Dsk("woz2dsk"), nil, true)
	if !apperrors.IsCategory(err, apperrors.ErrCategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(exec.calls) != 0 {
		t.Fatalf("tool must not run")
	}
}

func TestWorkspaceCloseIsIdempotent(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(ws.Path("x"), []byte("1"), 0o644); err != nil {
		t.Fatal(err)
	}
	dir := ws.Dir()
	if err := ws.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("directory still present")
	}
}

package downloader

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "romgen/internal/errors"
	"romgen/internal/logger"
)

func sha1Hex(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func newTestServer(t *testing.T, payload []byte, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		switch r.URL.Path {
		case "/partial.dsk":
			w.WriteHeader(http.StatusNonAuthoritativeInfo)
			w.Write(payload)
		case "/disk.dsk":
			if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "romgen/") {
				http.Error(w, "missing user agent", http.StatusBadRequest)
				return
			}
			w.Write(payload)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchVerifiedReturnsPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xd5, 0xaa, 0x96}, 1000)
	var hits int32
	srv := newTestServer(t, payload, &hits)

	f, err := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	got, err := f.FetchVerified(context.Background(), srv.URL+"/disk.dsk", "sha1", sha1Hex(payload))
	if err != nil {
		t.Fatalf("FetchVerified: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %d bytes", len(got))
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one request, got %d", hits)
	}
}

func TestFetchVerifiedRejectsWrongDigest(t *testing.T) {
	payload := []byte("not the disk you are looking for")
	var hits int32
	srv := newTestServer(t, payload, &hits)
	log := logger.NewMockLogger()

	f, _ := NewFetcher(log, WithHTTPClient(srv.Client()))
	wrong := strings.Repeat("ab", 20)

	got, err := f.FetchVerified(context.Background(), srv.URL+"/disk.dsk", "sha1", wrong)
	if got != nil {
		t.Fatalf("expected no bytes on mismatch, got %d", len(got))
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Category != apperrors.ErrCategoryIntegrity {
		t.Fatalf("expected integrity error, got %v", err)
	}
	if !strings.Contains(err.Error(), wrong) || !strings.Contains(err.Error(), sha1Hex(payload)) {
		t.Fatalf("error should name expected and actual digests: %v", err)
	}
	if appErr.Metadata["url"] != srv.URL+"/disk.dsk" {
		t.Fatalf("url metadata missing: %v", appErr.Metadata)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("mismatch must not be retried, got %d requests", hits)
	}
	if !log.HasEntry(logger.LevelWarn, "Digest verification failed") {
		t.Fatalf("expected a warning to be logged")
	}
}

func TestFetchAcceptsAny2xxStatus(t *testing.T) {
	payload := []byte("mirror copy")
	var hits int32
	srv := newTestServer(t, payload, &hits)

	f, err := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	got, err := f.FetchVerified(context.Background(), srv.URL+"/partial.dsk", "sha1", sha1Hex(payload))
	if err != nil {
		t.Fatalf("FetchVerified: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q", got)
	}
}

func TestFetchNonSuccessStatusIsNetworkError(t *testing.T) {
	var hits int32
	srv := newTestServer(t, nil, &hits)
	f, _ := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()))

	_, err := f.FetchVerified(context.Background(), srv.URL+"/missing.dsk", "sha1", strings.Repeat("0", 40))
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.CodeHTTPStatus {
		t.Fatalf("expected HTTP status error, got %v", err)
	}
	if appErr.Metadata["status"] != http.StatusNotFound {
		t.Fatalf("status metadata = %v", appErr.Metadata["status"])
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("no retry expected, got %d requests", hits)
	}
}

func TestFetchVerifiedUnknownAlgorithmMakesNoRequest(t *testing.T) {
	var hits int32
	srv := newTestServer(t, []byte("x"), &hits)
	f, _ := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()))

	_, err := f.FetchVerified(context.Background(), srv.URL+"/disk.dsk", "whirlpool", "00")
	if !apperrors.IsCategory(err, apperrors.ErrCategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("unknown algorithm should fail before any request")
	}
}

func TestFetchHonoursContextCancellation(t *testing.T) {
	var hits int32
	srv := newTestServer(t, []byte("x"), &hits)
	f, _ := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, srv.URL+"/disk.dsk"); !apperrors.IsCategory(err, apperrors.ErrCategoryNetwork) {
		t.Fatalf("expected network error for cancelled context, got %v", err)
	}
}

type recordingReporter struct {
	events []string
}

func (r *recordingReporter) OnStart(name string, total int64) {
	r.events = append(r.events, "start "+name)
}

func (r *recordingReporter) OnProgress(string, int64, int64) {}

func (r *recordingReporter) OnComplete(name string, total int64, _ time.Duration) {
	r.events = append(r.events, "done "+name)
}

func TestFetchReportsProgress(t *testing.T) {
	var hits int32
	srv := newTestServer(t, []byte("payload"), &hits)
	rep := &recordingReporter{}
	f, _ := NewFetcher(logger.NewMockLogger(), WithHTTPClient(srv.Client()), WithProgressReporter(rep))

	if _, err := f.Fetch(context.Background(), srv.URL+"/disk.dsk"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if diff := cmp.Diff([]string{"start disk.dsk", "done disk.dsk"}, rep.events); diff != "" {
		t.Fatalf("progress events mismatch (-want +got):\n%s", diff)
	}
}

func TestBarProgressReporterWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	rep := NewBarProgressReporter(&buf)
	rep.OnStart("rom.bin", 4)
	rep.OnProgress("rom.bin", 4, 4)
	rep.OnComplete("rom.bin", 4, time.Millisecond)

	if rep.bar != nil {
		t.Fatalf("bar should be released after completion")
	}
	rep.OnProgress("late.bin", 1, 1)
}

func TestNewFetcherRequiresLogger(t *testing.T) {
	if _, err := NewFetcher(nil); !apperrors.IsCategory(err, apperrors.ErrCategoryConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

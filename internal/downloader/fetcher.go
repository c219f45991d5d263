package downloader

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/dustin/go-humanize"

	"romgen/internal/checksum"
	apperrors "romgen/internal/errors"
)

const (
	copyBufferSize   = 32 * 1024
	defaultUserAgent = "romgen/1.0 (Go asset generator)"
)

// HTTPClient represents the subset of http.Client methods required by the fetcher.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads payloads into memory and verifies their digests.
type Fetcher struct {
	logger    Logger
	client    HTTPClient
	reporter  ProgressReporter
	userAgent string
	timeout   time.Duration
}

// Option customises Fetcher construction.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client used for downloads.
func WithHTTPClient(client HTTPClient) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithProgressReporter overrides the progress reporter implementation.
func WithProgressReporter(reporter ProgressReporter) Option {
	return func(f *Fetcher) {
		f.reporter = reporter
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(userAgent string) Option {
	return func(f *Fetcher) {
		f.userAgent = userAgent
	}
}

// WithTimeout bounds each request of the default client. Zero disables the
// limit. It has no effect when WithHTTPClient is also given.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// NewFetcher constructs a Fetcher. Without options it uses a default HTTP
// client with no timeout and reports no progress.
func NewFetcher(log Logger, opts ...Option) (*Fetcher, error) {
	if log == nil {
		return nil, apperrors.New(apperrors.ErrCategoryConfig, apperrors.CodeConfigGeneric, "logger must not be nil", nil).
			WithModule("downloader").
			WithOperation("NewFetcher")
	}

	f := &Fetcher{
		logger:    log,
		reporter:  NoopProgressReporter{},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = defaultHTTPClient(f.timeout)
	}
	if f.reporter == nil {
		f.reporter = NoopProgressReporter{}
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}

	return f, nil
}

// FetchVerified downloads url and returns its body only when the digest
// computed with algo equals expectedDigest. There is no retry: the first
// transport or integrity failure is returned.
func (f *Fetcher) FetchVerified(ctx context.Context, url string, algo checksum.Algorithm, expectedDigest string) ([]byte, error) {
	if _, err := checksum.New(algo); err != nil {
		return nil, apperrors.Annotate(err, apperrors.ErrCategoryValidation, "downloader", "FetchVerified").
			WithField("url", url)
	}

	body, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := checksum.Verify(algo, body, expectedDigest); err != nil {
		f.logger.Warn("Digest verification failed: %s", url)
		return nil, apperrors.Annotate(err, apperrors.ErrCategoryIntegrity, "downloader", "FetchVerified").
			WithField("url", url)
	}

	f.logger.Debug("Verified %s %s (%s)", algo, expectedDigest, humanize.Bytes(uint64(len(body))))
	return body, nil
}

// Fetch performs a single GET and returns the whole body. Any 2xx status is
// a success.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NetworkError(apperrors.CodeNetworkGeneric, "failed to create download request", err).
			WithModule("downloader").
			WithOperation("Fetch").
			WithField("url", url)
	}
	req.Header.Set("User-Agent", f.userAgent)

	f.logger.Info("Downloading %s", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NetworkError(apperrors.CodeNetworkGeneric, "download request failed", err).
			WithModule("downloader").
			WithOperation("Fetch").
			WithField("url", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NetworkError(apperrors.CodeHTTPStatus, "download failed with unexpected status", nil).
			WithModule("downloader").
			WithOperation("Fetch").
			WithFields(apperrors.Metadata{
				"url":    url,
				"status": resp.StatusCode,
			})
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 {
		buf.Grow(int(resp.ContentLength))
	}

	reader := newProgressReader(resp.Body, resp.ContentLength, f.reporter, path.Base(req.URL.Path))
	if _, err := io.CopyBuffer(&buf, reader, make([]byte, copyBufferSize)); err != nil {
		return nil, apperrors.NetworkError(apperrors.CodeNetworkGeneric, "failed to read response body", err).
			WithModule("downloader").
			WithOperation("Fetch").
			WithField("url", url)
	}
	reader.finish()

	return buf.Bytes(), nil
}

func defaultHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

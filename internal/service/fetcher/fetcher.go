package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/chromium-downloader/internal/httpclient"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/platform"
	"github.com/oshokin/chromium-downloader/internal/progress"
)

// DefaultFileMode is applied to a newly created archive.
const DefaultFileMode os.FileMode = 0o644

// Getter performs a single GET request.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// Opener creates or truncates the output file for writing.
type Opener func(name string) (io.WriteCloser, error)

// OutputOpenError reports that the output file could not be opened.
type OutputOpenError struct {
	// Path is the output filename.
	Path string
	// Err is the filesystem failure.
	Err error
}

func (e *OutputOpenError) Error() string {
	return fmt.Sprintf("open output file %s: %v", e.Path, e.Err)
}

func (e *OutputOpenError) Unwrap() error {
	return e.Err
}

// DownloadError reports that the archive transfer did not complete.
type DownloadError struct {
	// URL is the archive address.
	URL string
	// Written is the number of bytes that reached the output file.
	Written int64
	// Err is the request, transport, status or write failure.
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download archive: %v", e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// Fetcher downloads the archive for a resolved version.
type Fetcher struct {
	client   Getter
	baseURL  string
	platform platform.Platform
	output   string
	opener   Opener
	reporter progress.Reporter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithOpener replaces the output file opener.
func WithOpener(opener Opener) Option {
	return func(f *Fetcher) {
		if opener != nil {
			f.opener = opener
		}
	}
}

// WithReporter sets the progress renderer.
func WithReporter(reporter progress.Reporter) Option {
	return func(f *Fetcher) {
		if reporter != nil {
			f.reporter = reporter
		}
	}
}

// WithOutput overrides the local filename. By default the platform archive name is used.
func WithOutput(name string) Option {
	return func(f *Fetcher) {
		if name != "" {
			f.output = name
		}
	}
}

// New returns a Fetcher for p served under baseURL.
func New(client Getter, baseURL string, p platform.Platform, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   client,
		baseURL:  baseURL,
		platform: p,
		output:   p.ArchiveFilename(),
		opener:   OpenFile,
		reporter: progress.None{},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// ArchiveURL returns base + "/" + segment + "/" + version + "/" + filename without normalization.
func ArchiveURL(baseURL string, p platform.Platform, version, filename string) string {
	return baseURL + "/" + p.Segment() + "/" + version + "/" + filename
}

// OpenFile creates or truncates name relative to the working directory.
func OpenFile(name string) (io.WriteCloser, error) {
	return os.OpenFile(filepath.Clean(name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFileMode)
}

// Output returns the local filename.
func (f *Fetcher) Output() string {
	return f.output
}

// URL returns the archive address for version. The remote filename is always the
// platform archive name, even when the local output is renamed.
func (f *Fetcher) URL(version string) string {
	return ArchiveURL(f.baseURL, f.platform, version, f.platform.ArchiveFilename())
}

// Fetch downloads the archive for version into the output file and returns the bytes written.
func (f *Fetcher) Fetch(ctx context.Context, version string) (written int64, err error) {
	archiveURL := f.URL(version)

	out, err := f.opener(f.output)
	if err != nil {
		return 0, &OutputOpenError{Path: f.output, Err: err}
	}

	defer func() {
		closeErr := out.Close()
		if err == nil && closeErr != nil {
			err = &DownloadError{URL: archiveURL, Written: written, Err: fmt.Errorf("close output: %w", closeErr)}
		}
	}()

	logger.DebugKV(ctx, "Requesting archive", "url", archiveURL, "output", f.output)

	response, err := f.client.Get(ctx, archiveURL)
	if err != nil {
		return 0, &DownloadError{URL: archiveURL, Err: err}
	}

	defer func() {
		_ = response.Body.Close()
	}()

	total := max(response.ContentLength, 0)

	f.reporter.Tick(0, total)

	sink := &writeTracker{w: out}

	written, err = io.Copy(sink, progress.NewReader(response.Body, total, f.reporter))

	f.reporter.Finish()

	if err != nil && sink.err != nil {
		return written, &DownloadError{URL: archiveURL, Written: written, Err: fmt.Errorf("write output: %w", err)}
	}

	if err != nil {
		return written, &DownloadError{
			URL:     archiveURL,
			Written: written,
			Err:     &httpclient.TransportError{URL: archiveURL, Err: err},
		}
	}

	logger.InfoKV(ctx, "Archive saved",
		"path", f.output,
		"size", humanize.Bytes(uint64(written)), //nolint:gosec // io.Copy never returns a negative count.
		"status", response.StatusCode)

	return written, nil
}

// writeTracker remembers the first write failure so it is not reported as a transport error.
type writeTracker struct {
	w   io.Writer
	err error
}

func (t *writeTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}

	return n, err
}

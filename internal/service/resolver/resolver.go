package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/oshokin/chromium-downloader/internal/httpclient"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/platform"
)

const (
	// LastChangeFilename is the object holding the latest build identifier.
	LastChangeFilename = "LAST_CHANGE"

	// maxPreallocation caps the buffer reserved from a declared Content-Length;
	// anything larger grows with the bytes actually received.
	maxPreallocation = 64 << 10
)

// Getter performs a single GET request.
type Getter interface {
	Get(ctx context.Context, rawURL string) (*http.Response, error)
}

// ResolutionError reports that the version lookup did not complete.
type ResolutionError struct {
	// URL is the LAST_CHANGE address.
	URL string
	// Err is the request, transport or status failure.
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve version: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// AllocationError reports that the response could not be buffered in memory.
type AllocationError struct {
	// Err is the buffer failure.
	Err error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("buffer version response: %v", e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Resolver fetches LAST_CHANGE for one platform.
type Resolver struct {
	client   Getter
	baseURL  string
	platform platform.Platform
}

// New returns a Resolver querying baseURL for p.
func New(client Getter, baseURL string, p platform.Platform) *Resolver {
	return &Resolver{
		client:   client,
		baseURL:  baseURL,
		platform: p,
	}
}

// VersionURL returns base + "/" + segment + "/LAST_CHANGE" without normalization.
func VersionURL(baseURL string, p platform.Platform) string {
	return baseURL + "/" + p.Segment() + "/" + LastChangeFilename
}

// URL returns the address this resolver queries.
func (r *Resolver) URL() string {
	return VersionURL(r.baseURL, r.platform)
}

// Resolve performs one GET and returns the body verbatim.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	versionURL := r.URL()

	logger.DebugKV(ctx, "Requesting latest version", "url", versionURL)

	response, err := r.client.Get(ctx, versionURL)
	if err != nil {
		return "", &ResolutionError{URL: versionURL, Err: err}
	}

	defer func() {
		_ = response.Body.Close()
	}()

	var buf bytes.Buffer

	if err = readAll(&buf, response); err != nil {
		var allocErr *AllocationError
		if errors.As(err, &allocErr) {
			return "", err
		}

		return "", &ResolutionError{
			URL: versionURL,
			Err: &httpclient.TransportError{URL: versionURL, Err: err},
		}
	}

	version := buf.String()

	logger.DebugKV(ctx, "Latest version resolved", "version", version, "status", response.StatusCode)

	return version, nil
}

// readAll drains the body into buf, turning a buffer overflow panic into an AllocationError.
func readAll(buf *bytes.Buffer, response *http.Response) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			recoveredErr, ok := recovered.(error)
			if !ok || !errors.Is(recoveredErr, bytes.ErrTooLarge) {
				panic(recovered)
			}

			err = &AllocationError{Err: recoveredErr}
		}
	}()

	if response.ContentLength > 0 {
		buf.Grow(int(min(response.ContentLength, maxPreallocation)))
	}

	_, err = buf.ReadFrom(response.Body)

	return err
}

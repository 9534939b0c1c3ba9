package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/chromium-downloader/internal/httpclient"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/platform"
)

// TestArchiveURL composes the download address by plain concatenation.
func TestArchiveURL(t *testing.T) {
	t.Parallel()

	for _, version := range []string{"12345", "99999", "", "a b", "1/2"} {
		for _, p := range platform.All() {
			want := "http://h/root" + "/" + p.Segment() + "/" + version + "/" + p.ArchiveFilename()
			require.Equal(t, want, ArchiveURL("http://h/root", p, version, p.ArchiveFilename()))
		}
	}

	require.Equal(t, "http://h//Linux/1/chrome-linux.zip", ArchiveURL("http://h/", platform.Linux, "1", "chrome-linux.zip"))

	f := New(nil, "http://h", platform.Linux, WithOutput("local.zip"))
	require.Equal(t, "http://h/Linux/42/chrome-linux.zip", f.URL("42"))
	require.Equal(t, "local.zip", f.Output())
}

// TestFetch_OK streams the body to disk and reports ticks up to the total.
func TestFetch_OK(t *testing.T) {
	t.Parallel()

	body := []byte("0123456789")
	paths := make(chan string, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path

		_, _ = w.Write(body)
	}))
	defer ts.Close()

	output := filepath.Join(t.TempDir(), "chrome-linux.zip")
	rec := new(recorder)

	f := New(httpclient.New(), ts.URL, platform.Linux, WithOutput(output), WithReporter(rec))

	written, err := f.Fetch(context.Background(), "12345")
	require.NoError(t, err)
	require.Equal(t, int64(len(body)), written)
	require.Equal(t, "/Linux/12345/chrome-linux.zip", <-paths)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, body, data)

	require.NotEmpty(t, rec.ticks)
	require.Equal(t, [2]int64{0, 10}, rec.ticks[0])
	require.Equal(t, [2]int64{10, 10}, rec.ticks[len(rec.ticks)-1])
	require.True(t, rec.finished)
}

// TestFetch_LogsHumanizedSize reports the saved size at info level.
func TestFetch_LogsHumanizedSize(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer ts.Close()

	var logs bytes.Buffer

	ctx := logger.ToContext(context.Background(), logger.NewWithWriter(&logs, zapcore.InfoLevel))
	output := filepath.Join(t.TempDir(), "chrome-linux.zip")

	_, err := New(httpclient.New(), ts.URL, platform.Linux, WithOutput(output)).Fetch(ctx, "1")
	require.NoError(t, err)
	require.Contains(t, logs.String(), "Archive saved")
	require.Contains(t, logs.String(), "2.0 kB")
	require.Contains(t, logs.String(), output)
}

// TestFetch_TruncatesExisting overwrites a previous, longer file.
func TestFetch_TruncatesExisting(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "new")
	}))
	defer ts.Close()

	output := filepath.Join(t.TempDir(), "chrome-mac.zip")
	require.NoError(t, os.WriteFile(output, []byte("old and much longer"), 0o600))

	_, err := New(httpclient.New(), ts.URL, platform.Mac, WithOutput(output)).Fetch(context.Background(), "1")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Equal(t, "new", string(data))
}

// TestFetch_OpenFailure never touches the network.
func TestFetch_OpenFailure(t *testing.T) {
	t.Parallel()

	getter := new(countingGetter)
	output := filepath.Join(t.TempDir(), "missing-dir", "chrome-linux.zip")

	_, err := New(getter, "http://h", platform.Linux, WithOutput(output)).Fetch(context.Background(), "1")
	require.Error(t, err)

	var openErr *OutputOpenError
	require.True(t, errors.As(err, &openErr))
	require.Equal(t, output, openErr.Path)
	require.Zero(t, getter.calls.Load())
}

// TestFetch_ConnectionReset leaves a partial file shorter than the declared length.
func TestFetch_ConnectionReset(t *testing.T) {
	t.Parallel()

	addr := serveTruncated(t, 100, []byte("0123456789"))
	output := filepath.Join(t.TempDir(), "chrome-linux.zip")

	written, err := New(httpclient.New(), "http://"+addr, platform.Linux, WithOutput(output)).
		Fetch(context.Background(), "99999")
	require.Error(t, err)
	require.True(t, httpclient.IsTransportError(err))

	var dlErr *DownloadError
	require.True(t, errors.As(err, &dlErr))
	require.Equal(t, written, dlErr.Written)

	info, err := os.Stat(output)
	require.NoError(t, err)
	require.Less(t, info.Size(), int64(100))
	require.Equal(t, written, info.Size())
}

// TestFetch_StatusError fails in strict mode and keeps the body in lenient mode.
func TestFetch_StatusError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer ts.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "strict.zip")

	_, err := New(httpclient.New(), ts.URL, platform.Linux, WithOutput(output)).Fetch(context.Background(), "1")
	require.ErrorIs(t, err, httpclient.ErrBadHTTPStatus)

	info, err := os.Stat(output)
	require.NoError(t, err)
	require.Zero(t, info.Size())

	output = filepath.Join(dir, "lenient.zip")
	client := httpclient.New(httpclient.WithStrictStatus(false))

	_, err = New(client, ts.URL, platform.Linux, WithOutput(output)).Fetch(context.Background(), "1")
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Contains(t, string(data), "not here")
}

// TestFetch_WriteFailure is not reported as a transport error.
func TestFetch_WriteFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "payload")
	}))
	defer ts.Close()

	opener := func(string) (io.WriteCloser, error) {
		return &failingFile{}, nil
	}

	_, err := New(httpclient.New(), ts.URL, platform.Linux, WithOpener(opener)).Fetch(context.Background(), "1")
	require.Error(t, err)
	require.ErrorIs(t, err, errDiskFull)
	require.False(t, httpclient.IsTransportError(err))
}

// TestFetch_ClosesOnEveryPath balances opens and closes across repeated runs.
func TestFetch_ClosesOnEveryPath(t *testing.T) {
	t.Parallel()

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer ok.Close()

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()

	truncated := "http://" + serveTruncated(t, 50, []byte("x"))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	refused := "http://" + l.Addr().String()
	_ = l.Close()

	files := new(fileCounter)
	dir := t.TempDir()

	for _, base := range []string{ok.URL, missing.URL, truncated, refused, refused, refused} {
		f := New(httpclient.New(), base, platform.Linux,
			WithOutput(filepath.Join(dir, "chrome-linux.zip")),
			WithOpener(files.open))

		_, _ = f.Fetch(context.Background(), "1")
	}

	require.Equal(t, int64(6), files.opened.Load())
	require.Equal(t, files.opened.Load(), files.closed.Load())
}

// serveTruncated answers one request with a Content-Length of declared bytes,
// sends only body and drops the connection.
func serveTruncated(t *testing.T, declared int, body []byte) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = l.Close()
	})

	go func() {
		conn, acceptErr := l.Accept()
		if acceptErr != nil {
			return
		}

		defer func() {
			_ = conn.Close()
		}()

		reader := bufio.NewReader(conn)
		for {
			line, readErr := reader.ReadString('\n')
			if readErr != nil || strings.TrimSpace(line) == "" {
				break
			}
		}

		_, _ = io.WriteString(conn, "HTTP/1.1 200 OK\r\nContent-Type: application/zip\r\nContent-Length: ")
		_, _ = io.WriteString(conn, strconv.Itoa(declared)+"\r\n\r\n")
		_, _ = conn.Write(body)
	}()

	return l.Addr().String()
}

type recorder struct {
	ticks    [][2]int64
	finished bool
}

func (r *recorder) Tick(downloaded, total int64) {
	r.ticks = append(r.ticks, [2]int64{downloaded, total})
}

func (r *recorder) Finish() {
	r.finished = true
}

type countingGetter struct {
	calls atomic.Int64
}

func (g *countingGetter) Get(context.Context, string) (*http.Response, error) {
	g.calls.Add(1)
	return nil, errors.New("unexpected call")
}

var errDiskFull = errors.New("disk full")

type failingFile struct{}

func (*failingFile) Write([]byte) (int, error) {
	return 0, errDiskFull
}

func (*failingFile) Close() error {
	return nil
}

// fileCounter wraps OpenFile and counts handles.
type fileCounter struct {
	opened atomic.Int64
	closed atomic.Int64
}

func (c *fileCounter) open(name string) (io.WriteCloser, error) {
	f, err := OpenFile(name)
	if err != nil {
		return nil, err
	}

	c.opened.Add(1)

	return &countedFile{WriteCloser: f, counter: c}, nil
}

type countedFile struct {
	io.WriteCloser

	counter *fileCounter
}

func (f *countedFile) Close() error {
	f.counter.closed.Add(1)
	return f.WriteCloser.Close()
}

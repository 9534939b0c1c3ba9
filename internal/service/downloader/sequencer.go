package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/oshokin/chromium-downloader/internal/httpclient"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/service/fetcher"
	"github.com/oshokin/chromium-downloader/internal/service/resolver"
	"github.com/oshokin/chromium-downloader/internal/version"
)

// rowLength is the width of the separator row.
const rowLength = 70

// VersionResolver returns the latest build identifier.
type VersionResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ArchiveFetcher downloads the archive of a resolved version.
type ArchiveFetcher interface {
	Fetch(ctx context.Context, version string) (int64, error)
}

// Sequencer drives one run and owns its transcript.
type Sequencer struct {
	resolver VersionResolver
	fetcher  ArchiveFetcher
	stdout   io.Writer
	stderr   io.Writer
	colorize bool
	state    State
	version  string
}

// SequencerOption configures a Sequencer.
type SequencerOption func(*Sequencer)

// WithColor forces colored output on or off. By default it follows fatih/color terminal detection.
func WithColor(enabled bool) SequencerOption {
	return func(s *Sequencer) {
		s.colorize = enabled
	}
}

// NewSequencer wires the two steps to the output streams.
func NewSequencer(
	versionResolver VersionResolver,
	archiveFetcher ArchiveFetcher,
	stdout, stderr io.Writer,
	opts ...SequencerOption,
) *Sequencer {
	s := &Sequencer{
		resolver: versionResolver,
		fetcher:  archiveFetcher,
		stdout:   stdout,
		stderr:   stderr,
		colorize: !color.NoColor,
		state:    StateStart,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// State returns the step the run stopped at.
func (s *Sequencer) State() State {
	return s.state
}

// Version returns the resolved identifier, empty until resolution succeeds.
func (s *Sequencer) Version() string {
	return s.version
}

// Run resolves the latest version and downloads its archive.
func (s *Sequencer) Run(ctx context.Context) error {
	s.println(version.Banner())
	s.printRow()

	s.transition(ctx, StateResolving)

	latest, err := s.resolver.Resolve(ctx)
	if err != nil {
		s.transition(ctx, StateResolveFailed)
		s.printError(describeResolveError(err))

		return err
	}

	s.version = latest
	s.transition(ctx, StateResolved)

	s.println("Chromium latest version for your platform is: " + latest)
	s.printRow()

	s.transition(ctx, StateDownloading)

	if _, err = s.fetcher.Fetch(ctx, latest); err != nil {
		s.transition(ctx, StateDownloadFailed)
		s.printError(describeDownloadError(err))

		return err
	}

	s.transition(ctx, StateDone)
	s.printSuccess(fmt.Sprintf("Chromium version %s has been successfully downloaded.", latest))

	return nil
}

func (s *Sequencer) transition(ctx context.Context, next State) {
	logger.DebugKV(ctx, "State changed", "from", s.state.String(), "to", next.String())
	s.state = next
}

func (s *Sequencer) println(line string) {
	_, _ = fmt.Fprintln(s.stdout, line)
}

func (s *Sequencer) printRow() {
	s.println(strings.Repeat("*", rowLength))
}

func (s *Sequencer) printSuccess(line string) {
	c := color.New(color.FgGreen)
	if !s.colorize {
		c.DisableColor()
	}

	_, _ = c.Fprintln(s.stdout, line)
}

func (s *Sequencer) printError(line string) {
	c := color.New(color.FgRed, color.Bold)
	if !s.colorize {
		c.DisableColor()
	}

	_, _ = c.Fprintln(s.stderr, "Error: "+line)
}

// describeResolveError names the failed step and the kind of failure.
func describeResolveError(err error) string {
	var allocErr *resolver.AllocationError
	if errors.As(err, &allocErr) {
		return fmt.Sprintf("unable to buffer the version response: %v", allocErr.Err)
	}

	return describe("version lookup", err)
}

// describeDownloadError names the failed step and the kind of failure.
func describeDownloadError(err error) string {
	var openErr *fetcher.OutputOpenError
	if errors.As(err, &openErr) {
		return fmt.Sprintf("unable to open output file %s: %v", openErr.Path, openErr.Err)
	}

	return describe("Chromium download", err)
}

func describe(step string, err error) string {
	var (
		reqErr    *httpclient.RequestError
		statusErr *httpclient.StatusError
		trErr     *httpclient.TransportError
	)

	switch {
	case errors.As(err, &reqErr):
		return fmt.Sprintf("%s could not be started (%s): %v", step, reqErr.URL, reqErr.Err)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("%s was rejected by the server (%s): %s", step, statusErr.URL, statusErr.Status)
	case errors.As(err, &trErr):
		return fmt.Sprintf("%s failed with a transport error (%s): %v", step, trErr.URL, trErr.Err)
	default:
		return fmt.Sprintf("%s failed: %v", step, err)
	}
}

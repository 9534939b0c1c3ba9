package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/chromium-downloader/internal/config"
	"github.com/oshokin/chromium-downloader/internal/httpclient"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/progress"
	"github.com/oshokin/chromium-downloader/internal/service/fetcher"
	"github.com/oshokin/chromium-downloader/internal/service/resolver"
)

// errConfigRequired is returned when Run is called without settings.
var errConfigRequired = errors.New("configuration is required")

// Options are inputs accepted by the downloader entry point.
type Options struct {
	// Config holds the validated run settings.
	Config *config.Config
	// Stdout receives the transcript and progress line. Defaults to os.Stdout.
	Stdout io.Writer
	// Stderr receives failure messages. Defaults to os.Stderr.
	Stderr io.Writer
	// HTTPOptions are appended to the client options derived from Config.
	HTTPOptions []httpclient.Option
	// SequencerOptions tune the transcript rendering.
	SequencerOptions []SequencerOption
}

// Run executes one resolve-and-download pass and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "chromium-downloader")

	if opts == nil || opts.Config == nil {
		return errConfigRequired
	}

	cfg := opts.Config

	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	reporter, err := progress.New(cfg.Progress, stdout)
	if err != nil {
		return fmt.Errorf("create progress reporter: %w", err)
	}

	ctx = logger.WithKV(ctx, "platform", cfg.Platform.String())

	httpOptions := append([]httpclient.Option{httpclient.WithStrictStatus(cfg.StrictStatus)}, opts.HTTPOptions...)

	client := httpclient.New(httpOptions...)
	defer func() {
		_ = client.Close()
	}()

	seq := NewSequencer(
		resolver.New(client, cfg.BaseURL, cfg.Platform),
		fetcher.New(client, cfg.BaseURL, cfg.Platform,
			fetcher.WithOutput(cfg.OutputFilename),
			fetcher.WithReporter(reporter)),
		stdout,
		stderr,
		opts.SequencerOptions...,
	)

	if err = seq.Run(ctx); err != nil {
		logger.DebugKV(ctx, "Download run failed", "state", seq.State().String(), "error", err)
		return err
	}

	logger.InfoKV(ctx, "Download run completed", "version", seq.Version(), "output", cfg.OutputFilename)

	return nil
}

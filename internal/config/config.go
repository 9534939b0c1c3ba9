package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/platform"
	"github.com/oshokin/chromium-downloader/internal/progress"
)

// Config holds the parameters of one resolve-and-download run.
type Config struct {
	// BaseURL is the remote root hosting the per-platform snapshot folders.
	BaseURL string `yaml:"base_url"`
	// Platform selects the remote folder and the archive name.
	Platform platform.Platform `yaml:"platform"`
	// OutputFilename is the local file the archive is written to.
	OutputFilename string `yaml:"output_filename"`
	// Progress selects the progress renderer: percent, bar or none.
	Progress string `yaml:"progress"`
	// StrictStatus treats non-2xx HTTP responses as failures.
	StrictStatus bool `yaml:"strict_status"`
	// LogLevel is the minimum level of diagnostics written to stderr.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultBaseURL is the public Chromium continuous build bucket.
	DefaultBaseURL = "http://commondatastorage.googleapis.com/chromium-browser-continuous"

	// EnvPrefix prefixes environment overrides, e.g. CHROMIUM_DOWNLOADER_BASE_URL.
	EnvPrefix = "CHROMIUM_DOWNLOADER"

	// DefaultLogLevel keeps stderr quiet unless something goes wrong.
	DefaultLogLevel = "warn"
)

// Recognized option keys. Flags use the dashed form of the same names.
const (
	KeyBaseURL        = "base_url"
	KeyPlatform       = "platform"
	KeyOutputFilename = "output_filename"
	KeyProgress       = "progress"
	KeyStrictStatus   = "strict_status"
	KeyLogLevel       = "log_level"
)

// Progress styles.
const (
	ProgressPercent = progress.StylePercent
	ProgressBar     = progress.StyleBar
	ProgressNone    = progress.StyleNone
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownProgress is returned for an unrecognised progress style.
	errUnknownProgress = errors.New("unknown progress style")
	// errUnknownLogLevel is returned for an unparsable log level.
	errUnknownLogLevel = errors.New("unknown log level")
	// errEmptyOutput is returned when no output filename can be derived.
	errEmptyOutput = errors.New("output filename must not be empty")
)

// Default returns the configuration for the running build target.
func Default() (*Config, error) {
	p, err := platform.Detect()
	if err != nil {
		return nil, fmt.Errorf("detect platform: %w", err)
	}

	return &Config{
		BaseURL:        DefaultBaseURL,
		Platform:       p,
		OutputFilename: p.ArchiveFilename(),
		Progress:       ProgressPercent,
		StrictStatus:   true,
		LogLevel:       DefaultLogLevel,
	}, nil
}

// Load builds the configuration from values bound in v.
// Keys missing from v keep the zero value and are defaulted by Validate.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errConfigIsNotSet
	}

	cfg := &Config{
		BaseURL:        strings.TrimSpace(v.GetString(KeyBaseURL)),
		OutputFilename: strings.TrimSpace(v.GetString(KeyOutputFilename)),
		Progress:       strings.ToLower(strings.TrimSpace(v.GetString(KeyProgress))),
		StrictStatus:   true,
		LogLevel:       v.GetString(KeyLogLevel),
	}

	if v.IsSet(KeyStrictStatus) {
		cfg.StrictStatus = v.GetBool(KeyStrictStatus)
	}

	if name := v.GetString(KeyPlatform); strings.TrimSpace(name) != "" {
		p, err := platform.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse platform: %w", err)
		}

		cfg.Platform = p
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate fills defaults for empty fields and checks the rest.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}

	if !cfg.Platform.Valid() {
		p, err := platform.Detect()
		if err != nil {
			return fmt.Errorf("detect platform: %w", err)
		}

		cfg.Platform = p
	}

	if cfg.OutputFilename == "" {
		cfg.OutputFilename = cfg.Platform.ArchiveFilename()
	}

	if cfg.OutputFilename == "" {
		return errEmptyOutput
	}

	switch cfg.Progress {
	case "":
		cfg.Progress = ProgressPercent
	case ProgressPercent, ProgressBar, ProgressNone:
	default:
		return fmt.Errorf("%q: %w", cfg.Progress, errUnknownProgress)
	}

	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%q: %w", cfg.LogLevel, errUnknownLogLevel)
	}

	return nil
}

// Marshal renders the configuration as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, errConfigIsNotSet
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	return data, nil
}

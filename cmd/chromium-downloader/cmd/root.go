package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/oshokin/chromium-downloader/internal/config"
	"github.com/oshokin/chromium-downloader/internal/logger"
	"github.com/oshokin/chromium-downloader/internal/service/downloader"
	"github.com/oshokin/chromium-downloader/internal/version"
)

// Execute runs the chromium-downloader CLI and exits with non-zero status on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree. Settings come from flags first,
// then CHROMIUM_DOWNLOADER_* environment variables, then built-in defaults.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Download the latest Chromium snapshot for this platform",
		Long: `Looks up the latest Chromium continuous build for this platform and
downloads its archive into the current directory, overwriting any previous copy.

Every flag can also be set through an environment variable, for example
CHROMIUM_DOWNLOADER_BASE_URL or CHROMIUM_DOWNLOADER_PLATFORM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			cfg, err := loadConfig(v)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}

			options := &downloader.Options{
				Config: cfg,
				Stdout: cmd.OutOrStdout(),
				Stderr: cmd.ErrOrStderr(),
			}

			return downloader.Run(ctx, options)
		},
	}

	rootCmd.SetContext(context.Background())

	flags := rootCmd.PersistentFlags()
	flags.String(flagName(config.KeyBaseURL), config.DefaultBaseURL, "remote root of the snapshot folders")
	flags.StringP(flagName(config.KeyPlatform), "p", "", "platform to download: mac or linux (default: this build target)")
	flags.StringP(flagName(config.KeyOutputFilename), "o", "", "local archive filename (default: the platform archive name)")
	flags.String(flagName(config.KeyProgress), config.ProgressPercent, "progress style: percent, bar or none")
	flags.Bool(flagName(config.KeyStrictStatus), true, "treat non-2xx HTTP responses as failures")
	flags.String(flagName(config.KeyLogLevel), config.DefaultLogLevel, "diagnostics level written to stderr")

	bindFlags(v, flags)

	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newConfigCommand(v))

	return rootCmd
}

// newConfigCommand prints the effective settings without downloading anything.
func newConfigCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
}

// loadConfig reads settings from v and applies the log level.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	return cfg, nil
}

// bindFlags binds every flag to viper under its option key and enables environment overrides.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	v.SetEnvPrefix(config.EnvPrefix)
	v.AutomaticEnv()

	flags.VisitAll(func(f *pflag.Flag) {
		key := optionKey(f.Name)

		_ = v.BindPFlag(key, f)
		_ = v.BindEnv(key)
	})
}

// flagName converts an option key to its flag spelling, e.g. base_url -> base-url.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// optionKey converts a flag name back to its option key.
func optionKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/chromium-downloader/internal/config"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

// TestRoot_Downloads runs a full pass against a local mirror.
func TestRoot_Downloads(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/Mac/LAST_CHANGE", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "12345")
	})
	mux.HandleFunc("/Mac/12345/chrome-mac.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "0123456789")
	})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	output := filepath.Join(t.TempDir(), "chrome-mac.zip")

	stdout, _, err := execute(t,
		"--base-url", ts.URL,
		"--platform", "mac",
		"--output-filename", output,
		"--progress", "none")
	require.NoError(t, err)
	require.Contains(t, stdout, "Chromium version 12345 has been successfully downloaded.")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	require.Len(t, data, 10)
}

// TestRoot_RejectsArguments keeps the surface argument-free.
func TestRoot_RejectsArguments(t *testing.T) {
	_, _, err := execute(t, "unexpected")
	require.Error(t, err)
}

// TestRoot_InvalidConfig reports bad settings on stderr.
func TestRoot_InvalidConfig(t *testing.T) {
	_, stderr, err := execute(t, "--platform", "beos")
	require.Error(t, err)
	require.Contains(t, stderr, "Error:")
}

// TestConfig_EnvOverrides prints settings taken from the environment.
func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CHROMIUM_DOWNLOADER_BASE_URL", "http://mirror.local/builds")
	t.Setenv("CHROMIUM_DOWNLOADER_PLATFORM", "linux")
	t.Setenv("CHROMIUM_DOWNLOADER_STRICT_STATUS", "false")

	stdout, _, err := execute(t, "config", "--progress", "bar")
	require.NoError(t, err)

	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &cfg))
	require.Equal(t, "http://mirror.local/builds", cfg[config.KeyBaseURL])
	require.Equal(t, "linux", cfg[config.KeyPlatform])
	require.Equal(t, "chrome-linux.zip", cfg[config.KeyOutputFilename])
	require.Equal(t, "bar", cfg[config.KeyProgress])
	require.Equal(t, false, cfg[config.KeyStrictStatus])
}

// TestVersion prints build metadata.
func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	require.Contains(t, stdout, "version:")
}

// TestFlagName converts between option keys and flag names.
func TestFlagName(t *testing.T) {
	require.Equal(t, "output-filename", flagName(config.KeyOutputFilename))
	require.Equal(t, config.KeyOutputFilename, optionKey("output-filename"))
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "missing.yml"), "")
	require.NoError(t, err)

	require.Equal(t, defaultListen, cfg.Listen)
	require.Equal(t, LogLevelInfo, cfg.LogLevel)
	require.Equal(t, defaultCauseListURL, cfg.SourceConfig.CauseListURL)
	require.Equal(t, 10*time.Second, cfg.SourceConfig.Timeout)
	require.Equal(t, 20*time.Second, cfg.DownloaderConfig.Timeout)
	require.EqualValues(t, 1000, cfg.DownloaderConfig.MinFileSize)
	require.Equal(t, 1, cfg.DownloaderConfig.Workers)
	require.Equal(t, "downloaded_pdfs", cfg.DownloaderConfig.OutputDir)
	require.Empty(t, cfg.SourceConfig.DateParam)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(cfgPath, []byte(`
listen: ":9000"
log_level: debug
source:
  timeout: 3s
  date_param: date
downloader:
  output_dir: /tmp/pdfs
  workers: 2
`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("CAUSELIST_LOG_LEVEL=warn\n"), 0o644))

	t.Setenv("CAUSELIST_LISTEN", ":9100")
	unsetEnv(t, "CAUSELIST_LOG_LEVEL")

	cfg, err := Load(cfgPath, envPath)
	require.NoError(t, err)

	require.Equal(t, ":9100", cfg.Listen)
	require.Equal(t, LogLevelWarn, cfg.LogLevel)
	require.Equal(t, 3*time.Second, cfg.SourceConfig.Timeout)
	require.Equal(t, "date", cfg.SourceConfig.DateParam)
	require.Equal(t, "/tmp/pdfs", cfg.DownloaderConfig.OutputDir)
	require.Equal(t, 2, cfg.DownloaderConfig.Workers)
}

func TestLoadEnvFileOnly(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("CAUSELIST_OUTPUT_DIR=from-env\n"), 0o644))

	unsetEnv(t, "CAUSELIST_OUTPUT_DIR")

	cfg, err := Load(filepath.Join(dir, "missing.yml"), envPath)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.DownloaderConfig.OutputDir)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "broken yaml", content: "listen: [\n"},
		{name: "unknown log level", content: "log_level: loud\n"},
		{name: "relative url", content: "source:\n  cause_list_url: /cause-list\n"},
		{name: "size bounds", content: "downloader:\n  min_file_size: 100\n  max_file_size: 10\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfgPath := filepath.Join(t.TempDir(), "config.yml")
			require.NoError(t, os.WriteFile(cfgPath, []byte(tc.content), 0o644))

			_, err := Load(cfgPath, "")
			require.Error(t, err)
		})
	}
}

func TestLoadBadWorkersEnv(t *testing.T) {
	t.Setenv("CAUSELIST_WORKERS", "many")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"), "")
	require.Error(t, err)
}

func TestSetDefaultsCapsWorkers(t *testing.T) {
	cfg := &Config{}
	cfg.DownloaderConfig.Workers = 100
	cfg.SetDefaults()
	require.Equal(t, 32, cfg.DownloaderConfig.Workers)

	cfg.DownloaderConfig.Workers = 100
	require.NoError(t, cfg.Validate())
	require.Equal(t, 100, cfg.DownloaderConfig.Workers, "validate must not change the config")
}

// unsetEnv clears key for the test and restores it afterwards; godotenv never
// overrides a variable that is already present.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxConcurrency, cfg.Dispatch.MaxConcurrency)
	assert.Equal(t, DefaultConnectTimeout, cfg.Dispatch.ConnectTimeoutSeconds)
	assert.Equal(t, DefaultTotalTimeout, cfg.Dispatch.TotalTimeoutSeconds)
	assert.Equal(t, "quiver/1.0", cfg.Dispatch.UserAgent)
	assert.Equal(t, DefaultRetryMaxAttempts, cfg.Client.Retry.MaxAttempts)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Empty(t, cfg.Batch)
}

func TestParseAppliesFloors(t *testing.T) {
	cfg, err := Parse(writeConfig(t, `
dispatch:
  max_concurrency: 0
  connect_timeout_seconds: 0
  total_timeout_seconds: -5
client:
  retry:
    max_attempts: -1
`))
	require.NoError(t, err)

	assert.Equal(t, MinConcurrency, cfg.Dispatch.MaxConcurrency)
	assert.Equal(t, MinTimeoutSeconds, cfg.Dispatch.ConnectTimeoutSeconds)
	assert.Equal(t, MinTimeoutSeconds, cfg.Dispatch.TotalTimeoutSeconds)
	assert.Equal(t, 1, cfg.Client.Retry.MaxAttempts)
}

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse(writeConfig(t, `
dispatch:
  max_concurrency: 4
  total_timeout_seconds: 15
  tls:
    cert_file: /etc/quiver/client.crt
    key_file: /etc/quiver/client.key
client:
  retry:
    max_attempts: 3
    delay_seconds: 2
    retry_on_status: [429, 503]
    retry_network_errors: true
database:
  driver: postgres
  dsn: postgres://localhost/app
batch:
  - id: health
    method: GET
    url: http://localhost:9000/health
`))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Dispatch.MaxConcurrency)
	assert.Equal(t, 15, cfg.Dispatch.TotalTimeoutSeconds)
	assert.Equal(t, "/etc/quiver/client.crt", cfg.Dispatch.TLS.CertFile)
	assert.Equal(t, []int{429, 503}, cfg.Client.Retry.RetryOnStatus)
	assert.True(t, cfg.Client.Retry.RetryNetworkErrors)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.DSN)
	require.Len(t, cfg.Batch, 1)
	assert.Equal(t, "health", cfg.Batch[0].ID)
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

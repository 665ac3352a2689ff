package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `connection:
  host: warehouse.internal
  port: 5433
  username: student
  database: sparkifydb
  sslmode: require
  auth_method: aws
  aws_region: us-west-2

data:
  song_dir: /data/song_data
  log_dir: /data/log_data
  suffix: .jsonl

commit_mode: batch
timeout: 10m
connect_retries: 3

metrics:
  pushgateway_url: http://localhost:9091
  job: sparkify
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "warehouse.internal", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "student", cfg.Connection.Username)
	assert.Equal(t, "sparkifydb", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)
	assert.Equal(t, "aws", cfg.Connection.AuthMethod)
	assert.Equal(t, "us-west-2", cfg.Connection.AWSRegion)
	assert.Equal(t, "/data/song_data", cfg.Data.SongDir)
	assert.Equal(t, "/data/log_data", cfg.Data.LogDir)
	assert.Equal(t, ".jsonl", cfg.Data.Suffix)
	assert.Equal(t, "batch", cfg.CommitMode)
	assert.Equal(t, 3, cfg.ConnectRetries)
	assert.Equal(t, "http://localhost:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "sparkify", cfg.Metrics.Job)

	timeout, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, timeout)
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, ProjectConfig{}, *cfg)
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commit_mode: per-file\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "per-file", cfg.CommitMode)
}

func TestTimeoutDuration(t *testing.T) {
	var nilCfg *ProjectConfig
	d, err := nilCfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	_, err = (&ProjectConfig{Timeout: "soon"}).TimeoutDuration()
	assert.Error(t, err)
}

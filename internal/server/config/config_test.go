package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(flags(t))
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, &want, cfg)
}

func TestLoad_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"endpoint_addr_grpc: \":7000\"\nsecret_key: from-file\naccess_token_validity_duration: 2h\n"), 0o600))

	cfg, err := Load(flags(t, "-c", path, "--secret-key", "from-flag"))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.EndpointAddrGRPC)
	assert.Equal(t, "from-flag", cfg.SecretKey)
	assert.Equal(t, 2*time.Hour, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_UnchangedFlagsDoNotOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database_dsn": "postgres://file"}`), 0o600))

	cfg, err := Load(flags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "postgres://file", cfg.DatabaseDSN)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	require.NoError(t, os.WriteFile(path, []byte("log_level = \"debug\"\naccess_token_validity_duration = \"15m\"\n"), 0o600))

	cfg, err := Load(flags(t, "-c", path, "-t", "1h"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.AccessTokenValidityDuration)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(flags(t, "-c", filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)

	_, err = Load(flags(t, "--secret-key", ""))
	require.Error(t, err)
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
These tests change the process environment, so they don't run in parallel.
*/

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadDefaults(t *testing.T) {
	var cfg ServerConfig
	require.NoError(t, cfg.Load(""))

	assert.Equal(t, "localhost", cfg.Basic.Host)
	assert.Equal(t, "8383", cfg.Basic.Port)
	assert.Equal(t, "./i18n", cfg.Catalog.Dir)
	assert.Equal(t, "en", cfg.Catalog.SourceLanguage)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.HTTPCache.MaxAge)
	assert.False(t, cfg.Limiter.Enabled)
	assert.NotEmpty(t, cfg.Instance.StartingTime)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, "config.yaml", `
catalog:
  dir: /srv/i18n
  domain: cppcheck
  sourceLanguage: en_US
limiter:
  enabled: true
  rate: 2.5
  burst: 10
  ipv4Prefix: 16
log:
  logLevel: warn
`)

	t.Setenv("TSCAT_CATALOG_DOMAIN", "gui")
	t.Setenv("TSCAT_LIMITER_PASS_IPS", "10.0.0.1, 192.168.0.0/16,")

	var cfg ServerConfig
	require.NoError(t, cfg.Load(path))

	assert.Equal(t, "/srv/i18n", cfg.Catalog.Dir)
	assert.Equal(t, "gui", cfg.Catalog.Domain, "environment overrides the file")
	assert.Equal(t, "en-US", cfg.Catalog.SourceLanguage)
	assert.True(t, cfg.Limiter.Enabled)
	assert.InDelta(t, 2.5, cfg.Limiter.Rate, 0.001)
	assert.Equal(t, 10, cfg.Limiter.Burst)
	assert.Equal(t, 16, cfg.Limiter.IPv4Prefix)
	assert.Equal(t, 48, cfg.Limiter.IPv6Prefix, "unset values keep their default")
	assert.Equal(t, []string{"10.0.0.1", "192.168.0.0/16"}, cfg.Limiter.PassIPs)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	var cfg ServerConfig
	require.NoError(t, cfg.Load(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "catalog: [unterminated")

	var cfg ServerConfig
	require.Error(t, cfg.Load(path))
}

func TestLoadUnknownKey(t *testing.T) {
	path := writeFile(t, "config.yaml", `
catalog:
  directory: /srv/i18n
`)

	var cfg ServerConfig

	err := cfg.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "Unix socket with host",
			env:  map[string]string{"TSCAT_UNIXSOCKET": "/tmp/tscat.sock", "TSCAT_HOST": "localhost"},
		},
		{
			name: "Invalid socket permissions",
			env:  map[string]string{"TSCAT_UNIXSOCKET": "/tmp/tscat.sock", "TSCAT_UNIXSOCKET_PERMISSIONS": "999"},
		},
		{
			name: "Invalid source language",
			env:  map[string]string{"TSCAT_SOURCE_LANGUAGE": "not a language"},
		},
		{
			name: "Invalid boolean",
			env:  map[string]string{"TSCAT_CACHE": "maybe"},
		},
		{
			name: "Empty cache",
			env:  map[string]string{"TSCAT_CACHE_SIZE": "0"},
		},
		{
			name: "IPv4 prefix out of range",
			env:  map[string]string{"TSCAT_LIMITER": "true", "TSCAT_LIMITER_IPV4_PREFIX": "40"},
		},
		{
			name: "Zero limiter rate",
			env:  map[string]string{"TSCAT_LIMITER": "true", "TSCAT_LIMITER_RATE": "0"},
		},
		{
			name: "Missing report with negative buffer",
			env:  map[string]string{"TSCAT_MISSING": "true", "TSCAT_MISSING_BUFFER": "-1"},
		},
		{
			name: "Unknown log level",
			env:  map[string]string{"TSCAT_LOG_LEVEL": "verbose"},
		},
		{
			name: "Unknown log format",
			env:  map[string]string{"TSCAT_LOG_FORMAT": "xml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg ServerConfig
			assert.Error(t, cfg.Load(""))
		})
	}
}

func TestUnixSocketPermissions(t *testing.T) {
	tests := []struct {
		raw  string
		want os.FileMode
	}{
		{"", 0o666},
		{"640", 0o640},
		{"0600", 0o600},
		{"rw-rw----", 0o660},
		{"rwxr-xr-x", 0o755},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var cfg ServerConfig

			cfg.SetDefaults()
			cfg.Basic.UnixSocket = "/tmp/tscat.sock"
			cfg.Basic.RawUnixSocketPermissions = tt.raw

			require.NoError(t, cfg.validateAndSet())
			assert.Equal(t, tt.want, cfg.Basic.UnixSocketPermissions)
		})
	}
}

func TestTryLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", `# comment
TSCAT_TEST_PLAIN=plain
TSCAT_TEST_QUOTED="with spaces"
export TSCAT_TEST_EXPORTED='single'
TSCAT_TEST_KEEP=fromfile
not a pair
`)

	for _, key := range []string{"TSCAT_TEST_PLAIN", "TSCAT_TEST_QUOTED", "TSCAT_TEST_EXPORTED"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	t.Setenv("TSCAT_TEST_KEEP", "fromenv")

	loaded, err := tryLoadDotEnv(path)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, "plain", os.Getenv("TSCAT_TEST_PLAIN"))
	assert.Equal(t, "with spaces", os.Getenv("TSCAT_TEST_QUOTED"))
	assert.Equal(t, "single", os.Getenv("TSCAT_TEST_EXPORTED"))
	assert.Equal(t, "fromenv", os.Getenv("TSCAT_TEST_KEEP"))

	loaded, err = tryLoadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.False(t, loaded)
}

func TestMarshalPrintable(t *testing.T) {
	var cfg ServerConfig

	cfg.SetDefaults()
	cfg.Limiter.BlockIPs = []string{"203.0.113.7"}

	out, err := cfg.MarshalPrintable()
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "cacheControlMaxAge: 5m0s")
	assert.Contains(t, s, redactedValue)
	assert.NotContains(t, s, "203.0.113.7")
	assert.False(t, strings.Contains(s, "VcsRevision"), "build info is not printed")
	assert.Equal(t, []string{"203.0.113.7"}, cfg.Limiter.BlockIPs, "the original is left untouched")
}

func TestShouldSkipServerLogging(t *testing.T) {
	t.Parallel()

	var cfg ServerConfig

	assert.True(t, cfg.ShouldSkipServerLogging("/healthz"))
	assert.False(t, cfg.ShouldSkipServerLogging("/api/v1/translate"))

	cfg.Development.InDevelopment = true
	assert.False(t, cfg.ShouldSkipServerLogging("/healthz"))
}

func TestRevision(t *testing.T) {
	t.Parallel()

	b := buildInfo{}
	assert.Equal(t, "unknown", b.Revision())

	b = buildInfo{VcsRevision: "0123456789abcdef", VcsTime: "2025-03-01T10:00:00Z", VcsModified: true}
	assert.Equal(t, "2025-03-01-01234567+dirty", b.Revision())
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default HTTP cache max age in seconds.
	defaultHTTPCacheMaxAgeSeconds = 300

	// Default limiter refill, in tokens per second.
	defaultLimiterRate = 10.0
	// Default limiter bucket size.
	defaultLimiterBurst = 200
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	// Host and Port are filled in by validation unless a unix socket is used.
	cfg.Basic.Host = ""
	cfg.Basic.Port = ""
	cfg.Basic.UnixSocket = ""
	cfg.Basic.RawUnixSocketPermissions = ""
	cfg.Basic.UnixSocketUser = ""
	cfg.Basic.UnixSocketGroup = ""

	cfg.Catalog.Dir = "./i18n"
	cfg.Catalog.Domain = ""
	cfg.Catalog.SourceLanguage = "en"
	cfg.Catalog.StrictMissingKeys = false

	cfg.Cache.Enabled = true
	cfg.Cache.Size = 1000
	cfg.Cache.Compress = false

	cfg.HTTPCache.MaxAge = defaultHTTPCacheMaxAgeSeconds * time.Second

	cfg.Limiter.Enabled = false
	cfg.Limiter.StateFilepath = ""
	cfg.Limiter.PassIPs = nil
	cfg.Limiter.BlockIPs = nil
	cfg.Limiter.FilterLocal = false
	cfg.Limiter.IPv4Prefix = 24
	cfg.Limiter.IPv6Prefix = 48
	cfg.Limiter.Rate = defaultLimiterRate
	cfg.Limiter.Burst = defaultLimiterBurst

	cfg.Missing.Enabled = false
	cfg.Missing.Path = "./data/missing.db"
	cfg.Missing.Buffer = 1024

	cfg.Development.InDevelopment = false

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = FormatConsole
}

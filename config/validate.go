// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

// validation errors.
var (
	errUnixSocketWithHostPort       = errors.New("unix socket configured - cannot specify Host and Port simultaneously")
	errUnixSocketInvalidPermissions = errors.New("invalid Basic.UnixSocketPermissions value")
	errUnixSocketUserDoesNotExist   = errors.New("user does not exist")
	errUnixSocketGroupDoesNotExist  = errors.New("group does not exist")
	errEmptyCatalogDir              = errors.New("catalog.dir cannot be empty")
	errInvalidSourceLanguage        = errors.New("invalid catalog.sourceLanguage")
	errInvalidCacheSize             = errors.New("cache.cacheSize must be positive when the cache is enabled")
	errInvalidIPv4Prefix            = errors.New("IPv4 prefix must be between 0 and 32")
	errInvalidIPv6Prefix            = errors.New("IPv6 prefix must be between 0 and 128")
	errInvalidLimiterRate           = errors.New("limiter.rate must be positive")
	errInvalidLimiterBurst          = errors.New("limiter.burst must be at least 1")
	errEmptyMissingPath             = errors.New("missing.path cannot be empty when the miss report is enabled")
	errInvalidMissingBuffer         = errors.New("missing.buffer must be positive")
	errInvalidLogLevel              = errors.New("invalid log.logLevel")
	errInvalidLogFormat             = errors.New("invalid log.logFormat")
)

var (
	fileModeOctalRegexp  = regexp.MustCompile(`^0?[0-7]{3}$`)
	fileModeStringRegexp = regexp.MustCompile(`^(?:[r-][w-][x-]){3}$`)
	digitsRegexp         = regexp.MustCompile(`^[0-9]+$`)

	logLevels = []string{"debug", "info", "warn", "error"}
)

// validateAndSet validates the server configuration and populates some fields.
func (cfg *ServerConfig) validateAndSet() error {
	if err := cfg.validateListener(); err != nil {
		return err
	}

	if cfg.Catalog.Dir == "" {
		return errEmptyCatalogDir
	}

	if cfg.Catalog.SourceLanguage != "" {
		tag, err := language.Parse(strings.ReplaceAll(cfg.Catalog.SourceLanguage, "_", "-"))
		if err != nil {
			return fmt.Errorf("%w %q: %w", errInvalidSourceLanguage, cfg.Catalog.SourceLanguage, err)
		}

		cfg.Catalog.SourceLanguage = tag.String()
	}

	if cfg.Cache.Enabled && cfg.Cache.Size <= 0 {
		return errInvalidCacheSize
	}

	if cfg.Missing.Enabled {
		if cfg.Missing.Path == "" {
			return errEmptyMissingPath
		}

		if cfg.Missing.Buffer <= 0 {
			return errInvalidMissingBuffer
		}
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if !slices.Contains(logLevels, cfg.Log.Level) {
		return fmt.Errorf("%w %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("%w %q", errInvalidLogFormat, cfg.Log.Format)
	}

	// Skip validating Limiter configuration if it's not enabled
	if !cfg.Limiter.Enabled {
		return nil
	}

	if cfg.Limiter.IPv4Prefix < 0 || cfg.Limiter.IPv4Prefix > 32 {
		return errInvalidIPv4Prefix
	}

	if cfg.Limiter.IPv6Prefix < 0 || cfg.Limiter.IPv6Prefix > 128 {
		return errInvalidIPv6Prefix
	}

	if cfg.Limiter.Rate <= 0 {
		return errInvalidLimiterRate
	}

	if cfg.Limiter.Burst < 1 {
		return errInvalidLimiterBurst
	}

	return nil
}

func (cfg *ServerConfig) validateListener() error {
	if cfg.Basic.UnixSocket == "" {
		// Set TCP defaults
		if cfg.Basic.Host == "" {
			cfg.Basic.Host = "localhost"
			log.Info().
				Str("host", cfg.Basic.Host).
				Msg("Binding to default host")
		}

		if cfg.Basic.Port == "" {
			cfg.Basic.Port = "8383"
			log.Info().
				Str("port", cfg.Basic.Port).
				Msg("Using default port")
		}

		return nil
	}

	if cfg.Basic.Host != "" || cfg.Basic.Port != "" {
		return errUnixSocketWithHostPort
	}

	switch {
	case cfg.Basic.RawUnixSocketPermissions == "":
		cfg.Basic.UnixSocketPermissions = 0o666
	case fileModeOctalRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
		rawModeUint64, _ := strconv.ParseUint(cfg.Basic.RawUnixSocketPermissions, 8, 32)

		cfg.Basic.UnixSocketPermissions = os.FileMode(rawModeUint64)
	case fileModeStringRegexp.MatchString(cfg.Basic.RawUnixSocketPermissions):
		mode := os.FileMode(0)

		for i, c := range cfg.Basic.RawUnixSocketPermissions {
			if c != '-' {
				// Set i-th bit from the end
				const bitsInByte = 8

				mode |= 1 << (bitsInByte - i)
			}
		}

		cfg.Basic.UnixSocketPermissions = mode
	default:
		return errUnixSocketInvalidPermissions
	}

	if cfg.Basic.UnixSocketUser != "" {
		var err error
		if digitsRegexp.MatchString(cfg.Basic.UnixSocketUser) {
			_, err = user.LookupId(cfg.Basic.UnixSocketUser)
		} else {
			_, err = user.Lookup(cfg.Basic.UnixSocketUser)
		}

		if err != nil {
			return errUnixSocketUserDoesNotExist
		}
	}

	if cfg.Basic.UnixSocketGroup != "" {
		var err error
		if digitsRegexp.MatchString(cfg.Basic.UnixSocketGroup) {
			_, err = user.LookupGroupId(cfg.Basic.UnixSocketGroup)
		} else {
			_, err = user.LookupGroup(cfg.Basic.UnixSocketGroup)
		}

		if err != nil {
			return errUnixSocketGroupDoesNotExist
		}
	}

	return nil
}

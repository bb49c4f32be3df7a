// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package config loads the tscat server configuration.

Values are applied in this order, later sources overriding earlier ones:
built-in defaults, the YAML configuration file, a .env file and the
TSCAT_* environment variables.
*/
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// Global exposes the server configuration.
var Global ServerConfig

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// StartingTimeLayout is the layout of Instance.StartingTime, in UTC.
const StartingTimeLayout = "2006-01-02 15:04"

// ServerConfig holds the application configuration.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		Host                     string      `env:"TSCAT_HOST" yaml:"host"`
		Port                     string      `env:"TSCAT_PORT" yaml:"port"`
		UnixSocket               string      `env:"TSCAT_UNIXSOCKET" yaml:"unixSocket"`
		RawUnixSocketPermissions string      `env:"TSCAT_UNIXSOCKET_PERMISSIONS" yaml:"unixSocketPermissions"`
		UnixSocketPermissions    os.FileMode `yaml:"-"`
		UnixSocketUser           string      `env:"TSCAT_UNIXSOCKET_USER" yaml:"unixSocketUser"`
		UnixSocketGroup          string      `env:"TSCAT_UNIXSOCKET_GROUP" yaml:"unixSocketGroup"`
	} `yaml:"basic"`

	Catalog struct {
		// Directory holding the <domain>_<locale>.ts and .tsc files.
		Dir string `env:"TSCAT_CATALOG_DIR" yaml:"dir"`
		// File name prefix of the catalogs. Empty loads every catalog in Dir.
		Domain         string `env:"TSCAT_CATALOG_DOMAIN" yaml:"domain"`
		SourceLanguage string `env:"TSCAT_SOURCE_LANGUAGE" yaml:"sourceLanguage"`
		// Strict mode for missing keys.
		//
		// When enabled, misses are logged (deduplicated per locale and key) and
		// visibly wrapped using markers.
		StrictMissingKeys bool `env:"TSCAT_STRICT_MISSING_KEYS" yaml:"strictMissingKeys"`
	} `yaml:"catalog"`

	Cache struct {
		Enabled  bool `env:"TSCAT_CACHE" yaml:"enabled"`
		Size     int  `env:"TSCAT_CACHE_SIZE" yaml:"cacheSize"`
		Compress bool `env:"TSCAT_CACHE_COMPRESS" yaml:"compress"`
	} `yaml:"cache"`

	HTTPCache struct {
		MaxAge time.Duration `env:"TSCAT_CACHE_CONTROL_MAX_AGE" yaml:"cacheControlMaxAge"`
	} `yaml:"httpCache"`

	Limiter struct {
		Enabled       bool     `env:"TSCAT_LIMITER" yaml:"enabled"`
		StateFilepath string   `env:"TSCAT_LIMITER_STATE_FILEPATH" yaml:"stateFilepath"`
		PassIPs       []string `env:"TSCAT_LIMITER_PASS_IPS" yaml:"passList"`
		BlockIPs      []string `env:"TSCAT_LIMITER_BLOCK_IPS" yaml:"blockList"`
		FilterLocal   bool     `env:"TSCAT_LIMITER_FILTER_LOCAL" yaml:"filterLocal"`
		IPv4Prefix    int      `env:"TSCAT_LIMITER_IPV4_PREFIX" yaml:"ipv4Prefix"`
		IPv6Prefix    int      `env:"TSCAT_LIMITER_IPV6_PREFIX" yaml:"ipv6Prefix"`
		// Tokens added per second.
		Rate  float64 `env:"TSCAT_LIMITER_RATE" yaml:"rate"`
		Burst int     `env:"TSCAT_LIMITER_BURST" yaml:"burst"`
	} `yaml:"limiter"`

	Missing struct {
		Enabled bool   `env:"TSCAT_MISSING" yaml:"enabled"`
		Path    string `env:"TSCAT_MISSING_PATH" yaml:"path"`
		Buffer  int    `env:"TSCAT_MISSING_BUFFER" yaml:"buffer"`
	} `yaml:"missing"`

	Instance struct {
		StartingTime string `yaml:"-"`
	} `yaml:"-"`

	Development struct {
		InDevelopment bool `env:"TSCAT_DEV" yaml:"inDevelopment"`
	} `yaml:"development"`

	Log struct {
		Level   string   `env:"TSCAT_LOG_LEVEL" yaml:"logLevel"`
		Outputs []string `env:"TSCAT_LOG_OUTPUTS" yaml:"logOutputs"`
		Format  string   `env:"TSCAT_LOG_FORMAT" yaml:"logFormat"`
	} `yaml:"log"`
}

// LoadConfig loads the configuration from various sources.
func (cfg *ServerConfig) LoadConfig() error {
	if err := cfg.Load(configFilePath()); err != nil {
		return err
	}

	cfg.setupAudit()
	cfg.print()

	// Heuristically check for containerized environment and warn if host is not a wildcard address.
	if isContainerized() && cfg.Basic.UnixSocket == "" && cfg.Basic.Host != "0.0.0.0" && cfg.Basic.Host != "::" {
		log.Warn().
			Str("host", cfg.Basic.Host).
			Msg("Running in a containerized environment but host is not a wildcard address (e.g., '0.0.0.0' or '::'). This may prevent the service from being accessible outside the container.")
	}

	return nil
}

// Load applies defaults, the YAML file at path (skipped when absent), the
// .env file and the environment, then validates the result.
func (cfg *ServerConfig) Load(path string) error {
	cfg.SetDefaults()

	cfg.Build.load()

	cfg.Instance.StartingTime = time.Now().UTC().Format(StartingTimeLayout)

	if err := cfg.readYAML(path); err != nil {
		return fmt.Errorf("error loading YAML config: %w", err)
	}

	if err := useDotEnv(); err != nil {
		return fmt.Errorf("error using .env file: %w", err)
	}

	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

// configFilePath determines the config file path with the correct precedence:
//  1. Command-line flag (-config)
//  2. Environment variable (TSCAT_CONFIGFILE)
//  3. ./config.yaml, falling back to ./config.yml
func configFilePath() string {
	parsedConfigFlagValue := parseCommandLineArgs()

	configFlagUserSet := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			configFlagUserSet = true
		}
	})

	if configFlagUserSet {
		return parsedConfigFlagValue
	}

	if envVar := os.Getenv("TSCAT_CONFIGFILE"); envVar != "" {
		return envVar
	}

	if _, err := os.Stat(parsedConfigFlagValue); os.IsNotExist(err) {
		ymlPath := "./config.yml"
		if _, statErr := os.Stat(ymlPath); statErr == nil {
			return ymlPath
		}
	}

	return parsedConfigFlagValue
}

// ShouldSkipServerLogging determines if a request should bypass request logging.
func (cfg *ServerConfig) ShouldSkipServerLogging(path string) bool {
	if cfg.Development.InDevelopment {
		return false
	}

	return path == "/healthz" || strings.HasPrefix(path, "/debug/")
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if _, err := os.Stat("/.containerenv"); err == nil {
		return true
	}

	// #nosec G304 -- well-known system file.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err == nil {
		content := string(cgroup)

		return strings.Contains(content, "docker") ||
			strings.Contains(content, "kubepods") ||
			strings.Contains(content, "containerd") ||
			strings.Contains(content, "lxc") ||
			strings.Contains(content, "crio") ||
			// systemd-nspawn containers
			strings.Contains(content, ".machine")
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}

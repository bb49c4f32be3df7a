// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Str("started", cfg.Instance.StartingTime).
		Msg("Starting tscat")

	configYAML, err := cfg.MarshalPrintable()
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().
		Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}

// MarshalPrintable returns the configuration as YAML with durations in
// human-readable form and the limiter lists redacted, since they may
// reveal client addresses.
func (cfg *ServerConfig) MarshalPrintable() ([]byte, error) {
	printableConfig := *cfg

	if len(printableConfig.Limiter.PassIPs) > 0 {
		printableConfig.Limiter.PassIPs = []string{redactedValue}
	}

	if len(printableConfig.Limiter.BlockIPs) > 0 {
		printableConfig.Limiter.BlockIPs = []string{redactedValue}
	}

	return yaml.MarshalWithOptions(printableConfig, GetDurationEncoderOption())
}

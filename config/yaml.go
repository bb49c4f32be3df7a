// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// readYAML overlays the YAML file at path onto cfg. A missing file is
// skipped. Unknown keys are rejected so that a misspelled option does not
// silently keep its default.
func (cfg *ServerConfig) readYAML(path string) error {
	if path == "" {
		return nil
	}

	logger := log.With().Str("sys", "config").Str("path", path).Logger()

	data, err := os.ReadFile(path) // #nosec G304 -- path is given by the operator
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Msg("No YAML configuration file found, skipping")

		return nil
	}

	if err != nil {
		return fmt.Errorf("read configuration file %s: %w", path, err)
	}

	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		logger.Error().Msg("Invalid configuration file:\n" + yaml.FormatError(err, false, true))

		return fmt.Errorf("parse configuration file %s: %w", path, err)
	}

	logger.Info().Msg("Loaded YAML configuration")

	return nil
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Command tscat_extract scans Go packages for translatable strings and
writes them to a Qt Linguist TS file, merging with the file if it exists.

Usage:

	go run ./cmd/tscat_extract -o i18n/tscat_de.ts -lang de ./...
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"golang.org/x/tools/go/packages"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/core/audit"
)

func main() {
	audit.SetDefaultLogger()

	outPath := flag.String("o", "i18n/tscat.ts", "TS file to create or update")
	lang := flag.String("lang", "", "language of a new TS file, e.g. de or sr_RS")
	sourceLang := flag.String("sourcelang", "en", "source language of a new TS file")
	flag.Parse()

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	// We scan all buildable packages, including templ-generated Go sources.
	pkgs, err := packages.Load(&packages.Config{Mode: packages.LoadAllSyntax, Tests: false}, patterns...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load packages")
	}

	if packages.PrintErrors(pkgs) > 0 {
		log.Fatal().Msg("Failed to load packages due to errors")
	}

	i18nPkgs := findI18nPkgPaths(pkgs)
	if len(i18nPkgs) == 0 {
		log.Warn().Msg("No i18n package found among the loaded packages")
	}

	absOut, err := filepath.Abs(*outPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve output path")
	}

	messages := extractMessages(pkgs, filepath.Dir(absOut), i18nPkgs)

	existing, err := catalog.LoadFile(*outPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to read existing TS file")
		}

		existing = nil
	}

	merged, res := merge(existing, messages, *lang, *sourceLang)

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directory")
	}

	f, err := os.Create(*outPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to create TS file")
	}

	if err := catalog.Write(f, merged); err != nil {
		_ = f.Close()

		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write TS file")
	}

	if err := f.Close(); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write TS file")
	}

	log.Info().
		Str("path", *outPath).
		Int("messages", len(messages)).
		Int("added", res.Added).
		Int("kept", res.Kept).
		Int("revived", res.Revived).
		Int("obsolete", res.Obsolete).
		Msg("Updated TS file")
}

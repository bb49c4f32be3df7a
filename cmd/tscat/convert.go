// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/pofile"
)

func runCompile(_ context.Context, e *env, fs *flag.FlagSet, args []string) error {
	out := fs.String("o", "", "output file (default: the input with the "+catalog.CompiledExt+" extension; - for stdout)")

	if err := parse(fs, args, 1, 1); err != nil {
		return err
	}

	c, err := loadCatalog(fs.Arg(0))
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = replaceExt(fs.Arg(0), catalog.CompiledExt)
	}

	w, err := createOutput(e, path)
	if err != nil {
		return err
	}

	if err := catalog.Compile(w, c); err != nil {
		_ = w.Close()

		return err
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	log.Info().Str("path", path).Int("entries", c.Len()).Msg("Compiled catalog")

	return nil
}

func runExportPO(_ context.Context, e *env, fs *flag.FlagSet, args []string) error {
	out := fs.String("o", "-", "output file")
	unfinished := fs.Bool("unfinished", false, "export the translations of unfinished entries")

	if err := parse(fs, args, 1, 1); err != nil {
		return err
	}

	c, err := loadCatalog(fs.Arg(0))
	if err != nil {
		return err
	}

	data, err := pofile.Export(c, pofile.Options{IncludeUnfinished: *unfinished})
	if err != nil {
		return err
	}

	w, err := createOutput(e, *out)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()

		return fmt.Errorf("write PO file: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}

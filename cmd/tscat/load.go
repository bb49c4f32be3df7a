// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/pixivfe/tscat/catalog"
)

// loadCatalog reads a TS file, or a compiled catalog if path has the
// compiled extension.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if !strings.EqualFold(filepath.Ext(path), catalog.CompiledExt) {
		return catalog.LoadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := catalog.LoadCompiled(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// createOutput opens path for writing, or returns stdout when path is empty or "-".
func createOutput(e *env, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{e.stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// replaceExt swaps the extension of path for ext.
func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zstd"
)

// CompiledExt is the file extension of compiled catalogs.
const CompiledExt = ".tsc"

var compiledMagic = []byte("TSC1")

var ErrNotCompiled = errors.New("not a compiled catalog")

// compiled is the gob payload of a .tsc file.
type compiled struct {
	Version        string
	Language       string
	SourceLanguage string
	Duplicates     int
	Entries        []Entry
}

// Compile writes c in the compiled form: a magic header followed by a zstd
// stream of gob-encoded entries.
func Compile(w io.Writer, c *Catalog) error {
	if _, err := w.Write(compiledMagic); err != nil {
		return fmt.Errorf("compile catalog: %w", err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("compile catalog: %w", err)
	}

	payload := compiled{
		Version:        c.Version(),
		Language:       qtLanguage(c.Language()),
		SourceLanguage: qtLanguage(c.SourceLanguage()),
		Duplicates:     c.Duplicates(),
		Entries:        c.Entries(),
	}

	if err := gob.NewEncoder(zw).Encode(payload); err != nil {
		zw.Close()

		return fmt.Errorf("compile catalog: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("compile catalog: %w", err)
	}

	return nil
}

// LoadCompiled reads a catalog written by Compile.
func LoadCompiled(r io.Reader) (*Catalog, error) {
	magic := make([]byte, len(compiledMagic))
	if _, err := io.ReadFull(r, magic); err != nil || !bytes.Equal(magic, compiledMagic) {
		return nil, ErrNotCompiled
	}

	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("load compiled catalog: %w", err)
	}
	defer zr.Close()

	var payload compiled
	if err := gob.NewDecoder(zr).Decode(&payload); err != nil {
		return nil, fmt.Errorf("load compiled catalog: %w", err)
	}

	c := newCatalog(payload.Version, payload.Language, payload.SourceLanguage)
	for _, e := range payload.Entries {
		c.add(e)
	}

	c.duplicates += payload.Duplicates

	return c, nil
}

// LoadCompiledFS reads the compiled catalog name from fsys.
func LoadCompiledFS(fsys fs.FS, name string) (*Catalog, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	c, err := LoadCompiled(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return c, nil
}

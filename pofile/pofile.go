// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package pofile exports catalogs as gettext PO files.
package pofile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog/log"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/config"
)

// Options controls Export.
type Options struct {
	// IncludeUnfinished exports the translation of unfinished entries
	// instead of an empty msgstr.
	IncludeUnfinished bool
}

// Export renders c as a PO file.
//
// Contexts become msgctxt. Obsolete entries are dropped. Numerus entries
// are written with the source as both msgid and msgid_plural and one
// msgstr per plural form of the catalog language.
func Export(c *catalog.Catalog, opts Options) ([]byte, error) {
	rule := ruleFor(c.Language())

	po := gotext.NewPo()
	po.Parse(header(c, rule))

	if n := c.NumerusForms(); n != len(rule.samples) {
		log.Warn().
			Str("sys", "pofile").
			Str("lang", c.Language().String()).
			Int("catalog_forms", n).
			Int("po_forms", len(rule.samples)).
			Msg("Numerus form count differs from the gettext plural rule")
	}

	for _, e := range c.Entries() {
		if e.Status == catalog.Obsolete {
			continue
		}

		keep := e.Status == catalog.Finished || opts.IncludeUnfinished

		if !e.Numerus {
			text := ""
			if keep {
				text = e.Translation
			}

			if e.Context == "" {
				po.Set(e.Source, text)
			} else {
				po.SetC(e.Source, e.Context, text)
			}

			continue
		}

		for i, n := range rule.samples {
			text := ""
			if keep && i < len(e.Forms) {
				text = e.Forms[i]
			}

			if e.Context == "" {
				po.SetN(e.Source, e.Source, n, text)
			} else {
				po.SetNC(e.Source, e.Source, e.Context, n, text)
			}
		}
	}

	out, err := po.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("marshal PO file: %w", err)
	}

	return out, nil
}

func header(c *catalog.Catalog, rule pluralRule) []byte {
	lang := strings.ReplaceAll(c.Language().String(), "-", "_")

	var b strings.Builder

	b.WriteString("msgid \"\"\nmsgstr \"\"\n")

	for _, h := range [][2]string{
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"Content-Transfer-Encoding", "8bit"},
		{"Language", lang},
		{"Plural-Forms", rule.expr},
		{"X-Generator", "tscat " + config.BuildVersion},
	} {
		b.WriteString(strconv.Quote(h[0] + ": " + h[1] + "\n"))
		b.WriteByte('\n')
	}

	return []byte(b.String())
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"cmp"
	"slices"

	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/catalog"
)

// mergeResult counts what merge did.
type mergeResult struct {
	Added    int
	Kept     int
	Obsolete int
	Revived  int
}

// merge combines the messages found in the sources with an existing catalog.
//
// Existing entries keep their translation and status, and get the new
// locations. Entries no longer referenced become obsolete. Obsolete entries
// that are referenced again come back as unfinished. New messages are
// appended as unfinished, sorted by context and source.
func merge(existing *catalog.Catalog, messages map[key]*found, lang, sourceLang string) (*catalog.Catalog, mergeResult) {
	var res mergeResult

	if existing != nil {
		if tag := existing.Language(); tag != language.Und {
			lang = tag.String()
		}

		if tag := existing.SourceLanguage(); tag != language.Und {
			sourceLang = tag.String()
		}
	}

	entries := make([]catalog.Entry, 0, existing.Len()+len(messages))
	seen := make(map[key]bool, existing.Len())

	for _, e := range existing.Entries() {
		k := key{ctx: e.Context, source: e.Source}
		seen[k] = true

		f, ok := messages[k]
		if !ok {
			if e.Status != catalog.Obsolete {
				res.Obsolete++
			}

			e.Status = catalog.Obsolete
			e.Locations = nil
			entries = append(entries, e)

			continue
		}

		if e.Status == catalog.Obsolete {
			e.Status = catalog.Unfinished
			res.Revived++
		} else {
			res.Kept++
		}

		if f.numerus && !e.Numerus {
			e.Numerus = true
			e.Forms = []string{e.Translation}
		}

		e.Locations = locations(f.refs)
		entries = append(entries, e)
	}

	added := make([]key, 0, len(messages))

	for k := range messages {
		if !seen[k] {
			added = append(added, k)
		}
	}

	slices.SortFunc(added, func(a, b key) int {
		return cmp.Or(cmp.Compare(a.ctx, b.ctx), cmp.Compare(a.source, b.source))
	})

	forms := catalog.New(lang, sourceLang, nil).NumerusForms()

	for _, k := range added {
		f := messages[k]

		e := catalog.Entry{
			Context:   k.ctx,
			Source:    k.source,
			Numerus:   f.numerus,
			Status:    catalog.Unfinished,
			Locations: locations(f.refs),
		}

		if f.numerus {
			e.Forms = make([]string, forms)
		}

		entries = append(entries, e)
		res.Added++
	}

	return catalog.New(lang, sourceLang, entries), res
}

// locations sorts refs by file and line and drops duplicates.
func locations(refs []ref) []catalog.Location {
	refs = slices.Clone(refs)
	slices.SortFunc(refs, func(a, b ref) int {
		return cmp.Or(cmp.Compare(a.file, b.file), cmp.Compare(a.line, b.line))
	})
	refs = slices.Compact(refs)

	out := make([]catalog.Location, len(refs))
	for i, r := range refs {
		out[i] = catalog.Location{Filename: r.file, Line: r.line}
	}

	return out
}

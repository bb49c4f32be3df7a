// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// key identifies an entry. Keys are unique per catalog.
type key struct {
	context string
	source  string
}

// Catalog maps (context, source) pairs to entries.
//
// A Catalog is built once by one of the loaders and never modified afterwards,
// so it is safe for concurrent use without locking. The nil *Catalog is valid
// and behaves as an empty catalog.
type Catalog struct {
	version        string
	language       language.Tag
	sourceLanguage language.Tag

	entries  map[key]*Entry
	order    []key
	contexts []string

	duplicates int

	numerus numerusRule
	printer *message.Printer
}

// Empty returns a catalog without entries. Every lookup falls back to the source text.
func Empty() *Catalog {
	return newCatalog("", "", "")
}

// New builds a catalog in the current TS format from entries. Later entries
// replace earlier ones with the same context and source.
func New(lang, sourceLang string, entries []Entry) *Catalog {
	c := newCatalog(WriteVersion, lang, sourceLang)
	for _, e := range entries {
		c.add(e)
	}

	return c
}

func newCatalog(version, lang, sourceLang string) *Catalog {
	c := &Catalog{
		version:        version,
		language:       parseLanguage(lang),
		sourceLanguage: parseLanguage(sourceLang),
		entries:        make(map[key]*Entry),
	}

	c.numerus = numerusRuleFor(c.language)
	c.printer = message.NewPrinter(c.language)

	return c
}

// parseLanguage accepts both Qt ("sr_RS") and BCP 47 ("sr-RS") spellings.
// Unparseable or empty values yield language.Und.
func parseLanguage(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und
	}

	t, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und
	}

	return t
}

// add inserts e, replacing an existing entry with the same key.
// It reports whether a previous entry was replaced.
func (c *Catalog) add(e Entry) bool {
	k := key{context: e.Context, source: e.Source}

	_, replaced := c.entries[k]
	if replaced {
		c.duplicates++
	} else {
		c.order = append(c.order, k)

		if !slices.Contains(c.contexts, e.Context) {
			c.contexts = append(c.contexts, e.Context)
		}
	}

	stored := e.clone()
	c.entries[k] = &stored

	return replaced
}

// Lookup returns the translation of source within context with %1, %2, …
// replaced by args in order.
//
// When the catalog has no usable translation (no entry, an obsolete entry, or
// an empty translation) the source text is used instead, with the same
// substitution applied. Placeholders without a matching argument are kept as is.
func (c *Catalog) Lookup(context, source string, args ...any) string {
	text, _ := c.Resolve(context, source)

	return c.substitute(text, args)
}

// LookupN is the numerus variant of Lookup. The plural form is picked for n
// according to the catalog language, %n is replaced by n, and positional
// placeholders are then substituted from args.
func (c *Catalog) LookupN(context, source string, n int, args ...any) string {
	text := source

	if e := c.entry(context, source); e != nil && e.translated() {
		if f := e.form(c.numerusIndex(n)); f != "" {
			text = f
		}
	}

	return c.substitute(c.replaceCount(text, n), args)
}

// Resolve returns the raw translation of source within context and whether
// it came from the catalog. When ok is false, text is source.
func (c *Catalog) Resolve(context, source string) (text string, ok bool) {
	if e := c.entry(context, source); e != nil && e.translated() {
		return e.form(0), true
	}

	return source, false
}

func (c *Catalog) entry(context, source string) *Entry {
	if c == nil {
		return nil
	}

	return c.entries[key{context: context, source: source}]
}

// Entry returns a copy of the entry stored for (context, source).
func (c *Catalog) Entry(context, source string) (Entry, bool) {
	e := c.entry(context, source)
	if e == nil {
		return Entry{}, false
	}

	return e.clone(), true
}

// Entries returns copies of all entries in load order.
// An entry replaced by a later duplicate keeps the position of the first one.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}

	out := make([]Entry, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.entries[k].clone())
	}

	return out
}

// Contexts returns the context names in the order they first appear.
func (c *Catalog) Contexts() []string {
	if c == nil {
		return nil
	}

	out := make([]string, len(c.contexts))
	copy(out, c.contexts)

	return out
}

// Len returns the number of distinct entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}

	return len(c.entries)
}

// Duplicates returns how many entries were overridden by a later entry with the same key.
func (c *Catalog) Duplicates() int {
	if c == nil {
		return 0
	}

	return c.duplicates
}

// Language returns the target language of the catalog, or language.Und.
func (c *Catalog) Language() language.Tag {
	if c == nil {
		return language.Und
	}

	return c.language
}

// SourceLanguage returns the source language of the catalog, or language.Und.
func (c *Catalog) SourceLanguage() language.Tag {
	if c == nil {
		return language.Und
	}

	return c.sourceLanguage
}

// Version returns the TS format version the catalog was read from.
func (c *Catalog) Version() string {
	if c == nil {
		return ""
	}

	return c.version
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/catalog"
)

// Options configures Setup.
type Options struct {
	// Domain is the file name prefix of the catalogs to load, for example
	// "cppcheck" for cppcheck_de.ts. An empty Domain accepts any prefix.
	Domain string

	// SourceLanguage is the language the source texts are written in.
	// It is the default match and defaults to BaseLocale.
	SourceLanguage string

	// StrictMissingKeys wraps untranslated strings as ⟦…⟧ and logs each
	// missing key once per locale.
	StrictMissingKeys bool

	// Reporter receives every miss. It may be nil.
	Reporter MissReporter

	// Logger replaces the global logger when set.
	Logger *zerolog.Logger
}

// Bundle holds the catalogs loaded by Setup, one per locale.
//
// A Bundle is immutable after Setup returns and is safe for concurrent use.
// The nil *Bundle translates every string to its source text.
type Bundle struct {
	opts Options

	source   language.Tag
	catalogs map[language.Tag]*catalog.Catalog

	// tags lists the supported locales with the source language first,
	// in the order given to matcher.
	tags    []language.Tag
	matcher language.Matcher

	logger zerolog.Logger

	// missingOnce deduplicates strict-mode warnings.
	// The key is locale+"\x00"+context+"\x00"+source.
	missingOnce sync.Map
}

// catalogFile is a catalog found in the catalog directory.
type catalogFile struct {
	name   string
	locale string

	cat *catalog.Catalog
	tag language.Tag
	err error
}

// Setup loads the translation catalogs in dir of fsys and builds a language matcher.
//
// Files are expected to be named <domain>_<locale>.ts, for example
// cppcheck_pt_BR.ts, or to carry the compiled .tsc extension. When both
// exist for the same name, the compiled file is used. The locale part of the
// file name may use hyphens or underscores; when it does not parse, the
// language attribute of the catalog is used instead.
//
// Setup never fails in a way that leaves the caller without a Bundle. A catalog
// that cannot be parsed is replaced by an empty one, so lookups for that locale
// fall back to the source text; the failures are returned joined in the error.
func Setup(fsys fs.FS, dir string, opts Options) (*Bundle, error) {
	if opts.SourceLanguage == "" {
		opts.SourceLanguage = BaseLocale
	}

	b := &Bundle{
		opts:     opts,
		catalogs: make(map[language.Tag]*catalog.Catalog),
		logger:   log.With().Str("sys", "i18n").Logger(),
	}

	if opts.Logger != nil {
		b.logger = opts.Logger.With().Str("sys", "i18n").Logger()
	}

	var errs []error

	source, err := parseLocale(opts.SourceLanguage)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid source language %q: %w", opts.SourceLanguage, err))
		source = language.Make(BaseLocale)
	}

	b.source = source

	files, err := findCatalogs(fsys, dir, opts.Domain)
	if err != nil {
		errs = append(errs, err)
	}

	loadCatalogs(fsys, files)

	var loaded []language.Tag

	for _, f := range files {
		if f.err != nil {
			b.logger.Error().Err(f.err).Str("file", f.name).Msg("Failed to load catalog, falling back to source texts")
			errs = append(errs, f.err)
		}

		tag, err := fileTag(f)
		if err != nil {
			b.logger.Warn().Err(err).Str("file", f.name).Msg("Skipping catalog with unknown locale")
			errs = append(errs, fmt.Errorf("%s: %w", f.name, err))

			continue
		}

		if _, ok := b.catalogs[tag]; ok {
			b.logger.Warn().Str("file", f.name).Str("locale", tag.String()).Msg("Locale loaded twice, later file wins")
		} else {
			loaded = append(loaded, tag)
		}

		cat := f.cat
		if cat == nil {
			cat = catalog.Empty()
		}

		b.catalogs[tag] = cat

		if f.err != nil {
			continue
		}

		b.logger.Info().
			Str("locale", tag.String()).
			Str("file", f.name).
			Int("entries", cat.Len()).
			Msg("Loaded catalog")
	}

	b.tags = append(b.tags, source)

	slices.SortFunc(loaded, func(a, b language.Tag) int { return strings.Compare(a.String(), b.String()) })

	for _, t := range loaded {
		if t != source {
			b.tags = append(b.tags, t)
		}
	}

	b.matcher = language.NewMatcher(b.tags)

	return b, errors.Join(errs...)
}

// findCatalogs lists the catalog files of domain in dir. A compiled catalog
// shadows the text catalog of the same name.
func findCatalogs(fsys fs.FS, dir, domain string) ([]*catalogFile, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	compiled := make(map[string]bool)

	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == catalog.CompiledExt {
			compiled[strings.TrimSuffix(e.Name(), catalog.CompiledExt)] = true
		}
	}

	var files []*catalogFile

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		ext := path.Ext(name)
		stem := strings.TrimSuffix(name, ext)

		switch {
		case ext == catalog.CompiledExt:
		case ext == ".ts" && !compiled[stem]:
		default:
			continue
		}

		locale, ok := localeFromName(stem, domain)
		if !ok {
			continue
		}

		files = append(files, &catalogFile{name: path.Join(dir, name), locale: locale})
	}

	return files, nil
}

// localeFromName extracts the locale part of a <domain>_<locale> file stem.
func localeFromName(stem, domain string) (string, bool) {
	if domain != "" {
		return strings.CutPrefix(stem, domain+"_")
	}

	_, locale, ok := strings.Cut(stem, "_")

	return locale, ok
}

// loadCatalogs parses files concurrently, recording the result in each file.
func loadCatalogs(fsys fs.FS, files []*catalogFile) {
	var g errgroup.Group

	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, f := range files {
		g.Go(func() error {
			if path.Ext(f.name) == catalog.CompiledExt {
				f.cat, f.err = catalog.LoadCompiledFS(fsys, f.name)
			} else {
				f.cat, f.err = catalog.LoadFS(fsys, f.name)
			}

			return nil
		})
	}

	_ = g.Wait()
}

// fileTag returns the locale of f from its file name, or from the catalog
// language when the name does not hold a valid tag.
func fileTag(f *catalogFile) (language.Tag, error) {
	tag, err := parseLocale(f.locale)
	if err == nil {
		return tag, nil
	}

	if lang := f.cat.Language(); lang != language.Und {
		return lang, nil
	}

	return language.Und, err
}

// parseLocale accepts both "pt_BR" and "pt-BR".
func parseLocale(s string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(s, "_", "-"))
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"slices"
	"strings"

	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/catalog"
)

// BaseLocale is the default source language.
const BaseLocale = "en"

// Languages returns the supported language tags: the source language and
// every locale a catalog was loaded for.
//
// The returned slice is a copy, is sorted by tag string, and is safe to retain.
func (b *Bundle) Languages() []language.Tag {
	if b == nil {
		return []language.Tag{language.Make(BaseLocale)}
	}

	out := slices.Clone(b.tags)
	slices.SortFunc(out, func(x, y language.Tag) int { return strings.Compare(x.String(), y.String()) })

	return out
}

// Source returns the source language of the bundle.
func (b *Bundle) Source() language.Tag {
	if b == nil {
		return language.Make(BaseLocale)
	}

	return b.source
}

// Match returns the supported locale that best serves t.
// Tags without a reasonable match resolve to the source language.
func (b *Bundle) Match(t language.Tag) language.Tag {
	if b == nil {
		return language.Make(BaseLocale)
	}

	if t == language.Und {
		return b.source
	}

	_, idx, conf := b.matcher.Match(t)
	if conf == language.No {
		return b.source
	}

	return b.tags[idx]
}

// Catalog returns the catalog serving t, or nil when t resolves to the
// source language and no catalog was loaded for it. A nil catalog is valid
// and returns source texts.
func (b *Bundle) Catalog(t language.Tag) *catalog.Catalog {
	if b == nil {
		return nil
	}

	return b.catalogs[b.Match(t)]
}

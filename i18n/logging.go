// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"

	"golang.org/x/text/language"
)

// MissReporter receives lookups that fell back to the source text.
// Implementations must not block.
type MissReporter interface {
	ReportMiss(ctx context.Context, locale, uiContext, source string)
}

// missing reports a miss and, in strict mode, logs it once per locale and key.
func (b *Bundle) missing(ctx context.Context, locale language.Tag, uiContext, source string) {
	loc := strippedTagString(locale)

	if b.opts.Reporter != nil {
		b.opts.Reporter.ReportMiss(ctx, loc, uiContext, source)
	}

	if !b.opts.StrictMissingKeys {
		return
	}

	id := loc + "\x00" + uiContext + "\x00" + source
	if _, loaded := b.missingOnce.LoadOrStore(id, struct{}{}); !loaded {
		b.logger.Warn().
			Str("locale", loc).
			Str("context", uiContext).
			Str("source", source).
			Msg("Missing translation")
	}
}

// strippedTagString removes variants and extensions to form a stable key
// from base, script and region only.
func strippedTagString(tag language.Tag) string {
	b, s, r := tag.Raw()
	stripped, _ := language.Compose(b, s, r)

	return stripped.String()
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type contextKeyType struct{}

var tagKey = contextKeyType{}

const (
	// LangParam is the URL query parameter holding a preferred locale.
	LangParam = "lang"

	// LangCookie is the cookie remembering the preferred locale.
	LangCookie = "tscat_lang"
)

// WithTag stores t in ctx and returns a derived context that carries it.
//
// The returned context should be passed to downstream code that performs
// translations. The ctx must not be nil.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey, t)
}

// TagFrom returns the language tag stored in ctx, or language.Und if none is
// present. Translating with language.Und uses the source language.
func TagFrom(ctx context.Context) language.Tag {
	if ctx != nil {
		if t, ok := ctx.Value(tagKey).(language.Tag); ok {
			return t
		}
	}

	return language.Und
}

// FromRequest returns the best supported locale for r by inspecting user
// preferences in priority order:
// 1) query parameter [LangParam]
// 2) cookie [LangCookie]
// 3) Accept-Language header
//
// If [LangParam] is "auto" (case-insensitive), the cookie is ignored and only
// the Accept-Language header is considered.
func (b *Bundle) FromRequest(r *http.Request) language.Tag {
	if b == nil || r == nil {
		return b.Source()
	}

	q := r.URL.Query().Get(LangParam)
	auto := strings.EqualFold(q, "auto")

	preferred := make([]string, 0, 3)
	if q != "" && !auto {
		preferred = append(preferred, q)
	}

	if !auto {
		if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
			preferred = append(preferred, c.Value)
		}
	}

	if al := r.Header.Get("Accept-Language"); al != "" {
		preferred = append(preferred, al)
	}

	_, idx := language.MatchStrings(b.matcher, preferred...)

	return b.tags[idx]
}

// WithRequest resolves the locale of r with [Bundle.FromRequest] and installs
// it in the returned context.
func (b *Bundle) WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, b.FromRequest(r))
}

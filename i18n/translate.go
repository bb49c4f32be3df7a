// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"

	"codeberg.org/pixivfe/tscat/catalog"
)

// Translator resolves UI strings for the locale carried by a context.
// *Bundle implements it.
type Translator interface {
	// Tr returns the translation of source within uiContext, with %1, %2, …
	// replaced by args.
	Tr(ctx context.Context, uiContext, source string, args ...any) string
	// TrN is the numerus variant of Tr; %n is replaced by n.
	TrN(ctx context.Context, uiContext, source string, n int, args ...any) string
}

var _ Translator = (*Bundle)(nil)

// NewUserError creates an error whose message is translated for the locale in ctx.
func NewUserError(ctx context.Context, t Translator, uiContext, source string, args ...any) *UserError {
	return &UserError{
		msg:    t.Tr(ctx, uiContext, source, args...),
		source: catalog.Substitute(source, args...),
	}
}

// UserError is an error type whose message is a translated string.
// It is intended for errors that can be shown directly to the end user.
type UserError struct {
	msg    string
	source string
}

// Error returns the translated error message.
func (e *UserError) Error() string {
	return e.msg
}

// Untranslated returns the message in the source language, for logs.
func (e *UserError) Untranslated() string {
	return e.source
}

// Tr returns the translation of source within uiContext for the locale in ctx.
//
// If a translation is not found, Tr returns source with the arguments
// substituted, or visibly wrapped if strict mode is enabled.
func (b *Bundle) Tr(ctx context.Context, uiContext, source string, args ...any) string {
	return b.translate(ctx, uiContext, source, 0, false, args)
}

// TrN translates a numerus message, picking the plural form for n.
func (b *Bundle) TrN(ctx context.Context, uiContext, source string, n int, args ...any) string {
	return b.translate(ctx, uiContext, source, n, true, args)
}

func (b *Bundle) translate(
	ctx context.Context,
	uiContext, source string,
	n int,
	numerus bool,
	args []any,
) string {
	matched := b.Match(TagFrom(ctx))
	cat := b.Catalog(matched)

	var text string
	if numerus {
		text = cat.LookupN(uiContext, source, n, args...)
	} else {
		text = cat.Lookup(uiContext, source, args...)
	}

	// The source language is served by the source texts themselves.
	if b == nil || (cat == nil && matched == b.source) {
		return text
	}

	if _, ok := cat.Resolve(uiContext, source); !ok {
		b.missing(ctx, matched, uiContext, source)

		if b.opts.StrictMissingKeys {
			text = "⟦" + text + "⟧"
		}
	}

	return text
}

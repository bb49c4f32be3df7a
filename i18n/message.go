// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Message is a translatable UI string: a source text and the context it
// belongs to. Message literals with constant fields are picked up by the
// extractor.
type Message struct {
	Context string
	Source  string
}

// Tr translates m for the locale in ctx.
func (m Message) Tr(ctx context.Context, t Translator, args ...any) string {
	return t.Tr(ctx, m.Context, m.Source, args...)
}

// Component returns a templ component that renders the HTML-escaped
// translation of m for the locale of the render context.
func (m Message) Component(t Translator, args ...any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(m.Tr(ctx, t, args...)))

		return err
	})
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package template

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"codeberg.org/pixivfe/tscat/i18n"
)

// durationContext is the catalog context of the duration units.
const durationContext = "Duration"

// FormatDuration returns a translated, human-readable representation of a
// time.Duration in its largest whole unit, like "2 hours" or "3 days".
func FormatDuration(ctx context.Context, t i18n.Translator, duration time.Duration) string {
	if duration < time.Minute {
		return t.TrN(ctx, durationContext, "%n second(s)", int(max(duration, 0).Seconds()))
	}

	if duration < time.Hour {
		return t.TrN(ctx, durationContext, "%n minute(s)", int(duration.Minutes()))
	}

	const hoursInDay = 24
	if duration < hoursInDay*time.Hour {
		return t.TrN(ctx, durationContext, "%n hour(s)", int(duration.Hours()))
	}

	return t.TrN(ctx, durationContext, "%n day(s)", int(duration.Hours()/hoursInDay))
}

// FormatPercent formats a percentage with one decimal using the number
// conventions of tag.
func FormatPercent(tag language.Tag, percent float64) string {
	return message.NewPrinter(tag).Sprintf("%.1f%%", percent)
}

// PrettyNumber formats n with the digit grouping of tag.
func PrettyNumber(tag language.Tag, n int) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

// RenderToString converts a templ.Component to its string representation.
//
// Handling errors in templates is awkward, so if an error occurs during rendering,
// it is formatted into a string and returned.
func RenderToString(ctx context.Context, c templ.Component) string {
	var buffer bytes.Buffer

	err := c.Render(ctx, &buffer)
	if err != nil {
		return fmt.Errorf("templ: failed to render component: %w", err).Error()
	}

	return buffer.String()
}

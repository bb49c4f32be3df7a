// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package commondata

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/request_context"
)

// LanguageOption is an entry of the language switcher.
type LanguageOption struct {
	Tag language.Tag

	// Name is the name of the language in itself, like "Deutsch".
	Name     string
	Selected bool
}

// PageCommonData holds the values every HTML page needs.
type PageCommonData struct {
	// Lang is the locale the page is rendered in.
	Lang language.Tag

	// CurrentPath is the URL path from request (e.g., "/stats").
	CurrentPath string

	Languages []LanguageOption

	Version      string
	Revision     string
	StartingTime string
}

// PopulatePageCommonData fills the PageCommonData struct from the request.
func PopulatePageCommonData(r *http.Request, b *i18n.Bundle, data *PageCommonData) {
	data.Lang = request_context.FromRequest(r).Locale
	if data.Lang.IsRoot() {
		data.Lang = b.Source()
	}

	data.CurrentPath = r.URL.Path
	data.Version = config.BuildVersion
	data.Revision = config.Global.Build.Revision()
	data.StartingTime = config.Global.Instance.StartingTime

	tags := b.Languages()
	data.Languages = make([]LanguageOption, 0, len(tags))

	for _, tag := range tags {
		name := display.Self.Name(tag)
		if name == "" {
			name = tag.String()
		}

		data.Languages = append(data.Languages, LanguageOption{
			Tag:      tag,
			Name:     name,
			Selected: tag == data.Lang,
		})
	}
}

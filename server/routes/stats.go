// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"time"

	"golang.org/x/text/language/display"

	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/server/template"
	"codeberg.org/pixivfe/tscat/server/template/commondata"
)

// StatsPage renders the completion report of all loaded catalogs.
func (h *Handlers) StatsPage(w http.ResponseWriter, r *http.Request) error {
	rememberLanguage(w, r, h.Bundle)

	var data template.StatsData

	commondata.PopulatePageCommonData(r, h.Bundle, &data.Common)

	source := h.Bundle.Source()
	namer := display.Tags(data.Common.Lang)

	for _, tag := range h.Bundle.Languages() {
		name := namer.Name(tag)
		if name == "" {
			name = tag.String()
		}

		data.Rows = append(data.Rows, template.StatsRow{
			Lang:   tag.String(),
			Name:   name,
			Source: tag == source,
			Counts: h.Bundle.Catalog(tag).Stats().Total,
		})
	}

	if started, err := time.ParseInLocation(config.StartingTimeLayout, config.Global.Instance.StartingTime, time.UTC); err == nil {
		data.Uptime = template.FormatDuration(r.Context(), h.Bundle, time.Since(started))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	return template.StatsPage(h.Bundle, data).Render(r.Context(), w)
}

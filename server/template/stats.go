// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package template

import (
	"context"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/template/commondata"
)

const statsContext = "Stats"

var (
	msgStatsTitle   = i18n.Message{Context: statsContext, Source: "Translation status"}
	msgLanguage     = i18n.Message{Context: statsContext, Source: "Language"}
	msgFinished     = i18n.Message{Context: statsContext, Source: "Finished"}
	msgUnfinished   = i18n.Message{Context: statsContext, Source: "Unfinished"}
	msgObsolete     = i18n.Message{Context: statsContext, Source: "Obsolete"}
	msgCompletion   = i18n.Message{Context: statsContext, Source: "Completion"}
	msgSource       = i18n.Message{Context: statsContext, Source: "source language"}
	msgDisplayIn    = i18n.Message{Context: statsContext, Source: "Display language"}
	msgUptime       = i18n.Message{Context: statsContext, Source: "Up for %1"}
	msgVersionLabel = i18n.Message{Context: statsContext, Source: "Version %1 (%2)"}
)

// StatsRow is one locale of the stats page.
type StatsRow struct {
	Lang   string
	Name   string
	Source bool
	Counts catalog.Counts
}

// StatsData is the data used to render the stats page.
type StatsData struct {
	Common commondata.PageCommonData
	Rows   []StatsRow
	Uptime string
}

// htmlWriter stops writing after the first error and keeps it.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err == nil {
		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) component(c templ.Component) {
	if hw.err == nil {
		hw.err = c.Render(hw.ctx, hw.w)
	}
}

// StatsPage renders the translation status of every loaded locale.
// Labels are translated for the locale carried by the render context.
func StatsPage(t i18n.Translator, data StatsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{ctx: ctx, w: w}
		lang := data.Common.Lang

		hw.raw(`<!DOCTYPE html><html lang="`)
		hw.text(lang.String())
		hw.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.component(msgStatsTitle.Component(t))
		hw.raw(`</title></head><body><main><h1>`)
		hw.component(msgStatsTitle.Component(t))
		hw.raw(`</h1><nav aria-label="`)
		hw.text(msgDisplayIn.Tr(ctx, t))
		hw.raw(`"><ul>`)

		for _, opt := range data.Common.Languages {
			hw.raw(`<li><a href="`)
			hw.text(data.Common.CurrentPath + "?" + url.Values{i18n.LangParam: {opt.Tag.String()}}.Encode())
			hw.raw(`" hreflang="`)
			hw.text(opt.Tag.String())

			if opt.Selected {
				hw.raw(`" aria-current="true`)
			}

			hw.raw(`">`)
			hw.text(opt.Name)
			hw.raw(`</a></li>`)
		}

		hw.raw(`</ul></nav><table><thead><tr><th>`)
		hw.component(msgLanguage.Component(t))
		hw.raw(`</th><th>`)
		hw.component(msgFinished.Component(t))
		hw.raw(`</th><th>`)
		hw.component(msgUnfinished.Component(t))
		hw.raw(`</th><th>`)
		hw.component(msgObsolete.Component(t))
		hw.raw(`</th><th>`)
		hw.component(msgCompletion.Component(t))
		hw.raw(`</th></tr></thead><tbody>`)

		for _, row := range data.Rows {
			hw.raw(`<tr><td>`)
			hw.text(row.Name)
			hw.raw(` <code>`)
			hw.text(row.Lang)
			hw.raw(`</code>`)

			if row.Source {
				hw.raw(` <small>(`)
				hw.component(msgSource.Component(t))
				hw.raw(`)</small>`)
			}

			hw.raw(`</td><td>`)
			hw.text(PrettyNumber(lang, row.Counts.Finished))
			hw.raw(`</td><td>`)
			hw.text(PrettyNumber(lang, row.Counts.Unfinished))
			hw.raw(`</td><td>`)
			hw.text(PrettyNumber(lang, row.Counts.Obsolete))
			hw.raw(`</td><td><meter min="0" max="100" value="`)
			hw.text(strconv.FormatFloat(row.Counts.Completion(), 'f', 1, 64))
			hw.raw(`"></meter> `)
			hw.text(FormatPercent(lang, row.Counts.Completion()))
			hw.raw(`</td></tr>`)
		}

		hw.raw(`</tbody></table></main><footer><p>`)
		hw.component(msgVersionLabel.Component(t, data.Common.Version, data.Common.Revision))

		if data.Uptime != "" {
			hw.raw(` · `)
			hw.component(msgUptime.Component(t, data.Uptime))
		}

		hw.raw(`</p></footer></body></html>`)

		return hw.err
	})
}

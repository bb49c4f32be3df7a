// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/template"
	"codeberg.org/pixivfe/tscat/server/template/commondata"
)

type fileStats struct {
	File string `json:"file"`
	catalog.Stats
}

func runStats(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	asJSON := fs.Bool("json", false, "print the statistics as JSON, including per-context counts")
	asHTML := fs.Bool("html", false, "print an HTML report")

	if err := parse(fs, args, 1, -1); err != nil {
		return err
	}

	if *asJSON && *asHTML {
		return errUsage
	}

	all := make([]fileStats, 0, fs.NArg())
	catalogs := make([]*catalog.Catalog, 0, fs.NArg())

	for _, path := range fs.Args() {
		c, err := loadCatalog(path)
		if err != nil {
			return err
		}

		catalogs = append(catalogs, c)
		all = append(all, fileStats{File: path, Stats: c.Stats()})
	}

	switch {
	case *asJSON:
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")

		if err := enc.Encode(all); err != nil {
			return fmt.Errorf("encode statistics: %w", err)
		}

		return nil
	case *asHTML:
		return writeHTMLReport(ctx, e, catalogs)
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FILE\tLANG\tFINISHED\tUNFINISHED\tOBSOLETE\tEMPTY\tDONE\t")

	for _, s := range all {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.1f%%\t\n",
			s.File, s.Language,
			s.Total.Finished, s.Total.Unfinished, s.Total.Obsolete, s.Total.Empty,
			s.Total.Completion())
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}

	return nil
}

// writeHTMLReport renders the same page the server shows at /stats, in the
// source language.
func writeHTMLReport(ctx context.Context, e *env, catalogs []*catalog.Catalog) error {
	var translator *i18n.Bundle

	data := template.StatsData{
		Common: commondata.PageCommonData{
			Lang:     language.English,
			Version:  config.BuildVersion,
			Revision: config.Global.Build.Revision(),
		},
	}

	namer := display.Tags(language.English)

	for _, c := range catalogs {
		tag := c.Language()

		name := namer.Name(tag)
		if name == "" {
			name = tag.String()
		}

		data.Rows = append(data.Rows, template.StatsRow{
			Lang:   tag.String(),
			Name:   name,
			Counts: c.Stats().Total,
		})
	}

	_, err := fmt.Fprint(e.stdout, template.RenderToString(i18n.WithTag(ctx, language.English), template.StatsPage(translator, data)))

	return err
}

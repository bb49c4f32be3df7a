// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"codeberg.org/pixivfe/tscat/core/missing"
)

const defaultMissingDB = "./data/missing.db"

func runMissing(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	db := fs.String("db", defaultMissingDB, "miss report database written by the server")
	locale := fs.String("locale", "", "only show misses of this locale")
	limit := fs.Int("limit", 50, "maximum number of rows")

	if err := parse(fs, args, 0, 0); err != nil {
		return err
	}

	if *limit <= 0 {
		return errUsage
	}

	store, err := missing.Open(*db)
	if err != nil {
		return err
	}
	defer store.Close()

	misses, err := store.List(ctx, *locale, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HITS\tLOCALE\tCONTEXT\tSOURCE\tLAST SEEN")

	for _, m := range misses {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%q\t%s\n", m.Hits, m.Locale, m.Context, m.Source, m.LastSeen.UTC().Format(time.DateTime))
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write misses: %w", err)
	}

	return nil
}

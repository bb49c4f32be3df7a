// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
)

func runLookup(_ context.Context, e *env, fs *flag.FlagSet, args []string) error {
	n := fs.Int("n", 0, "count for numerus messages; enables plural form selection when set")

	if err := parse(fs, args, 3, -1); err != nil {
		return err
	}

	numerus := false

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "n" {
			numerus = true
		}
	})

	c, err := loadCatalog(fs.Arg(0))
	if err != nil {
		return err
	}

	uiContext, source := fs.Arg(1), fs.Arg(2)

	lookupArgs := make([]any, 0, fs.NArg()-3)
	for _, a := range fs.Args()[3:] {
		lookupArgs = append(lookupArgs, a)
	}

	if numerus {
		fmt.Fprintln(e.stdout, c.LookupN(uiContext, source, *n, lookupArgs...))
	} else {
		fmt.Fprintln(e.stdout, c.Lookup(uiContext, source, lookupArgs...))
	}

	return nil
}

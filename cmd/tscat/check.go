// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"codeberg.org/pixivfe/tscat/check"
)

func runCheck(_ context.Context, e *env, fs *flag.FlagSet, args []string) error {
	only := fs.String("only", "", "comma-separated checks to run (placeholders, accelerators, punctuation, markup)")

	if err := parse(fs, args, 1, -1); err != nil {
		return err
	}

	var kinds []check.Kind

	if *only != "" {
		for name := range strings.SplitSeq(*only, ",") {
			k, err := check.ParseKind(name)
			if err != nil {
				return fmt.Errorf("%w: %w", errUsage, err)
			}

			kinds = append(kinds, k)
		}
	}

	total := 0
	perKind := make(map[check.Kind]int)

	for _, path := range fs.Args() {
		c, err := loadCatalog(path)
		if err != nil {
			return err
		}

		issues := check.Run(c, kinds...)
		for _, issue := range issues {
			fmt.Fprintf(e.stdout, "%s: %s\n", path, issue)
		}

		total += len(issues)

		for k, n := range check.Count(issues) {
			perKind[k] += n
		}
	}

	if total > 0 {
		fmt.Fprintf(e.stderr, "%d issue(s) found\n", total)

		for _, k := range check.All {
			if n := perKind[k]; n > 0 {
				fmt.Fprintf(e.stderr, "  %s: %d\n", k, n)
			}
		}

		return errIssues
	}

	return nil
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog reads and writes Qt Linguist translation catalogs (.ts files)
and resolves UI strings against them.

A [Catalog] maps a (context, source text) pair to an [Entry]. Lookups never
fail: when no usable translation exists the source text itself is returned,
so an incomplete catalog degrades to the untranslated UI rather than to
blank labels.

	c, err := catalog.LoadFile("cppcheck_sr.ts")
	if err != nil {
		return err
	}

	title := c.Lookup("About", "Version %1", version)

Placeholders follow Qt conventions: %1 to %99 are replaced by arguments in
order, %L1 formats a number for the catalog language, and %n carries the
count of a numerus lookup ([Catalog.LookupN]).
*/
package catalog

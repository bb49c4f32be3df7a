// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// numerusOrder is the order in which Qt lists numerus forms for languages
// following the CLDR rules.
var numerusOrder = []plural.Form{
	plural.Zero,
	plural.One,
	plural.Two,
	plural.Few,
	plural.Many,
	plural.Other,
}

// pluralProbeLimit is the largest integer sampled when collecting the forms a
// language distinguishes. CLDR integer rules repeat well below it.
const pluralProbeLimit = 1000

// numerusRule maps a count to the index of its numerus form.
type numerusRule struct {
	forms int
	index func(n int) int
}

// qtNumerusRules lists the languages for which Qt Linguist writes numerus
// forms in a different number or order than CLDR, keyed by base language.
// Catalogs produced by Linguist for these languages follow Qt's rules.
var qtNumerusRules = map[string]numerusRule{
	// Singular, plural, nullar. Only 0 itself takes the last form.
	"lv": {forms: 3, index: func(n int) int {
		switch {
		case n%10 == 1 && n%100 != 11:
			return 0
		case n != 0:
			return 1
		default:
			return 2
		}
	}},
	// Singular, dual, plural.
	"ga": {forms: 3, index: func(n int) int {
		switch n {
		case 1:
			return 0
		case 2:
			return 1
		default:
			return 2
		}
	}},
	// Singular, dual, plural by the last digit.
	"mk": {forms: 3, index: func(n int) int {
		switch n % 10 {
		case 1:
			return 0
		case 2:
			return 1
		default:
			return 2
		}
	}},
}

// pluralForms returns the cardinal plural forms that tag uses for integers,
// in numerus order. Undetermined languages use the English rules.
func pluralForms(tag language.Tag) []plural.Form {
	tag = pluralTag(tag)

	seen := make(map[plural.Form]bool, len(numerusOrder))
	for n := 0; n <= pluralProbeLimit; n++ {
		seen[plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)] = true
	}

	out := make([]plural.Form, 0, len(seen))

	for _, f := range numerusOrder {
		if seen[f] {
			out = append(out, f)
		}
	}

	return out
}

// numerusRuleFor returns the rule for tag: Qt's own where it departs from
// CLDR, the CLDR cardinal rules otherwise.
func numerusRuleFor(tag language.Tag) numerusRule {
	tag = pluralTag(tag)

	base, _ := tag.Base()
	if r, ok := qtNumerusRules[base.String()]; ok {
		return r
	}

	forms := pluralForms(tag)

	return numerusRule{
		forms: len(forms),
		index: func(n int) int {
			f := plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0)
			for i, form := range forms {
				if form == f {
					return i
				}
			}

			return len(forms) - 1
		},
	}
}

// NumerusForms returns how many numerus forms a translation into c's language carries.
func (c *Catalog) NumerusForms() int {
	return c.numerusRule().forms
}

// numerusIndex returns the index of the numerus form to use for n.
func (c *Catalog) numerusIndex(n int) int {
	if n < 0 {
		n = -n
	}

	return c.numerusRule().index(n)
}

func (c *Catalog) numerusRule() numerusRule {
	if c == nil || c.numerus.index == nil {
		return numerusRuleFor(language.Und)
	}

	return c.numerus
}

// pluralTag reduces tag to its base language, which is what the integer rules
// are keyed on.
func pluralTag(tag language.Tag) language.Tag {
	base, conf := tag.Base()
	if tag == language.Und || conf == language.No {
		return language.English
	}

	return language.Make(base.String())
}

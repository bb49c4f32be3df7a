// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package check

import (
	"fmt"
	"slices"
	"strings"

	"codeberg.org/pixivfe/tscat/catalog"
)

// Kind identifies a validator.
type Kind uint8

const (
	Placeholders Kind = iota
	Accelerators
	Punctuation
	Markup
)

// All lists every validator in the order Run applies them.
var All = []Kind{Placeholders, Accelerators, Punctuation, Markup}

var kindNames = map[Kind]string{
	Placeholders: "placeholders",
	Accelerators: "accelerators",
	Punctuation:  "punctuation",
	Markup:       "markup",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown check %q", s)
}

// Issue is a failed validation of one translation form.
type Issue struct {
	Kind    Kind
	Context string
	Source  string
	// Form is the numerus form index, or -1 for a plain translation.
	Form    int
	Message string
}

func (i Issue) String() string {
	where := i.Context
	if i.Form >= 0 {
		where += fmt.Sprintf("[%d]", i.Form)
	}

	return fmt.Sprintf("%s: %s: %q: %s", i.Kind, where, i.Source, i.Message)
}

type validator func(source, translation string, numerus bool) (string, bool)

var validators = map[Kind]validator{
	Placeholders: checkPlaceholders,
	Accelerators: checkAccelerators,
	Punctuation:  checkPunctuation,
	Markup:       checkMarkup,
}

// Run applies kinds, or all validators if none are given, to c.
// Issues are reported in catalog order.
func Run(c *catalog.Catalog, kinds ...Kind) []Issue {
	if len(kinds) == 0 {
		kinds = All
	}

	var issues []Issue

	for _, e := range c.Entries() {
		if e.Status == catalog.Obsolete {
			continue
		}

		forms := []string{e.Translation}
		if e.Numerus {
			forms = e.Forms
		}

		for i, form := range forms {
			if form == "" {
				continue
			}

			index := -1
			if e.Numerus {
				index = i
			}

			for _, k := range kinds {
				v, ok := validators[k]
				if !ok {
					continue
				}

				if msg, failed := v(e.Source, form, e.Numerus); failed {
					issues = append(issues, Issue{
						Kind:    k,
						Context: e.Context,
						Source:  e.Source,
						Form:    index,
						Message: msg,
					})
				}
			}
		}
	}

	return issues
}

// Count returns the number of issues per kind.
func Count(issues []Issue) map[Kind]int {
	counts := make(map[Kind]int)
	for _, i := range issues {
		counts[i.Kind]++
	}

	return counts
}

func checkPlaceholders(source, translation string, numerus bool) (string, bool) {
	want := placeholderSet(source, numerus)
	got := placeholderSet(translation, numerus)

	if slices.Equal(want, got) {
		return "", false
	}

	return fmt.Sprintf("placeholders %s do not match %s", formatPlaceholders(got), formatPlaceholders(want)), true
}

func placeholderSet(s string, numerus bool) []int {
	var out []int

	for _, p := range catalog.Placeholders(s) {
		if p == 0 && !numerus {
			continue
		}

		out = append(out, p)
	}

	slices.Sort(out)

	return out
}

func formatPlaceholders(ps []int) string {
	if len(ps) == 0 {
		return "(none)"
	}

	parts := make([]string, len(ps))
	for i, p := range ps {
		if p == 0 {
			parts[i] = "%n"
		} else {
			parts[i] = fmt.Sprintf("%%%d", p)
		}
	}

	return strings.Join(parts, " ")
}

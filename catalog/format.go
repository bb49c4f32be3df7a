// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// maxPlaceholderDigits bounds placeholder numbers to %1 … %99.
const maxPlaceholderDigits = 2

// Substitute replaces %1, %2, … in s with args in order, without consulting a
// catalog. Localized placeholders (%L1) are formatted without grouping.
func Substitute(s string, args ...any) string {
	var c *Catalog

	return c.substitute(s, args)
}

// substitute performs a single left-to-right pass over s. Text inserted from
// args is never scanned again, so an argument containing "%2" stays literal.
func (c *Catalog) substitute(s string, args []any) string {
	if len(args) == 0 || !strings.Contains(s, "%") {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		if s[i] != '%' {
			b.WriteByte(s[i])
			i++

			continue
		}

		j := i + 1

		localized := false
		if j < len(s) && s[j] == 'L' {
			localized = true
			j++
		}

		start := j
		for j < len(s) && j-start < maxPlaceholderDigits && isDigit(s[j]) {
			j++
		}

		if j == start {
			b.WriteByte('%')
			i++

			continue
		}

		idx, _ := strconv.Atoi(s[start:j])
		if idx < 1 || idx > len(args) {
			b.WriteString(s[i:j])
		} else {
			b.WriteString(c.formatArg(args[idx-1], localized))
		}

		i = j
	}

	return b.String()
}

// formatArg renders one argument. Localized numbers use the digit grouping of
// the catalog language.
func (c *Catalog) formatArg(v any, localized bool) string {
	if localized && c != nil && isNumber(v) {
		return c.printer.Sprintf("%v", v)
	}

	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// replaceCount replaces %n and %Ln with n.
func (c *Catalog) replaceCount(s string, n int) string {
	if !strings.Contains(s, "%") {
		return s
	}

	plain := strconv.Itoa(n)

	localized := plain
	if c != nil {
		localized = c.printer.Sprintf("%d", n)
	}

	return strings.NewReplacer("%Ln", localized, "%n", plain).Replace(s)
}

// Placeholders returns the positional placeholder numbers found in s, in order
// of appearance. %n is reported as 0.
func Placeholders(s string) []int {
	var out []int

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}

		j := i + 1
		if j < len(s) && s[j] == 'L' {
			j++
		}

		if j < len(s) && s[j] == 'n' {
			out = append(out, 0)
			i = j

			continue
		}

		start := j
		for j < len(s) && j-start < maxPlaceholderDigits && isDigit(s[j]) {
			j++
		}

		if j == start {
			continue
		}

		if idx, _ := strconv.Atoi(s[start:j]); idx >= 1 {
			out = append(out, idx)
		}

		i = j - 1
	}

	return out
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

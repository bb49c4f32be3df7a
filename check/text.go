// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package check

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// hasAccelerator reports whether s marks a keyboard shortcut with a single
// ampersand. "&&" is a literal ampersand.
func hasAccelerator(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}

		if i+1 >= len(s) {
			return false
		}

		if s[i+1] == '&' {
			i++

			continue
		}

		r, _ := utf8.DecodeRuneInString(s[i+1:])
		if !unicode.IsSpace(r) {
			return true
		}
	}

	return false
}

func checkAccelerators(source, translation string, _ bool) (string, bool) {
	if isRichText(source) || isRichText(translation) {
		return "", false
	}

	src, tr := hasAccelerator(source), hasAccelerator(translation)

	switch {
	case src && !tr:
		return "accelerator missing in translation", true
	case !src && tr:
		return "translation has an accelerator the source lacks", true
	}

	return "", false
}

var punctuationMarks = map[rune]rune{
	'.': '.',
	'?': '?',
	'!': '!',
	':': ':',
	'…': '…',
	'。': '.',
	'？': '?',
	'！': '!',
	'：': ':',
	'؟': '?',
}

// endingPunctuation returns the normalized punctuation mark s ends with, or 0.
func endingPunctuation(s string) rune {
	s = strings.TrimRightFunc(s, unicode.IsSpace)

	r, _ := utf8.DecodeLastRuneInString(s)
	if mark, ok := punctuationMarks[r]; ok {
		return mark
	}

	return 0
}

func checkPunctuation(source, translation string, _ bool) (string, bool) {
	if isRichText(source) {
		return "", false
	}

	want := endingPunctuation(source)
	if want == 0 {
		return "", false
	}

	if got := endingPunctuation(translation); got != want {
		return fmt.Sprintf("translation does not end with %q", want), true
	}

	return "", false
}

// isRichText is a cheap version of Qt's mightBeRichText: the text starts
// with a tag.
func isRichText(s string) bool {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if !strings.HasPrefix(s, "<") {
		return false
	}

	end := strings.IndexByte(s, '>')
	if end < 2 {
		return false
	}

	name := strings.TrimPrefix(s[1:end], "!")
	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsLetter(r) || strings.HasPrefix(strings.ToLower(name), "doctype")
}

func checkMarkup(source, translation string, _ bool) (string, bool) {
	if !isRichText(source) {
		return "", false
	}

	want, err := elementNames(source)
	if err != nil {
		return "", false
	}

	got, err := elementNames(translation)
	if err != nil {
		return fmt.Sprintf("translation markup does not parse: %v", err), true
	}

	if slices.Equal(want, got) {
		return "", false
	}

	return fmt.Sprintf("markup <%s> does not match <%s>", strings.Join(got, "><"), strings.Join(want, "><")), true
}

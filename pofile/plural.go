// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pofile

import "golang.org/x/text/language"

// pluralRule is a gettext Plural-Forms expression together with one sample
// count per form, so that forms can be stored by index.
type pluralRule struct {
	expr    string
	samples []int
}

var germanic = pluralRule{"nplurals=2; plural=(n != 1);", []int{1, 2}}

var (
	single = pluralRule{"nplurals=1; plural=0;", []int{1}}
	french = pluralRule{"nplurals=2; plural=(n > 1);", []int{1, 2}}
	slavic = pluralRule{
		"nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
		[]int{1, 2, 5},
	}
	polish = pluralRule{
		"nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);",
		[]int{1, 2, 5},
	}
	czech      = pluralRule{"nplurals=3; plural=(n==1 ? 0 : (n>=2 && n<=4) ? 1 : 2);", []int{1, 2, 5}}
	latvian    = pluralRule{"nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);", []int{1, 2, 0}}
	irish      = pluralRule{"nplurals=3; plural=(n==1 ? 0 : n==2 ? 1 : 2);", []int{1, 2, 5}}
	macedonian = pluralRule{"nplurals=3; plural=(n%10==1 ? 0 : n%10==2 ? 1 : 2);", []int{1, 2, 5}}
)

// pluralRules is keyed by base language. Languages not listed use the
// Germanic rule.
var pluralRules = map[string]pluralRule{
	"ja": single, "zh": single, "ko": single, "vi": single, "th": single, "id": single,
	"fr": french, "pt": french,
	"ru": slavic, "uk": slavic, "be": slavic, "sr": slavic, "hr": slavic, "bs": slavic,
	"pl": polish,
	"cs": czech, "sk": czech,
	"lv": latvian, "ga": irish, "mk": macedonian,
}

func ruleFor(tag language.Tag) pluralRule {
	base, _ := tag.Base()
	if r, ok := pluralRules[base.String()]; ok {
		return r
	}

	return germanic
}

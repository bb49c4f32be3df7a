// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package check

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// elementNames returns the names of the elements inside the body of the
// HTML fragment s, in document order.
func elementNames(s string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse rich text: %w", err)
	}

	var names []string

	goquery.NewDocumentFromNode(doc).Find("body *").Each(func(_ int, sel *goquery.Selection) {
		names = append(names, goquery.NodeName(sel))
	})

	return names, nil
}

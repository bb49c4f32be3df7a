// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// WriteVersion is the TS format version produced by Write.
const WriteVersion = "2.1"

const indent = "    "

// Write serializes c as a Qt Linguist TS document. Entries are grouped by
// context and keep their load order.
func Write(w io.Writer, c *Catalog) error {
	tw := &tsWriter{w: bufio.NewWriter(w)}

	tw.str(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	tw.str("<!DOCTYPE TS>\n")
	tw.str(`<TS version="` + WriteVersion + `"`)

	if lang := qtLanguage(c.Language()); lang != "" {
		tw.str(` language="` + lang + `"`)
	}

	if lang := qtLanguage(c.SourceLanguage()); lang != "" {
		tw.str(` sourcelanguage="` + lang + `"`)
	}

	tw.str(">\n")

	byContext := make(map[string][]*Entry)

	if c != nil {
		for _, k := range c.order {
			byContext[k.context] = append(byContext[k.context], c.entries[k])
		}
	}

	for _, name := range c.Contexts() {
		tw.str("<context>\n")
		tw.element(1, "name", name)

		for _, e := range byContext[name] {
			tw.message(e)
		}

		tw.str("</context>\n")
	}

	tw.str("</TS>\n")

	if tw.err != nil {
		return fmt.Errorf("write catalog: %w", tw.err)
	}

	if err := tw.w.Flush(); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}

	return nil
}

// qtLanguage spells tag the way Qt does ("sr_RS").
func qtLanguage(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}

	return strings.ReplaceAll(tag.String(), "-", "_")
}

type tsWriter struct {
	w   *bufio.Writer
	err error
}

func (tw *tsWriter) str(s string) {
	if tw.err != nil {
		return
	}

	_, tw.err = tw.w.WriteString(s)
}

func (tw *tsWriter) indent(depth int) {
	tw.str(strings.Repeat(indent, depth))
}

// element writes <name>text</name> on its own line.
func (tw *tsWriter) element(depth int, name, text string) {
	tw.indent(depth)
	tw.str("<" + name + ">" + escape(text) + "</" + name + ">\n")
}

func (tw *tsWriter) message(e *Entry) {
	tw.indent(1)

	if e.Numerus {
		tw.str(`<message numerus="yes">` + "\n")
	} else {
		tw.str("<message>\n")
	}

	for _, l := range e.Locations {
		tw.indent(2)
		tw.str(`<location filename="` + escapeAttr(l.Filename) + `" line="` + strconv.Itoa(l.Line) + `"/>` + "\n")
	}

	tw.element(2, "source", e.Source)

	if e.OldSource != "" {
		tw.element(2, "oldsource", e.OldSource)
	}

	if e.Comment != "" {
		tw.element(2, "comment", e.Comment)
	}

	if e.ExtraComment != "" {
		tw.element(2, "extracomment", e.ExtraComment)
	}

	if e.TranslatorComment != "" {
		tw.element(2, "translatorcomment", e.TranslatorComment)
	}

	tw.indent(2)
	tw.str("<translation")

	if typ := e.Status.String(); typ != "" {
		tw.str(` type="` + typ + `"`)
	}

	tw.str(">")

	if e.Numerus {
		for _, f := range e.Forms {
			tw.str("\n")
			tw.indent(3)
			tw.str("<numerusform>" + escape(f) + "</numerusform>")
		}

		tw.str("\n")
		tw.indent(2)
	} else {
		tw.str(escape(e.Translation))
	}

	tw.str("</translation>\n")
	tw.indent(1)
	tw.str("</message>\n")
}

// escapeAttr quotes s for use inside a double-quoted attribute.
// Control characters become character references.
func escapeAttr(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, "&#x%X;", r)

				continue
			}

			b.WriteRune(r)
		}
	}

	return b.String()
}

// escape quotes XML special characters. Control characters that XML 1.0
// cannot carry are written as <byte> elements.
func escape(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		case '\n', '\t':
			b.WriteRune(r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `<byte value="x%x"/>`, r)

				continue
			}

			b.WriteRune(r)
		}
	}

	return b.String()
}

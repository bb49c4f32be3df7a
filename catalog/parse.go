// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

var (
	ErrNotTS         = errors.New("root element is not <TS>")
	ErrMissingName   = errors.New("context without <name>")
	ErrMissingSource = errors.New("message without <source>")
	ErrNoRoot        = errors.New("document has no root element")
	ErrTrailing      = errors.New("content after the root element")
)

// ParseError describes why a TS document could not be loaded and where.
type ParseError struct {
	// Name is the file name, when known.
	Name   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder

	b.WriteString("catalog: ")

	if e.Name != "" {
		b.WriteString(e.Name)
		b.WriteByte(':')
	}

	fmt.Fprintf(&b, "%d:%d: %v", e.Line, e.Column, e.Err)

	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

type tsLocation struct {
	Filename string `xml:"filename,attr"`
	Line     string `xml:"line,attr"`
}

type tsMessage struct {
	Numerus           string        `xml:"numerus,attr"`
	Locations         []tsLocation  `xml:"location"`
	Source            *tsText       `xml:"source"`
	OldSource         tsText        `xml:"oldsource"`
	Comment           tsText        `xml:"comment"`
	ExtraComment      tsText        `xml:"extracomment"`
	TranslatorComment tsText        `xml:"translatorcomment"`
	Translation       tsTranslation `xml:"translation"`
}

// tsText is the character content of an element with <byte> escapes decoded.
type tsText struct {
	s string
}

func (t *tsText) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	s, err := readText(d, nil)
	if err != nil {
		return err
	}

	t.s = s

	return nil
}

type tsTranslation struct {
	typ   string
	text  string
	forms []string
}

func (t *tsTranslation) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		if a.Name.Local == "type" {
			t.typ = a.Value
		}
	}

	s, err := readText(d, &t.forms)
	if err != nil {
		return err
	}

	t.text = s

	return nil
}

// readText consumes tokens up to the end of the current element and returns
// its text. Numerus forms are appended to forms when it is not nil. Only the
// first of several length variants is kept.
func readText(d *xml.Decoder, forms *[]string) (string, error) {
	var (
		b          strings.Builder
		variant    string
		hasVariant bool
	)

	for {
		tok, err := d.Token()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if hasVariant {
				return variant, nil
			}

			return b.String(), nil
		case xml.StartElement:
			switch t.Name.Local {
			case "byte":
				r, err := byteValue(t)
				if err != nil {
					return "", err
				}

				b.WriteRune(r)

				if err := d.Skip(); err != nil {
					return "", err
				}
			case "lengthvariant":
				s, err := readText(d, nil)
				if err != nil {
					return "", err
				}

				if !hasVariant {
					variant, hasVariant = s, true
				}
			case "numerusform":
				s, err := readText(d, nil)
				if err != nil {
					return "", err
				}

				if forms != nil {
					*forms = append(*forms, s)
				}
			default:
				if err := d.Skip(); err != nil {
					return "", err
				}
			}
		}
	}
}

// byteValue decodes <byte value="x1b"/> (hexadecimal) or <byte value="27"/>.
func byteValue(start xml.StartElement) (rune, error) {
	for _, a := range start.Attr {
		if a.Name.Local != "value" {
			continue
		}

		v, base := a.Value, 10
		if rest, ok := strings.CutPrefix(v, "x"); ok {
			v, base = rest, 16
		}

		n, err := strconv.ParseUint(v, base, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid <byte> value %q: %w", a.Value, err)
		}

		return rune(n), nil
	}

	return 0, errors.New("<byte> without value")
}

// parser holds the state of a single Parse call.
type parser struct {
	d   *xml.Decoder
	cat *Catalog

	// lastFile and lastLine resolve Qt's relative locations
	// (omitted filename, line="+3").
	lastFile string
	lastLine map[string]int
}

// Parse reads a Qt Linguist TS document.
func Parse(r io.Reader) (*Catalog, error) {
	d := xml.NewDecoder(r)
	d.CharsetReader = charset.NewReaderLabel

	p := &parser{d: d, lastLine: make(map[string]int)}

	if err := p.document(); err != nil {
		return nil, err
	}

	return p.cat, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Catalog, error) {
	return Parse(bytes.NewReader(data))
}

// LoadFile parses the TS file at path.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return load(path, f)
}

// LoadFS parses the TS file name from fsys.
func LoadFS(fsys fs.FS, name string) (*Catalog, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return load(name, f)
}

func load(name string, r io.Reader) (*Catalog, error) {
	c, err := Parse(r)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Name = name
		}

		return nil, err
	}

	if n := c.Duplicates(); n > 0 {
		log.Warn().
			Str("sys", "catalog").
			Str("file", name).
			Int("duplicates", n).
			Msg("Catalog has duplicate entries, later entries win")
	}

	return c, nil
}

func (p *parser) errorf(err error) *ParseError {
	line, col := p.d.InputPos()

	return &ParseError{Line: line, Column: col, Err: err}
}

func (p *parser) errorAt(line, col int, err error) *ParseError {
	return &ParseError{Line: line, Column: col, Err: err}
}

func (p *parser) token() (xml.Token, error) {
	tok, err := p.d.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, p.errorf(ErrNoRoot)
		}

		return nil, p.errorf(err)
	}

	return tok, nil
}

func (p *parser) document() error {
	for {
		tok, err := p.token()
		if err != nil {
			return err
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		if start.Name.Local != "TS" {
			return p.errorf(fmt.Errorf("%w: found <%s>", ErrNotTS, start.Name.Local))
		}

		var version, lang, sourceLang string

		for _, a := range start.Attr {
			switch a.Name.Local {
			case "version":
				version = a.Value
			case "language":
				lang = a.Value
			case "sourcelanguage":
				sourceLang = a.Value
			}
		}

		p.cat = newCatalog(version, lang, sourceLang)

		if err := p.root(); err != nil {
			return err
		}

		return p.trailer()
	}
}

// trailer reads the input past </TS>. Only comments, processing
// instructions and whitespace may follow the root element.
func (p *parser) trailer() error {
	for {
		tok, err := p.d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return p.errorf(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			return p.errorf(fmt.Errorf("%w: found <%s>", ErrTrailing, t.Name.Local))
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return p.errorf(ErrTrailing)
			}
		}
	}
}

func (p *parser) root() error {
	for {
		tok, err := p.token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			if t.Name.Local == "context" {
				if err := p.context(); err != nil {
					return err
				}

				continue
			}

			// <dependencies> and stray elements carry nothing we use.
			if err := p.d.Skip(); err != nil {
				return p.errorf(err)
			}
		}
	}
}

func (p *parser) context() error {
	line, col := p.d.InputPos()

	var (
		name     string
		hasName  bool
		messages []Entry
	)

	for {
		tok, err := p.token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.EndElement:
			if !hasName {
				return p.errorAt(line, col, ErrMissingName)
			}

			for _, e := range messages {
				e.Context = name
				p.cat.add(e)
			}

			return nil
		case xml.StartElement:
			switch t.Name.Local {
			case "name":
				var n tsText
				if err := p.d.DecodeElement(&n, &t); err != nil {
					return p.errorf(err)
				}

				name, hasName = n.s, true
			case "message":
				e, err := p.message(t)
				if err != nil {
					return err
				}

				messages = append(messages, e)
			default:
				if err := p.d.Skip(); err != nil {
					return p.errorf(err)
				}
			}
		}
	}
}

func (p *parser) message(start xml.StartElement) (Entry, error) {
	line, col := p.d.InputPos()

	var m tsMessage
	if err := p.d.DecodeElement(&m, &start); err != nil {
		return Entry{}, p.errorf(err)
	}

	if m.Source == nil {
		return Entry{}, p.errorAt(line, col, ErrMissingSource)
	}

	e := Entry{
		Source:            m.Source.s,
		OldSource:         m.OldSource.s,
		Comment:           m.Comment.s,
		ExtraComment:      m.ExtraComment.s,
		TranslatorComment: m.TranslatorComment.s,
		Numerus:           m.Numerus == "yes",
		Status:            ParseStatus(m.Translation.typ),
		Translation:       m.Translation.text,
		Locations:         p.locations(m.Locations),
	}

	if e.Numerus {
		e.Forms = m.Translation.forms
		e.Translation = ""

		if len(e.Forms) > 0 {
			e.Translation = e.Forms[0]
		}
	}

	return e, nil
}

func (p *parser) locations(locs []tsLocation) []Location {
	if len(locs) == 0 {
		return nil
	}

	out := make([]Location, 0, len(locs))

	for _, l := range locs {
		file := l.Filename
		if file == "" {
			file = p.lastFile
		}

		n, err := strconv.Atoi(l.Line)
		if err != nil {
			n = 0
		} else if strings.HasPrefix(l.Line, "+") || strings.HasPrefix(l.Line, "-") {
			n += p.lastLine[file]
		}

		p.lastFile = file
		p.lastLine[file] = n

		out = append(out, Location{Filename: file, Line: n})
	}

	return out
}

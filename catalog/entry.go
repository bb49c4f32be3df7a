// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"slices"
	"strings"
)

// Status is the translation completeness marker of an entry.
type Status uint8

const (
	Finished Status = iota
	Unfinished
	Obsolete
)

// ParseStatus maps the type attribute of a <translation> element to a Status.
//
// Qt 5 writes "vanished" where older files say "obsolete"; both mean the
// message is gone from the sources. Unknown values are treated as Finished.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unfinished":
		return Unfinished
	case "obsolete", "vanished":
		return Obsolete
	default:
		return Finished
	}
}

// String returns the attribute value used for s in a TS file.
// Finished has no attribute and returns the empty string.
func (s Status) String() string {
	switch s {
	case Unfinished:
		return "unfinished"
	case Obsolete:
		return "obsolete"
	default:
		return ""
	}
}

// Name is like String but never empty; used for display and JSON.
func (s Status) Name() string {
	if s == Finished {
		return "finished"
	}

	return s.String()
}

// Location is a source reference recorded by the extractor.
type Location struct {
	Filename string
	Line     int
}

// Entry is a single message of a catalog.
type Entry struct {
	Context   string
	Source    string
	OldSource string

	// Translation is the translated text. For numerus entries it holds the
	// first form; Forms holds all of them.
	Translation string
	Forms       []string
	Numerus     bool
	Status      Status

	Comment           string
	ExtraComment      string
	TranslatorComment string

	Locations []Location
}

// clone returns a copy of e that shares no slices with it.
func (e Entry) clone() Entry {
	e.Forms = slices.Clone(e.Forms)
	e.Locations = slices.Clone(e.Locations)

	return e
}

// translated reports whether e may stand in for its source text.
func (e *Entry) translated() bool {
	if e.Status == Obsolete {
		return false
	}

	if e.Numerus {
		return len(e.Forms) > 0 && e.Forms[0] != ""
	}

	return e.Translation != ""
}

// form returns the numerus form at index i, using the last form if i is out of range.
func (e *Entry) form(i int) string {
	if !e.Numerus || len(e.Forms) == 0 {
		return e.Translation
	}

	if i < 0 || i >= len(e.Forms) {
		i = len(e.Forms) - 1
	}

	return e.Forms[i]
}

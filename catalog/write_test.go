// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	for name, load := range map[string]func(t *testing.T) *Catalog{
		"fixture": loadFixture,
		"numerus": func(t *testing.T) *Catalog {
			t.Helper()

			c, err := ParseBytes([]byte(numerusDoc))
			require.NoError(t, err)

			return c
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := load(t)

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, c))

			again, err := Parse(&buf)
			require.NoError(t, err)

			assert.Equal(t, WriteVersion, again.Version())
			assert.Equal(t, c.Language(), again.Language())
			assert.Equal(t, c.SourceLanguage(), again.SourceLanguage())
			assert.Equal(t, c.Contexts(), again.Contexts())
			assert.Equal(t, c.Entries(), again.Entries())
		})
	}
}

func TestWriteFormat(t *testing.T) {
	t.Parallel()

	c := Empty()
	c.language = parseLanguage("sr_RS")
	c.add(Entry{
		Context:     "About",
		Source:      "Version %1",
		Translation: "Verzija %1",
		Locations:   []Location{{Filename: "about.ui", Line: 64}},
	})
	c.add(Entry{
		Context:     "About",
		Source:      "A & B <c>\x01",
		Translation: "",
		Status:      Unfinished,
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, c))

	want := `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.1" language="sr_RS">
<context>
    <name>About</name>
    <message>
        <location filename="about.ui" line="64"/>
        <source>Version %1</source>
        <translation>Verzija %1</translation>
    </message>
    <message>
        <source>A &amp; B &lt;c&gt;<byte value="x1"/></source>
        <translation type="unfinished"></translation>
    </message>
</context>
</TS>
`
	assert.Equal(t, want, buf.String())

	again, err := ParseBytes(buf.Bytes())
	require.NoError(t, err)

	_, ok := again.Entry("About", "A & B <c>\x01")
	assert.True(t, ok)
}

func TestWriteLocationAttribute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
		reads    bool
	}{
		{filename: `dir/"quoted" & <more>.cpp`, want: `filename="dir/&quot;quoted&quot; &amp; &lt;more&gt;.cpp"`, reads: true},
		{filename: "tab\tname.cpp", want: `filename="tab&#x9;name.cpp"`, reads: true},
		{filename: "line\nbreak.cpp", want: `filename="line&#xA;break.cpp"`, reads: true},
		{filename: "bell\x07.cpp", want: `filename="bell&#x7;.cpp"`},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()

			c := Empty()
			c.add(Entry{
				Context:     "Main",
				Source:      "Open",
				Translation: "Öffnen",
				Locations:   []Location{{Filename: tt.filename, Line: 3}},
			})

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, c))

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.NotContains(t, out, "<byte")

			if !tt.reads {
				return
			}

			again, err := Parse(&buf)
			require.NoError(t, err)

			e, ok := again.Entry("Main", "Open")
			require.True(t, ok)
			assert.Equal(t, []Location{{Filename: tt.filename, Line: 3}}, e.Locations)
		})
	}
}

func TestCompiledRoundTrip(t *testing.T) {
	t.Parallel()

	c := loadFixture(t)

	var buf bytes.Buffer
	require.NoError(t, Compile(&buf, c))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), compiledMagic))

	loaded, err := LoadCompiled(&buf)
	require.NoError(t, err)

	assert.Equal(t, c.Version(), loaded.Version())
	assert.Equal(t, c.Language(), loaded.Language())
	assert.Equal(t, c.Entries(), loaded.Entries())
	assert.Equal(t, c.Stats(), loaded.Stats())
	assert.Equal(t, "Version 1.48", loaded.Lookup("About", "Version %1", "1.48"))
}

func TestLoadCompiledRejectsText(t *testing.T) {
	t.Parallel()

	_, err := LoadCompiled(strings.NewReader(`<?xml version="1.0"?><TS/>`))
	assert.ErrorIs(t, err, ErrNotCompiled)

	_, err = LoadCompiled(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotCompiled)
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := loadFixture(t).Stats()

	assert.Equal(t, "sr-RS", s.Language)
	assert.Equal(t, Counts{Finished: 88, Unfinished: 147, Obsolete: 6, Empty: 139}, s.Total)
	assert.Equal(t, 235, s.Total.Active())
	assert.InDelta(t, 37.45, s.Total.Completion(), 0.01)

	require.Len(t, s.Contexts, 15)
	assert.Equal(t, "About", s.Contexts[0].Name)
	assert.Equal(t, 5, s.Contexts[0].Finished)
	assert.Equal(t, 1, s.Contexts[0].Unfinished)
	assert.Equal(t, "StatsDialog", s.Contexts[14].Name)
	assert.Equal(t, 30, s.Contexts[14].Unfinished)
	assert.InDelta(t, 0, s.Contexts[14].Completion(), 0.001)

	assert.InDelta(t, 100, Counts{}.Completion(), 0.001)
	assert.Equal(t, Stats{Language: "und"}, (*Catalog)(nil).Stats())
}

func TestPlaceholdersAndSubstitute(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{1, 2, 10, 0}, Placeholders("%1 %2 %10 %n"))
	assert.Equal(t, []int{1, 0}, Placeholders("%L1 %Ln 100%"))
	assert.Empty(t, Placeholders("no placeholders"))

	tests := []struct {
		in   string
		args []any
		want string
	}{
		{in: "%1 and %2", args: []any{"a", "b"}, want: "a and b"},
		{in: "%2 before %1", args: []any{"a", "b"}, want: "b before a"},
		{in: "%1 %3", args: []any{"a"}, want: "a %3"},
		{in: "%1%2", args: []any{"%2", "x"}, want: "%2x"},
		{in: "100% done %1", args: []any{"!"}, want: "100% done !"},
		{in: "%0 %1", args: []any{"a"}, want: "%0 a"},
		{in: "%123", args: []any{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}, want: "l3"},
		{in: "%1", args: []any{42}, want: "42"},
		{in: "%L1", args: []any{1234567}, want: "1234567"},
		{in: "end %", args: []any{"a"}, want: "end %"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Substitute(tt.in, tt.args...), "Substitute(%q)", tt.in)
	}
}

func TestLocalizedPlaceholder(t *testing.T) {
	t.Parallel()

	c := newCatalog("2.1", "en_US", "")
	assert.Equal(t, "1,234,567 bytes", c.Lookup("Any", "%L1 bytes", 1234567))
	assert.Equal(t, "1,234 files and 1234 dirs", c.LookupN("Any", "%Ln files and %n dirs", 1234))
}

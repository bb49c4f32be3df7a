// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tscat/catalog"
)

const existingDoc = `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="de_DE" sourcelanguage="en">
<context>
    <name>Api</name>
    <message>
        <location filename="old.go" line="3"/>
        <source>Missing parameter %1</source>
        <translation>Parameter %1 fehlt</translation>
    </message>
    <message>
        <source>Removed</source>
        <translation>Entfernt</translation>
    </message>
    <message>
        <source>Back again</source>
        <translation type="obsolete">Wieder da</translation>
    </message>
</context>
</TS>`

func TestMerge(t *testing.T) {
	t.Parallel()

	existing, err := catalog.ParseBytes([]byte(existingDoc))
	require.NoError(t, err)

	messages := map[key]*found{
		{ctx: "Api", source: "Missing parameter %1"}: {refs: []ref{
			{"server/routes/translate.go", 40},
			{"server/routes/catalogs.go", 12},
			{"server/routes/translate.go", 40},
		}},
		{ctx: "Api", source: "Back again"}:    {refs: []ref{{"main.go", 1}}},
		{ctx: "Stats", source: "Language"}:    {refs: []ref{{"server/template/stats.go", 20}}},
		{ctx: "Duration", source: "%n day(s)"}: {numerus: true, refs: []ref{{"server/template/template_functions.go", 30}}},
	}

	merged, res := merge(existing, messages, "fr", "en")

	assert.Equal(t, mergeResult{Added: 2, Kept: 1, Obsolete: 1, Revived: 1}, res)
	assert.Equal(t, "de-DE", merged.Language().String(), "the existing language wins")

	kept, ok := merged.Entry("Api", "Missing parameter %1")
	require.True(t, ok)
	assert.Equal(t, catalog.Finished, kept.Status)
	assert.Equal(t, "Parameter %1 fehlt", kept.Translation)
	assert.Equal(t, []catalog.Location{
		{Filename: "server/routes/catalogs.go", Line: 12},
		{Filename: "server/routes/translate.go", Line: 40},
	}, kept.Locations)

	removed, _ := merged.Entry("Api", "Removed")
	assert.Equal(t, catalog.Obsolete, removed.Status)
	assert.Equal(t, "Entfernt", removed.Translation)

	revived, _ := merged.Entry("Api", "Back again")
	assert.Equal(t, catalog.Unfinished, revived.Status)
	assert.Equal(t, "Wieder da", revived.Translation)

	days, ok := merged.Entry("Duration", "%n day(s)")
	require.True(t, ok)
	assert.True(t, days.Numerus)
	assert.Equal(t, catalog.Unfinished, days.Status)
	assert.Len(t, days.Forms, 2)

	entries := merged.Entries()
	require.Len(t, entries, 5)
	assert.Equal(t, "Duration", entries[3].Context, "new messages are sorted")
	assert.Equal(t, "Stats", entries[4].Context)

	var buf bytes.Buffer
	require.NoError(t, catalog.Write(&buf, merged))

	reparsed, err := catalog.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, 5, reparsed.Len())
}

func TestMergeNewFile(t *testing.T) {
	t.Parallel()

	messages := map[key]*found{
		{ctx: "Duration", source: "%n hour(s)"}: {numerus: true, refs: []ref{{"a.go", 1}}},
	}

	merged, res := merge(nil, messages, "sr_RS", "en")

	assert.Equal(t, mergeResult{Added: 1}, res)
	assert.Equal(t, "sr-RS", merged.Language().String())

	e, ok := merged.Entry("Duration", "%n hour(s)")
	require.True(t, ok)
	assert.Len(t, e.Forms, 3)
	assert.Equal(t, "2 hour(s)", merged.LookupN("Duration", "%n hour(s)", 2), "untranslated entries fall back")
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/pixivfe/tscat/core/missing"
)

const deDoc = `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="de_DE">
<context>
    <name>Dialog</name>
    <message>
        <source>Open %1</source>
        <translation>Öffne %1</translation>
    </message>
    <message>
        <source>Copy %1 to %2</source>
        <translation>Kopiere %1</translation>
    </message>
    <message>
        <source>Save</source>
        <translation type="unfinished">Speichern</translation>
    </message>
    <message numerus="yes">
        <source>%n file(s)</source>
        <translation>
            <numerusform>%n Datei</numerusform>
            <numerusform>%n Dateien</numerusform>
        </translation>
    </message>
</context>
</TS>`

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(context.Background(), args, &env{stdout: &stdout, stderr: &stderr})

	return result{code, stdout.String(), stderr.String()}
}

func writeCatalog(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "app_de.ts")
	require.NoError(t, os.WriteFile(path, []byte(deDoc), 0o600))

	return path
}

func TestUsage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"No arguments", nil, exitUsage},
		{"Help", []string{"help"}, exitOK},
		{"Unknown command", []string{"frobnicate"}, exitUsage},
		{"Missing arguments", []string{"lookup", "file.ts"}, exitUsage},
		{"Unknown flag", []string{"stats", "-yaml", "file.ts"}, exitUsage},
		{"Conflicting formats", []string{"stats", "-json", "-html", "file.ts"}, exitUsage},
		{"Unknown check", []string{"check", "-only", "spelling", "file.ts"}, exitUsage},
		{"Missing file", []string{"lookup", "/nonexistent.ts", "Dialog", "Save"}, exitFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.code, runCLI(t, tt.args...).code)
		})
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "version")
	assert.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "tscat v")
}

func TestLookup(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{path, "Dialog", "Open %1", "a.cppcheck"}, "Öffne a.cppcheck\n"},
		{[]string{path, "Dialog", "Save"}, "Speichern\n"},
		{[]string{path, "Dialog", "Quit"}, "Quit\n"},
		{[]string{"-n", "3", path, "Dialog", "%n file(s)"}, "3 Dateien\n"},
		{[]string{"-n", "1", path, "Dialog", "%n file(s)"}, "1 Datei\n"},
	}

	for _, tt := range tests {
		res := runCLI(t, append([]string{"lookup"}, tt.args...)...)
		assert.Equal(t, exitOK, res.code, res.stderr)
		assert.Equal(t, tt.want, res.stdout)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t)

	res := runCLI(t, "stats", path)
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "FINISHED")
	assert.Contains(t, res.stdout, "de-DE")
	assert.Contains(t, res.stdout, "75.0%")

	res = runCLI(t, "stats", "-json", path)
	require.Equal(t, exitOK, res.code)

	var out []fileStats
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	require.Len(t, out, 1)
	assert.Equal(t, path, out[0].File)
	assert.Equal(t, 3, out[0].Total.Finished)
	assert.Equal(t, 1, out[0].Total.Unfinished)

	res = runCLI(t, "stats", "-html", path)
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, "<title>Translation status</title>")
	assert.Contains(t, res.stdout, "German")
}

func TestCheck(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t)

	res := runCLI(t, "check", path)
	assert.Equal(t, exitFail, res.code)
	assert.Contains(t, res.stdout, "placeholders: Dialog: \"Copy %1 to %2\"")
	assert.Contains(t, res.stderr, "1 issue(s) found")

	res = runCLI(t, "check", "-only", "punctuation,markup", path)
	assert.Equal(t, exitOK, res.code)
	assert.Empty(t, res.stdout)
}

func TestCompile(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t)

	res := runCLI(t, "compile", path)
	require.Equal(t, exitOK, res.code, res.stderr)

	compiled := replaceExt(path, ".tsc")
	assert.FileExists(t, compiled)

	res = runCLI(t, "lookup", compiled, "Dialog", "Open %1", "x")
	assert.Equal(t, "Öffne x\n", res.stdout)
}

func TestExportPO(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t)
	out := filepath.Join(t.TempDir(), "app_de.po")

	res := runCLI(t, "export-po", "-unfinished", "-o", out, path)
	require.Equal(t, exitOK, res.code, res.stderr)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msgctxt "Dialog"`)
	assert.Contains(t, string(data), `"Speichern"`)

	res = runCLI(t, "export-po", path)
	require.Equal(t, exitOK, res.code)
	assert.Contains(t, res.stdout, `msgid "Open %1"`)
}

func TestMissing(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "missing.db")

	store, err := missing.Open(db)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), missing.Miss{Locale: "de", Context: "Dialog", Source: "Quit"}))
	require.NoError(t, store.Record(context.Background(), missing.Miss{Locale: "fr", Context: "Dialog", Source: "Help"}))
	require.NoError(t, store.Close())

	res := runCLI(t, "missing", "-db", db, "-locale", "de")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, `"Quit"`)
	assert.NotContains(t, res.stdout, `"Help"`)

	assert.Equal(t, exitUsage, runCLI(t, "missing", "-db", db, "-limit", "0").code)
}

func TestRemote(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path != "/api/v1/translate" || r.URL.Query().Get("source") == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Missing parameter source","status":400,"request_id":"abc"}`))

			return
		}

		q := r.URL.Query()
		assert.Equal(t, "de", q.Get("lang"))
		assert.Equal(t, []string{"a.cppcheck"}, q["arg"])
		assert.Equal(t, "2", q.Get("n"))

		_, _ = w.Write([]byte(`{"text":"Öffne a.cppcheck","lang":"de","translated":true,"status":"finished"}`))
	}))
	t.Cleanup(srv.Close)

	res := runCLI(t, "remote", "-server", srv.URL+"/", "-lang", "de", "-n", "2", "-v", "Dialog", "Open %1", "a.cppcheck")
	require.Equal(t, exitOK, res.code, res.stderr)
	assert.Equal(t, "Öffne a.cppcheck\n", res.stdout)
	assert.Contains(t, res.stderr, "status=finished")

	res = runCLI(t, "remote", "-server", srv.URL, "Dialog", "")
	assert.Equal(t, exitFail, res.code)

	assert.Equal(t, exitUsage, runCLI(t, "remote", "-server", "localhost", "Dialog", "Open").code)
}

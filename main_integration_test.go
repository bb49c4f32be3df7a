// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build integration

/*
To run these tests, specify `-tags=integration` when running `go test`.
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/pixivfe/tscat/config"
)

const (
	// Server configuration constants.
	host      = "127.0.0.1:8282"
	authority = "http://127.0.0.1:8282"

	// Polling constants.
	retryCount  = 10
	dialTimeout = 250 * time.Millisecond
)

// httpTestCase defines a test case.
type httpTestCase struct {
	URL                string
	AcceptLanguage     string
	ExpectedStatusCode int
}

// setDefault sets the default values for the test case.
func (c *httpTestCase) setDefault() {
	if c.ExpectedStatusCode == 0 {
		c.ExpectedStatusCode = 200
	}
}

// TestMain is used for global setup and teardown.
//
// It starts the server on the catalog test data and waits for it to be
// available before running tests.
func TestMain(m *testing.M) {
	dataDir, err := os.MkdirTemp("", "tscat-integration")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}

	env := map[string]string{
		"TSCAT_HOST":           "127.0.0.1",
		"TSCAT_PORT":           "8282",
		"TSCAT_CATALOG_DIR":    "catalog/testdata",
		"TSCAT_CATALOG_DOMAIN": "cppcheck",
		"TSCAT_MISSING":        "true",
		"TSCAT_MISSING_PATH":   filepath.Join(dataDir, "missing.db"),
		"TSCAT_LOG_LEVEL":      "warn",
	}

	for k, v := range env {
		_ = os.Setenv(k, v)
	}

	var cfg config.ServerConfig
	if err := cfg.Load(""); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- serve(ctx, &cfg)
	}()

	// Wait for the server.
	if !waitForServerReady() {
		log.Fatalf("Server did not start in time")
	}

	code := m.Run()

	cancel()

	if err := <-done; err != nil {
		log.Printf("Server failed: %v", err)

		code = 1
	}

	_ = os.RemoveAll(dataDir)

	os.Exit(code)
}

// waitForServerReady polls the server until it's available or the retries are exhausted.
func waitForServerReady() bool {
	for range retryCount {
		conn, err := net.DialTimeout("tcp", host, dialTimeout)
		if err == nil {
			_ = conn.Close()

			return true // Server is up.
		}

		time.Sleep(dialTimeout)
	}

	return false
}

// TestBasicAllRoutes tests all basic routes of the server.
func TestBasicAllRoutes(t *testing.T) {
	t.Parallel()

	testCases := []httpTestCase{
		{URL: "/healthz"},
		{URL: "/stats"},
		{URL: "/stats", AcceptLanguage: "sr-RS"},
		{URL: "/api/v1/catalogs"},
		{URL: "/api/v1/catalogs/sr/entries"},
		{URL: "/api/v1/catalogs/sr/entries?context=About"},
		{URL: "/api/v1/catalogs/ja/entries", ExpectedStatusCode: http.StatusNotFound},
		{URL: "/api/v1/translate?context=About&source=About+Cppcheck"},
		{URL: "/api/v1/translate", ExpectedStatusCode: http.StatusBadRequest},
		{URL: "/api/v1/missing"},
		{URL: "/does-not-exist", ExpectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s %s", tc.AcceptLanguage, tc.URL), func(t *testing.T) {
			t.Parallel()
			tc.setDefault()

			resp := makeRequest(t, buildRequest(t, authority+tc.URL, tc.AcceptLanguage))
			defer resp.Body.Close()

			if resp.StatusCode != tc.ExpectedStatusCode {
				t.Errorf("expected status %d, got %d", tc.ExpectedStatusCode, resp.StatusCode)
			}
		})
	}
}

// TestMissesAreRecorded looks up an untranslated string and waits for it to
// show up in the miss report.
func TestMissesAreRecorded(t *testing.T) {
	t.Parallel()

	resp := makeRequest(t, buildRequest(t, authority+"/api/v1/translate?context=ApplicationDialog&source=Add+an+application", "sr-RS"))

	var translated struct {
		Text       string `json:"text"`
		Translated bool   `json:"translated"`
	}

	decodeBody(t, resp, &translated)

	if translated.Text != "Add a new application" || !translated.Translated {
		t.Fatalf("unexpected translation %+v", translated)
	}

	resp = makeRequest(t, buildRequest(t, authority+"/api/v1/translate?context=Nowhere&source=Integration+probe", "sr-RS"))
	_ = resp.Body.Close()

	for range retryCount {
		var report struct {
			Misses []struct {
				Source string `json:"source"`
			} `json:"misses"`
		}

		decodeBody(t, makeRequest(t, buildRequest(t, authority+"/api/v1/missing?locale=sr", "")), &report)

		for _, m := range report.Misses {
			if m.Source == "Integration probe" {
				return
			}
		}

		time.Sleep(dialTimeout)
	}

	t.Error("miss was not recorded")
}

func buildRequest(t *testing.T, link, acceptLanguage string) *http.Request {
	t.Helper()

	req, err := http.NewRequestWithContext(context.TODO(), http.MethodGet, link, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}

	return req
}

func makeRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("Failed to decode %q: %v", body, err)
	}
}

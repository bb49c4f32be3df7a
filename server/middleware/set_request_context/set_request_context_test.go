// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/middleware"
	"codeberg.org/pixivfe/tscat/server/request_context"
)

const deCatalog = `<?xml version="1.0" encoding="utf-8"?>
<TS version="2.1" language="de_DE">
<context>
    <name>About</name>
    <message>
        <source>About</source>
        <translation>Über</translation>
    </message>
</context>
</TS>`

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()

	b, err := i18n.Setup(fstest.MapFS{"i18n/app_de.ts": {Data: []byte(deCatalog)}}, "i18n", i18n.Options{Domain: "app"})
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	return b
}

// TestWithRequestContext_AttachesContext tests that request context is properly attached.
func TestWithRequestContext_AttachesContext(t *testing.T) {
	t.Parallel()

	var (
		requestID  string
		statusCode int
		locale     language.Tag
	)

	handler := middleware.Wrap(WithRequestContext(testBundle(t)), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		requestID = ctx.RequestID
		statusCode = ctx.StatusCode
		locale = i18n.TagFrom(r.Context())

		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Accept-Language", "de-AT,de;q=0.9")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	if requestID == "" || rr.Header().Get(request_context.RequestIDHeader) != requestID {
		t.Errorf("Expected request ID %q to be set and echoed, got header %q", requestID, rr.Header().Get(request_context.RequestIDHeader))
	}

	if statusCode != http.StatusOK {
		t.Errorf("Expected status code %d in context, got %d", http.StatusOK, statusCode)
	}

	if locale != language.German {
		t.Errorf("Expected locale de, got %v", locale)
	}

	if got := rr.Header().Get("Content-Language"); got != "de" {
		t.Errorf("Expected Content-Language de, got %q", got)
	}
}

// TestWithRequestContext_GeneratesUniqueRequestIDs tests that each request gets a unique ID.
func TestWithRequestContext_GeneratesUniqueRequestIDs(t *testing.T) {
	t.Parallel()

	var requestIDs []string

	handler := middleware.Wrap(WithRequestContext(nil), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestIDs = append(requestIDs, request_context.FromRequest(r).RequestID)

		w.WriteHeader(http.StatusOK)
	}))

	for range 3 {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	}

	if len(requestIDs) != 3 {
		t.Fatalf("Expected 3 request IDs, got %d", len(requestIDs))
	}

	seen := make(map[string]bool)
	for _, id := range requestIDs {
		if seen[id] {
			t.Errorf("Duplicate request ID found: %s", id)
		}

		seen[id] = true
	}
}

// TestWithRequestContext_SourceLocale verifies the fallback without a bundle.
func TestWithRequestContext_SourceLocale(t *testing.T) {
	t.Parallel()

	var (
		locale        language.Tag
		requestError  error
		handlerCalled bool
	)

	handler := middleware.Wrap(WithRequestContext(nil), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		locale = request_context.FromRequest(r).Locale
		requestError = request_context.FromRequest(r).RequestError
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/test?lang=de", nil))

	if !handlerCalled {
		t.Fatal("Expected next handler to be called")
	}

	if locale != language.English {
		t.Errorf("Expected source locale, got %v", locale)
	}

	if requestError != nil {
		t.Errorf("Expected no error in request context, got %v", requestError)
	}
}

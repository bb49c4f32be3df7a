// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/pixivfe/tscat/config"
)

func TestSetResponseHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path         string
		cacheControl string
	}{
		{"/healthz", "no-store"},
		{"/stats", "private, no-cache"},
		{"/api/v1/missing", "private, no-cache"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			Wrap(SetResponseHeaders, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
				ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.cacheControl, rr.Header().Get("Cache-Control"))
			assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, config.BuildVersion, rr.Header().Get("Tscat-Version"))
			assert.Contains(t, rr.Header().Get("Vary"), "Accept-Language")
		})
	}
}

func TestSetCacheControlAPI(t *testing.T) {
	t.Parallel()

	headers := http.Header{}
	setCacheControl(headers, "/api/v1/catalogs")

	assert.True(t, strings.HasPrefix(headers.Get("Cache-Control"), "public, max-age="))
}

func TestSetResponseHeadersOverridable(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Wrap(SetResponseHeaders, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/translate", nil))

	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}

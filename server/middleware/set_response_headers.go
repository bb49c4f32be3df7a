// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"codeberg.org/pixivfe/tscat/config"
)

var (
	// baseHeaders defines the default headers to be set in responses.
	//
	// Tscat-Version and Tscat-Revision are added dynamically in SetResponseHeaders.
	baseHeaders = http.Header{
		"Referrer-Policy":         {"no-referrer"},
		"X-Frame-Options":         {"DENY"},
		"X-Content-Type-Options":  {"nosniff"},
		"Permissions-Policy":      {strings.Join(defaultPermissionsPolicy, ", ")},
		"Content-Security-Policy": {strings.Join(baseCSP, "; ") + ";"},
		// Responses depend on the negotiated locale.
		"Vary": {"Accept-Language, Cookie"},
	}

	baseCSP = []string{
		"base-uri 'self'",
		"default-src 'none'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"form-action 'self'",
		"frame-ancestors 'none'",
	}

	defaultPermissionsPolicy = []string{
		"camera=()",
		"geolocation=()",
		"microphone=()",
		"payment=()",
		"usb=()",
	}
)

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	if config.Global.Development.InDevelopment {
		invalidateCacheInDevelopment(headers)
	}

	setCacheControl(headers, r.URL.Path)

	headers.Set("Tscat-Version", config.BuildVersion)
	headers.Set("Tscat-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}

// for `invalidateCacheInDevelopment`
var firstDevResponse atomic.Bool

// clear cache in development
func invalidateCacheInDevelopment(headers http.Header) {
	if firstDevResponse.CompareAndSwap(false, true) {
		headers.Set("Clear-Site-Data", `"cache"`)
	}
}

// setCacheControl sets the cache policy by route. Handlers may override it.
func setCacheControl(headers http.Header, path string) {
	switch {
	case path == "/healthz":
		headers.Set("Cache-Control", "no-store")
	case strings.HasPrefix(path, "/api/v1/missing"):
		headers.Set("Cache-Control", "private, no-cache")
	case strings.HasPrefix(path, "/api/"):
		maxAge := int(config.Global.HTTPCache.MaxAge.Seconds())
		headers.Set("Cache-Control", "public, max-age="+strconv.Itoa(maxAge))
	default:
		// Only store in the browser cache and force revalidation
		headers.Set("Cache-Control", "private, no-cache")
	}
}

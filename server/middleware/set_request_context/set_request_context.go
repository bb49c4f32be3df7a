// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"

	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/middleware"
	"codeberg.org/pixivfe/tscat/server/request_context"
)

// WithRequestContext returns a middleware that attaches a RequestContext,
// with the locale resolved by b, to each HTTP request.
func WithRequestContext(b *i18n.Bundle) middleware.Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		ctx := request_context.WithRequestContext(r.Context(), r, b)
		rc := request_context.FromContext(ctx)

		w.Header().Set(request_context.RequestIDHeader, rc.RequestID)
		w.Header().Set("Content-Language", rc.Locale.String())

		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/middleware"
	"codeberg.org/pixivfe/tscat/server/middleware/limiter"
	"codeberg.org/pixivfe/tscat/server/middleware/set_request_context"
)

// RegisterMiddleware installs the middleware chain. lim may be nil, which
// disables rate limiting.
func (router *Router) RegisterMiddleware(b *i18n.Bundle, lim *limiter.Limiter) {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                    // handle trailing slashes
	router.Use(set_request_context.WithRequestContext(b)) // needed for everything else
	router.Use(middleware.SetResponseHeaders)              // all responses need this

	if lim != nil {
		router.Use(lim.Evaluate)
	}
}

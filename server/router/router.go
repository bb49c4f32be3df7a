// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"

	"codeberg.org/pixivfe/tscat/server/middleware"
)

// Router is an http.ServeMux behind a chain of middleware.
// Middleware run in the order they were added, before the request is routed.
type Router struct {
	*http.ServeMux

	middlewares []middleware.Middleware
	handler     http.Handler
}

// NewRouter returns a Router without middleware.
func NewRouter() *Router {
	mux := http.NewServeMux()

	return &Router{ServeMux: mux, handler: mux}
}

// Use appends m to the chain. It must not be called once the router serves requests.
func (router *Router) Use(m middleware.Middleware) {
	router.middlewares = append(router.middlewares, m)

	var h http.Handler = router.ServeMux
	for i := len(router.middlewares) - 1; i >= 0; i-- {
		h = middleware.Wrap(router.middlewares[i], h)
	}

	router.handler = h
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.handler.ServeHTTP(w, r)
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/pixivfe/tscat/server/middleware"
	"codeberg.org/pixivfe/tscat/server/routes"
)

// DefineRoutes registers the handlers of h on the router.
func (router *Router) DefineRoutes(h *routes.Handlers, development bool) {
	router.HandleFunc("GET /healthz", routes.Healthz)

	// API routes
	router.HandleFunc("GET /api/v1/translate", middleware.CatchError(h.Translate))
	router.HandleFunc("GET /api/v1/catalogs", middleware.CatchError(h.Catalogs))
	router.HandleFunc("GET /api/v1/catalogs/{lang}/entries", middleware.CatchError(h.Entries))
	router.HandleFunc("GET /api/v1/missing", middleware.CatchError(h.Missing))

	// Short URLs
	router.HandleFunc("GET /catalog", redirectWithQueryParam("/api/v1/catalogs/", "lang", "/entries"))

	// Pages
	// /{$} matches only the root path
	router.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stats", http.StatusFound)
	})
	router.HandleFunc("GET /stats", middleware.CatchError(h.StatsPage))

	// Anything else is a JSON 404.
	router.HandleFunc("/", middleware.CatchError(func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusNotFound)

		return nil
	}))

	if development {
		registerDebugRoutes(router)
	}
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	err := flightRecorder.Start()
	if err != nil {
		panic(err)
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, r *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}

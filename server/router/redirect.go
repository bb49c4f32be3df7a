// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// The code in this file redirects short URLs to their API endpoints.
//
// Add more redirects in (*Router).DefineRoutes

package router

import (
	"net/http"
	"net/url"

	"codeberg.org/pixivfe/tscat/server/utils"
)

// redirectWithQueryParam is a helper function to redirect requests to
// prefix + the value of a query parameter + suffix.
//
// Example:   /catalog?lang=<lang>   ->   /api/v1/catalogs/<lang>/entries
func redirectWithQueryParam(prefix, preservedParam, suffix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value := utils.GetQueryParam(r, preservedParam)
		if value == "" {
			utils.WriteError(w, http.StatusBadRequest, "missing parameter "+preservedParam, "")

			return
		}

		http.Redirect(w, r, prefix+url.PathEscape(value)+suffix, http.StatusPermanentRedirect)
	}
}

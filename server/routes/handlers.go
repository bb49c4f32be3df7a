// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package routes holds the HTTP handlers of the lookup service.

Handlers return an error instead of writing error responses themselves;
middleware.CatchError turns the error into a JSON body. Errors meant for
the client are wrapped in a *utils.StatusError carrying the status code,
usually around an *i18n.UserError so the message is shown in the
client's language.
*/
package routes

import (
	"context"
	"net/http"

	"codeberg.org/pixivfe/tscat/core/lrucache"
	"codeberg.org/pixivfe/tscat/core/missing"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// uiContext is the catalog context of the messages produced by the handlers.
const uiContext = "Api"

// MissLister lists recorded misses. *missing.Store implements it.
type MissLister interface {
	List(ctx context.Context, locale string, limit int) ([]missing.Miss, error)
}

// Handlers serves the lookup API and the stats page from a loaded bundle.
type Handlers struct {
	Bundle *i18n.Bundle

	// Cache holds encoded translate responses. It may be nil.
	Cache *lrucache.Cache[string, []byte]

	// Misses backs /api/v1/missing. It may be nil, which disables the endpoint.
	Misses MissLister
}

// userError returns a client error with a message translated for the request.
func (h *Handlers) userError(r *http.Request, code int, source string, args ...any) error {
	return utils.NewStatusError(code, i18n.NewUserError(r.Context(), h.Bundle, uiContext, source, args...))
}

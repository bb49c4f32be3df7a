// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/request_context"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// statusMissing is reported for sources without an entry in the catalog.
const statusMissing = "missing"

// TranslateResponse is the body of /api/v1/translate.
type TranslateResponse struct {
	Text       string `json:"text"`
	Lang       string `json:"lang"`
	Translated bool   `json:"translated"`
	Status     string `json:"status"`
}

// Translate looks up a single message.
//
// Query parameters: source (required), context, arg (repeatable, fills %1,
// %2, …), n (selects the plural form and fills %n) and lang.
func (h *Handlers) Translate(w http.ResponseWriter, r *http.Request) error {
	source := utils.GetQueryParam(r, "source")
	if source == "" {
		return h.userError(r, http.StatusBadRequest, "Missing parameter %1", "source")
	}

	n, numerus, err := utils.GetQueryInt(r, "n")
	if err != nil {
		return h.userError(r, http.StatusBadRequest, "Parameter %1 must be an integer", "n")
	}

	locale := request_context.FromRequest(r).Locale
	if locale.IsRoot() {
		locale = h.Bundle.Source()
	}

	query := r.URL.Query()
	query.Del(i18n.LangParam)
	key := locale.String() + "?" + query.Encode()

	if h.Cache != nil {
		if body, ok := h.Cache.Get(key); ok {
			utils.WriteJSONBytes(w, http.StatusOK, body)

			return nil
		}
	}

	uiCtx := utils.GetQueryParam(r, "context")

	args := make([]any, 0, len(query["arg"]))
	for _, a := range query["arg"] {
		args = append(args, a)
	}

	ctx := i18n.WithTag(r.Context(), locale)

	resp := TranslateResponse{Lang: locale.String()}
	if numerus {
		resp.Text = h.Bundle.TrN(ctx, uiCtx, source, n, args...)
	} else {
		resp.Text = h.Bundle.Tr(ctx, uiCtx, source, args...)
	}

	cat := h.Bundle.Catalog(locale)

	_, resp.Translated = cat.Resolve(uiCtx, source)
	if entry, ok := cat.Entry(uiCtx, source); ok {
		resp.Status = entry.Status.Name()
	} else {
		resp.Status = statusMissing
	}

	if locale == h.Bundle.Source() && !resp.Translated {
		resp.Translated = true
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode translation: %w", err)
	}

	// Misses are not cached so every one of them reaches the miss report.
	if h.Cache != nil && resp.Translated {
		h.Cache.Add(key, body)
	}

	utils.WriteJSONBytes(w, http.StatusOK, body)

	return nil
}

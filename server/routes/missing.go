// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"

	"codeberg.org/pixivfe/tscat/core/missing"
	"codeberg.org/pixivfe/tscat/server/utils"
)

const (
	defaultMissLimit = 100
	maxMissLimit     = 1000
)

// MissingResponse is the body of /api/v1/missing.
type MissingResponse struct {
	Misses []missing.Miss `json:"misses"`
}

// Missing lists the recorded misses, most hit first. The locale and limit
// query parameters narrow the list.
func (h *Handlers) Missing(w http.ResponseWriter, r *http.Request) error {
	if h.Misses == nil {
		return h.userError(r, http.StatusNotFound, "The miss report is disabled")
	}

	limit, ok, err := utils.GetQueryInt(r, "limit")
	if err != nil || (ok && limit <= 0) {
		return h.userError(r, http.StatusBadRequest, "Parameter %1 must be a positive integer", "limit")
	}

	if !ok {
		limit = defaultMissLimit
	}

	limit = min(limit, maxMissLimit)

	misses, err := h.Misses.List(r.Context(), utils.GetQueryParam(r, "locale"), limit)
	if err != nil {
		return fmt.Errorf("failed to list misses: %w", err)
	}

	if misses == nil {
		misses = []missing.Miss{}
	}

	return utils.WriteJSON(w, http.StatusOK, MissingResponse{Misses: misses})
}

// Healthz reports that the server is up.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write([]byte("ok\n"))
}

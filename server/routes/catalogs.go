// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/catalog"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// CatalogSummary describes one loaded locale.
type CatalogSummary struct {
	Lang       string         `json:"lang"`
	Source     bool           `json:"source"`
	Version    string         `json:"version,omitempty"`
	Entries    int            `json:"entries"`
	Completion float64        `json:"completion"`
	Counts     catalog.Counts `json:"counts"`
}

// CatalogsResponse is the body of /api/v1/catalogs.
type CatalogsResponse struct {
	Source   string           `json:"source"`
	Catalogs []CatalogSummary `json:"catalogs"`
}

// Catalogs lists the supported locales with their completion.
func (h *Handlers) Catalogs(w http.ResponseWriter, r *http.Request) error {
	source := h.Bundle.Source()
	resp := CatalogsResponse{Source: source.String()}

	for _, tag := range h.Bundle.Languages() {
		cat := h.Bundle.Catalog(tag)
		stats := cat.Stats()

		resp.Catalogs = append(resp.Catalogs, CatalogSummary{
			Lang:       tag.String(),
			Source:     tag == source,
			Version:    cat.Version(),
			Entries:    cat.Len(),
			Completion: stats.Total.Completion(),
			Counts:     stats.Total,
		})
	}

	return utils.WriteJSON(w, http.StatusOK, resp)
}

// EntryView is the JSON form of a catalog entry.
type EntryView struct {
	Context     string   `json:"context"`
	Source      string   `json:"source"`
	OldSource   string   `json:"old_source,omitempty"`
	Translation string   `json:"translation"`
	Forms       []string `json:"forms,omitempty"`
	Numerus     bool     `json:"numerus,omitempty"`
	Status      string   `json:"status"`
	Comment     string   `json:"comment,omitempty"`
}

// EntriesResponse is the body of /api/v1/catalogs/{lang}/entries.
type EntriesResponse struct {
	Lang    string      `json:"lang"`
	Entries []EntryView `json:"entries"`
}

// Entries lists the entries of one catalog, optionally only those of the
// context given in the query.
func (h *Handlers) Entries(w http.ResponseWriter, r *http.Request) error {
	raw := utils.GetPathVar(r, "lang")

	tag, err := language.Parse(raw)
	if err != nil {
		return h.userError(r, http.StatusBadRequest, "Invalid language %1", raw)
	}

	cat, matched, ok := h.exactCatalog(tag)
	if !ok {
		return h.userError(r, http.StatusNotFound, "No catalog for %1", raw)
	}

	filter, filtered := r.URL.Query()["context"]

	resp := EntriesResponse{Lang: matched.String(), Entries: []EntryView{}}

	for _, e := range cat.Entries() {
		if filtered && e.Context != filter[0] {
			continue
		}

		resp.Entries = append(resp.Entries, EntryView{
			Context:     e.Context,
			Source:      e.Source,
			OldSource:   e.OldSource,
			Translation: e.Translation,
			Forms:       e.Forms,
			Numerus:     e.Numerus,
			Status:      e.Status.Name(),
			Comment:     e.Comment,
		})
	}

	return utils.WriteJSON(w, http.StatusOK, resp)
}

// exactCatalog returns the catalog loaded for the language of tag. Unlike
// Bundle.Catalog it does not fall back to the source language.
func (h *Handlers) exactCatalog(tag language.Tag) (*catalog.Catalog, language.Tag, bool) {
	matched := h.Bundle.Match(tag)

	want, _ := tag.Base()
	got, _ := matched.Base()

	if want != got {
		return nil, matched, false
	}

	cat := h.Bundle.Catalog(matched)

	return cat, matched, cat != nil
}

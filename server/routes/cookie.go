// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// Cookies will expire in 30 days from when they are set.
const cookieMaxAge = 30 * 24 * time.Hour

// Clear a cookie by setting its expiration date to this
var cookieExpireDelete = time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC)

func langCookie(r *http.Request, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     i18n.LangCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		Secure:   utils.IsConnectionSecure(r),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// rememberLanguage stores the lang query parameter in the language cookie.
// "auto" clears the cookie; no parameter leaves it alone.
func rememberLanguage(w http.ResponseWriter, r *http.Request, b *i18n.Bundle) {
	q := r.URL.Query().Get(i18n.LangParam)

	switch {
	case q == "":
		return
	case strings.EqualFold(q, "auto"):
		http.SetCookie(w, langCookie(r, "", cookieExpireDelete))
	default:
		// Store the matched locale, never the raw parameter.
		tag := b.Match(b.FromRequest(r))
		http.SetCookie(w, langCookie(r, tag.String(), time.Now().Add(cookieMaxAge)))
	}
}

// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"codeberg.org/pixivfe/tscat/server/request_context"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit"
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRateLimitReset     string = "RateLimit-Reset"
)

// excludedPaths won't have traffic filtered by the limiter middleware.
var excludedPaths = []string{
	"/healthz",
	"/debug/",
}

// Evaluate is the limiter middleware.
func (l *Limiter) Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	for _, p := range excludedPaths {
		if strings.HasPrefix(r.URL.Path, p) {
			next.ServeHTTP(w, r)

			return
		}
	}

	requestID := request_context.FromRequest(r).RequestID

	client, err := l.newClientInfo(r)
	if err != nil {
		l.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Request rejected")
		utils.WriteError(w, http.StatusBadRequest, "", requestID)

		return
	}

	if allowed, blocked := l.checkIPLists(client); allowed {
		next.ServeHTTP(w, r)

		return
	} else if blocked {
		l.logger.Warn().
			Str("ip", client.ip.String()).
			Str("network", client.network.String()).
			Msg("Request blocked, IP in block-list")

		utils.WriteError(w, http.StatusForbidden, "", requestID)

		return
	}

	if !l.opts.FilterLocal && client.isLocal() {
		next.ServeHTTP(w, r)

		return
	}

	client.limiter = l.getOrCreateLimiter(client.network.String())

	if !l.allow(client.limiter) {
		l.logger.Warn().
			Str("ip", client.ip.String()).
			Str("network", client.network.String()).
			Msg("Request blocked, exceeded rate limit")

		l.addRateLimitHeaders(w, client)
		utils.WriteError(w, http.StatusTooManyRequests, "", requestID)

		return
	}

	l.addRateLimitHeaders(w, client)
	next.ServeHTTP(w, r)
}

// addRateLimitHeaders adds rate limiting information to the response headers.
func (l *Limiter) addRateLimitHeaders(w http.ResponseWriter, client *ClientInfo) {
	client.limiter.mu.Lock()
	defer client.limiter.mu.Unlock()

	limiter := client.limiter.limiter
	currentTokens := limiter.TokensAt(l.now())
	burst := limiter.Burst()
	limit := float64(limiter.Limit())

	remaining := max(int(math.Floor(math.Min(float64(burst), currentTokens))), 0)

	// Seconds until the bucket is full again.
	var resetTime int64
	if limit > 0 && currentTokens < float64(burst) {
		resetTime = int64(math.Ceil((float64(burst) - currentTokens) / limit))
	}

	w.Header().Set(HeaderRateLimitLimit, strconv.Itoa(burst))
	w.Header().Set(HeaderRateLimitRemaining, strconv.Itoa(remaining))
	w.Header().Set(HeaderRateLimitReset, strconv.FormatInt(resetTime, 10))

	if remaining == 0 && limit > 0 {
		retryAfter := max(int64(math.Ceil((1-currentTokens)/limit)), 1)
		w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	}
}

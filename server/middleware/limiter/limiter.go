// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
This file provides network-based rate limiting for HTTP requests.

Clients are grouped by their IP network (see Options.IPv4Prefix and
Options.IPv6Prefix) and every network shares one token bucket.
*/
package limiter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	LimiterExpiryDuration = time.Hour       // How long to keep idle limiters in memory before cleanup.
	CleanupInterval       = 5 * time.Minute // Interval between limiter cleanup runs.
)

// Options configures a Limiter.
type Options struct {
	// Tokens added per second, and the bucket size.
	Rate  float64
	Burst int

	IPv4Prefix int
	IPv6Prefix int

	// Addresses or CIDRs that are never limited, or always rejected.
	PassIPs  []string
	BlockIPs []string

	// FilterLocal limits loopback and link-local clients too.
	FilterLocal bool
}

// Limiter holds a rate limiter per client network.
type Limiter struct {
	opts     Options
	limiters sync.Map // network string -> *limiterWrapper
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates a Limiter.
func New(opts Options) *Limiter {
	return &Limiter{
		opts:   opts,
		now:    time.Now,
		logger: log.With().Str("sys", "limiter").Logger(),
	}
}

// limiterWrapper holds a rate limiter and additional metadata.
type limiterWrapper struct {
	limiter    *rate.Limiter
	network    string
	lastAccess time.Time
	mu         sync.Mutex
}

// serializableLimiter is the saved form of a limiterWrapper. The limit and
// burst are not saved; restored limiters use the current Options.
type serializableLimiter struct {
	Network    string    `json:"network"`
	LastAccess time.Time `json:"last_access"`
	Tokens     float64   `json:"tokens"`
}

// Save serializes the current state of all limiters to w as a JSON array.
func (l *Limiter) Save(w io.Writer) error {
	now := l.now()
	stateToSave := []serializableLimiter{}

	l.limiters.Range(func(_, value any) bool {
		limWrapper := value.(*limiterWrapper)

		limWrapper.mu.Lock()
		stateToSave = append(stateToSave, serializableLimiter{
			Network:    limWrapper.network,
			LastAccess: limWrapper.lastAccess,
			Tokens:     limWrapper.limiter.TokensAt(now),
		})
		limWrapper.mu.Unlock()

		return true
	})

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(stateToSave); err != nil {
		return fmt.Errorf("failed to encode limiter state: %w", err)
	}

	l.logger.Info().Int("count", len(stateToSave)).Msg("Saved limiter state")

	return nil
}

// Load replaces the in-memory limiters with the state read from r.
// An empty input is not an error.
func (l *Limiter) Load(r io.Reader) error {
	var loadedState []serializableLimiter

	if err := json.NewDecoder(r).Decode(&loadedState); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}

		return fmt.Errorf("failed to decode limiter state: %w", err)
	}

	l.limiters.Clear()

	now := l.now()

	for _, sl := range loadedState {
		limWrapper := l.newLimiterWrapper(sl.Network)
		limWrapper.lastAccess = sl.LastAccess

		// A new bucket is full; take out what was already spent.
		if spent := math.Floor(float64(l.opts.Burst) - sl.Tokens); spent > 0 {
			limWrapper.limiter.AllowN(now, int(spent))
		}

		l.limiters.Store(sl.Network, limWrapper)
	}

	l.logger.Info().Int("count", len(loadedState)).Msg("Loaded limiter state")

	return nil
}

// LoadState loads the limiter state from path. A missing or unreadable file
// is logged and the limiter starts fresh.
func (l *Limiter) LoadState(path string) {
	if path == "" {
		return
	}

	file, err := os.Open(path) // #nosec:G304
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Info().Str("file", path).
				Msg("Limiter state file not found, starting with a fresh state")
		} else {
			l.logger.Warn().Err(err).Str("file", path).
				Msg("Could not open limiter state file; starting with a fresh state")
		}

		return
	}
	defer file.Close()

	if err := l.Load(file); err != nil {
		l.logger.Warn().Err(err).Str("file", path).
			Msg("Could not parse limiter state file; starting with a fresh state")
	}
}

// SaveState writes the limiter state to path.
func (l *Limiter) SaveState(path string) error {
	if path == "" {
		return nil
	}

	file, err := os.Create(path) // #nosec:G304
	if err != nil {
		return fmt.Errorf("failed to create limiter state file: %w", err)
	}

	if err := l.Save(file); err != nil {
		_ = file.Close()

		return err
	}

	return file.Close()
}

// allow attempts to consume 1 token from the limiterWrapper.
func (l *Limiter) allow(limWrapper *limiterWrapper) bool {
	limWrapper.mu.Lock()
	defer limWrapper.mu.Unlock()

	now := l.now()
	limWrapper.lastAccess = now

	return limWrapper.limiter.AllowN(now, 1)
}

// getOrCreateLimiter returns the limiterWrapper for the given network.
func (l *Limiter) getOrCreateLimiter(network string) *limiterWrapper {
	if value, ok := l.limiters.Load(network); ok {
		return value.(*limiterWrapper)
	}

	value, _ := l.limiters.LoadOrStore(network, l.newLimiterWrapper(network))

	return value.(*limiterWrapper)
}

func (l *Limiter) newLimiterWrapper(network string) *limiterWrapper {
	return &limiterWrapper{
		limiter:    rate.NewLimiter(rate.Limit(l.opts.Rate), l.opts.Burst),
		network:    network,
		lastAccess: l.now(),
	}
}

// cleanupExpiredLimiters removes limiters that haven't been accessed for the expiry duration.
func (l *Limiter) cleanupExpiredLimiters() int {
	now := l.now()
	expiredCount := 0

	l.limiters.Range(func(key, value any) bool {
		limWrapper := value.(*limiterWrapper)

		limWrapper.mu.Lock()
		lastAccess := limWrapper.lastAccess
		limWrapper.mu.Unlock()

		if now.Sub(lastAccess) > LimiterExpiryDuration {
			l.limiters.Delete(key)

			expiredCount++
		}

		return true
	})

	if expiredCount > 0 {
		l.logger.Info().Int("count", expiredCount).
			Msg("Cleaned up expired limiters")
	}

	return expiredCount
}

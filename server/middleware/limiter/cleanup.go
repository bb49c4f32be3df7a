// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"context"
	"time"
)

// Run removes idle limiters every CleanupInterval until ctx is done.
func (l *Limiter) Run(ctx context.Context) error {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			start := time.Now()
			count := l.cleanupExpiredLimiters()

			l.logger.Debug().Int("removed", count).Dur("dur", time.Since(start)).Msg("limiter cleanup")
		}
	}
}

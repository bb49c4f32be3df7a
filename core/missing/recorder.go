// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package missing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBuffer is the number of misses a Recorder holds before dropping.
const DefaultBuffer = 1024

// recordTimeout bounds a single write to the store.
const recordTimeout = 5 * time.Second

// Sink is where a Recorder writes misses. *Store implements it.
type Sink interface {
	Record(ctx context.Context, m Miss) error
}

// Recorder collects misses without blocking the caller and writes them to a
// Sink from a single goroutine started with Run.
//
// When the buffer is full, further misses are dropped and counted.
type Recorder struct {
	sink   Sink
	queue  chan Miss
	quit   chan struct{}
	once   sync.Once
	logger zerolog.Logger

	dropped  atomic.Int64
	recorded atomic.Int64
}

// NewRecorder returns a Recorder writing to sink with room for buffer
// pending misses. A buffer of zero or less uses DefaultBuffer.
func NewRecorder(sink Sink, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	return &Recorder{
		sink:   sink,
		queue:  make(chan Miss, buffer),
		quit:   make(chan struct{}),
		logger: log.With().Str("sys", "missing").Logger(),
	}
}

// ReportMiss queues a miss. It never blocks.
func (r *Recorder) ReportMiss(_ context.Context, locale, uiContext, source string) {
	select {
	case <-r.quit:
		return
	default:
	}

	m := Miss{
		Locale:   locale,
		Context:  uiContext,
		Source:   source,
		Hits:     1,
		LastSeen: time.Now(),
	}

	select {
	case r.queue <- m:
	default:
		if r.dropped.Add(1) == 1 {
			r.logger.Warn().Msg("Miss buffer full, dropping misses")
		}
	}
}

// Run writes queued misses to the sink until ctx is done or Close is called.
// Misses still buffered at that point are written before Run returns.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case m := <-r.queue:
			r.write(ctx, m)
		case <-r.quit:
			r.drain(context.WithoutCancel(ctx))

			return nil
		case <-ctx.Done():
			r.drain(context.WithoutCancel(ctx))

			return nil
		}
	}
}

func (r *Recorder) drain(ctx context.Context) {
	for {
		select {
		case m := <-r.queue:
			r.write(ctx, m)
		default:
			return
		}
	}
}

func (r *Recorder) write(ctx context.Context, m Miss) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := r.sink.Record(ctx, m); err != nil {
		r.logger.Error().Err(err).Str("locale", m.Locale).Msg("Failed to record miss")

		return
	}

	r.recorded.Add(1)
}

// Close stops accepting misses and makes Run return after draining.
// It is safe to call more than once.
func (r *Recorder) Close() {
	r.once.Do(func() { close(r.quit) })
}

// Dropped returns how many misses were dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Recorded returns how many misses were written to the sink.
func (r *Recorder) Recorded() int64 {
	return r.recorded.Load()
}

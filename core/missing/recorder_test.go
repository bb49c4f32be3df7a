// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package missing

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingSink struct {
	mu      sync.Mutex
	release chan struct{}
	got     []Miss
}

func (b *blockingSink) Record(ctx context.Context, m Miss) error {
	if b.release != nil {
		<-b.release
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.got = append(b.got, m)

	return nil
}

func (b *blockingSink) misses() []Miss {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Miss(nil), b.got...)
}

type failingSink struct{}

func (failingSink) Record(context.Context, Miss) error { return errors.New("disk full") }

func TestRecorderDrainsOnClose(t *testing.T) {
	t.Parallel()

	sink := &blockingSink{}
	r := NewRecorder(sink, 8)

	for _, src := range []string{"Open", "Close", "Save"} {
		r.ReportMiss(context.Background(), "de", "Main", src)
	}

	r.Close()
	r.Close()

	require.NoError(t, r.Run(context.Background()))

	got := sink.misses()
	require.Len(t, got, 3)
	assert.Equal(t, "Open", got[0].Source)
	assert.Equal(t, int64(1), got[0].Hits)
	assert.Equal(t, int64(3), r.Recorded())

	r.ReportMiss(context.Background(), "de", "Main", "late")
	assert.Len(t, sink.misses(), 3)
}

func TestRecorderDropsWhenFull(t *testing.T) {
	t.Parallel()

	sink := &blockingSink{}
	r := NewRecorder(sink, 2)

	for range 5 {
		r.ReportMiss(context.Background(), "de", "Main", "Open")
	}

	assert.Equal(t, int64(3), r.Dropped())

	r.Close()
	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, sink.misses(), 2)
}

func TestRecorderNeverBlocks(t *testing.T) {
	t.Parallel()

	sink := &blockingSink{release: make(chan struct{})}
	r := NewRecorder(sink, 1)

	done := make(chan error)

	go func() { done <- r.Run(context.Background()) }()

	finished := make(chan struct{})

	go func() {
		for range 100 {
			r.ReportMiss(context.Background(), "de", "Main", "Open")
		}

		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("ReportMiss blocked")
	}

	close(sink.release)
	r.Close()
	require.NoError(t, <-done)
	assert.Positive(t, r.Dropped())
}

func TestRecorderStopsOnContext(t *testing.T) {
	t.Parallel()

	r := NewRecorder(failingSink{}, 4)
	r.ReportMiss(context.Background(), "de", "Main", "Open")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Run(ctx))
	assert.Zero(t, r.Recorded())
}

func TestRecorderWithStore(t *testing.T) {
	t.Parallel()

	s, err := Open(filepath.Join(t.TempDir(), "misses.db"))
	require.NoError(t, err)

	defer s.Close()

	r := NewRecorder(s, 0)

	for range 3 {
		r.ReportMiss(context.Background(), "sr-RS", "About", "Version %1")
	}

	r.Close()
	require.NoError(t, r.Run(context.Background()))

	misses, err := s.List(context.Background(), "sr-RS", 0)
	require.NoError(t, err)
	require.Len(t, misses, 1)
	assert.Equal(t, int64(3), misses[0].Hits)
}

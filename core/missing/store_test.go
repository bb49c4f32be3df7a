// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package missing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "misses.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestStoreRecordAndList(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Miss{Locale: "sr-RS", Context: "About", Source: "Version %1", LastSeen: t0}))
	require.NoError(t, s.Record(ctx, Miss{Locale: "sr-RS", Context: "About", Source: "Version %1", LastSeen: t0.Add(time.Hour)}))
	require.NoError(t, s.Record(ctx, Miss{Locale: "sr-RS", Context: "About", Source: "Version %1", Hits: 3, LastSeen: t0.Add(-time.Hour)}))
	require.NoError(t, s.Record(ctx, Miss{Locale: "sr-RS", Context: "LogView", Source: "Clear", LastSeen: t0}))
	require.NoError(t, s.Record(ctx, Miss{Locale: "de", Context: "About", Source: "Version %1", LastSeen: t0}))

	misses, err := s.List(ctx, "sr-RS", 0)
	require.NoError(t, err)
	require.Len(t, misses, 2)

	assert.Equal(t, Miss{
		Locale:    "sr-RS",
		Context:   "About",
		Source:    "Version %1",
		Hits:      5,
		FirstSeen: t0.Add(-time.Hour),
		LastSeen:  t0.Add(time.Hour),
	}, misses[0])
	assert.Equal(t, "Clear", misses[1].Source)
	assert.Equal(t, int64(1), misses[1].Hits)

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, int64(5), limited[0].Hits)

	none, err := s.List(ctx, "ja", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "misses.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), Miss{Locale: "de", Context: "Main", Source: "Open"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)

	defer s.Close()

	misses, err := s.List(context.Background(), "de", 0)
	require.NoError(t, err)
	require.Len(t, misses, 1)
	assert.False(t, misses[0].FirstSeen.IsZero())
}

func TestStoreRecordCanceled(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Record(ctx, Miss{Locale: "de"}), context.Canceled)
}

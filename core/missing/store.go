// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package missing keeps a report of lookups that fell back to the source text,
so translators can see which strings users actually hit.

Misses are stored in SQLite, one row per (locale, context, source) with a hit
count and the first and last time the miss was seen. A [Recorder] sits in
front of the [Store] so that lookups never wait on the database.
*/
package missing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoPath = errors.New("missing: storage path is required")

const schema = `
CREATE TABLE IF NOT EXISTS misses (
	locale     TEXT    NOT NULL,
	context    TEXT    NOT NULL,
	source     TEXT    NOT NULL,
	hits       INTEGER NOT NULL DEFAULT 0,
	first_seen INTEGER NOT NULL,
	last_seen  INTEGER NOT NULL,
	PRIMARY KEY (locale, context, source)
);
CREATE INDEX IF NOT EXISTS misses_locale_hits ON misses (locale, hits DESC);
`

// Miss is a translation lookup that fell back to the source text.
type Miss struct {
	Locale    string    `json:"locale"`
	Context   string    `json:"context"`
	Source    string    `json:"source"`
	Hits      int64     `json:"hits"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// Store persists misses in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens or creates the SQLite database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrNoPath
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Record adds m to the report. Repeated misses increase the hit count
// and move the last-seen time forward.
//
// A zero Hits counts as one hit; zero times are replaced by the current time.
func (s *Store) Record(ctx context.Context, m Miss) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.Hits <= 0 {
		m.Hits = 1
	}

	if m.LastSeen.IsZero() {
		m.LastSeen = time.Now()
	}

	if m.FirstSeen.IsZero() {
		m.FirstSeen = m.LastSeen
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO misses (locale, context, source, hits, first_seen, last_seen)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (locale, context, source) DO UPDATE SET
		   hits = hits + excluded.hits,
		   first_seen = min(first_seen, excluded.first_seen),
		   last_seen = max(last_seen, excluded.last_seen)`,
		m.Locale,
		m.Context,
		m.Source,
		m.Hits,
		toMillis(m.FirstSeen),
		toMillis(m.LastSeen),
	)
	if err != nil {
		return fmt.Errorf("record miss: %w", err)
	}

	return nil
}

// List returns up to limit misses, most frequent first. An empty locale lists
// every locale; a limit of zero or less means no limit.
func (s *Store) List(ctx context.Context, locale string, limit int) ([]Miss, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT locale, context, source, hits, first_seen, last_seen
		 FROM misses
		 WHERE ? = '' OR locale = ?
		 ORDER BY hits DESC, last_seen DESC, locale, context, source
		 LIMIT ?`,
		locale,
		locale,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list misses: %w", err)
	}
	defer rows.Close()

	var out []Miss

	for rows.Next() {
		var (
			m                   Miss
			firstSeen, lastSeen int64
		)

		if err := rows.Scan(&m.Locale, &m.Context, &m.Source, &m.Hits, &firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan miss: %w", err)
		}

		m.FirstSeen = fromMillis(firstSeen)
		m.LastSeen = fromMillis(lastSeen)

		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list misses: %w", err)
	}

	return out, nil
}

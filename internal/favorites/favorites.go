// Package favorites remembers what the music intents played, so "remember
// this" can save the last track and "play my favorites" can read it back.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Track is one played or saved music search.
type Track struct {
	Service string
	Query   string
	URL     string
	SavedAt time.Time
}

// ErrNothingPlayed is returned by Remember when no track has been played
// yet for the service.
var ErrNothingPlayed = errors.New("nothing played yet")

// Store persists plays and favorites in a local SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS last_played (
	service   TEXT PRIMARY KEY,
	query     TEXT NOT NULL,
	url       TEXT NOT NULL,
	played_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS favorite_tracks (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	service  TEXT NOT NULL,
	query    TEXT NOT NULL,
	url      TEXT NOT NULL,
	saved_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_favorite_tracks_service ON favorite_tracks(service);
`

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open favorites db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init favorites schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RecordPlay notes the most recent search per service.
func (s *Store) RecordPlay(ctx context.Context, service, query, url string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO last_played (service, query, url, played_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			query = excluded.query,
			url = excluded.url,
			played_at = excluded.played_at`,
		service, query, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

// LastPlayed returns the most recent track for a service.
func (s *Store) LastPlayed(ctx context.Context, service string) (Track, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT service, query, url, played_at FROM last_played WHERE service = ?`,
		service)

	var t Track
	if err := row.Scan(&t.Service, &t.Query, &t.URL, &t.SavedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Track{}, false, nil
		}
		return Track{}, false, fmt.Errorf("load last played: %w", err)
	}
	return t, true, nil
}

// Remember copies the service's last played track into the favorites list.
func (s *Store) Remember(ctx context.Context, service string) (Track, error) {
	last, ok, err := s.LastPlayed(ctx, service)
	if err != nil {
		return Track{}, err
	}
	if !ok {
		return Track{}, ErrNothingPlayed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO favorite_tracks (service, query, url, saved_at)
		VALUES (?, ?, ?, ?)`,
		last.Service, last.Query, last.URL, time.Now().UTC())
	if err != nil {
		return Track{}, fmt.Errorf("save favorite: %w", err)
	}
	return last, nil
}

// List returns saved favorites for a service, most recent first.
func (s *Store) List(ctx context.Context, service string) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT service, query, url, saved_at FROM favorite_tracks
		WHERE service = ? ORDER BY saved_at DESC, id DESC`,
		service)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		var t Track
		if err := rows.Scan(&t.Service, &t.Query, &t.URL, &t.SavedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

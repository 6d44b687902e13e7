package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists preferences in PostgreSQL for installs that share
// assistant state across machines.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS assistant_preferences (
		id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		active_provider TEXT NOT NULL,
		selected_model TEXT NOT NULL,
		auto_start_enabled BOOLEAN NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init preferences schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (Preferences, bool, error) {
	var p Preferences
	err := s.pool.QueryRow(ctx,
		`SELECT active_provider, selected_model, auto_start_enabled
		 FROM assistant_preferences WHERE id = 1`,
	).Scan(&p.ActiveProvider, &p.SelectedModel, &p.AutoStartEnabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Preferences{}, false, nil
		}
		return Preferences{}, false, fmt.Errorf("load preferences: %w", err)
	}
	return p, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, p Preferences) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assistant_preferences (id, active_provider, selected_model, auto_start_enabled, updated_at)
		 VALUES (1, $1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE SET
			active_provider = EXCLUDED.active_provider,
			selected_model = EXCLUDED.selected_model,
			auto_start_enabled = EXCLUDED.auto_start_enabled,
			updated_at = now()`,
		p.ActiveProvider, p.SelectedModel, p.AutoStartEnabled,
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

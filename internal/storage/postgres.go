package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgresStorage serves shared kiosks whose state lives in the shop database.
// Rows are scoped by namespace so several kiosks can share one table.
type postgresStorage struct {
	db        *pgxpool.Pool
	namespace string
}

const createClientStateTable = `
CREATE TABLE IF NOT EXISTS client_state (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`

func NewPostgresStorage(ctx context.Context, db *pgxpool.Pool, namespace string) (Storage, error) {
	if _, err := db.Exec(ctx, createClientStateTable); err != nil {
		return nil, fmt.Errorf("failed to ensure client_state table: %w", err)
	}
	return &postgresStorage{
		db:        db,
		namespace: namespace,
	}, nil
}

func (s *postgresStorage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM client_state WHERE namespace = $1 AND key = $2`,
		s.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (s *postgresStorage) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO client_state (namespace, key, value, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (namespace, key)
	DO UPDATE SET value = $3, updated_at = now()`
	if _, err := s.db.Exec(ctx, query, s.namespace, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *postgresStorage) Remove(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM client_state WHERE namespace = $1 AND key = $2`,
		s.namespace, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

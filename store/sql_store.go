package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLStore keeps blobs in a single analytics_sessions table. It runs on
// both PostgreSQL and SQLite; only the placeholder style differs.
type SQLStore struct {
	db       *sql.DB
	postgres bool
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, postgres: driver == "postgres"}
}

func (s *SQLStore) bind(query string) string {
	if !s.postgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analytics_sessions (
			session_id TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			saved_at   TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create analytics_sessions table: %w", err)
	}
	return nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	query := s.bind(`
		INSERT INTO analytics_sessions (session_id, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`)
	if _, err := s.db.ExecContext(ctx, query, key, string(value), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert session %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT payload FROM analytics_sessions WHERE session_id = ?`), key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id FROM analytics_sessions ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		keys = append(keys, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session ids: %w", err)
	}
	return keys, nil
}

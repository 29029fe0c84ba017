package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sectionpulse/api/database"
)

// ClickHouseStore appends every write as a row; ReplacingMergeTree collapses
// rows per session in the background and Get always reads the newest one.
type ClickHouseStore struct {
	DB *database.ClickHouseClient
}

func NewClickHouseStore(ch *database.ClickHouseClient) *ClickHouseStore {
	return &ClickHouseStore{DB: ch}
}

func (s *ClickHouseStore) EnsureSchema(ctx context.Context) error {
	err := s.DB.Conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analytics_sessions (
			session_id String,
			saved_at   DateTime64(3),
			payload    String
		) ENGINE = ReplacingMergeTree(saved_at)
		ORDER BY session_id
	`)
	if err != nil {
		return fmt.Errorf("failed to create analytics_sessions table: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Set(ctx context.Context, key string, value []byte) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `INSERT INTO analytics_sessions (session_id, saved_at, payload)`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	if err := batch.Append(key, time.Now().UTC(), string(value)); err != nil {
		return fmt.Errorf("failed to append session %s: %w", key, err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

func (s *ClickHouseStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.DB.Conn.QueryRow(ctx, `
		SELECT payload
		FROM analytics_sessions
		WHERE session_id = ?
		ORDER BY saved_at DESC
		LIMIT 1
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (s *ClickHouseStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Conn.Query(ctx, `SELECT DISTINCT session_id FROM analytics_sessions`)
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

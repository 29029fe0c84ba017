package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a file-backed SQLite database. WAL mode lets the query
// endpoint read while ingest writes.
func NewSQLiteDB(ctx context.Context, path string) (*DBClient, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLITE_PATH is not set")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent ingest
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	log.Printf("Opened SQLite database at %s", path)
	return &DBClient{DB: db, Driver: "sqlite"}, nil
}

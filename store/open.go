package store

import (
	"context"
	"fmt"

	"sectionpulse/api/config"
	"sectionpulse/api/database"
)

// Open connects the backend named by cfg.StoreBackend and returns the session
// store over it with a function releasing its connections.
func Open(ctx context.Context, cfg config.Config) (*SessionStore, func(), error) {
	var (
		blobs   BlobStore
		closeFn = func() {}
	)

	switch cfg.StoreBackend {
	case config.StoreMemory:
		blobs = NewMemoryStore()

	case config.StoreRedis:
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		blobs = NewRedisStore(client, cfg.StoreName)
		closeFn = func() { client.Close() }

	case config.StoreClickHouse:
		ch, err := database.NewClickHouseDB(ctx, cfg.ClickHouse)
		if err != nil {
			return nil, nil, err
		}
		s := NewClickHouseStore(ch)
		if err := s.EnsureSchema(ctx); err != nil {
			ch.Close()
			return nil, nil, err
		}
		blobs = s
		closeFn = ch.Close

	case config.StorePostgres, config.StoreSQLite:
		var (
			client *database.DBClient
			err    error
		)
		if cfg.StoreBackend == config.StorePostgres {
			client, err = database.NewPostgresDB(ctx, cfg.DatabaseURL)
		} else {
			client, err = database.NewSQLiteDB(ctx, cfg.SQLitePath)
		}
		if err != nil {
			return nil, nil, err
		}
		s := NewSQLStore(client.DB, client.Driver)
		if err := s.EnsureSchema(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		blobs = s
		closeFn = client.Close

	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}

	return NewSessionStore(blobs, cfg.LoadConcurrency), closeFn, nil
}

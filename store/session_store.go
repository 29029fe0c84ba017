package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sectionpulse/api/metrics"
	"sectionpulse/api/models"
)

const defaultLoadConcurrency = 16

// SessionStore saves one JSON blob per session id, so a later flush of the
// same session replaces the earlier one.
type SessionStore struct {
	blobs       BlobStore
	concurrency int
}

func NewSessionStore(blobs BlobStore, concurrency int) *SessionStore {
	if concurrency <= 0 {
		concurrency = defaultLoadConcurrency
	}
	return &SessionStore{blobs: blobs, concurrency: concurrency}
}

func (s *SessionStore) Save(ctx context.Context, entry models.StoredEntry) error {
	if entry.ID == "" {
		return errors.New("store: entry has no id")
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry %s: %w", entry.ID, err)
	}
	if err := s.blobs.Set(ctx, entry.ID, payload); err != nil {
		return fmt.Errorf("save entry %s: %w", entry.ID, err)
	}
	return nil
}

// LoadSince returns every readable entry whose timestamp is at or after
// cutoff. Entries that fail to load or decode are logged and skipped; only a
// failed listing is an error.
func (s *SessionStore) LoadSince(ctx context.Context, cutoff time.Time) ([]models.StoredEntry, error) {
	keys, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	// SCAN-style listings may report a key more than once.
	keys = uniqueKeys(keys)

	var (
		mu      sync.Mutex
		entries = make([]models.StoredEntry, 0, len(keys))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, key := range keys {
		g.Go(func() error {
			raw, err := s.blobs.Get(gctx, key)
			if err != nil {
				log.Printf("Skipping entry %s: %v", key, err)
				metrics.RecordSkippedEntry()
				return nil
			}
			var entry models.StoredEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				log.Printf("Skipping unreadable entry %s: %v", key, err)
				metrics.RecordSkippedEntry()
				return nil
			}
			if entry.Timestamp.Before(cutoff) {
				return nil
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0:0]
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

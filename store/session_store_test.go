package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectionpulse/api/models"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func entry(id string, at time.Time) models.StoredEntry {
	return models.StoredEntry{
		ID:               id,
		Timestamp:        at,
		Page:             "index",
		Device:           "desktop",
		TotalSessionTime: 12000,
		Sections:         []models.SectionAggregate{{Name: "hero", TimeSpent: 4000}},
		Interactions:     []models.Interaction{},
	}
}

type failingList struct{ BlobStore }

func (failingList) List(context.Context) ([]string, error) { return nil, errors.New("listing unavailable") }

type repeatingList struct{ BlobStore }

func (r repeatingList) List(ctx context.Context) ([]string, error) {
	keys, err := r.BlobStore.List(ctx)
	return append(keys, keys...), err
}

func TestSessionStoreLoadsRepeatedKeysOnce(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(repeatingList{NewMemoryStore()}, 4)

	require.NoError(t, s.Save(ctx, entry("a", now)))
	require.NoError(t, s.Save(ctx, entry("b", now)))

	got, err := s.LoadSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSessionStoreLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(NewMemoryStore(), 4)

	first := entry("a1d_1", now.Add(-time.Minute))
	second := entry("a1d_1", now)
	second.TotalSessionTime = 45000
	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, second))

	got, err := s.LoadSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.Millis(45000), got[0].TotalSessionTime)
	assert.True(t, now.Equal(got[0].Timestamp))
}

func TestSessionStoreLoadSinceFiltersByCutoff(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(NewMemoryStore(), 0)

	require.NoError(t, s.Save(ctx, entry("old", now.AddDate(0, 0, -8))))
	require.NoError(t, s.Save(ctx, entry("edge", now.AddDate(0, 0, -7))))
	require.NoError(t, s.Save(ctx, entry("new", now)))

	got, err := s.LoadSince(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"edge", "new"}, ids)
}

func TestSessionStoreSkipsUnreadableEntries(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemoryStore()
	s := NewSessionStore(blobs, 2)

	require.NoError(t, s.Save(ctx, entry("good", now)))
	require.NoError(t, blobs.Set(ctx, "corrupt", []byte("{not json")))

	got, err := s.LoadSince(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].ID)
}

func TestSessionStoreListFailure(t *testing.T) {
	s := NewSessionStore(failingList{NewMemoryStore()}, 2)
	_, err := s.LoadSince(context.Background(), now)
	assert.ErrorContains(t, err, "listing unavailable")
}

func TestSessionStoreSaveRequiresID(t *testing.T) {
	s := NewSessionStore(NewMemoryStore(), 2)
	assert.Error(t, s.Save(context.Background(), entry("", now)))
}

func TestSessionStoreOverSQLite(t *testing.T) {
	ctx := context.Background()
	s := NewSessionStore(newSQLiteStore(t), 4)

	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, s.Save(ctx, entry(id, now.Add(time.Duration(i)*time.Minute))))
	}
	got, err := s.LoadSince(ctx, now)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "hero", got[0].Sections[0].Name)
}

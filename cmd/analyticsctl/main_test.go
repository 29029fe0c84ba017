package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectionpulse/api/config"
	"sectionpulse/api/models"
	"sectionpulse/api/store"
	"sectionpulse/api/utils"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

const script = `
session_id: cli-visit
environment:
  viewport_width: 1280
events:
  - {at: 0s, kind: enter, section: hero, ratio: 0.9}
  - {at: 12s, kind: flush}
  - {at: 20s, kind: click, data: {href: "/contact"}}
  - {at: 25s, kind: unload}
`

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o600))
	return path
}

func TestReplayPrintsFinalRecord(t *testing.T) {
	out, err := run(t, "replay", writeScript(t))
	require.NoError(t, err)

	var record models.SessionRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "cli-visit", record.SessionID)
	assert.Equal(t, models.Millis(25000), record.TotalSessionTime)
	assert.True(t, record.ContactEngagement)
}

func TestReplaySubmitsEveryFlush(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := run(t, "replay", writeScript(t), "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), posts.Load())
}

func TestReplayMissingScript(t *testing.T) {
	_, err := run(t, "replay", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestReportFromSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "report.db")
	t.Setenv("ANALYTICS_STORE", config.StoreSQLite)
	t.Setenv("SQLITE_PATH", dbPath)

	cfg, err := config.Parse()
	require.NoError(t, err)
	sessions, closeStore, err := store.Open(context.Background(), cfg)
	require.NoError(t, err)
	for _, id := range []string{"a", "b"} {
		require.NoError(t, sessions.Save(context.Background(), models.StoredEntry{
			ID:               id,
			Timestamp:        time.Now().UTC(),
			Device:           "desktop",
			TotalSessionTime: 20000,
			Sections:         []models.SectionAggregate{{Name: "hero", TimeSpent: 4000}},
		}))
	}
	closeStore()

	out, err := run(t, "report", "--days", "3", "--format", "detailed", "--section", "hero")
	require.NoError(t, err)

	var resp struct {
		PeriodDays    int                   `json:"period_days"`
		TotalSessions int                   `json:"total_sessions"`
		Analytics     models.DetailedReport `json:"analytics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.PeriodDays)
	assert.Equal(t, 2, resp.TotalSessions)
	assert.Len(t, resp.Analytics.DetailedSessions, 2)
	require.NotNil(t, resp.Analytics.SectionAnalysis)
	assert.Equal(t, 100.0, resp.Analytics.SectionAnalysis.ConversionRate)

	_, err = run(t, "report", "--format", "csv")
	assert.ErrorContains(t, err, "unknown --format")
}

func TestTokenAndHashKey(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "cli-secret")

	out, err := run(t, "token", "--subject", "ops")
	require.NoError(t, err)
	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	issuer, err := utils.NewTokenIssuer("cli-secret", time.Hour)
	require.NoError(t, err)
	claims, err := issuer.ValidateJWT(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)

	out, err = run(t, "hash-key", "dash-key")
	require.NoError(t, err)
	assert.NoError(t, utils.CheckAPIKey(strings.TrimSpace(out), "dash-key"))
}

func TestTokenWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	_, err := run(t, "token")
	assert.ErrorContains(t, err, "JWT_SECRET_KEY")
}

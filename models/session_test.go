package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBounce(t *testing.T) {
	assert.True(t, IsBounce(5000, 0))
	assert.False(t, IsBounce(15000, 0))
	assert.False(t, IsBounce(5000, 1))
	assert.False(t, IsBounce(10000, 0))
}

func TestSessionRecordDecodesBrowserPayload(t *testing.T) {
	body := `{
		"sessionId": "a1d_1727000000000_k3j2h1g0f",
		"device": "mobile",
		"totalSessionTime": 12345.6,
		"totalScrollDepth": 64,
		"maxScrollReached": 64,
		"sections": [{"name": "hero", "timeSpent": 4200, "scrollDepth": 30, "interactions": 1, "visits": 2, "visibilityRatio": 0.75}],
		"interactions": [{"type": "click", "timestamp": 1727000001000, "section": null, "data": {"href": "mailto:hi@example.com"}}],
		"exitSection": "",
		"bounceRate": false,
		"contactEngagement": true
	}`

	var r SessionRecord
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, "a1d_1727000000000_k3j2h1g0f", r.SessionID)
	assert.Equal(t, Millis(12346), r.TotalSessionTime)
	require.Len(t, r.Sections, 1)
	assert.Equal(t, Millis(4200), r.Sections[0].TimeSpent)
	assert.Equal(t, 2, r.Sections[0].Visits)
	require.Len(t, r.Interactions, 1)
	assert.Empty(t, r.Interactions[0].Section)
	assert.Equal(t, "mailto:hi@example.com", r.Interactions[0].Data["href"])
	assert.True(t, r.ContactEngagement)
}

func TestMillisRejectsNonNumbers(t *testing.T) {
	var m Millis
	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &m))
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.Equal(t, Millis(0), m)
}

func TestMillisRejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{`1e30`, `-1`, `-0.6`, `9223372036854775807`} {
		var m Millis
		assert.Error(t, json.Unmarshal([]byte(raw), &m), raw)
	}

	var r SessionRecord
	assert.Error(t, json.Unmarshal([]byte(`{"totalSessionTime": 1e30}`), &r))

	var m Millis
	require.NoError(t, json.Unmarshal([]byte(`-0.4`), &m))
	assert.Equal(t, Millis(0), m)
	require.NoError(t, json.Unmarshal([]byte(`1e15`), &m))
	assert.Equal(t, Millis(1e15), m)
}

func TestStoredEntrySectionFoldsRepeatedNames(t *testing.T) {
	e := StoredEntry{Sections: []SectionAggregate{
		{Name: "hero", TimeSpent: 2000, ScrollDepth: 30, Visits: 1},
		{Name: "team", TimeSpent: 1000},
		{Name: "hero", TimeSpent: 8000, ScrollDepth: 55, Visits: 2, Interactions: 1},
	}}

	hero, ok := e.Section("hero")
	require.True(t, ok)
	assert.Equal(t, Millis(10000), hero.TimeSpent)
	assert.Equal(t, 55.0, hero.ScrollDepth)
	assert.Equal(t, 3, hero.Visits)
	assert.Equal(t, 1, hero.Interactions)

	_, ok = e.Section("cta")
	assert.False(t, ok)
}

func TestMillisSeconds(t *testing.T) {
	assert.Equal(t, int64(0), Millis(499).Seconds())
	assert.Equal(t, int64(1), Millis(500).Seconds())
	assert.Equal(t, int64(62), Millis(61500).Seconds())
}

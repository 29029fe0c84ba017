package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sectionpulse/api/models"
)

var visitStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestDraft(t *testing.T) (*Draft, *ManualClock) {
	t.Helper()
	clock := NewManualClock(visitStart)
	return NewDraft(clock, Environment{Page: "index", ViewportWidth: 1440}, WithSessionID("test-session")), clock
}

func section(t *testing.T, r models.SessionRecord, name string) models.SectionAggregate {
	t.Helper()
	for _, s := range r.Sections {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("section %q not in record", name)
	return models.SectionAggregate{}
}

func TestDraftTimeGoesToActiveSectionOnly(t *testing.T) {
	d, clock := newTestDraft(t)

	d.EnterSection("hero", 0.5)
	clock.Advance(4 * time.Second)
	d.EnterSection("problem", 0.8) // finalizes hero
	clock.Advance(6 * time.Second)
	d.ExitSection("problem")
	clock.Advance(30 * time.Second) // nothing active
	d.EnterSection("hero", 0.9)
	clock.Advance(2 * time.Second)

	r := d.Flush(true)

	hero := section(t, r, "hero")
	assert.Equal(t, models.Millis(6000), hero.TimeSpent)
	assert.Equal(t, 2, hero.Visits)
	assert.Equal(t, 0.9, hero.VisibilityRatio)

	problem := section(t, r, "problem")
	assert.Equal(t, models.Millis(6000), problem.TimeSpent)
	assert.Equal(t, 1, problem.Visits)

	assert.Equal(t, models.Millis(42000), r.TotalSessionTime)
	assert.Equal(t, []string{"hero", "problem"}, []string{r.Sections[0].Name, r.Sections[1].Name})
}

func TestDraftStaleExitIsIgnored(t *testing.T) {
	d, clock := newTestDraft(t)

	d.EnterSection("hero", 0.5)
	clock.Advance(time.Second)
	d.EnterSection("team", 0.5)
	d.ExitSection("hero") // late exit for the previous section
	clock.Advance(3 * time.Second)

	assert.Equal(t, "team", d.CurrentSection())
	r := d.Flush(true)
	assert.Equal(t, models.Millis(3000), section(t, r, "team").TimeSpent)
	assert.Equal(t, models.Millis(1000), section(t, r, "hero").TimeSpent)
}

func TestDraftReenteringActiveSectionIsNoop(t *testing.T) {
	d, clock := newTestDraft(t)

	d.EnterSection("hero", 0.3)
	clock.Advance(2 * time.Second)
	d.EnterSection("hero", 0.7)
	clock.Advance(2 * time.Second)

	hero := section(t, d.Flush(true), "hero")
	assert.Equal(t, 1, hero.Visits)
	assert.Equal(t, 0.3, hero.VisibilityRatio)
	assert.Equal(t, models.Millis(4000), hero.TimeSpent)
}

func TestDraftHiddenTimeIsExcluded(t *testing.T) {
	d, clock := newTestDraft(t)

	d.EnterSection("solution", 0.6)
	clock.Advance(5 * time.Second)
	d.SetHidden(true)
	clock.Advance(time.Minute)
	assert.Equal(t, "solution", d.CurrentSection())
	d.SetHidden(false)
	clock.Advance(3 * time.Second)

	r := d.Flush(true)
	assert.Equal(t, models.Millis(8000), section(t, r, "solution").TimeSpent)
	assert.Equal(t, "solution", r.ExitSection)
}

func TestDraftEnterWhileHiddenStartsOnShow(t *testing.T) {
	d, clock := newTestDraft(t)

	d.SetHidden(true)
	d.EnterSection("cta", 0.5)
	clock.Advance(10 * time.Second)
	d.SetHidden(false)
	clock.Advance(2 * time.Second)

	assert.Equal(t, models.Millis(2000), section(t, d.Flush(true), "cta").TimeSpent)
}

func TestDraftPeriodicFlushDoesNotDoubleCount(t *testing.T) {
	d, clock := newTestDraft(t)

	d.EnterSection("benefits", 0.5)
	clock.Advance(30 * time.Second)
	first := d.Flush(false)
	assert.Equal(t, models.Millis(30000), section(t, first, "benefits").TimeSpent)

	clock.Advance(30 * time.Second)
	second := d.Flush(false)
	assert.Equal(t, models.Millis(60000), section(t, second, "benefits").TimeSpent)

	clock.Advance(500 * time.Millisecond)
	final := d.Flush(true)
	assert.Equal(t, models.Millis(60500), section(t, final, "benefits").TimeSpent)

	// an exit signal after the final flush must not add the interval again
	clock.Advance(10 * time.Second)
	d.ExitSection("benefits")
	again := d.Flush(true)
	assert.Equal(t, models.Millis(60500), section(t, again, "benefits").TimeSpent)
}

func TestDraftScroll(t *testing.T) {
	d, _ := newTestDraft(t)

	d.RecordScroll(20, "down", 10) // no active section
	d.EnterSection("hero", 0.5)
	d.RecordScroll(45, "down", 30)
	d.RecordScroll(30, "up", 30)
	d.EnterSection("team", 0.5)
	d.RecordScroll(70, "down", 50)
	d.RecordScroll(140, "down", 50)

	r := d.Flush(true)
	assert.Equal(t, 45.0, section(t, r, "hero").ScrollDepth)
	assert.Equal(t, 100.0, section(t, r, "team").ScrollDepth)
	assert.Equal(t, 100.0, r.MaxScrollReached)
	assert.Equal(t, r.MaxScrollReached, r.TotalScrollDepth)
	assert.Empty(t, r.Interactions)
}

func TestDraftFastScrollIsAnInteraction(t *testing.T) {
	d, _ := newTestDraft(t)
	d.EnterSection("hero", 0.5)

	d.RecordScroll(60, "down", 250)

	r := d.Flush(true)
	require.Len(t, r.Interactions, 1)
	assert.Equal(t, "fast_scroll", r.Interactions[0].Type)
	assert.Equal(t, "hero", r.Interactions[0].Section)
	assert.Equal(t, 1, section(t, r, "hero").Interactions)
}

func TestDraftInteractionsAndFlags(t *testing.T) {
	d, clock := newTestDraft(t)

	d.RecordInteraction("form_focus", map[string]any{"element": "input"})
	d.EnterSection("cta", 0.5)
	clock.Advance(time.Second)
	d.RecordInteraction("click", map[string]any{"href": "https://example.com/presentation.pdf"})
	d.RecordInteraction("click", map[string]any{"href": "mailto:hello@example.com"})
	d.TrackCustomEvent("video_play", map[string]any{"position": 3})

	r := d.Flush(true)
	require.Len(t, r.Interactions, 4)
	assert.Empty(t, r.Interactions[0].Section)
	assert.Equal(t, "cta", r.Interactions[1].Section)
	assert.Equal(t, visitStart.Add(time.Second).UnixMilli(), r.Interactions[1].Timestamp)
	assert.Equal(t, "custom_event", r.Interactions[3].Type)
	assert.Equal(t, "video_play", r.Interactions[3].Data["eventName"])
	assert.Equal(t, 3, section(t, r, "cta").Interactions)

	assert.True(t, r.ViewedPresentation)
	assert.True(t, r.ContactEngagement)
	assert.True(t, r.EmailClicked)
}

func TestDraftFlagsNeverReset(t *testing.T) {
	d, _ := newTestDraft(t)
	d.RecordInteraction("click", map[string]any{"href": "/contact"})
	d.RecordInteraction("click", map[string]any{"href": "/about"})

	r := d.Flush(false)
	assert.True(t, r.ContactEngagement)
	assert.True(t, r.EmailClicked)
	assert.False(t, r.ViewedPresentation)
}

func TestDraftBounce(t *testing.T) {
	tests := []struct {
		name         string
		duration     time.Duration
		interactions int
		want         bool
	}{
		{"short and idle", 5 * time.Second, 0, true},
		{"long and idle", 15 * time.Second, 0, false},
		{"short with a click", 5 * time.Second, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, clock := newTestDraft(t)
			for i := 0; i < tt.interactions; i++ {
				d.RecordInteraction("click", nil)
			}
			clock.Advance(tt.duration)
			assert.Equal(t, tt.want, d.Flush(true).BounceRate)
		})
	}
}

func TestDraftRecordEnvironment(t *testing.T) {
	clock := NewManualClock(visitStart)
	d := NewDraft(clock, Environment{ViewportWidth: 800, Language: "pt-BR"})

	r := d.Flush(false)
	assert.Regexp(t, `^a1d_\d+_[0-9a-f]{9}$`, r.SessionID)
	assert.Equal(t, "tablet", r.Device)
	assert.Equal(t, "pt-BR", r.Language)
	assert.Equal(t, visitStart.UnixMilli(), r.ExitTime)
}

func TestDeviceClass(t *testing.T) {
	assert.Equal(t, "mobile", DeviceClass(375))
	assert.Equal(t, "mobile", DeviceClass(768))
	assert.Equal(t, "tablet", DeviceClass(1024))
	assert.Equal(t, "desktop", DeviceClass(1025))
}

func TestDraftMetrics(t *testing.T) {
	d, clock := newTestDraft(t)
	d.EnterSection("hero", 0.5)
	d.RecordScroll(33, "down", 5)
	clock.Advance(1500 * time.Millisecond)

	m := d.Metrics()
	assert.Equal(t, Metrics{
		SessionID:        "test-session",
		CurrentSection:   "hero",
		SessionTime:      1500,
		SectionsVisited:  1,
		MaxScrollReached: 33,
	}, m)
}

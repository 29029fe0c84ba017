// models/session.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// BounceThreshold is the session duration under which a session with no
// interactions counts as a bounce.
const BounceThreshold Millis = 10000

// Millis is a duration in milliseconds as reported by the browser clock.
// Fractional values are rounded so sums stay exact integers.
type Millis int64

// MaxMillis bounds decoded durations so that adding two of them cannot
// overflow.
const MaxMillis = Millis(math.MaxInt64 / 2)

func (m *Millis) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("invalid millisecond value %s: %w", string(b), err)
	}
	f = math.Round(f)
	if math.IsNaN(f) || f < 0 || f > float64(MaxMillis) {
		return fmt.Errorf("millisecond value %s out of range [0, %d]", string(b), MaxMillis)
	}
	*m = min(Millis(f), MaxMillis)
	return nil
}

// Seconds returns m in seconds, rounded half up.
func (m Millis) Seconds() int64 {
	return int64(math.Floor(float64(m)/1000 + 0.5))
}

// SectionAggregate accumulates everything observed for one named page section
// over a visit. Repeated visits to the same section fold into one aggregate.
type SectionAggregate struct {
	Name            string  `json:"name"`
	TimeSpent       Millis  `json:"timeSpent"`
	EnterTime       int64   `json:"enterTime,omitempty"`
	ExitTime        int64   `json:"exitTime,omitempty"`
	ScrollDepth     float64 `json:"scrollDepth"`
	Interactions    int     `json:"interactions"`
	VisibilityRatio float64 `json:"visibilityRatio"`
	Visits          int     `json:"visits"`
}

// Interaction is one recorded visitor action. Section is the section that was
// active when it happened, empty when none was.
type Interaction struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Section   string         `json:"section,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// SessionRecord is the snapshot a recorder submits to the ingest endpoint.
// A visit may submit several records; each carries cumulative totals.
type SessionRecord struct {
	SessionID        string `json:"sessionId"`
	Page             string `json:"page"`
	Device           string `json:"device"`
	UserAgent        string `json:"userAgent"`
	ScreenResolution string `json:"screenResolution"`
	Language         string `json:"language"`
	Referrer         string `json:"referrer"`

	TotalSessionTime Millis  `json:"totalSessionTime"`
	TotalScrollDepth float64 `json:"totalScrollDepth"`
	MaxScrollReached float64 `json:"maxScrollReached"`

	Sections     []SectionAggregate `json:"sections"`
	Interactions []Interaction      `json:"interactions"`

	ExitSection string `json:"exitSection"`
	ExitTime    int64  `json:"exitTime"`
	BounceRate  bool   `json:"bounceRate"`

	ViewedPresentation bool `json:"viewedPresentation"`
	ContactEngagement  bool `json:"contactEngagement"`
	EmailClicked       bool `json:"emailClicked"`
}

// EntryMetadata is computed server side when a record is stored.
type EntryMetadata struct {
	Version         string    `json:"version"`
	Source          string    `json:"source"`
	SavedAt         time.Time `json:"saved_at"`
	TotalSections   int       `json:"total_sections"`
	EngagementScore int       `json:"engagement_score"`
}

// StoredEntry is the persisted form of a session, keyed by ID. A later save
// with the same ID replaces the earlier one.
type StoredEntry struct {
	ID               string    `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	Page             string    `json:"page"`
	Device           string    `json:"device"`
	UserAgent        string    `json:"userAgent"`
	ScreenResolution string    `json:"screenResolution"`
	Language         string    `json:"language"`
	Referrer         string    `json:"referrer"`

	TotalSessionTime Millis  `json:"totalSessionTime"`
	TotalScrollDepth float64 `json:"totalScrollDepth"`
	MaxScrollReached float64 `json:"maxScrollReached"`

	Sections     []SectionAggregate `json:"sections"`
	Interactions []Interaction      `json:"interactions"`

	ExitSection string `json:"exitSection"`
	ExitTime    int64  `json:"exitTime"`
	BounceRate  bool   `json:"bounceRate"`

	ViewedPresentation bool `json:"viewedPresentation"`
	ContactEngagement  bool `json:"contactEngagement"`
	EmailClicked       bool `json:"emailClicked"`

	Metadata EntryMetadata `json:"metadata"`
}

// Section returns the aggregate named name, if the entry has one. Repeated
// aggregates with the same name are folded: times, interactions and visits
// add up, scroll depth and visibility keep the maximum.
func (e *StoredEntry) Section(name string) (SectionAggregate, bool) {
	var (
		out   SectionAggregate
		found bool
	)
	for _, s := range e.Sections {
		if s.Name != name {
			continue
		}
		if !found {
			out, found = s, true
			continue
		}
		out.TimeSpent += s.TimeSpent
		out.Interactions += s.Interactions
		out.Visits += s.Visits
		out.ScrollDepth = max(out.ScrollDepth, s.ScrollDepth)
		out.VisibilityRatio = max(out.VisibilityRatio, s.VisibilityRatio)
	}
	return out, found
}

// IsBounce reports whether a session of the given length and interaction
// count is a bounce.
func IsBounce(totalSessionTime Millis, interactionCount int) bool {
	return totalSessionTime < BounceThreshold && interactionCount == 0
}

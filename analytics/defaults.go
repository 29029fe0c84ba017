// Package analytics holds the server side aggregation: turning submitted
// session records into stored entries and reducing stored entries into
// summary and detailed reports. Everything here is pure.
package analytics

import (
	"time"

	"sectionpulse/api/models"
)

const (
	DefaultPage     = "index"
	DefaultDevice   = "unknown"
	DefaultLanguage = "en"

	EntryVersion = "1.0"
	EntrySource  = "a1-diagnosis-website"
)

// FillDefaults is the one place optional record fields get their defaults.
// It returns the entry to persist under id, stamped with now and scored.
func FillDefaults(r models.SessionRecord, id string, now time.Time) models.StoredEntry {
	if r.Page == "" {
		r.Page = DefaultPage
	}
	if r.Device == "" {
		r.Device = DefaultDevice
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Sections == nil {
		r.Sections = []models.SectionAggregate{}
	}
	if r.Interactions == nil {
		r.Interactions = []models.Interaction{}
	}
	// Older recorders only sent one of the two scroll fields.
	if r.MaxScrollReached == 0 {
		r.MaxScrollReached = r.TotalScrollDepth
	}
	if r.TotalScrollDepth == 0 {
		r.TotalScrollDepth = r.MaxScrollReached
	}

	now = now.UTC()
	return models.StoredEntry{
		ID:                 id,
		Timestamp:          now,
		Page:               r.Page,
		Device:             r.Device,
		UserAgent:          r.UserAgent,
		ScreenResolution:   r.ScreenResolution,
		Language:           r.Language,
		Referrer:           r.Referrer,
		TotalSessionTime:   r.TotalSessionTime,
		TotalScrollDepth:   r.TotalScrollDepth,
		MaxScrollReached:   r.MaxScrollReached,
		Sections:           r.Sections,
		Interactions:       r.Interactions,
		ExitSection:        r.ExitSection,
		ExitTime:           r.ExitTime,
		BounceRate:         r.BounceRate,
		ViewedPresentation: r.ViewedPresentation,
		ContactEngagement:  r.ContactEngagement,
		EmailClicked:       r.EmailClicked,
		Metadata: models.EntryMetadata{
			Version:         EntryVersion,
			Source:          EntrySource,
			SavedAt:         now,
			TotalSections:   len(r.Sections),
			EngagementScore: EngagementScore(&r),
		},
	}
}

func deviceOf(e *models.StoredEntry) string {
	if e.Device == "" {
		return DefaultDevice
	}
	return e.Device
}

func pageOf(e *models.StoredEntry) string {
	if e.Page == "" {
		return DefaultPage
	}
	return e.Page
}

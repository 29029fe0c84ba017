package analytics

import (
	"slices"
	"strings"

	"sectionpulse/api/models"
)

// MaxRecentSessions caps the session list in a detailed report.
const MaxRecentSessions = 100

// Detailed extends the summary with the most recent sessions and, when
// section names a section seen in the window, the per-session time spent in
// it. entries is not modified.
func Detailed(entries []models.StoredEntry, section string) models.DetailedReport {
	report := models.DetailedReport{
		SummaryReport:    Summary(entries),
		DetailedSessions: []models.SessionView{},
	}

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b models.StoredEntry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	for i := range sorted {
		if i == MaxRecentSessions {
			break
		}
		report.DetailedSessions = append(report.DetailedSessions, sessionView(&sorted[i]))
	}

	if _, ok := report.Sections[section]; ok && section != "" {
		report.SectionAnalysis = analyzeSection(sorted, section)
	}
	return report
}

func sessionView(e *models.StoredEntry) models.SessionView {
	return models.SessionView{
		ID:                 e.ID,
		Timestamp:          e.Timestamp,
		DurationSeconds:    e.TotalSessionTime.Seconds(),
		ScrollDepth:        e.TotalScrollDepth,
		SectionsVisited:    len(e.Sections),
		EngagementScore:    e.Metadata.EngagementScore,
		Device:             deviceOf(e),
		Page:               pageOf(e),
		ViewedPresentation: e.ViewedPresentation,
		ContactEngagement:  e.ContactEngagement,
	}
}

func analyzeSection(entries []models.StoredEntry, name string) *models.SectionAnalysis {
	analysis := &models.SectionAnalysis{
		SectionName:      name,
		TimeDistribution: []models.TimeSample{},
	}
	for i := range entries {
		s, ok := entries[i].Section(name)
		if !ok {
			continue
		}
		analysis.TimeDistribution = append(analysis.TimeDistribution, models.TimeSample{
			SessionID:        entries[i].ID,
			TimeSpentSeconds: s.TimeSpent.Seconds(),
			ScrollDepth:      s.ScrollDepth,
		})
	}
	analysis.TotalSessions = len(analysis.TimeDistribution)
	analysis.ConversionRate = percent(analysis.TotalSessions, len(entries))
	return analysis
}

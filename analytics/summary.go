package analytics

import (
	"sectionpulse/api/models"
)

// HighEngagementScore is the score a session must exceed to count as highly
// engaged.
const HighEngagementScore = 60

// Summary reduces entries into per-section, per-device and engagement
// rollups. Only sums, counts and maxima are accumulated, so the result does
// not depend on the order of entries.
func Summary(entries []models.StoredEntry) models.SummaryReport {
	report := models.SummaryReport{
		Sections: map[string]models.SectionStats{},
		Devices:  map[string]int{},
	}
	total := len(entries)
	if total == 0 {
		return report
	}

	var (
		totalTime   models.Millis
		bounced     int
		scoreSum    int
		highScoring int
	)
	for i := range entries {
		e := &entries[i]
		totalTime += e.TotalSessionTime
		if e.BounceRate {
			bounced++
		}
		if e.ViewedPresentation {
			report.Summary.PresentationViews++
		}
		if e.ContactEngagement {
			report.Summary.ContactEngagements++
		}

		for name, spent := range sectionTimes(e) {
			stats := report.Sections[name]
			stats.TotalViews++
			stats.TotalTime += spent
			if spent > stats.MaxTime {
				stats.MaxTime = spent
			}
			report.Sections[name] = stats
		}

		report.Devices[deviceOf(e)]++

		scoreSum += e.Metadata.EngagementScore
		if e.Metadata.EngagementScore > HighEngagementScore {
			highScoring++
		}
	}

	for name, stats := range report.Sections {
		stats.AverageTime = float64(stats.TotalTime) / float64(stats.TotalViews)
		stats.EngagementRate = percent(stats.TotalViews, total)
		stats.AverageTimeSeconds = round(stats.AverageTime / 1000)
		report.Sections[name] = stats
	}

	report.Summary.TotalSessions = total
	report.Summary.AverageTimeSeconds = round(float64(totalTime) / float64(total) / 1000)
	report.Summary.BounceRate = round(percent(bounced, total))

	report.Engagement = models.EngagementStats{
		AverageScore:           round(float64(scoreSum) / float64(total)),
		HighEngagementSessions: highScoring,
		EngagementRate:         round(percent(highScoring, total)),
	}
	return report
}

// sectionTimes returns time spent per distinct section name in e. A name that
// appears twice in one entry still counts as a single view.
func sectionTimes(e *models.StoredEntry) map[string]models.Millis {
	times := make(map[string]models.Millis, len(e.Sections))
	for _, s := range e.Sections {
		times[s.Name] += s.TimeSpent
	}
	return times
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) * 100 / float64(whole)
}

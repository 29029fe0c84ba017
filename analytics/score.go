package analytics

import (
	"math"

	"sectionpulse/api/models"
)

const (
	maxTimeScore        = 40
	maxScrollScore      = 20
	maxSectionScore     = 30
	maxInteractionScore = 10

	// A section counts toward the section score once the visitor spent
	// strictly more than this in it.
	qualifyingSectionTime models.Millis = 3000
)

// EngagementScore folds a session record into a 0-100 score: up to 40 points
// for time on page (10 per minute), 20 for scroll depth, 30 for sections
// read for more than three seconds (5 each) and 10 for interactions (2 each).
func EngagementScore(r *models.SessionRecord) int {
	minutes := float64(r.TotalSessionTime) / 1000 / 60
	timeScore := capped(minutes*10, maxTimeScore)

	scrollScore := capped(r.MaxScrollReached*maxScrollScore/100, maxScrollScore)

	qualifying := 0
	for _, s := range r.Sections {
		if s.TimeSpent > qualifyingSectionTime {
			qualifying++
		}
	}
	sectionScore := capped(float64(qualifying*5), maxSectionScore)

	interactionScore := capped(float64(len(r.Interactions)*2), maxInteractionScore)

	return int(round(timeScore + scrollScore + sectionScore + interactionScore))
}

func capped(v, limit float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(limit, v)
}

// round rounds half up, the way browser dashboards display these figures.
func round(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

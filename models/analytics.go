// models/analytics.go
package models

import "time"

type SummaryStats struct {
	TotalSessions      int   `json:"total_sessions"`
	AverageTimeSeconds int64 `json:"average_time_seconds"`
	BounceRate         int64 `json:"bounce_rate"`
	PresentationViews  int   `json:"presentation_views"`
	ContactEngagements int   `json:"contact_engagements"`
}

type SectionStats struct {
	TotalViews         int     `json:"total_views"`
	TotalTime          Millis  `json:"total_time"`
	AverageTime        float64 `json:"average_time"`
	MaxTime            Millis  `json:"max_time"`
	EngagementRate     float64 `json:"engagement_rate"`
	AverageTimeSeconds int64   `json:"average_time_seconds"`
}

type EngagementStats struct {
	AverageScore           int64 `json:"average_score"`
	HighEngagementSessions int   `json:"high_engagement_sessions"`
	EngagementRate         int64 `json:"engagement_rate"`
}

// SummaryReport is the cross-session rollup returned for format=summary.
type SummaryReport struct {
	Summary    SummaryStats            `json:"summary"`
	Sections   map[string]SectionStats `json:"sections"`
	Devices    map[string]int          `json:"devices"`
	Engagement EngagementStats         `json:"engagement"`
}

// SessionView is the compact per-session projection in a detailed report.
type SessionView struct {
	ID                 string    `json:"id"`
	Timestamp          time.Time `json:"timestamp"`
	DurationSeconds    int64     `json:"duration_seconds"`
	ScrollDepth        float64   `json:"scroll_depth"`
	SectionsVisited    int       `json:"sections_visited"`
	EngagementScore    int       `json:"engagement_score"`
	Device             string    `json:"device"`
	Page               string    `json:"page"`
	ViewedPresentation bool      `json:"viewed_presentation"`
	ContactEngagement  bool      `json:"contact_engagement"`
}

type TimeSample struct {
	SessionID        string  `json:"session_id"`
	TimeSpentSeconds int64   `json:"time_spent_seconds"`
	ScrollDepth      float64 `json:"scroll_depth"`
}

// SectionAnalysis covers only the sessions that contain one section.
// TimeDistribution is left unaggregated.
type SectionAnalysis struct {
	SectionName      string       `json:"section_name"`
	TotalSessions    int          `json:"total_sessions"`
	ConversionRate   float64      `json:"conversion_rate"`
	TimeDistribution []TimeSample `json:"time_distribution"`
}

// DetailedReport is returned for format=detailed.
type DetailedReport struct {
	SummaryReport
	DetailedSessions []SessionView   `json:"detailed_sessions"`
	SectionAnalysis  *SectionAnalysis `json:"section_analysis"`
}

type IngestResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type QueryResponse struct {
	Success       bool `json:"success"`
	PeriodDays    int  `json:"period_days"`
	TotalSessions int  `json:"total_sessions"`
	Analytics     any  `json:"analytics"`
}

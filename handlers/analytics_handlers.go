package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sectionpulse/api/analytics"
	"sectionpulse/api/metrics"
	"sectionpulse/api/models"
	"sectionpulse/api/utils"
)

// SessionRepository is the persistence the analytics endpoints need.
type SessionRepository interface {
	Save(ctx context.Context, entry models.StoredEntry) error
	LoadSince(ctx context.Context, cutoff time.Time) ([]models.StoredEntry, error)
}

type AnalyticsHandlers struct {
	Sessions      SessionRepository
	DefaultDays   int
	RetentionDays int
	Timeout       time.Duration

	now func() time.Time
}

func NewAnalyticsHandlers(sessions SessionRepository, defaultDays, retentionDays int, timeout time.Duration) *AnalyticsHandlers {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AnalyticsHandlers{
		Sessions:      sessions,
		DefaultDays:   defaultDays,
		RetentionDays: retentionDays,
		Timeout:       timeout,
		now:           time.Now,
	}
}

// Ingest stores one session record. Persistence failures are logged and the
// caller still gets a success response.
func (h *AnalyticsHandlers) Ingest(c *gin.Context) {
	var record models.SessionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		log.Printf("Error binding session record JSON: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save analytics data", "details": err.Error()})
		return
	}

	id := utils.SessionIDOrNew(record.SessionID)
	entry := analytics.FillDefaults(record, id, h.now())

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	if err := h.Sessions.Save(ctx, entry); err != nil {
		log.Printf("Analytics data for session %s not persisted: %v", id, err)
		metrics.RecordIngest(metrics.IngestDropped)
	} else {
		metrics.RecordIngest(metrics.IngestSaved)
	}

	c.JSON(http.StatusOK, models.IngestResponse{
		Success:   true,
		SessionID: id,
		Message:   "Analytics data saved successfully",
	})
}

// Query reduces the entries of the last `days` days into a summary or, with
// format=detailed, a detailed report.
func (h *AnalyticsHandlers) Query(c *gin.Context) {
	days, err := utils.ParseDays(c.Query("days"), h.DefaultDays, h.RetentionDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'days' parameter", "details": err.Error()})
		return
	}
	format, _ := utils.NormalizeFormat(c.Query("format"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	cutoff := h.now().UTC().AddDate(0, 0, -days)
	start := time.Now()
	entries, err := h.Sessions.LoadSince(ctx, cutoff)
	if err != nil {
		log.Printf("Error loading analytics entries, serving an empty result: %v", err)
		entries = nil
	}
	metrics.RecordLoad(time.Since(start), len(entries))
	metrics.RecordQuery(format)

	var report any
	if format == utils.FormatDetailed {
		report = analytics.Detailed(entries, c.Query("section"))
	} else {
		report = analytics.Summary(entries)
	}

	c.JSON(http.StatusOK, models.QueryResponse{
		Success:       true,
		PeriodDays:    days,
		TotalSessions: len(entries),
		Analytics:     report,
	})
}

// MethodNotAllowed answers requests whose path exists under another method.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
}

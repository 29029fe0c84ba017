// Package recorder folds a visitor's section, scroll and interaction events
// into one session draft and turns that draft into session records for the
// ingest endpoint.
package recorder

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sectionpulse/api/models"
)

const (
	defaultFastScrollSpeed    = 100
	defaultPresentationMarker = "presentation"
)

var defaultContactMarkers = []string{"mailto", "contact"}

// Clock is the time source for a draft.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Environment describes the page and browser a draft is recorded in.
type Environment struct {
	Page             string `yaml:"page"`
	UserAgent        string `yaml:"user_agent"`
	ScreenResolution string `yaml:"screen_resolution"`
	Language         string `yaml:"language"`
	Referrer         string `yaml:"referrer"`
	ViewportWidth    int    `yaml:"viewport_width"`
}

// DeviceClass buckets a viewport width into mobile, tablet or desktop.
func DeviceClass(viewportWidth int) string {
	switch {
	case viewportWidth <= 768:
		return "mobile"
	case viewportWidth <= 1024:
		return "tablet"
	default:
		return "desktop"
	}
}

// NewSessionID returns an id of the form a1d_<unix millis>_<random>.
func NewSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return "a1d_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + random
}

// Option configures a Draft.
type Option func(*Draft)

// WithSessionID fixes the session id instead of generating one.
func WithSessionID(id string) Option {
	return func(d *Draft) { d.sessionID = id }
}

// WithFastScrollSpeed sets the scroll speed above which a fast_scroll
// interaction is recorded. Zero or less disables it.
func WithFastScrollSpeed(speed float64) Option {
	return func(d *Draft) { d.fastScrollSpeed = speed }
}

// Draft is the mutable state of one page visit. It is not safe for
// concurrent use; Recorder serializes access to it.
//
// At most one section is active at a time. Time accrues to the active
// section only while its clock runs, which it does not while the page is
// hidden.
type Draft struct {
	clock Clock
	env   Environment

	fastScrollSpeed    float64
	presentationMarker string
	contactMarkers     []string

	sessionID string
	startedAt time.Time
	exitAt    time.Time

	current      string
	clockRunning bool
	sectionStart time.Time
	hidden       bool

	order        []string
	sections     map[string]*models.SectionAggregate
	interactions []models.Interaction
	maxScroll    float64

	viewedPresentation bool
	contactEngagement  bool
	emailClicked       bool
}

// NewDraft starts a visit at clock.Now().
func NewDraft(clock Clock, env Environment, opts ...Option) *Draft {
	if clock == nil {
		clock = SystemClock()
	}
	d := &Draft{
		clock:              clock,
		env:                env,
		fastScrollSpeed:    defaultFastScrollSpeed,
		presentationMarker: defaultPresentationMarker,
		contactMarkers:     defaultContactMarkers,
		startedAt:          clock.Now(),
		sections:           make(map[string]*models.SectionAggregate),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.sessionID == "" {
		d.sessionID = NewSessionID(d.startedAt)
	}
	return d
}

func (d *Draft) SessionID() string      { return d.sessionID }
func (d *Draft) CurrentSection() string { return d.current }
func (d *Draft) Hidden() bool           { return d.hidden }

// EnterSection makes name the active section, first finalizing whichever
// section was active. Entering the already active section does nothing.
func (d *Draft) EnterSection(name string, visibilityRatio float64) {
	if name == "" || name == d.current {
		return
	}
	if d.current != "" {
		d.finalize()
	}

	now := d.clock.Now()
	d.current = name
	if !d.hidden {
		d.startClock(now)
	}

	agg, ok := d.sections[name]
	if !ok {
		d.sections[name] = &models.SectionAggregate{
			Name:            name,
			EnterTime:       now.UnixMilli(),
			VisibilityRatio: visibilityRatio,
			Visits:          1,
		}
		d.order = append(d.order, name)
		return
	}
	agg.Visits++
	agg.EnterTime = now.UnixMilli()
	if visibilityRatio > agg.VisibilityRatio {
		agg.VisibilityRatio = visibilityRatio
	}
}

// ExitSection finalizes name if it is the active section. Exits for any
// other section are stale and ignored.
func (d *Draft) ExitSection(name string) {
	if name == "" || name != d.current {
		return
	}
	d.finalize()
	d.current = ""
}

// RecordScroll notes a page scroll position in percent. The page maximum is
// tracked whether or not a section is active.
func (d *Draft) RecordScroll(percent float64, direction string, speed float64) {
	percent = clampPercent(percent)
	if percent > d.maxScroll {
		d.maxScroll = percent
	}
	if agg := d.active(); agg != nil && percent > agg.ScrollDepth {
		agg.ScrollDepth = percent
	}
	if d.fastScrollSpeed > 0 && speed > d.fastScrollSpeed {
		d.RecordInteraction("fast_scroll", map[string]any{
			"direction":     direction,
			"speed":         speed,
			"scrollPercent": percent,
			"section":       d.current,
		})
	}
}

// RecordInteraction appends an interaction attributed to the active section.
// Links to the presentation or to a contact address set the matching flags.
func (d *Draft) RecordInteraction(kind string, data map[string]any) {
	d.interactions = append(d.interactions, models.Interaction{
		Type:      kind,
		Timestamp: d.clock.Now().UnixMilli(),
		Section:   d.current,
		Data:      data,
	})
	if agg := d.active(); agg != nil {
		agg.Interactions++
	}

	href, _ := data["href"].(string)
	if href == "" {
		return
	}
	if strings.Contains(href, d.presentationMarker) {
		d.viewedPresentation = true
	}
	for _, marker := range d.contactMarkers {
		if strings.Contains(href, marker) {
			d.contactEngagement = true
			d.emailClicked = true
			break
		}
	}
}

// TrackCustomEvent records a named custom_event interaction.
func (d *Draft) TrackCustomEvent(name string, data map[string]any) {
	payload := map[string]any{"eventName": name}
	for k, v := range data {
		payload[k] = v
	}
	d.RecordInteraction("custom_event", payload)
}

// SetHidden stops the active section's clock when the page is hidden and
// restarts it when the page becomes visible. The active section is kept.
func (d *Draft) SetHidden(hidden bool) {
	if hidden == d.hidden {
		return
	}
	d.hidden = hidden
	if hidden {
		d.finalize()
		return
	}
	if d.current != "" {
		d.startClock(d.clock.Now())
	}
}

// Flush credits the time elapsed since the last flush to the active section
// and returns a record of the visit so far. A periodic flush keeps the clock
// running from now; a final flush stops it and marks the exit time.
func (d *Draft) Flush(final bool) models.SessionRecord {
	now := d.clock.Now()
	if final {
		d.finalize()
		d.exitAt = now
	} else if agg := d.active(); agg != nil && d.clockRunning {
		agg.TimeSpent += elapsed(d.sectionStart, now)
		d.sectionStart = now
	}
	return d.record(now)
}

// Metrics is a lightweight view of the draft for debugging.
type Metrics struct {
	SessionID         string
	CurrentSection    string
	SessionTime       models.Millis
	SectionsVisited   int
	InteractionsCount int
	MaxScrollReached  float64
}

func (d *Draft) Metrics() Metrics {
	return Metrics{
		SessionID:         d.sessionID,
		CurrentSection:    d.current,
		SessionTime:       elapsed(d.startedAt, d.clock.Now()),
		SectionsVisited:   len(d.order),
		InteractionsCount: len(d.interactions),
		MaxScrollReached:  d.maxScroll,
	}
}

func (d *Draft) active() *models.SectionAggregate {
	if d.current == "" {
		return nil
	}
	return d.sections[d.current]
}

func (d *Draft) startClock(now time.Time) {
	d.sectionStart = now
	d.clockRunning = true
}

// finalize credits elapsed time to the active section and stops its clock.
func (d *Draft) finalize() {
	agg := d.active()
	if agg == nil || !d.clockRunning {
		return
	}
	now := d.clock.Now()
	agg.TimeSpent += elapsed(d.sectionStart, now)
	agg.ExitTime = now.UnixMilli()
	d.clockRunning = false
}

func (d *Draft) record(now time.Time) models.SessionRecord {
	sessionTime := elapsed(d.startedAt, now)

	sections := make([]models.SectionAggregate, 0, len(d.order))
	for _, name := range d.order {
		sections = append(sections, *d.sections[name])
	}
	interactions := make([]models.Interaction, len(d.interactions))
	copy(interactions, d.interactions)

	exitTime := now.UnixMilli()
	if !d.exitAt.IsZero() {
		exitTime = d.exitAt.UnixMilli()
	}

	return models.SessionRecord{
		SessionID:          d.sessionID,
		Page:               d.env.Page,
		Device:             DeviceClass(d.env.ViewportWidth),
		UserAgent:          d.env.UserAgent,
		ScreenResolution:   d.env.ScreenResolution,
		Language:           d.env.Language,
		Referrer:           d.env.Referrer,
		TotalSessionTime:   sessionTime,
		TotalScrollDepth:   d.maxScroll,
		MaxScrollReached:   d.maxScroll,
		Sections:           sections,
		Interactions:       interactions,
		ExitSection:        d.current,
		ExitTime:           exitTime,
		BounceRate:         models.IsBounce(sessionTime, len(interactions)),
		ViewedPresentation: d.viewedPresentation,
		ContactEngagement:  d.contactEngagement,
		EmailClicked:       d.emailClicked,
	}
}

func elapsed(from, to time.Time) models.Millis {
	ms := to.Sub(from).Milliseconds()
	if ms < 0 {
		return 0
	}
	return models.Millis(ms)
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

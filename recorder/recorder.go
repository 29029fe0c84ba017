package recorder

import (
	"context"
	"errors"
	"log"
	"time"

	"sectionpulse/api/models"
)

const (
	DefaultSaveInterval = 30 * time.Second
	DefaultEnterRatio   = 0.25

	finalSubmitTimeout = 5 * time.Second
)

// SectionVisibility reports how much of a section is in the viewport.
type SectionVisibility struct {
	Name         string
	Ratio        float64
	Intersecting bool
}

type ScrollEvent struct {
	Percent   float64
	Direction string
	Speed     float64
}

// InteractionEvent is a click, focus or similar. A non-empty Name marks an
// application-defined custom event of that name.
type InteractionEvent struct {
	Type string
	Name string
	Data map[string]any
}

// Source is whatever observes the page: a browser bridge, a test fake or a
// replay. Callbacks may be invoked from any goroutine and in any order.
type Source interface {
	OnSectionVisibilityChange(func(SectionVisibility))
	OnScroll(func(ScrollEvent))
	OnInteraction(func(InteractionEvent))
	OnVisibilityChange(func(hidden bool))
	OnUnload(func())
}

// Submitter delivers a record to the ingest endpoint.
type Submitter interface {
	Submit(ctx context.Context, record models.SessionRecord) error
}

type Config struct {
	// SaveInterval is the period between flushes while the page is visible.
	SaveInterval time.Duration
	// EnterRatio is the minimum intersection ratio at which a visible
	// section becomes the active one.
	EnterRatio float64
}

// Recorder drives a Draft from a Source. All draft mutations happen on the
// goroutine running Run.
type Recorder struct {
	draft     *Draft
	source    Source
	submitter Submitter
	cfg       Config

	events chan event
	done   chan struct{}
}

type event struct {
	apply func()
	final bool
}

func New(draft *Draft, source Source, submitter Submitter, cfg Config) *Recorder {
	if cfg.SaveInterval <= 0 {
		cfg.SaveInterval = DefaultSaveInterval
	}
	if cfg.EnterRatio <= 0 {
		cfg.EnterRatio = DefaultEnterRatio
	}
	return &Recorder{
		draft:     draft,
		source:    source,
		submitter: submitter,
		cfg:       cfg,
		events:    make(chan event, 64),
		done:      make(chan struct{}),
	}
}

// Run subscribes to the source and records until the page unloads or ctx is
// done. Either way a final record is submitted before Run returns.
func (r *Recorder) Run(ctx context.Context) error {
	defer close(r.done)

	r.source.OnSectionVisibilityChange(func(v SectionVisibility) {
		r.post(event{apply: func() { r.handleVisibility(v) }})
	})
	r.source.OnScroll(func(s ScrollEvent) {
		r.post(event{apply: func() { r.draft.RecordScroll(s.Percent, s.Direction, s.Speed) }})
	})
	r.source.OnInteraction(func(i InteractionEvent) {
		r.post(event{apply: func() { r.handleInteraction(i) }})
	})
	r.source.OnVisibilityChange(func(hidden bool) {
		r.post(event{apply: func() { r.draft.SetHidden(hidden) }})
	})
	r.source.OnUnload(func() {
		r.post(event{final: true})
	})

	ticker := time.NewTicker(r.cfg.SaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.submitFinal()
			return ctx.Err()
		case ev := <-r.events:
			if ev.final {
				log.Printf("Page exit detected for session %s", r.draft.SessionID())
				r.submitFinal()
				return nil
			}
			ev.apply()
		case <-ticker.C:
			if r.draft.Hidden() {
				continue
			}
			r.submit(ctx, r.draft.Flush(false))
		}
	}
}

func (r *Recorder) post(ev event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// Metrics returns a snapshot of the draft taken on the recording goroutine.
func (r *Recorder) Metrics(ctx context.Context) (Metrics, error) {
	reply := make(chan Metrics, 1)
	r.post(event{apply: func() { reply <- r.draft.Metrics() }})
	select {
	case m := <-reply:
		return m, nil
	case <-r.done:
		return Metrics{}, errors.New("recorder is not running")
	case <-ctx.Done():
		return Metrics{}, ctx.Err()
	}
}

func (r *Recorder) handleInteraction(i InteractionEvent) {
	if i.Name != "" {
		r.draft.TrackCustomEvent(i.Name, i.Data)
		return
	}
	r.draft.RecordInteraction(i.Type, i.Data)
}

func (r *Recorder) handleVisibility(v SectionVisibility) {
	if v.Intersecting && v.Ratio >= r.cfg.EnterRatio {
		r.draft.EnterSection(v.Name, v.Ratio)
		return
	}
	if !v.Intersecting {
		r.draft.ExitSection(v.Name)
	}
}

func (r *Recorder) submitFinal() {
	ctx, cancel := context.WithTimeout(context.Background(), finalSubmitTimeout)
	defer cancel()
	r.submit(ctx, r.draft.Flush(true))
}

// submit never retries; the next flush carries a newer cumulative snapshot.
func (r *Recorder) submit(ctx context.Context, record models.SessionRecord) {
	if err := r.submitter.Submit(ctx, record); err != nil {
		log.Printf("Error saving analytics for session %s: %v", record.SessionID, err)
		return
	}
	log.Printf("Analytics saved for session %s (%d sections, %d interactions)",
		record.SessionID, len(record.Sections), len(record.Interactions))
}

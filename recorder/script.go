package recorder

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"sectionpulse/api/models"
)

// Script is a scripted visit: a timeline of events replayed against a draft
// with a manual clock. Offsets are relative to the visit start.
//
//	session_id: demo
//	environment:
//	  viewport_width: 1280
//	events:
//	  - {at: 0s, kind: enter, section: hero, ratio: 0.6}
//	  - {at: 12s, kind: scroll, percent: 35, speed: 40}
//	  - {at: 20s, kind: click, data: {href: "/presentation.pdf"}}
//	  - {at: 45s, kind: unload}
type Script struct {
	SessionID   string        `yaml:"session_id"`
	Start       time.Time     `yaml:"start"`
	Environment Environment   `yaml:"environment"`
	Events      []ScriptEvent `yaml:"events"`
}

// ScriptEvent kinds: enter, exit, scroll, hide, show, flush, unload, custom
// (a named custom event), and any other kind is recorded as an interaction
// of that type.
type ScriptEvent struct {
	At        time.Duration  `yaml:"at"`
	Kind      string         `yaml:"kind"`
	Name      string         `yaml:"name"`
	Section   string         `yaml:"section"`
	Ratio     float64        `yaml:"ratio"`
	Percent   float64        `yaml:"percent"`
	Direction string         `yaml:"direction"`
	Speed     float64        `yaml:"speed"`
	Data      map[string]any `yaml:"data"`
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script file: %w", err)
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	var last time.Duration
	for i, ev := range s.Events {
		if ev.Kind == "" {
			return nil, fmt.Errorf("event %d: kind is required", i)
		}
		if ev.Kind == "custom" && ev.Name == "" {
			return nil, fmt.Errorf("event %d: custom events need a name", i)
		}
		if ev.At < last {
			return nil, fmt.Errorf("event %d at %s is earlier than the previous event at %s", i, ev.At, last)
		}
		last = ev.At
	}
	return &s, nil
}

// Replay runs the script and returns every record it flushed, the final one
// last. A script without an unload event is closed with a final flush at
// its last offset.
func (s *Script) Replay() []models.SessionRecord {
	start := s.Start
	if start.IsZero() {
		start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	clock := NewManualClock(start)
	draft := NewDraft(clock, s.Environment, WithSessionID(s.SessionID))

	var records []models.SessionRecord
	for _, ev := range s.Events {
		clock.Set(start.Add(ev.At))
		switch ev.Kind {
		case "enter":
			draft.EnterSection(ev.Section, ev.Ratio)
		case "exit":
			draft.ExitSection(ev.Section)
		case "scroll":
			draft.RecordScroll(ev.Percent, ev.Direction, ev.Speed)
		case "hide":
			draft.SetHidden(true)
		case "show":
			draft.SetHidden(false)
		case "flush":
			records = append(records, draft.Flush(false))
		case "custom":
			draft.TrackCustomEvent(ev.Name, ev.Data)
		case "unload":
			return append(records, draft.Flush(true))
		default:
			draft.RecordInteraction(ev.Kind, ev.Data)
		}
	}
	return append(records, draft.Flush(true))
}

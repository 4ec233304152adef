package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "calgrid/internal/log"
	"calgrid/internal/model"
)

const defaultMaxPerEvent = 1000

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Location is the display timezone for all occurrences. Nil means
	// time.Local.
	Location *time.Location

	// RangeStart / RangeEnd bound the inclusive expansion window,
	// typically the rendered grid span.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxPerEvent caps occurrences per recurring event; zero selects
	// defaultMaxPerEvent. A month view never needs more than a few dozen,
	// so the cap only guards against pathological rules.
	MaxPerEvent int
}

// Expand turns parsed events into concrete occurrences within the window:
// plain events pass through when they intersect it, RRULE events are
// enumerated with EXDATEs removed, and all-day occurrences are normalized
// to [midnight, next midnight) in their own zone. Results are converted to
// the display timezone and tagged with the feed color.
func Expand(events []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("expand: range end precedes start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxPerEvent <= 0 {
		cfg.MaxPerEvent = defaultMaxPerEvent
	}

	occs := make([]model.Occurrence, 0, len(events))
	for _, ev := range events {
		if ev.RawRRule == "" {
			if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
				occs = append(occs, makeOccurrence(ev, ev.Start, ev.End, "", cfg.Location))
			}
			continue
		}
		occs = append(occs, expandRecurring(ev, cfg)...)
	}
	return occs, nil
}

func expandRecurring(ev ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: bad RRULE, event skipped", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Between operates in the event's own zone.
	starts := set.Between(
		cfg.RangeStart.In(ev.Start.Location()),
		cfg.RangeEnd.In(ev.Start.Location()),
		true,
	)
	if len(starts) > cfg.MaxPerEvent {
		appLog.Error("expand: occurrence cap hit", errors.New("too many occurrences"),
			"uid", ev.UID, "cap", cfg.MaxPerEvent)
		starts = starts[:cfg.MaxPerEvent]
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]model.Occurrence, 0, len(starts))
	for _, start := range starts {
		var end time.Time
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.Add(24 * time.Hour)
		} else {
			end = start.Add(dur)
		}
		key := start.In(cfg.Location).Format(time.RFC3339)
		out = append(out, makeOccurrence(ev, start, end, key, cfg.Location))
	}
	return out
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, instanceKey string, loc *time.Location) model.Occurrence {
	return model.Occurrence{
		SourceID:    ev.Feed.ID,
		UID:         ev.UID,
		InstanceKey: instanceKey,
		Summary:     ev.Summary,
		Location:    ev.Location,
		ColorHex:    ev.Feed.Color,
		IsAllDay:    ev.AllDay,
		StartAt:     start.In(loc),
		EndAt:       end.In(loc),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

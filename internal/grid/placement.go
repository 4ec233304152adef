package grid

import (
	"errors"
	"fmt"
	"time"
)

// ErrSpanInvariant is returned when the emitted cell spans of a strip row
// do not cover exactly 7 day columns. It indicates malformed strips (an
// event occupying non-contiguous slots, or two lanes claiming the same
// day) rather than a rendering bug; the render fails instead of emitting
// malformed markup.
var ErrSpanInvariant = errors.New("grid: strip row spans do not sum to 7")

// placedCell is one emitted cell of a strip row: either a filler (ev nil,
// span 1) or a real event cell spanning the event's visible days in this
// week.
type placedCell struct {
	day  int       // day index within the week, 0..6
	date time.Time // calendar date of day (the first visible day for real cells)
	span int
	ev   Event

	clipLeft  bool // true start precedes the first visible day
	clipRight bool // true end exceeds the last visible day

	// noBackground selects the colored-marker treatment instead of a
	// filled bar. Computed once here and carried as a value; nothing else
	// re-derives it.
	noBackground bool
}

// placeStripRow resolves the cells of one strip row within one week row.
// A real cell is emitted only at the event's first visible day of the
// week; its span consumes the remaining covered slots. The spans of the
// returned cells always sum to exactly 7, or the row is rejected with
// ErrSpanInvariant.
func placeStripRow(cfg *Config, strip Strip, week weekRow) ([]placedCell, error) {
	base := week.index * 7
	cells := make([]placedCell, 0, 7)

	for day := 0; day < 7; {
		idx := base + day
		var ev Event
		if idx < len(strip) {
			ev = strip[idx]
		}
		if ev == nil {
			cells = append(cells, placedCell{day: day, date: week.start.AddDate(0, 0, day), span: 1})
			day++
			continue
		}

		first, last := ClipRange(ev, week.start, week.end)
		if daysBetween(week.start, first) != day || last.Before(first) {
			// Occupied slot that is not the event's first visible day:
			// a well-formed strip would have been consumed by the span
			// emitted at that day.
			return nil, fmt.Errorf("%w: week %d strip slot %d (event %s)",
				ErrSpanInvariant, week.index, day, ev.ID())
		}

		span := daysBetween(first, last) + 1
		cells = append(cells, placedCell{
			day:          day,
			date:         first,
			span:         span,
			ev:           ev,
			clipLeft:     dateOnly(ev.Start()).Before(first),
			clipRight:    dateOnly(ev.End()).After(last),
			noBackground: noBackground(cfg, ev),
		})
		day += span
	}

	sum := 0
	for _, c := range cells {
		sum += c.span
	}
	if sum != 7 {
		return nil, fmt.Errorf("%w: week %d got %d", ErrSpanInvariant, week.index, sum)
	}
	return cells, nil
}

// noBackground reports whether ev renders as a colored marker with
// inherited text color instead of a filled bar: all-day differentiation is
// enabled, the event is not flagged all-day, and it spans zero days
// (start and end on the same calendar date).
func noBackground(cfg *Config, ev Event) bool {
	return cfg.UseAllDay && !ev.AllDay() && sameDay(ev.Start(), ev.End())
}

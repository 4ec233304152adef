package grid

import "time"

// Event is the contract an event implementation must satisfy to be placed
// on the grid. The engine never mutates an Event; placement only reads the
// calendar dates of Start/End, so implementations with exclusive midnight
// ends (ICS all-day style) should normalize End to the last instant that
// still falls on the final covered day.
type Event interface {
	// ID uniquely identifies the event within one render. It is emitted
	// as a machine-readable attribute when span highlighting is enabled.
	ID() string
	// Kind names the event's category ("event" for plain calendar events);
	// it feeds the default content link path and the highlight attributes.
	Kind() string
	Title() string
	// Color is a CSS color value used for the cell background (or the
	// marker/text in no-background mode).
	Color() string
	Start() time.Time
	End() time.Time
	AllDay() bool
}

// Strip is one stacking lane of the grid: one slot per rendered calendar
// day (7 × number of week rows), nil where no event occupies that day.
// Slots covered by one multi-day event must be contiguous within the lane;
// the engine relies on this and does not verify it up front.
type Strip []Event

// Strips is the full pre-bucketed lane collection, index = stacking order
// within a day (0 is rendered topmost).
type Strips []Strip

// ClipRange intersects ev's true day span with the week window
// [weekStart, weekEnd] and returns the first and last visible days, both
// normalized to midnight. The caller must ensure the event actually
// touches the window.
func ClipRange(ev Event, weekStart, weekEnd time.Time) (first, last time.Time) {
	first = dateOnly(ev.Start())
	last = dateOnly(ev.End())
	if first.Before(weekStart) {
		first = weekStart
	}
	if last.After(weekEnd) {
		last = weekEnd
	}
	return first, last
}

// dateOnly truncates t to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween returns the number of calendar days from a to b (negative
// when b precedes a). Rounding absorbs DST offsets.
func daysBetween(a, b time.Time) int {
	d := dateOnly(b).Sub(dateOnly(a)).Hours() / 24
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}

package grid

import "time"

// weekRow is one 7-day row of the grid. Height is filled in by the height
// pass after the row set is known.
type weekRow struct {
	index  int
	start  time.Time // first day of the row, midnight
	end    time.Time // start + 6 days, midnight
	height int
}

// daysFromWeekStart is the circular distance (0–6) from the configured
// first weekday to wd, wrapping forward when wd precedes it.
func daysFromWeekStart(firstDay int, wd time.Weekday) int {
	d := int(wd) - firstDay
	if d < 0 {
		d += 7
	}
	return d
}

// beginningOfWeek steps t back to the configured first day of its week.
func beginningOfWeek(t time.Time, firstDay int) time.Time {
	t = dateOnly(t)
	return t.AddDate(0, 0, -daysFromWeekStart(firstDay, t.Weekday()))
}

// weekRowsFor derives the ordered week rows covering [first, last]: 7-day
// windows aligned to firstDay, starting at beginningOfWeek(first), until a
// window's end reaches the end of last's week. A first that falls exactly
// on the week-start day begins its own window.
func weekRowsFor(first, last time.Time, firstDay int) []weekRow {
	lastEnd := beginningOfWeek(last, firstDay).AddDate(0, 0, 6)

	var rows []weekRow
	for ws := beginningOfWeek(first, firstDay); ; ws = ws.AddDate(0, 0, 7) {
		we := ws.AddDate(0, 0, 6)
		rows = append(rows, weekRow{index: len(rows), start: ws, end: we})
		if !we.Before(lastEnd) {
			break
		}
	}
	return rows
}

// GridSpan reports the first rendered day and the number of week rows for
// the given inclusive range and week alignment. Strip builders use it to
// size lanes so that each strip holds 7 × weeks slots.
func GridSpan(first, last time.Time, firstDayOfWeek int) (start time.Time, weeks int) {
	rows := weekRowsFor(dateOnly(first), dateOnly(last), firstDayOfWeek)
	return rows[0].start, len(rows)
}

// isWeekend uses the fixed 0=Sunday convention, independent of the
// configured week alignment.
func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Sunday || wd == time.Saturday
}

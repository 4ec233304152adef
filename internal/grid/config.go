package grid

import (
	"errors"
	"fmt"
	"time"
)

// Default sub-component dimensions, in pixels. These mirror the values the
// stylesheet was designed around; callers can override any of them.
const (
	DefaultHeight          = 500
	DefaultDayNamesHeight  = 18
	DefaultDayNumsHeight   = 18
	DefaultEventHeight     = 18
	DefaultEventMargin     = 1
	DefaultEventPaddingTop = 1
)

// DateRange is an inclusive [First, Last] pair of calendar dates. Only the
// date components are significant; time-of-day is ignored.
type DateRange struct {
	First time.Time
	Last  time.Time
}

// Config is the immutable configuration for one render. Zero values for
// sizing fields select the package defaults; Render works on a copy, so a
// Config may be reused across sequential renders.
type Config struct {
	// Year and Month select a calendar month when Range is nil.
	Year  int
	Month time.Month

	// Range, when non-nil, overrides Year/Month with an explicit span.
	Range *DateRange

	// Strips is the pre-bucketed lane collection. Each strip must hold
	// exactly one slot per rendered day (7 × week rows). An empty
	// collection renders a bare grid with no events.
	Strips Strips

	// FirstDayOfWeek rotates the week alignment and day-name order;
	// 0 = Sunday .. 6 = Saturday.
	FirstDayOfWeek int

	AbbrevDayNames bool
	ShowToday      bool
	ShowHeader     bool

	// MonthLabel defaults to "January 2006" of the range start.
	// PreviousLabel/NextLabel, when set, render navigation cells in the
	// header; they are emitted verbatim (caller-supplied markup).
	MonthLabel    string
	PreviousLabel string
	NextLabel     string

	// Width in pixels; 0 means no explicit width.
	Width int
	// Height is the target total height in pixels. It is a target, not a
	// hard cap: rows grow past their proportional share when event depth
	// demands it.
	Height int

	DayNamesHeight  int
	DayNumsHeight   int
	EventHeight     int
	EventMargin     int
	EventPaddingTop int

	// UseAllDay enables the no-background treatment for events that span
	// zero days and are not flagged all-day.
	UseAllDay bool

	// SpanHighlight adds data-event-id / data-event-kind /
	// data-event-color attributes to real event cells for a client-side
	// hover-highlight script.
	SpanHighlight bool

	// DayNames supplies the 7 localized weekday labels already rotated so
	// that index 0 is firstDay. Nil selects English names.
	DayNames func(abbrev bool, firstDay int) []string

	// Today resolves the current date for the cg-today modifier. Only
	// consulted when ShowToday is set. Nil selects time.Now.
	Today func() time.Time

	// DayLink, when non-nil, turns day numbers into links with the
	// returned href.
	DayLink func(day time.Time) string

	// Content produces the inner markup of a real event cell. The result
	// is used verbatim, so implementations are responsible for escaping.
	// Nil selects the default link-styled label.
	Content func(ev Event, day time.Time, cfg *Config) string
}

// applyDefaults fills zero sizing fields and resolves the effective date
// range. Mutates the (copied) config in place.
func (c *Config) applyDefaults() {
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.DayNamesHeight == 0 {
		c.DayNamesHeight = DefaultDayNamesHeight
	}
	if c.DayNumsHeight == 0 {
		c.DayNumsHeight = DefaultDayNumsHeight
	}
	if c.EventHeight == 0 {
		c.EventHeight = DefaultEventHeight
	}
	if c.EventMargin == 0 {
		c.EventMargin = DefaultEventMargin
	}
	if c.EventPaddingTop == 0 {
		c.EventPaddingTop = DefaultEventPaddingTop
	}
	if c.Range == nil && c.Year != 0 && c.Month != 0 {
		first := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.Local)
		last := first.AddDate(0, 1, -1)
		c.Range = &DateRange{First: first, Last: last}
	}
	if c.Range != nil {
		c.Range = &DateRange{
			First: dateOnly(c.Range.First),
			Last:  dateOnly(c.Range.Last),
		}
		if c.MonthLabel == "" {
			c.MonthLabel = c.Range.First.Format("January 2006")
		}
	}
	if c.DayNames == nil {
		c.DayNames = defaultDayNames
	}
	if c.Today == nil {
		c.Today = time.Now
	}
}

// Validate fails fast on malformed configuration, before any markup is
// produced. It expects applyDefaults to have run.
func (c *Config) Validate() error {
	if c.Range == nil {
		return errors.New("grid: no date range: set Range or Year/Month")
	}
	if c.Range.Last.Before(c.Range.First) {
		return fmt.Errorf("grid: range last %s precedes first %s",
			c.Range.Last.Format("2006-01-02"), c.Range.First.Format("2006-01-02"))
	}
	if c.FirstDayOfWeek < 0 || c.FirstDayOfWeek > 6 {
		return fmt.Errorf("grid: first day of week %d out of range [0,6]", c.FirstDayOfWeek)
	}
	for _, h := range []int{
		c.Height, c.DayNamesHeight, c.DayNumsHeight,
		c.EventHeight, c.EventMargin, c.EventPaddingTop, c.Width,
	} {
		if h < 0 {
			return errors.New("grid: negative size value")
		}
	}
	for i, s := range c.Strips {
		if len(s)%7 != 0 {
			return fmt.Errorf("grid: strip %d length %d is not a multiple of 7", i, len(s))
		}
	}
	return nil
}

func defaultDayNames(abbrev bool, firstDay int) []string {
	names := make([]string, 7)
	for i := 0; i < 7; i++ {
		name := time.Weekday((firstDay + i) % 7).String()
		if abbrev {
			name = name[:3]
		}
		names[i] = name
	}
	return names
}

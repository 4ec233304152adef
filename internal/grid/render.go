// Package grid renders a month-like grid of days as an HTML fragment,
// overlaying pre-bucketed event strips across day columns. Multi-day
// events span contiguous cells via colspan, and week rows grow past their
// proportional height share when event depth demands it.
//
// The emitted class taxonomy is fixed:
//
//	cg-calendar              outer container
//	cg-header                header table; cg-prev / cg-month / cg-next cells
//	cg-body                  body container sized to the computed total height
//	cg-day-names             day-name header row; cg-day-name cells
//	cg-rows                  rows container
//	cg-row                   one week row, sized to its computed height
//	cg-bg-table, cg-bg-cell  per-row background cells; modifiers cg-today,
//	                         cg-other-range, cg-weekend
//	cg-day-nums, cg-day-num  day-number row (same modifiers); cg-day-link
//	cg-strip                 one event strip row
//	cg-filler                non-event cell preserving the 7-column cover
//	cg-event                 real event cell; cg-event-bg or cg-event-no-bg
//	cg-marker                the colored bullet in no-background mode
//	cg-event-link            default content label
//	cg-arrow-left/right      clip indicators for spans cut by the week edge
//
// Rendering is a single-threaded, deterministic pass: two renders of an
// identical configuration with a fixed Today resolver produce byte-equal
// output.
package grid

import (
	"fmt"
	"strconv"
	"time"
)

// Render lays out and renders the configured grid, returning one HTML
// fragment (no enclosing document). cfg is taken by value; the caller's
// Config and Strips are only read.
func Render(cfg Config) (string, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	rows := weekRowsFor(cfg.Range.First, cfg.Range.Last, cfg.FirstDayOfWeek)
	slots := 7 * len(rows)
	for i, s := range cfg.Strips {
		if len(s) != slots {
			return "", fmt.Errorf("grid: strip %d has %d slots, want %d (7 days × %d weeks)",
				i, len(s), slots, len(rows))
		}
	}
	total := fillRowHeights(&cfg, rows)

	// Resolve every cell before emitting anything, so a span-invariant
	// violation fails the render instead of truncating the markup.
	placed := make([][][]placedCell, len(rows))
	for ri, row := range rows {
		placed[ri] = make([][]placedCell, len(cfg.Strips))
		for si, strip := range cfg.Strips {
			cells, err := placeStripRow(&cfg, strip, row)
			if err != nil {
				return "", err
			}
			placed[ri][si] = cells
		}
	}

	var today dayState
	if cfg.ShowToday {
		today.enabled = true
		today.date = dateOnly(cfg.Today())
	}

	b := &htmlBuilder{}
	b.el("div", func() {
		if cfg.ShowHeader {
			renderHeader(b, &cfg)
		}
		b.el("div", func() {
			renderDayNames(b, &cfg)
			b.el("div", func() {
				for ri := range rows {
					renderWeekRow(b, &cfg, rows[ri], placed[ri], today)
				}
			}, "class", "cg-rows")
		}, "class", "cg-body", "style", "height:"+px(total)+";")
	}, "class", "cg-calendar", "style", widthStyle(&cfg))

	return b.String(), nil
}

// dayState carries the resolved "today" date for the whole render so the
// resolver is consulted exactly once.
type dayState struct {
	enabled bool
	date    time.Time
}

func widthStyle(cfg *Config) string {
	if cfg.Width <= 0 {
		return ""
	}
	return "width:" + px(cfg.Width) + ";"
}

func renderHeader(b *htmlBuilder, cfg *Config) {
	b.el("table", func() {
		b.el("tr", func() {
			if cfg.PreviousLabel != "" {
				b.el("td", func() { b.raw(cfg.PreviousLabel) }, "class", "cg-prev")
			}
			b.el("td", func() { b.text(cfg.MonthLabel) }, "class", "cg-month")
			if cfg.NextLabel != "" {
				b.el("td", func() { b.raw(cfg.NextLabel) }, "class", "cg-next")
			}
		})
	}, "class", "cg-header")
}

func renderDayNames(b *htmlBuilder, cfg *Config) {
	names := cfg.DayNames(cfg.AbbrevDayNames, cfg.FirstDayOfWeek)
	b.el("table", func() {
		b.el("tr", func() {
			for _, name := range names {
				b.el("th", func() { b.text(name) }, "class", "cg-day-name")
			}
		})
	}, "class", "cg-day-names", "style", "height:"+px(cfg.DayNamesHeight)+";")
}

// dayModifiers returns the state classes shared by background and
// day-number cells: cg-today, cg-other-range and cg-weekend.
func dayModifiers(cfg *Config, day time.Time, today dayState) string {
	var mods []string
	if today.enabled && sameDay(day, today.date) {
		mods = append(mods, "cg-today")
	}
	if day.Before(cfg.Range.First) || day.After(cfg.Range.Last) {
		mods = append(mods, "cg-other-range")
	}
	if isWeekend(day) {
		mods = append(mods, "cg-weekend")
	}
	return classes(mods...)
}

func renderWeekRow(b *htmlBuilder, cfg *Config, row weekRow, placed [][]placedCell, today dayState) {
	b.el("div", func() {
		// Background cells carry the row height so the day borders fill
		// the row even when event rows are shorter.
		b.el("table", func() {
			b.el("tr", func() {
				for d := 0; d < 7; d++ {
					day := row.start.AddDate(0, 0, d)
					b.el("td", func() { b.raw("&nbsp;") },
						"class", classes("cg-bg-cell", dayModifiers(cfg, day, today)),
						"style", "height:"+px(row.height)+";")
				}
			})
		}, "class", "cg-bg-table")

		renderDayNums(b, cfg, row, today)

		for _, cells := range placed {
			renderStripRow(b, cfg, cells)
		}
	}, "class", "cg-row", "style", "height:"+px(row.height)+";")
}

func renderDayNums(b *htmlBuilder, cfg *Config, row weekRow, today dayState) {
	b.el("table", func() {
		b.el("tr", func() {
			for d := 0; d < 7; d++ {
				day := row.start.AddDate(0, 0, d)
				num := strconv.Itoa(day.Day())
				b.el("td", func() {
					if cfg.DayLink != nil {
						b.el("a", func() { b.text(num) },
							"href", cfg.DayLink(day),
							"class", "cg-day-link")
						return
					}
					b.text(num)
				}, "class", classes("cg-day-num", dayModifiers(cfg, day, today)))
			}
		})
	}, "class", "cg-day-nums", "style", "height:"+px(cfg.DayNumsHeight)+";")
}

func renderStripRow(b *htmlBuilder, cfg *Config, cells []placedCell) {
	b.el("table", func() {
		b.el("tr", func() {
			for _, c := range cells {
				renderCell(b, cfg, c)
			}
		})
	}, "class", "cg-strip")
}

func renderCell(b *htmlBuilder, cfg *Config, c placedCell) {
	if c.ev == nil {
		b.el("td", func() { b.raw("&nbsp;") }, "class", "cg-filler")
		return
	}

	mode := "cg-event-bg"
	style := "background-color:" + c.ev.Color() + ";"
	if c.noBackground {
		mode = "cg-event-no-bg"
		style = ""
	}
	style += "height:" + px(cfg.EventHeight) + ";padding-top:" + px(cfg.EventPaddingTop) + ";"

	kv := []string{
		"class", classes("cg-event", mode),
		"colspan", strconv.Itoa(c.span),
		"style", style,
	}
	if cfg.SpanHighlight {
		kv = append(kv,
			"data-event-id", c.ev.ID(),
			"data-event-kind", c.ev.Kind(),
			"data-event-color", c.ev.Color(),
		)
	}

	b.el("td", func() {
		if c.clipLeft {
			b.el("span", func() { b.raw("&laquo;") }, "class", "cg-arrow-left")
		}
		if c.noBackground {
			b.el("span", func() { b.raw("&bull;") },
				"class", "cg-marker",
				"style", "color:"+c.ev.Color()+";")
		}
		if cfg.Content != nil {
			b.raw(cfg.Content(c.ev, c.date, cfg))
		} else {
			b.el("a", func() { b.text(c.ev.Title()) },
				"href", "/"+c.ev.Kind()+"s/"+c.ev.ID(),
				"class", "cg-event-link")
		}
		if c.clipRight {
			b.el("span", func() { b.raw("&raquo;") }, "class", "cg-arrow-right")
		}
	}, kv...)
}

package grid

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneWeekConfig(strips Strips) Config {
	return Config{
		Range: &DateRange{
			First: date(2026, time.August, 2),
			Last:  date(2026, time.August, 8),
		},
		Strips:     strips,
		ShowHeader: true,
		ShowToday:  true,
		Today:      func() time.Time { return date(2026, time.August, 4) },
	}
}

func TestRenderDeterministic(t *testing.T) {
	strips := emptyStrips(2, 1)
	gridStart := date(2026, time.August, 2)
	occupy(strips[0], gridStart, spanEvent("e1", date(2026, time.August, 3), date(2026, time.August, 5)))
	occupy(strips[1], gridStart, spanEvent("e2", date(2026, time.August, 4), date(2026, time.August, 4)))
	cfg := oneWeekConfig(strips)

	first, err := Render(cfg)
	require.NoError(t, err)
	second, err := Render(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second, "two renders of one configuration must be byte-identical")
}

func TestRenderStructure(t *testing.T) {
	strips := emptyStrips(1, 1)
	occupy(strips[0], date(2026, time.August, 2),
		spanEvent("e1", date(2026, time.August, 3), date(2026, time.August, 5)))
	cfg := oneWeekConfig(strips)
	cfg.MonthLabel = "August 2026"

	out, err := Render(cfg)
	require.NoError(t, err)

	assert.Contains(t, out, `class="cg-calendar"`)
	assert.Contains(t, out, `class="cg-month"`)
	assert.Contains(t, out, "August 2026")
	assert.Contains(t, out, `class="cg-day-names"`)
	assert.Contains(t, out, `class="cg-rows"`)
	assert.Contains(t, out, `colspan="3"`)
	assert.Contains(t, out, `class="cg-event cg-event-bg"`)
	assert.Equal(t, 4, strings.Count(out, `class="cg-filler"`))
	assert.NotContains(t, out, "cg-arrow-left")
	assert.NotContains(t, out, "cg-arrow-right")

	// Tuesday the 4th is "today"; the 2nd and 8th are weekend days.
	assert.Contains(t, out, `class="cg-day-num cg-today"`)
	assert.Contains(t, out, `class="cg-bg-cell cg-today"`)
	assert.Contains(t, out, "cg-weekend")
	assert.NotContains(t, out, "cg-other-range", "range covers the whole week")
}

func TestRenderClipArrows(t *testing.T) {
	strips := emptyStrips(1, 1)
	occupy(strips[0], date(2026, time.August, 2),
		spanEvent("e1", date(2026, time.July, 30), date(2026, time.August, 12)))
	cfg := oneWeekConfig(strips)

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `class="cg-arrow-left"`)
	assert.Contains(t, out, `class="cg-arrow-right"`)
	assert.Contains(t, out, `colspan="7"`)
}

func TestRenderNoBackgroundMode(t *testing.T) {
	// A zero-span timed event with all-day distinction enabled renders as
	// a colored marker with inherited text color, not a filled bar.
	instant := time.Date(2026, time.August, 4, 9, 0, 0, 0, time.UTC)
	ev := testEvent{id: "z1", title: "standup", color: "#c22",
		start: instant, end: instant.Add(30 * time.Minute)}

	strips := emptyStrips(1, 1)
	strips[0][2] = ev
	cfg := oneWeekConfig(strips)
	cfg.UseAllDay = true

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `class="cg-event cg-event-no-bg"`)
	assert.Contains(t, out, `class="cg-marker"`)
	assert.NotContains(t, out, "background-color:#c22")
	assert.Contains(t, out, "color:#c22")
}

func TestRenderSpanHighlightAttributes(t *testing.T) {
	strips := emptyStrips(1, 1)
	occupy(strips[0], date(2026, time.August, 2),
		spanEvent("e42", date(2026, time.August, 3), date(2026, time.August, 4)))
	cfg := oneWeekConfig(strips)

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "data-event-id", "attributes are opt-in")

	cfg.SpanHighlight = true
	out, err = Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `data-event-id="e42"`)
	assert.Contains(t, out, `data-event-kind="event"`)
	assert.Contains(t, out, `data-event-color="#24a"`)
}

func TestRenderDayLinksAndContentCallback(t *testing.T) {
	strips := emptyStrips(1, 1)
	occupy(strips[0], date(2026, time.August, 2),
		spanEvent("e1", date(2026, time.August, 3), date(2026, time.August, 3)))
	cfg := oneWeekConfig(strips)
	cfg.DayLink = func(day time.Time) string {
		return "/days/" + day.Format("2006-01-02")
	}
	cfg.Content = func(ev Event, day time.Time, _ *Config) string {
		return fmt.Sprintf("<b>%s@%s</b>", ev.ID(), day.Format("01-02"))
	}

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `href="/days/2026-08-04"`)
	assert.Contains(t, out, `class="cg-day-link"`)
	assert.Contains(t, out, "<b>e1@08-03</b>", "callback result is used verbatim")
	assert.NotContains(t, out, "cg-event-link", "default content is replaced")
}

func TestRenderDefaultContentLink(t *testing.T) {
	strips := emptyStrips(1, 1)
	ev := testEvent{id: "7", title: "a <b> title", color: "#24a",
		start: date(2026, time.August, 3), end: date(2026, time.August, 3)}
	strips[0][1] = ev
	cfg := oneWeekConfig(strips)

	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `href="/events/7"`)
	assert.Contains(t, out, "a &lt;b&gt; title", "titles are escaped")
}

func TestRenderYearMonthSelectsRange(t *testing.T) {
	cfg := Config{Year: 2026, Month: time.August, ShowHeader: true}
	out, err := Render(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "August 2026")
	assert.Equal(t, 6, strings.Count(out, `class="cg-row"`))
}

func TestRenderHeaderToggle(t *testing.T) {
	cfg := oneWeekConfig(nil)
	cfg.ShowHeader = false
	out, err := Render(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "cg-header")
}

func TestRenderValidation(t *testing.T) {
	t.Run("no range", func(t *testing.T) {
		_, err := Render(Config{})
		assert.Error(t, err)
	})
	t.Run("inverted range", func(t *testing.T) {
		cfg := Config{Range: &DateRange{
			First: date(2026, time.August, 8),
			Last:  date(2026, time.August, 2),
		}}
		_, err := Render(cfg)
		assert.Error(t, err)
	})
	t.Run("week start out of range", func(t *testing.T) {
		cfg := oneWeekConfig(nil)
		cfg.FirstDayOfWeek = 7
		_, err := Render(cfg)
		assert.Error(t, err)
	})
	t.Run("negative height", func(t *testing.T) {
		cfg := oneWeekConfig(nil)
		cfg.DayNumsHeight = -1
		_, err := Render(cfg)
		assert.Error(t, err)
	})
	t.Run("strip length mismatch", func(t *testing.T) {
		cfg := oneWeekConfig(Strips{make(Strip, 14)}) // 2 weeks of slots, 1-week range
		_, err := Render(cfg)
		assert.Error(t, err)
	})
}

func TestRenderEmptyStripsFallback(t *testing.T) {
	// Zero strips is a documented degenerate input: a bare grid renders
	// with the proportional row height, no events.
	cfg := oneWeekConfig(nil)
	out, err := Render(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "cg-event")
	assert.Contains(t, out, `class="cg-bg-cell`)
	// One week: the row takes the full share of the default 500px target.
	assert.Contains(t, out, "height:"+px(500-DefaultDayNamesHeight)+";")
}

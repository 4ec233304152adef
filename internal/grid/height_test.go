package grid

import (
	"testing"
	"time"
)

func heightConfig(target int) *Config {
	return &Config{
		Height:         target,
		DayNamesHeight: 18,
		DayNumsHeight:  18,
		EventHeight:    18,
		EventMargin:    1,
	}
}

func TestRowDepth(t *testing.T) {
	strips := emptyStrips(3, 2)
	day := date(2026, time.August, 4)
	gridStart := date(2026, time.August, 2)

	// Week 0: one event in lane 0 and one in lane 2 on the same day.
	occupy(strips[0], gridStart, spanEvent("a", day, day))
	occupy(strips[2], gridStart, spanEvent("b", day, day))

	if d := rowDepth(strips, 0); d != 3 {
		// Lane 1 is empty but lane 2 is occupied; three rows must be
		// stacked to reach it.
		t.Errorf("week 0 depth = %d, want 3", d)
	}
	if d := rowDepth(strips, 1); d != 0 {
		t.Errorf("week 1 depth = %d, want 0", d)
	}
}

func TestRowHeightFormula(t *testing.T) {
	cfg := heightConfig(500)

	tests := []struct {
		depth, minHeight, want int
	}{
		{0, 0, 19},   // dayNums 18 + margin 1
		{1, 0, 38},   // 1*(18+1) + 18 + 1
		{2, 0, 57},
		{1, 80, 80},  // proportional share wins when larger
		{5, 80, 114}, // density wins when larger
	}
	for _, tt := range tests {
		if got := rowHeight(cfg, tt.depth, tt.minHeight); got != tt.want {
			t.Errorf("rowHeight(depth=%d, min=%d) = %d, want %d", tt.depth, tt.minHeight, got, tt.want)
		}
	}

	// Monotonically non-decreasing in depth, never below minHeight.
	prev := 0
	for depth := 0; depth <= 10; depth++ {
		h := rowHeight(cfg, depth, 60)
		if h < prev {
			t.Fatalf("height decreased at depth %d: %d < %d", depth, h, prev)
		}
		if h < 60 {
			t.Fatalf("height %d fell below minHeight at depth %d", h, depth)
		}
		prev = h
	}
}

func TestMinRowHeight(t *testing.T) {
	cfg := heightConfig(500)

	if got := minRowHeight(cfg, 5); got != (500-18)/5 {
		t.Errorf("minRowHeight = %d, want %d", got, (500-18)/5)
	}

	// Degenerate inputs fall back to a fixed small height instead of
	// dividing by zero.
	if got := minRowHeight(cfg, 0); got != 19 {
		t.Errorf("zero rows fallback = %d, want 19", got)
	}
	if got := minRowHeight(heightConfig(10), 5); got != 19 {
		t.Errorf("target below header fallback = %d, want 19", got)
	}
}

func TestFillRowHeightsGrowsPastTarget(t *testing.T) {
	// Two stacked events force the row beyond its proportional share even
	// when the target height implies a smaller minimum.
	cfg := heightConfig(60) // minHeight = (60-18)/1 = 42
	day := date(2026, time.August, 4)
	strips := emptyStrips(2, 1)
	occupy(strips[0], date(2026, time.August, 2), spanEvent("a", day, day))
	occupy(strips[1], date(2026, time.August, 2), spanEvent("b", day, day))
	cfg.Strips = strips

	rows := []weekRow{oneWeek}
	total := fillRowHeights(cfg, rows)

	want := 2*(18+1) + 18 + 1 // 57 > 42
	if rows[0].height != want {
		t.Errorf("row height = %d, want %d", rows[0].height, want)
	}
	// Content-driven growth: the rendered total exceeds the target.
	if total != 18+want || total <= 60 {
		t.Errorf("total = %d, want %d (> target 60)", total, 18+want)
	}
}

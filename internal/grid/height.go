package grid

// dayDepth is the number of lanes that must be stacked to show every event
// on the given absolute day: deepest occupied strip index + 1, or 0 when
// no strip covers the day.
func dayDepth(strips Strips, dayIdx int) int {
	depth := 0
	for si, s := range strips {
		if dayIdx < len(s) && s[dayIdx] != nil {
			depth = si + 1
		}
	}
	return depth
}

// rowDepth is the max dayDepth over the 7 days of week row w.
func rowDepth(strips Strips, w int) int {
	depth := 0
	for d := 0; d < 7; d++ {
		if dd := dayDepth(strips, w*7+d); dd > depth {
			depth = dd
		}
	}
	return depth
}

// rowHeight computes the pixel height of a week row from its event depth:
// at least the row's proportional share of the target height (minHeight),
// growing beyond it when depth demands more vertical space. Rows never
// clip content, so the rendered total may exceed cfg.Height.
func rowHeight(cfg *Config, depth, minHeight int) int {
	h := depth*(cfg.EventHeight+cfg.EventMargin) + cfg.DayNumsHeight + cfg.EventMargin
	if h < minHeight {
		h = minHeight
	}
	return h
}

// minRowHeight is the proportional share of the target height per week
// row. With no rows or a degenerate target the division is undefined; the
// fallback is one day-number row plus margin, so degenerate input yields a
// fixed small height instead of faulting.
func minRowHeight(cfg *Config, numRows int) int {
	if numRows <= 0 || cfg.Height <= cfg.DayNamesHeight {
		return cfg.DayNumsHeight + cfg.EventMargin
	}
	return (cfg.Height - cfg.DayNamesHeight) / numRows
}

// fillRowHeights assigns heights to every row and returns the total
// rendered height including the day-name header.
func fillRowHeights(cfg *Config, rows []weekRow) (total int) {
	minH := minRowHeight(cfg, len(rows))
	total = cfg.DayNamesHeight
	for i := range rows {
		rows[i].height = rowHeight(cfg, rowDepth(cfg.Strips, rows[i].index), minH)
		total += rows[i].height
	}
	return total
}

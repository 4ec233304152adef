// Package strips buckets event occurrences into the non-overlapping lanes
// the grid engine consumes. Each lane holds one slot per rendered day; an
// occurrence occupies a contiguous run of slots in exactly one lane, so
// the output always satisfies the engine's disjointness precondition.
package strips

import (
	"sort"
	"time"

	"calgrid/internal/grid"
	"calgrid/internal/model"
)

// Build assigns occurrences to lanes over the grid covering [first, last]
// with the given week alignment. Occurrences are ordered by start date,
// longer spans first, so multi-day bars settle into the upper lanes;
// each is placed into the lowest lane whose covered slots are all free,
// growing the lane set when none fits. Occurrences entirely outside the
// grid are dropped.
func Build(occs []model.Occurrence, first, last time.Time, firstDayOfWeek int) grid.Strips {
	gridStart, weeks := grid.GridSpan(first, last, firstDayOfWeek)
	slots := 7 * weeks

	sorted := make([]model.Occurrence, len(occs))
	copy(sorted, occs)
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := dayIndex(gridStart, sorted[i].Start()), dayIndex(gridStart, sorted[j].Start())
		if si != sj {
			return si < sj
		}
		ei, ej := dayIndex(gridStart, sorted[i].End()), dayIndex(gridStart, sorted[j].End())
		if ei != ej {
			return ei > ej // longer first
		}
		return sorted[i].ID() < sorted[j].ID()
	})

	lanes := grid.Strips{}
	for _, occ := range sorted {
		from := dayIndex(gridStart, occ.Start())
		to := dayIndex(gridStart, occ.End())
		if to < 0 || from >= slots || to < from {
			continue
		}
		if from < 0 {
			from = 0
		}
		if to >= slots {
			to = slots - 1
		}

		li := freeLane(lanes, from, to)
		if li == len(lanes) {
			lanes = append(lanes, make(grid.Strip, slots))
		}
		for d := from; d <= to; d++ {
			lanes[li][d] = occ
		}
	}
	return lanes
}

// freeLane returns the index of the lowest lane with slots [from, to] all
// empty, or len(lanes) when a new lane is needed.
func freeLane(lanes grid.Strips, from, to int) int {
	for li, lane := range lanes {
		free := true
		for d := from; d <= to; d++ {
			if lane[d] != nil {
				free = false
				break
			}
		}
		if free {
			return li
		}
	}
	return len(lanes)
}

// dayIndex is the day offset of t from the grid's first rendered day
// (negative before it). Rounding absorbs DST offsets.
func dayIndex(gridStart, t time.Time) int {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, gridStart.Location())
	d := t.Sub(gridStart).Hours() / 24
	if d < 0 {
		return int(d - 0.5)
	}
	return int(d + 0.5)
}

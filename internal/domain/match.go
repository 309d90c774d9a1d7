package domain

import (
	"sort"
	"time"
)

// FindInterval locates the single interval whose inclusive range contains ts
// within a sorted, non-overlapping interval list. On success it returns the
// interval's index and true. On a miss it returns the insertion position (the
// index the covering interval would occupy) and false: that is a legitimate,
// expected outcome (orphan data), never extrapolated to a neighbour.
func FindInterval(intervals []MetadataInterval, ts time.Time) (int, bool) {
	i := sort.Search(len(intervals), func(i int) bool {
		return !intervals[i].ValidTo.Before(ts)
	})
	if i < len(intervals) && intervals[i].Contains(ts) {
		return i, true
	}
	return i, false
}

// Gap is one contiguous range of observation timestamps outside all metadata
// coverage, tracked as the true min/max of the orphan timestamps seen, so
// accumulation is order-independent.
type Gap struct {
	// Position is the insertion index in the station's sorted interval
	// list: 0 lies before all real coverage, len(intervals) after it.
	Position int
	First    time.Time
	Last     time.Time
}

// GapTracker accumulates orphan timestamp ranges during a station's row
// scan. It is threaded through the per-station processing loop as an
// explicit value, not shared between stations.
type GapTracker struct {
	gaps map[int]*Gap
}

// NewGapTracker returns an empty tracker.
func NewGapTracker() *GapTracker {
	return &GapTracker{gaps: make(map[int]*Gap)}
}

// Observe records an orphan timestamp at the given insertion position,
// widening that gap's bounds as needed.
func (t *GapTracker) Observe(position int, ts time.Time) {
	g, ok := t.gaps[position]
	if !ok {
		t.gaps[position] = &Gap{Position: position, First: ts, Last: ts}
		return
	}
	if ts.Before(g.First) {
		g.First = ts
	}
	if ts.After(g.Last) {
		g.Last = ts
	}
}

// Empty reports whether no orphan timestamps were observed.
func (t *GapTracker) Empty() bool { return len(t.gaps) == 0 }

// Gaps returns all accumulated gaps ordered by their first timestamp.
func (t *GapTracker) Gaps() []Gap {
	out := make([]Gap, 0, len(t.gaps))
	for _, g := range t.gaps {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].First.Before(out[j].First) })
	return out
}

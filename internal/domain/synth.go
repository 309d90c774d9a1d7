package domain

import (
	"sort"
	"time"
)

// SynthesizeIntervals produces one gap-filling MetadataInterval per orphan
// gap: identity fields populated from the station description lookup, every
// other attribute null. It runs only after the station's full scan, so the
// gap bounds are final.
//
// Bounds follow the day-alignment convention of the source archive's
// metadata: ValidFrom is 00:00:00 UTC of the earliest orphan day, ValidTo
// 23:59:59 UTC of the latest, each clamped against the neighbouring real
// intervals so the station's set stays non-overlapping.
func SynthesizeIntervals(stationID int, gaps []Gap, intervals []MetadataInterval, lookup IdentityLookup, prov Provenance) ([]MetadataInterval, error) {
	if len(gaps) == 0 {
		return nil, nil
	}
	ident, err := lookup.Lookup(stationID)
	if err != nil {
		return nil, err
	}

	synthesized := make([]MetadataInterval, 0, len(gaps))
	for _, g := range gaps {
		from := startOfDay(g.First)
		to := endOfDay(g.Last)
		if g.Position > 0 {
			if prevEnd := intervals[g.Position-1].ValidTo.Add(time.Second); prevEnd.After(from) {
				from = prevEnd
			}
		}
		if g.Position < len(intervals) {
			if nextStart := intervals[g.Position].ValidFrom.Add(-time.Second); nextStart.Before(to) {
				to = nextStart
			}
		}

		name := ident.Name
		state := ident.State
		synthesized = append(synthesized, MetadataInterval{
			StationID:   stationID,
			ValidFrom:   from,
			ValidTo:     to,
			StationName: &name,
			State:       &state,
			Synthesized: true,
			Provenance:  prov,
		})
	}
	return synthesized, nil
}

// AppendIntervals merges synthesized intervals into a station's list,
// keeping it sorted by ValidFrom.
func AppendIntervals(intervals, synthesized []MetadataInterval) []MetadataInterval {
	out := append(append([]MetadataInterval{}, intervals...), synthesized...)
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.Before(out[j].ValidFrom) })
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).Add(24*time.Hour - time.Second)
}

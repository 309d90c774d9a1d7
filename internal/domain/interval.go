package domain

import (
	"fmt"
	"sort"
	"time"
)

// Span is one entry of a metadata source timeline: an inclusive validity
// range carrying that source's attribute bundle.
type Span[T any] struct {
	From  time.Time
	To    time.Time
	Value T
}

// Timeline is one metadata source's ordered list of validity ranges.
type Timeline[T any] []Span[T]

// MetadataSources holds every independent metadata timeline of one station
// as found in its metadata archive. The timelines overlap each other freely;
// within one timeline ranges must not overlap.
type MetadataSources struct {
	StationID    int
	Geography    Timeline[Geography]
	Identity     Timeline[Identity]
	Descriptions map[Parameter]Timeline[ParameterDescription]
	Instruments  map[Parameter]Timeline[Instrument]
}

// MergeIntervals computes the unique set of non-overlapping sub-intervals
// spanning the union of all source ranges, each annotated with the applicable
// attribute bundle from every source, or null where a source has no coverage
// for that sub-range. Uncovered sub-ranges are expected (instruments not yet
// installed, retired, or never reported for a parameter) and not an error.
//
// Every distinct boundary across all sources partitions time into candidate
// sub-intervals; by construction the result is ascending by ValidFrom and
// contiguous across [min(From), max(To)].
//
// Before merging, each source is validated independently: two overlapping
// ranges inside one source fail with OverlappingIntervalsError. That is a
// provider-side defect requiring manual investigation, never resolved by
// guessing.
func MergeIntervals(src MetadataSources, prov Provenance) ([]MetadataInterval, error) {
	geo, err := validateTimeline("geography", src.StationID, src.Geography)
	if err != nil {
		return nil, err
	}
	ident, err := validateTimeline("station name/operator", src.StationID, src.Identity)
	if err != nil {
		return nil, err
	}
	descs := make(map[Parameter]Timeline[ParameterDescription], len(src.Descriptions))
	for _, p := range Parameters {
		tl, err := validateTimeline(fmt.Sprintf("parameter description %s", p), src.StationID, src.Descriptions[p])
		if err != nil {
			return nil, err
		}
		descs[p] = tl
	}
	instrs := make(map[Parameter]Timeline[Instrument], len(src.Instruments))
	for _, p := range Parameters {
		tl, err := validateTimeline(fmt.Sprintf("instrument %s", p), src.StationID, src.Instruments[p])
		if err != nil {
			return nil, err
		}
		instrs[p] = tl
	}

	bounds := collectBoundaries(geo, ident, descs, instrs)
	if len(bounds) < 2 {
		return nil, nil
	}

	merged := make([]MetadataInterval, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		from := bounds[i]
		to := bounds[i+1].Add(-time.Second)

		mi := MetadataInterval{
			StationID:  src.StationID,
			ValidFrom:  from,
			ValidTo:    to,
			Provenance: prov,
		}
		if g := covering(geo, from, to); g != nil {
			mi.Latitude = &g.Latitude
			mi.Longitude = &g.Longitude
			mi.Elevation = &g.Elevation
		}
		if id := covering(ident, from, to); id != nil {
			mi.StationName = &id.StationName
			mi.Operator = &id.Operator
		}
		for _, p := range Parameters {
			mi.Parameters.Set(p, covering(descs[p], from, to))
			mi.Instruments.Set(p, covering(instrs[p], from, to))
		}
		merged = append(merged, mi)
	}
	return merged, nil
}

// validateTimeline sorts a copy of tl by From and rejects source-internal
// overlaps.
func validateTimeline[T any](source string, stationID int, tl Timeline[T]) (Timeline[T], error) {
	sorted := make(Timeline[T], len(tl))
	copy(sorted, tl)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From.Before(sorted[j].From) })

	for i, s := range sorted {
		if s.To.Before(s.From) {
			return nil, fmt.Errorf("source %q for station %d: range ends %s before it starts %s",
				source, stationID, s.To.Format(time.RFC3339), s.From.Format(time.RFC3339))
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if !s.From.After(prev.To) {
			return nil, &OverlappingIntervalsError{
				Source:    source,
				StationID: stationID,
				FirstFrom: prev.From,
				FirstTo:   prev.To,
				OtherFrom: s.From,
				OtherTo:   s.To,
			}
		}
	}
	return sorted, nil
}

// collectBoundaries gathers every From and every To+1s across all sources,
// sorted and deduplicated. Consecutive boundaries delimit the candidate
// sub-intervals.
func collectBoundaries(
	geo Timeline[Geography],
	ident Timeline[Identity],
	descs map[Parameter]Timeline[ParameterDescription],
	instrs map[Parameter]Timeline[Instrument],
) []time.Time {
	var bounds []time.Time
	add := func(from, to time.Time) {
		bounds = append(bounds, from, to.Add(time.Second))
	}
	for _, s := range geo {
		add(s.From, s.To)
	}
	for _, s := range ident {
		add(s.From, s.To)
	}
	for _, p := range Parameters {
		for _, s := range descs[p] {
			add(s.From, s.To)
		}
		for _, s := range instrs[p] {
			add(s.From, s.To)
		}
	}

	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })
	dedup := bounds[:0]
	for _, b := range bounds {
		if len(dedup) == 0 || !b.Equal(dedup[len(dedup)-1]) {
			dedup = append(dedup, b)
		}
	}
	return dedup
}

// covering returns the attribute bundle of the (at most one) span fully
// containing [from, to], or nil when the source has no coverage there.
func covering[T any](tl Timeline[T], from, to time.Time) *T {
	for i := range tl {
		if !tl[i].From.After(from) && !tl[i].To.Before(to) {
			return &tl[i].Value
		}
		if tl[i].From.After(to) {
			break
		}
	}
	return nil
}

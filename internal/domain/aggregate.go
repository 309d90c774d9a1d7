package domain

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

// Aggregate computes per-parameter mean/min/max/count statistics over
// calendar-aligned UTC windows of the given resolution. Only records with
// MetadataMatched contribute; orphan records are excluded by contract.
//
// Partial windows at the edges of a station's coverage are valid; Count
// reflects the actual contributing readings. A parameter with zero non-null
// readings in a window yields Count 0 with null statistics. No smoothing,
// interpolation, or carry-forward.
func Aggregate(observations []Observation, res Resolution) []AggregateRecord {
	type window struct {
		stationID int
		start     time.Time
	}
	values := make(map[window]map[Parameter][]float64)

	for i := range observations {
		o := &observations[i]
		if !o.MetadataMatched {
			continue
		}
		w := window{stationID: o.StationID, start: WindowStart(res, o.TimestampUTC)}
		byParam, ok := values[w]
		if !ok {
			byParam = make(map[Parameter][]float64, len(Parameters))
			values[w] = byParam
		}
		// Emission iterates the closed parameter set per window, so a
		// parameter with only missing readings still yields a zero-count
		// record; only present values are collected here.
		for _, p := range Parameters {
			if v := o.Values.Get(p); v != nil {
				byParam[p] = append(byParam[p], *v)
			}
		}
	}

	var out []AggregateRecord
	for w, byParam := range values {
		end := WindowEnd(res, w.start)
		for _, p := range Parameters {
			rec := AggregateRecord{
				StationID:   w.stationID,
				Parameter:   p,
				Resolution:  res,
				PeriodStart: w.start,
				PeriodEnd:   end,
				Count:       len(byParam[p]),
			}
			if rec.Count > 0 {
				mean, _ := stats.Mean(byParam[p])
				min, _ := stats.Min(byParam[p])
				max, _ := stats.Max(byParam[p])
				rec.Mean = &mean
				rec.Min = &min
				rec.Max = &max
			}
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodStart.Equal(out[j].PeriodStart) {
			return out[i].PeriodStart.Before(out[j].PeriodStart)
		}
		return paramIndex(out[i].Parameter) < paramIndex(out[j].Parameter)
	})
	return out
}

// WindowStart aligns ts down to the calendar boundary of the resolution,
// in UTC. Weeks are ISO weeks starting Monday 00:00.
func WindowStart(res Resolution, ts time.Time) time.Time {
	t := ts.UTC()
	y, m, d := t.Date()
	switch res {
	case ResolutionHour:
		return time.Date(y, m, d, t.Hour(), 0, 0, 0, time.UTC)
	case ResolutionDay:
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	case ResolutionWeek:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case ResolutionMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	case ResolutionQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, qm, 1, 0, 0, 0, 0, time.UTC)
	case ResolutionYear:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return t
	}
}

// WindowEnd returns the inclusive end of the window starting at start.
func WindowEnd(res Resolution, start time.Time) time.Time {
	var next time.Time
	switch res {
	case ResolutionHour:
		next = start.Add(time.Hour)
	case ResolutionDay:
		next = start.AddDate(0, 0, 1)
	case ResolutionWeek:
		next = start.AddDate(0, 0, 7)
	case ResolutionMonth:
		next = start.AddDate(0, 1, 0)
	case ResolutionQuarter:
		next = start.AddDate(0, 3, 0)
	case ResolutionYear:
		next = start.AddDate(1, 0, 0)
	default:
		next = start
	}
	return next.Add(-time.Second)
}

func paramIndex(p Parameter) int {
	for i, q := range Parameters {
		if q == p {
			return i
		}
	}
	return len(Parameters)
}

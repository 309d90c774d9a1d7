package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// SentinelMissing is the DWD magic number for a missing reading.
const SentinelMissing = -999

// Product row layout after tokenization (the "eor" trailer is stripped by
// the tokenizer): STATIONS_ID, MESS_DATUM, QN, then one column per parameter.
const ExpectedColumns = 3 + 5

// columnOffset of the first parameter column.
const paramColumnOffset = 3

// RawRow is one tokenized data line of a product file.
type RawRow struct {
	Line   int
	Fields []string
}

// SourceContext identifies the archive a row or metadata tuple came from.
type SourceContext struct {
	Filename    string
	ContentHash string
	StationID   int
}

// Provenance stamps the current processing context onto a record.
func (s SourceContext) Provenance() Provenance {
	return Provenance{
		SourceArchive: s.Filename,
		ContentHash:   s.ContentHash,
		SchemaVersion: SchemaVersion,
		IngestedAt:    Now(),
	}
}

type seenObservation struct {
	obs  Observation
	line int
}

// Normalizer converts raw product rows of one station into canonical
// observations. It owns the station's merged interval list, the orphan gap
// accumulator, and the duplicate index; it is per-station state and must not
// be shared across stations.
type Normalizer struct {
	intervals []MetadataInterval
	tracker   *GapTracker
	seen      map[int64]seenObservation
}

// NewNormalizer creates a Normalizer over a station's sorted interval list.
func NewNormalizer(intervals []MetadataInterval) *Normalizer {
	return &Normalizer{
		intervals: intervals,
		tracker:   NewGapTracker(),
		seen:      make(map[int64]seenObservation),
	}
}

// Tracker exposes the orphan gap accumulator for synthesis after the scan.
func (n *Normalizer) Tracker() *GapTracker { return n.tracker }

// NormalizeRow converts one tokenized row into an Observation.
//
// The second return value is false when the row is a byte-identical duplicate
// of an already normalized one; such rows dedupe silently (idempotent
// re-ingestion is not an error). A duplicate key with differing values fails
// with DuplicateConflictError. Shape, timestamp, and quality defects fail
// with their respective typed errors; any failure aborts the whole file.
func (n *Normalizer) NormalizeRow(row RawRow, src SourceContext) (Observation, bool, error) {
	if len(row.Fields) != ExpectedColumns {
		return Observation{}, false, &RowShapeError{
			SourceFile: src.Filename,
			Line:       row.Line,
			Expected:   ExpectedColumns,
			Actual:     len(row.Fields),
		}
	}

	stationField := strings.TrimSpace(row.Fields[0])
	if id, err := strconv.Atoi(stationField); err != nil || id != src.StationID {
		return Observation{}, false, fmt.Errorf("%s line %d: station column %q does not match archive station %d",
			src.Filename, row.Line, stationField, src.StationID)
	}

	ts, err := EncodeTimestamp(strings.TrimSpace(row.Fields[1]), src.Filename, row.Line)
	if err != nil {
		return Observation{}, false, err
	}

	quality, err := parseQuality(row.Fields[2], src.Filename, row.Line)
	if err != nil {
		return Observation{}, false, err
	}

	obs := Observation{
		StationID:    src.StationID,
		TimestampRaw: ts.Raw,
		TimestampCET: ts.CET,
		TimestampUTC: ts.UTC,
		QualityLevel: &quality,
		Provenance:   src.Provenance(),
	}

	for i, p := range Parameters {
		v, err := parseReading(row.Fields[paramColumnOffset+i])
		if err != nil {
			return Observation{}, false, fmt.Errorf("%s line %d: parameter %s: %w", src.Filename, row.Line, p, err)
		}
		obs.Values.Set(p, v)
	}

	key := obs.TimestampUTC.Unix()
	if prev, ok := n.seen[key]; ok {
		if prev.obs.DataEqual(&obs) {
			return prev.obs, false, nil
		}
		return Observation{}, false, &DuplicateConflictError{
			StationID:    src.StationID,
			TimestampUTC: obs.TimestampUTC,
			First:        prev.obs,
			FirstLine:    prev.line,
			Second:       obs,
			SecondLine:   row.Line,
		}
	}
	pos, found := FindInterval(n.intervals, obs.TimestampUTC)
	obs.MetadataMatched = found
	if !found {
		n.tracker.Observe(pos, obs.TimestampUTC)
	}

	n.seen[key] = seenObservation{obs: obs, line: row.Line}
	return obs, true, nil
}

// parseQuality parses the QN column. Absent or non-integer values are a
// fatal defect, never defaulted.
func parseQuality(field, sourceFile string, line int) (int, error) {
	raw := strings.TrimSpace(field)
	if raw == "" {
		return 0, &InvalidQualityError{Raw: field, SourceFile: sourceFile, Line: line}
	}
	q, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &InvalidQualityError{Raw: raw, SourceFile: sourceFile, Line: line}
	}
	return q, nil
}

// parseReading parses one measured value. The -999 sentinel and empty
// fields normalize to null; everything else must parse as a float, kept at
// source precision.
func parseReading(field string) (*float64, error) {
	raw := strings.TrimSpace(field)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("parse reading %q: %w", raw, err)
	}
	if v == SentinelMissing {
		return nil, nil
	}
	return &v, nil
}

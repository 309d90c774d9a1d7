package domain

import (
	"fmt"
	"time"
)

// The fatal per-station error conditions. Each halts the affected station's
// pipeline immediately and surfaces the full source context; none of them is
// retryable, they all indicate a source-data defect or a logic bug. Orphan
// data and empty aggregate windows are expected outcomes, not errors.

// MalformedTimestampError reports a MESS_DATUM value that does not parse as
// YYYYMMDDHHMM.
type MalformedTimestampError struct {
	Raw        string
	SourceFile string
	Line       int
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp %q in %s line %d", e.Raw, e.SourceFile, e.Line)
}

// OverlappingIntervalsError reports two overlapping validity ranges inside a
// single metadata source. This is a provider-side data defect; it must never
// be resolved by picking one side.
type OverlappingIntervalsError struct {
	Source    string
	StationID int
	FirstFrom time.Time
	FirstTo   time.Time
	OtherFrom time.Time
	OtherTo   time.Time
}

func (e *OverlappingIntervalsError) Error() string {
	return fmt.Sprintf(
		"overlapping metadata intervals in source %q for station %d: [%s, %s] overlaps [%s, %s]",
		e.Source, e.StationID,
		e.FirstFrom.Format(time.RFC3339), e.FirstTo.Format(time.RFC3339),
		e.OtherFrom.Format(time.RFC3339), e.OtherTo.Format(time.RFC3339),
	)
}

// UnknownStationError reports a station identifier that appears in raw data
// but not in the station description lookup.
type UnknownStationError struct {
	StationID int
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("station %d not present in the station description lookup", e.StationID)
}

// RowShapeError reports a product row with the wrong column count for the
// declared layout. Processing of the file stops immediately; partial output
// for the file is not retained.
type RowShapeError struct {
	SourceFile string
	Line       int
	Expected   int
	Actual     int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row shape mismatch in %s line %d: expected %d columns, got %d",
		e.SourceFile, e.Line, e.Expected, e.Actual)
}

// InvalidQualityError reports an absent or non-integer QN value.
type InvalidQualityError struct {
	Raw        string
	SourceFile string
	Line       int
}

func (e *InvalidQualityError) Error() string {
	return fmt.Sprintf("invalid quality code %q in %s line %d", e.Raw, e.SourceFile, e.Line)
}

// DuplicateConflictError reports two rows with the same (station, UTC
// timestamp) key but differing values. Byte-identical duplicates dedupe
// silently and never raise this.
type DuplicateConflictError struct {
	StationID    int
	TimestampUTC time.Time
	First        Observation
	FirstLine    int
	Second       Observation
	SecondLine   int
}

func (e *DuplicateConflictError) Error() string {
	return fmt.Sprintf(
		"conflicting duplicate for station %d at %s: %s line %d vs %s line %d",
		e.StationID, e.TimestampUTC.Format(time.RFC3339),
		e.First.Provenance.SourceArchive, e.FirstLine,
		e.Second.Provenance.SourceArchive, e.SecondLine,
	)
}

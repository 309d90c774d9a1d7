package domain

import "time"

// TimestampLayout is the MESS_DATUM wall-clock format, minute precision.
const TimestampLayout = "200601021504"

// EraCutover is the instant the DWD automatic station network switched its
// time reference from MEZ (CET, fixed UTC+1, no DST) to UTC. Rows stamped
// before it are legacy-local; rows at or after it are already UTC.
var EraCutover = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// legacyOffset is the fixed MEZ offset. The source convention never applies
// daylight saving.
const legacyOffset = time.Hour

// cetZone renders the legacy representation with its proper wall clock.
var cetZone = time.FixedZone("CET", int(legacyOffset/time.Second))

// DualTime carries both encodings of one observation instant.
type DualTime struct {
	Raw string    // wall-clock string exactly as written in the source
	CET time.Time // fixed-offset legacy representation
	UTC time.Time
}

// EncodeTimestamp converts a MESS_DATUM wall-clock string into both the
// legacy fixed-offset representation and UTC, applying the era cutover rule:
//
//   - before the cutover the input is CET, utc = input - 1h;
//   - at or after the cutover the input is already UTC, cet = input + 1h.
//
// The comparison uses the raw wall-clock value itself, so 1999-12-31 23:50
// is the last legacy reading and 2000-01-01 00:00 the first UTC one.
// Pure and deterministic; the file identity is only for error context.
func EncodeTimestamp(raw, sourceFile string, line int) (DualTime, error) {
	wall, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return DualTime{}, &MalformedTimestampError{Raw: raw, SourceFile: sourceFile, Line: line}
	}

	var utc time.Time
	if wall.Before(EraCutover) {
		utc = wall.Add(-legacyOffset)
	} else {
		utc = wall
	}
	return DualTime{Raw: raw, CET: utc.In(cetZone), UTC: utc}, nil
}

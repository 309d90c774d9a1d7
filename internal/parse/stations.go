package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
)

// Fixed column layout of zehn_min_tu_Beschreibung_Stationen.txt. Positions
// are character offsets in the Latin-1 source, which survive the UTF-8
// decode because Latin-1 is one character per byte.
var stationColumns = struct {
	id, name, state [2]int
}{
	id:    [2]int{0, 11},
	name:  [2]int{70, 110},
	state: [2]int{111, 150},
}

// ParseStationIndex reads the fixed-width station description file into an
// identity lookup keyed by station id. The first two lines (header and dash
// separator) are skipped; short or malformed lines fail rather than being
// silently dropped, since a hole in the index turns into a later
// UnknownStationError that is much harder to trace.
func ParseStationIndex(r io.Reader, source string) (domain.IdentityLookup, error) {
	lines, err := readLatin1Lines(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	if len(lines) < 2 {
		return nil, fmt.Errorf("%s: missing header lines", source)
	}

	lookup := make(domain.IdentityLookup)
	for i, line := range lines[2:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		runes := []rune(line)
		idField := strings.TrimSpace(slice(runes, stationColumns.id))
		id, err := strconv.Atoi(idField)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: station id %q: %w", source, i+3, idField, err)
		}
		lookup[id] = domain.StationIdentity{
			Name:  strings.TrimSpace(slice(runes, stationColumns.name)),
			State: strings.TrimSpace(slice(runes, stationColumns.state)),
		}
	}
	return lookup, nil
}

func slice(runes []rune, bounds [2]int) string {
	start, end := bounds[0], bounds[1]
	if start >= len(runes) {
		return ""
	}
	if end > len(runes) {
		end = len(runes)
	}
	return string(runes[start:end])
}

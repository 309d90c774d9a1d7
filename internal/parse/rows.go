package parse

import (
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
)

// rowTerminator is the end-of-record marker DWD appends to every data line.
const rowTerminator = "eor"

// ReadProductRows tokenizes a 10-minute product file: it locates the
// STATIONS_ID header, splits each subsequent line on semicolons, trims
// per-field padding, and strips the eor trailer. Line numbers are physical
// line numbers in the file, so errors reported later point at the real line.
//
// Field semantics are untouched here; sentinel and timestamp handling happen
// during normalization.
func ReadProductRows(r io.Reader, filename string) ([]domain.RawRow, error) {
	lines, err := readLatin1Lines(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	headerAt := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "STATIONS_ID") {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%s: no STATIONS_ID header found", filename)
	}

	var rows []domain.RawRow
	for i := headerAt + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		fields := splitFields(lines[i])
		rows = append(rows, domain.RawRow{Line: i + 1, Fields: fields})
	}
	return rows, nil
}

func splitFields(line string) []string {
	parts := strings.Split(line, ";")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, strings.TrimSpace(p))
	}
	if n := len(fields); n > 0 && fields[n-1] == rowTerminator {
		fields = fields[:n-1]
	}
	if n := len(fields); n > 0 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	return fields
}

package parse

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
)

// openEnd stands in for a blank Bis_Datum: the range is still current.
var openEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// metadataTable is one parsed Metadaten_* file: a named header row plus data
// rows addressed by header name. DWD varies header casing between files
// (Von_Datum vs von_datum), so lookups are case-insensitive.
type metadataTable struct {
	source string
	header []string
	rows   []tableRow
}

type tableRow struct {
	line   int
	fields []string
}

// readMetadataTable reads a semicolon-separated metadata file. Generator
// stamps ("generiert ...") are skipped and parsing stops at the legend
// block, which is free text rather than table rows.
func readMetadataTable(r io.Reader, source string) (*metadataTable, error) {
	lines, err := readLatin1Lines(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	t := &metadataTable{source: source}
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "generiert") {
			continue
		}
		if strings.HasPrefix(trimmed, "Legende") {
			break
		}
		fields := splitFields(line)
		if t.header == nil {
			t.header = fields
			continue
		}
		t.rows = append(t.rows, tableRow{line: i + 1, fields: fields})
	}
	if t.header == nil {
		return nil, fmt.Errorf("%s: no header row found", source)
	}
	return t, nil
}

// column returns the index of the first header matching any of the given
// names, case-insensitively, or -1.
func (t *metadataTable) column(names ...string) int {
	for i, h := range t.header {
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

func (t *metadataTable) requireColumn(names ...string) (int, error) {
	if i := t.column(names...); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%s: missing column %q", t.source, names[0])
}

func (r tableRow) field(idx int) string {
	if idx < 0 || idx >= len(r.fields) {
		return ""
	}
	return r.fields[idx]
}

// forStation filters rows to the given station where the file carries a
// station column. Single-station metadata archives sometimes omit it.
func (t *metadataTable) forStation(stationID int) []tableRow {
	idx := t.column("Stations_ID", "Stations_id", "STATIONS_ID")
	if idx < 0 {
		return t.rows
	}
	var rows []tableRow
	for _, r := range t.rows {
		if id, err := strconv.Atoi(strings.TrimSpace(r.field(idx))); err == nil && id == stationID {
			rows = append(rows, r)
		}
	}
	return rows
}

// parseDayRange reads the inclusive Von_Datum/Bis_Datum day range of a
// metadata row. Von maps to 00:00:00 UTC, Bis to 23:59:59 UTC; a blank Bis
// means the range is still open.
func parseDayRange(t *metadataTable, r tableRow, vonIdx, bisIdx int) (time.Time, time.Time, error) {
	von := strings.TrimSpace(r.field(vonIdx))
	from, err := time.ParseInLocation("20060102", von, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%s line %d: Von_Datum %q: %w", t.source, r.line, von, err)
	}

	bis := strings.TrimSpace(r.field(bisIdx))
	if bis == "" {
		return from, openEnd, nil
	}
	toDay, err := time.ParseInLocation("20060102", bis, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%s line %d: Bis_Datum %q: %w", t.source, r.line, bis, err)
	}
	return from, toDay.Add(24*time.Hour - time.Second), nil
}

// parseFloatDE parses a float that may use the German decimal comma.
func parseFloatDE(raw string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."), 64)
}

// ParseGeography reads a Metadaten_Geographie file into the station's
// geography timeline.
func ParseGeography(r io.Reader, source string, stationID int) (domain.Timeline[domain.Geography], error) {
	t, err := readMetadataTable(r, source)
	if err != nil {
		return nil, err
	}
	latIdx, err := t.requireColumn("Geogr.Breite", "Geo.Breite [Grad]")
	if err != nil {
		return nil, err
	}
	lonIdx, err := t.requireColumn("Geogr.Laenge", "Geo.Laenge [Grad]")
	if err != nil {
		return nil, err
	}
	elevIdx, err := t.requireColumn("Stationshoehe", "Stationshoehe [m]")
	if err != nil {
		return nil, err
	}
	vonIdx, err := t.requireColumn("von_datum", "Von_Datum")
	if err != nil {
		return nil, err
	}
	bisIdx, err := t.requireColumn("bis_datum", "Bis_Datum")
	if err != nil {
		return nil, err
	}

	var tl domain.Timeline[domain.Geography]
	for _, row := range t.forStation(stationID) {
		from, to, err := parseDayRange(t, row, vonIdx, bisIdx)
		if err != nil {
			return nil, err
		}
		lat, err := parseFloatDE(row.field(latIdx))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: latitude: %w", source, row.line, err)
		}
		lon, err := parseFloatDE(row.field(lonIdx))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: longitude: %w", source, row.line, err)
		}
		elev, err := parseFloatDE(row.field(elevIdx))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: elevation: %w", source, row.line, err)
		}
		tl = append(tl, domain.Span[domain.Geography]{
			From: from,
			To:   to,
			Value: domain.Geography{
				Latitude:  lat,
				Longitude: lon,
				Elevation: elev,
			},
		})
	}
	return tl, nil
}

// ParseIdentity reads a Metadaten_Stationsname_Betreibername file into the
// station's name/operator timeline.
func ParseIdentity(r io.Reader, source string, stationID int) (domain.Timeline[domain.Identity], error) {
	t, err := readMetadataTable(r, source)
	if err != nil {
		return nil, err
	}
	nameIdx, err := t.requireColumn("Stationsname")
	if err != nil {
		return nil, err
	}
	operatorIdx := t.column("Betreibername")
	vonIdx, err := t.requireColumn("Von_Datum", "von_datum")
	if err != nil {
		return nil, err
	}
	bisIdx, err := t.requireColumn("Bis_Datum", "bis_datum")
	if err != nil {
		return nil, err
	}

	var tl domain.Timeline[domain.Identity]
	for _, row := range t.forStation(stationID) {
		from, to, err := parseDayRange(t, row, vonIdx, bisIdx)
		if err != nil {
			return nil, err
		}
		tl = append(tl, domain.Span[domain.Identity]{
			From: from,
			To:   to,
			Value: domain.Identity{
				StationName: row.field(nameIdx),
				Operator:    row.field(operatorIdx),
			},
		})
	}
	return tl, nil
}

// ParseParameterDescriptions reads a Metadaten_Parameter file. The file
// interleaves rows for all parameters of the dataset; the result is one
// timeline per known parameter code. Rows for codes outside the dataset's
// parameter set are ignored.
func ParseParameterDescriptions(r io.Reader, source string, stationID int) (map[domain.Parameter]domain.Timeline[domain.ParameterDescription], error) {
	t, err := readMetadataTable(r, source)
	if err != nil {
		return nil, err
	}
	paramIdx, err := t.requireColumn("Parameter")
	if err != nil {
		return nil, err
	}
	descIdx, err := t.requireColumn("Parameterbeschreibung")
	if err != nil {
		return nil, err
	}
	unitIdx, err := t.requireColumn("Einheit")
	if err != nil {
		return nil, err
	}
	sourceIdx, err := t.requireColumn("Datenquelle (Strukturversion=SV)", "Datenquelle")
	if err != nil {
		return nil, err
	}
	notesIdx := t.column("Besonderheiten")
	litIdx := t.column("Literaturhinweis")
	vonIdx, err := t.requireColumn("Von_Datum", "von_datum")
	if err != nil {
		return nil, err
	}
	bisIdx, err := t.requireColumn("Bis_Datum", "bis_datum")
	if err != nil {
		return nil, err
	}

	known := make(map[domain.Parameter]bool, len(domain.Parameters))
	for _, p := range domain.Parameters {
		known[p] = true
	}

	out := make(map[domain.Parameter]domain.Timeline[domain.ParameterDescription], len(domain.Parameters))
	for _, row := range t.forStation(stationID) {
		p := domain.Parameter(strings.TrimSpace(row.field(paramIdx)))
		if !known[p] {
			continue
		}
		from, to, err := parseDayRange(t, row, vonIdx, bisIdx)
		if err != nil {
			return nil, err
		}
		descDE := row.field(descIdx)
		sourceDE := row.field(sourceIdx)
		out[p] = append(out[p], domain.Span[domain.ParameterDescription]{
			From: from,
			To:   to,
			Value: domain.ParameterDescription{
				DescriptionDE: descDE,
				DescriptionEN: domain.TranslateDescription(descDE),
				Unit:          row.field(unitIdx),
				DataSourceDE:  sourceDE,
				DataSourceEN:  domain.TranslateSource(sourceDE),
				TimeReference: domain.ClassifyTimeReference(sourceDE),
				Notes:         row.field(notesIdx),
				Literature:    row.field(litIdx),
			},
		})
	}
	return out, nil
}

// ParseInstruments reads one Metadaten_Geraete file, which covers a single
// measured variable, into an instrument timeline.
func ParseInstruments(r io.Reader, source string, stationID int) (domain.Timeline[domain.Instrument], error) {
	t, err := readMetadataTable(r, source)
	if err != nil {
		return nil, err
	}
	typeIdx, err := t.requireColumn("Geraetetyp Name")
	if err != nil {
		return nil, err
	}
	methodIdx, err := t.requireColumn("Messverfahren")
	if err != nil {
		return nil, err
	}
	heightIdx, err := t.requireColumn("Geberhoehe ueber Grund [m]")
	if err != nil {
		return nil, err
	}
	vonIdx, err := t.requireColumn("Von_Datum", "von_datum")
	if err != nil {
		return nil, err
	}
	bisIdx, err := t.requireColumn("Bis_Datum", "bis_datum")
	if err != nil {
		return nil, err
	}

	var tl domain.Timeline[domain.Instrument]
	for _, row := range t.forStation(stationID) {
		from, to, err := parseDayRange(t, row, vonIdx, bisIdx)
		if err != nil {
			return nil, err
		}
		height, err := parseFloatDE(row.field(heightIdx))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: sensor height: %w", source, row.line, err)
		}
		typeDE := row.field(typeIdx)
		methodDE := row.field(methodIdx)
		tl = append(tl, domain.Span[domain.Instrument]{
			From: from,
			To:   to,
			Value: domain.Instrument{
				DeviceTypeDE:        typeDE,
				DeviceTypeEN:        domain.TranslateSensorType(typeDE),
				SensorHeightM:       height,
				MeasurementMethodDE: methodDE,
				MeasurementMethodEN: domain.TranslateMeasurementMethod(methodDE),
			},
		})
	}
	return tl, nil
}

// Command genmock writes a small synthetic DWD archive directory for local
// development and demos. The generated tree exercises the interesting paths:
// a pre-metadata gap that forces interval synthesis, a sentinel reading, a
// byte-identical duplicate row, and stations on both sides of the 2000-01-01
// time reference cutover.
//
// Usage:
//
//	go run ./cmd/genmock -out data
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type mockStation struct {
	id    int
	name  string
	state string
}

var stations = []mockStation{
	{id: 3, name: "Aachen", state: "Nordrhein-Westfalen"},
	{id: 44, name: "Großenkneten", state: "Niedersachsen"},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the generated archive")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}

	if err := writeStationIndex(*out); err != nil {
		return fmt.Errorf("station index: %w", err)
	}
	log.Printf("wrote station index (%d stations)", len(stations))

	if err := writeHistoricalStation(*out, stations[0]); err != nil {
		return fmt.Errorf("station %05d: %w", stations[0].id, err)
	}
	if err := writeModernStation(*out, stations[1]); err != nil {
		return fmt.Errorf("station %05d: %w", stations[1].id, err)
	}

	log.Printf("archive written to %s", *out)
	return nil
}

// latin1 encodes s as ISO 8859-1, the encoding of real DWD files. Runes
// outside the codepage become '?'.
func latin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r > 0xFF {
			r = '?'
		}
		out = append(out, byte(r))
	}
	return out
}

func writeFile(dir, name string, content string) error {
	return os.WriteFile(filepath.Join(dir, name), latin1(content), 0o644)
}

// writeStationIndex emits the fixed-width station description file. Only the
// id, name, and state column ranges matter downstream; the rest is filler
// kept for realism.
func writeStationIndex(dir string) error {
	var b strings.Builder
	b.WriteString("Stations_id von_datum bis_datum Stationshoehe geoBreite geoLaenge Stationsname Bundesland Abgabe\n")
	b.WriteString(strings.Repeat("-", 150) + "\n")
	for _, st := range stations {
		line := []rune(strings.Repeat(" ", 150))
		copy(line[0:11], []rune(fmt.Sprintf("%11d", st.id)))
		copy(line[12:20], []rune("19930428"))
		copy(line[70:], []rune(st.name))
		copy(line[111:], []rune(st.state))
		b.WriteString(string(line) + "\n")
	}
	return writeFile(dir, "zehn_min_tu_Beschreibung_Stationen.txt", b.String())
}

// writeHistoricalStation emits a pre-2000 station whose first product rows
// predate its metadata coverage. Those rows come out as orphans and force
// a synthesized interval.
func writeHistoricalStation(dir string, st mockStation) error {
	suffix := fmt.Sprintf("_%05d.txt", st.id)

	geography := strings.Join([]string{
		"generiert: 2025-06-30 -- Deutscher Wetterdienst --",
		"Stations_id;Stationshoehe;Geogr.Breite;Geogr.Laenge;von_datum;bis_datum;Stationsname",
		fmt.Sprintf("%d;202;50,7827;6,0941;19930501;19991231;%s", st.id, st.name),
		"Legende: Stationshoehe in Metern ueber NN",
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Geographie"+suffix, geography); err != nil {
		return err
	}

	identity := strings.Join([]string{
		"Stations_ID;Stationsname;Betreibername;Von_Datum;Bis_Datum",
		fmt.Sprintf("%d;%s;Deutscher Wetterdienst;19930501;19991231", st.id, st.name),
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Stationsname_Betreibername"+suffix, identity); err != nil {
		return err
	}

	cetSource := "10-Minutenwerte von automatischen Stationen der 1. Generation (MIRIAM/AFMS2, ESAU-Daten bis 31.12.1999 (Zeitbezug ist MEZ)"
	paramHeader := "Stations_ID;Von_Datum;Bis_Datum;Stationsname;Parameter;Parameterbeschreibung;Einheit;Datenquelle (Strukturversion=SV);Zusatz-Info;Besonderheiten;Literaturhinweis;eor"
	paramRow := func(code, desc, unit string) string {
		return fmt.Sprintf("%d;19930501;19991231;%s;%s;%s;%s;%s;;;;eor", st.id, st.name, code, desc, unit, cetSource)
	}
	parameters := strings.Join([]string{
		paramHeader,
		paramRow("PP_10", "Luftdruck in Stationshoehe der voran. 10 min", "hPa"),
		paramRow("TT_10", "momentane Lufttemperatur in 2m Hoehe", "°C"),
		paramRow("TM5_10", "Momentane Temperatur in 5 cm Hoehe 10min", "°C"),
		paramRow("RF_10", "relative Feucht in 2m Hoehe", "%"),
		paramRow("TD_10", "Taupunkttemperatur in 2m Hoehe", "°C"),
		"Legende",
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Parameter_tu"+suffix, parameters); err != nil {
		return err
	}

	deviceHeader := "Stations_ID;Stationsname;Geo. Laenge [Grad];Geo. Breite [Grad];Stationshoehe [m];Geberhoehe ueber Grund [m];Von_Datum;Bis_Datum;Geraetetyp Name;Messverfahren;eor"
	devices := map[string]string{
		"Lufttemperatur": fmt.Sprintf("%d;%s;6,0941;50,7827;202;2,00;19930501;19991231;PT 100 (Luft);Temperaturmessung, elektr.;eor", st.id, st.name),
		"Rel_Feuchte":    fmt.Sprintf("%d;%s;6,0941;50,7827;202;2,00;19930501;19991231;HYGROMER MP100;Feuchtemessung, elektr.;eor", st.id, st.name),
	}
	for token, row := range devices {
		content := deviceHeader + "\n" + row + "\nLegende\n"
		if err := writeFile(dir, fmt.Sprintf("Metadaten_Geraete_%s%s", token, suffix), content); err != nil {
			return err
		}
	}

	var rows []string
	// Orphan rows five days before metadata coverage begins.
	orphanStart := time.Date(1993, 4, 26, 11, 30, 0, 0, time.UTC)
	rows = append(rows, productRows(st.id, orphanStart, 3, -1)...)
	// One full covered day, with a sentinel in the 5cm column.
	dayStart := time.Date(1993, 6, 15, 0, 0, 0, 0, time.UTC)
	rows = append(rows, productRows(st.id, dayStart, 144, 17)...)
	// Byte-identical duplicate of the last row; must dedupe silently.
	rows = append(rows, rows[len(rows)-1])

	return writeProduct(dir, st.id, "19930426", "19991231", rows)
}

// writeModernStation emits a post-cutover station with open-ended metadata.
func writeModernStation(dir string, st mockStation) error {
	suffix := fmt.Sprintf("_%05d.txt", st.id)

	geography := strings.Join([]string{
		"Stations_id;Stationshoehe;Geogr.Breite;Geogr.Laenge;von_datum;bis_datum;Stationsname",
		fmt.Sprintf("%d;44;52,9337;8,2372;20200101;;%s", st.id, st.name),
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Geographie"+suffix, geography); err != nil {
		return err
	}

	identity := strings.Join([]string{
		"Stations_ID;Stationsname;Betreibername;Von_Datum;Bis_Datum",
		fmt.Sprintf("%d;%s;Deutscher Wetterdienst;20200101;", st.id, st.name),
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Stationsname_Betreibername"+suffix, identity); err != nil {
		return err
	}

	utcSource := "10-Minutenwerte von automatischen Stationen der 1. Generation (MIRIAM/AFMS2, ESAU-Daten ab 01.01.2000 (Zeitbezug ist UTC)"
	parameters := strings.Join([]string{
		"Stations_ID;Von_Datum;Bis_Datum;Stationsname;Parameter;Parameterbeschreibung;Einheit;Datenquelle (Strukturversion=SV);Zusatz-Info;Besonderheiten;Literaturhinweis;eor",
		fmt.Sprintf("%d;20200101;;%s;TT_10;momentane Lufttemperatur in 2m Hoehe;°C;%s;;;;eor", st.id, st.name, utcSource),
		fmt.Sprintf("%d;20200101;;%s;RF_10;relative Feucht in 2m Hoehe;%%;%s;;;;eor", st.id, st.name, utcSource),
		"",
	}, "\n")
	if err := writeFile(dir, "Metadaten_Parameter_tu"+suffix, parameters); err != nil {
		return err
	}

	rows := productRows(st.id, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), 144, -1)
	return writeProduct(dir, st.id, "20200101", "20201231", rows)
}

// productRows generates n consecutive 10-minute rows starting at start,
// with the row at sentinelAt carrying -999 in the TM5_10 column.
func productRows(stationID int, start time.Time, n, sentinelAt int) []string {
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * 10 * time.Minute)
		minuteOfDay := float64(ts.Hour()*60 + ts.Minute())
		temp := 10.0 + 8.0*math.Sin(2*math.Pi*(minuteOfDay-360)/1440)
		tm5 := fmt.Sprintf("%6.1f", temp-1.5)
		if i == sentinelAt {
			tm5 = "  -999"
		}
		rows = append(rows, fmt.Sprintf("%4d;%s;  1;%7.1f;%6.1f;%s;%6.1f;%6.1f;eor",
			stationID,
			ts.Format("200601021504"),
			985.0+2.0*math.Sin(2*math.Pi*minuteOfDay/1440),
			temp,
			tm5,
			65.0-10.0*math.Sin(2*math.Pi*(minuteOfDay-360)/1440),
			temp-5.0,
		))
	}
	return rows
}

func writeProduct(dir string, stationID int, from, to string, rows []string) error {
	name := fmt.Sprintf("10minutenwerte_TU_%05d_%s_%s_hist.txt", stationID, from, to)
	content := "STATIONS_ID;MESS_DATUM;QN;PP_10;TT_10;TM5_10;RF_10;TD_10;eor\n" +
		strings.Join(rows, "\n") + "\n"
	if err := writeFile(dir, name, content); err != nil {
		return err
	}
	log.Printf("%s: %d rows", name, len(rows))
	return nil
}

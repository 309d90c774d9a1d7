package parse

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
)

// StationIndexFile is the dataset-wide fixed-width station description file.
const StationIndexFile = "zehn_min_tu_Beschreibung_Stationen.txt"

// productFilePattern matches extracted historical product files, e.g.
// 10minutenwerte_TU_00003_19930428_19991231_hist.txt. The third underscore
// field is the zero-padded station id.
var productFilePattern = regexp.MustCompile(`^10minutenwerte_TU_(\d{5})_.*\.txt$`)

// deviceFileParams maps the measured-variable token of a Metadaten_Geraete
// filename to the parameter its timeline describes. Pressure and dew point
// have no device files: pressure sensors are not published per station and
// dew point is computed, not measured.
var deviceFileParams = map[string]domain.Parameter{
	"Lufttemperatur":              domain.ParamAirTemp2m,
	"Momentane_Temperatur_In_5cm": domain.ParamAirTemp5cm,
	"Rel_Feuchte":                 domain.ParamHumidity,
}

// Product is one tokenized product file plus the source context to stamp on
// every record derived from it.
type Product struct {
	Source domain.SourceContext
	Rows   []domain.RawRow
}

// ArchiveLoader reads an extracted DWD archive tree from disk. The layout is
// flat: product files, Metadaten_* files, and the station index all live
// under DataDir.
type ArchiveLoader struct {
	DataDir string
}

func NewArchiveLoader(dataDir string) *ArchiveLoader {
	return &ArchiveLoader{DataDir: dataDir}
}

// Stations discovers every station with at least one product file, sorted
// ascending.
func (l *ArchiveLoader) Stations() ([]int, error) {
	entries, err := os.ReadDir(l.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scan archive dir: %w", err)
	}
	seen := make(map[int]bool)
	for _, e := range entries {
		m := productFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[id] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// StationIndex loads the station description file from the archive root.
func (l *ArchiveLoader) StationIndex() (domain.IdentityLookup, error) {
	path := filepath.Join(l.DataDir, StationIndexFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open station index: %w", err)
	}
	defer f.Close()
	return ParseStationIndex(f, StationIndexFile)
}

// LoadProducts reads every product file of the station in filename order.
// Filename order is chronological because DWD encodes the coverage period in
// the name, but normalization does not depend on it.
func (l *ArchiveLoader) LoadProducts(ctx context.Context, stationID int) ([]Product, error) {
	pattern := filepath.Join(l.DataDir, fmt.Sprintf("10minutenwerte_TU_%05d_*.txt", stationID))
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	products := make([]Product, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read product file: %w", err)
		}
		name := filepath.Base(path)
		rows, err := ReadProductRows(bytes.NewReader(raw), name)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(raw)
		products = append(products, Product{
			Source: domain.SourceContext{
				Filename:    name,
				ContentHash: hex.EncodeToString(sum[:]),
				StationID:   stationID,
			},
			Rows: rows,
		})
	}
	return products, nil
}

// LoadMetadata reads every metadata file of the station into source
// timelines ready for interval merging. A station without a geography or
// identity file is unusual but tolerated; the merge emits null attributes
// for missing sources.
//
// The returned source context names the station's metadata archive and
// carries a digest over all metadata files read, in order, so intervals can
// be traced back to the exact metadata state they were derived from.
func (l *ArchiveLoader) LoadMetadata(ctx context.Context, stationID int) (domain.MetadataSources, domain.SourceContext, error) {
	src := domain.MetadataSources{
		StationID:    stationID,
		Descriptions: make(map[domain.Parameter]domain.Timeline[domain.ParameterDescription]),
		Instruments:  make(map[domain.Parameter]domain.Timeline[domain.Instrument]),
	}
	none := domain.SourceContext{}
	digest := sha256.New()

	if err := ctx.Err(); err != nil {
		return domain.MetadataSources{}, none, err
	}

	suffix := fmt.Sprintf("_%05d.txt", stationID)

	geoName := "Metadaten_Geographie" + suffix
	if raw, ok, err := l.readOptional(geoName); err != nil {
		return domain.MetadataSources{}, none, err
	} else if ok {
		digest.Write(raw)
		src.Geography, err = ParseGeography(bytes.NewReader(raw), geoName, stationID)
		if err != nil {
			return domain.MetadataSources{}, none, err
		}
	}

	identName := "Metadaten_Stationsname_Betreibername" + suffix
	if raw, ok, err := l.readOptional(identName); err != nil {
		return domain.MetadataSources{}, none, err
	} else if ok {
		digest.Write(raw)
		src.Identity, err = ParseIdentity(bytes.NewReader(raw), identName, stationID)
		if err != nil {
			return domain.MetadataSources{}, none, err
		}
	}

	paramPaths, err := filepath.Glob(filepath.Join(l.DataDir, "Metadaten_Parameter*"+suffix))
	if err != nil {
		return domain.MetadataSources{}, none, err
	}
	sort.Strings(paramPaths)
	for _, path := range paramPaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return domain.MetadataSources{}, none, fmt.Errorf("read metadata file: %w", err)
		}
		digest.Write(raw)
		descs, err := ParseParameterDescriptions(bytes.NewReader(raw), filepath.Base(path), stationID)
		if err != nil {
			return domain.MetadataSources{}, none, err
		}
		for p, tl := range descs {
			src.Descriptions[p] = append(src.Descriptions[p], tl...)
		}
	}

	devicePaths, err := filepath.Glob(filepath.Join(l.DataDir, "Metadaten_Geraete_*"+suffix))
	if err != nil {
		return domain.MetadataSources{}, none, err
	}
	sort.Strings(devicePaths)
	for _, path := range devicePaths {
		name := filepath.Base(path)
		token := strings.TrimSuffix(strings.TrimPrefix(name, "Metadaten_Geraete_"), suffix)
		p, ok := deviceFileParams[token]
		if !ok {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return domain.MetadataSources{}, none, fmt.Errorf("read metadata file: %w", err)
		}
		digest.Write(raw)
		tl, err := ParseInstruments(bytes.NewReader(raw), name, stationID)
		if err != nil {
			return domain.MetadataSources{}, none, err
		}
		src.Instruments[p] = append(src.Instruments[p], tl...)
	}

	metaCtx := domain.SourceContext{
		Filename:    fmt.Sprintf("Meta_Daten_zehn_min_tu_%05d", stationID),
		ContentHash: hex.EncodeToString(digest.Sum(nil)),
		StationID:   stationID,
	}
	return src, metaCtx, nil
}

func (l *ArchiveLoader) readOptional(name string) ([]byte, bool, error) {
	raw, err := os.ReadFile(filepath.Join(l.DataDir, name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read metadata file: %w", err)
	}
	return raw, true, nil
}

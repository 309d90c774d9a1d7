package domain

import "time"

// SchemaVersion identifies the record layout produced by this normalizer.
// Bumped whenever a field is added, removed, or re-encoded.
const SchemaVersion = "v20250630"

// Parameter identifies one of the measured quantities in the 10-minute air
// temperature dataset. The set is closed and known ahead of time.
type Parameter string

const (
	ParamPressure   Parameter = "PP_10"  // air pressure at station altitude [hPa]
	ParamAirTemp2m  Parameter = "TT_10"  // air temperature 2 m above ground [°C]
	ParamAirTemp5cm Parameter = "TM5_10" // air temperature 5 cm above ground [°C]
	ParamHumidity   Parameter = "RF_10"  // relative humidity [%]
	ParamDewPoint   Parameter = "TD_10"  // dew point temperature [°C]
)

// Parameters lists all measured parameters in product-file column order.
var Parameters = []Parameter{
	ParamPressure,
	ParamAirTemp2m,
	ParamAirTemp5cm,
	ParamHumidity,
	ParamDewPoint,
}

// EnglishName returns the translated parameter name used in output records.
func (p Parameter) EnglishName() string {
	switch p {
	case ParamPressure:
		return "air pressure at station altitude"
	case ParamAirTemp2m:
		return "air temperature 2 m above ground"
	case ParamAirTemp5cm:
		return "air temperature 5 cm above ground"
	case ParamHumidity:
		return "relative humidity"
	case ParamDewPoint:
		return "dew point temperature"
	default:
		return string(p)
	}
}

// TimeReference describes which clock a metadata source declares for its
// readings.
type TimeReference string

const (
	TimeRefUTC     TimeReference = "UTC"
	TimeRefCET     TimeReference = "CET" // fixed UTC+1, the pre-2000 MEZ convention
	TimeRefUnknown TimeReference = "unknown"
)

// Provenance records where a canonical record came from and when it was
// produced. Stamped unconditionally on every output record.
type Provenance struct {
	SourceArchive string    `json:"source_archive"`
	ContentHash   string    `json:"content_hash"`
	SchemaVersion string    `json:"schema_version"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// Geography is the attribute bundle of the geography metadata timeline.
type Geography struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation_m"`
}

// Identity is the attribute bundle of the station name/operator timeline.
type Identity struct {
	StationName string `json:"station_name"`
	Operator    string `json:"operator"`
}

// ParameterDescription is the attribute bundle of one parameter's entry in
// the Metadaten_Parameter timeline.
type ParameterDescription struct {
	DescriptionDE string        `json:"description_de"`
	DescriptionEN string        `json:"description_en"`
	Unit          string        `json:"unit"`
	DataSourceDE  string        `json:"data_source_de"`
	DataSourceEN  string        `json:"data_source_en"`
	TimeReference TimeReference `json:"time_reference"`
	Notes         string        `json:"notes,omitempty"`
	Literature    string        `json:"literature,omitempty"`
}

// Instrument is the attribute bundle of one parameter's entry in a
// Metadaten_Geraete timeline.
type Instrument struct {
	DeviceTypeDE        string  `json:"device_type_de"`
	DeviceTypeEN        string  `json:"device_type_en"`
	SensorHeightM       float64 `json:"sensor_height_m"`
	MeasurementMethodDE string  `json:"measurement_method_de"`
	MeasurementMethodEN string  `json:"measurement_method_en"`
}

// PerParameter holds one optional value per measured parameter. The fields
// are fixed because the parameter set is closed; a nil field means the
// parameter has no value for the carrying record.
type PerParameter[T any] struct {
	Pressure   *T `json:"PP_10,omitempty"`
	AirTemp2m  *T `json:"TT_10,omitempty"`
	AirTemp5cm *T `json:"TM5_10,omitempty"`
	Humidity   *T `json:"RF_10,omitempty"`
	DewPoint   *T `json:"TD_10,omitempty"`
}

// Get returns the value stored for p, or nil.
func (pp *PerParameter[T]) Get(p Parameter) *T {
	switch p {
	case ParamPressure:
		return pp.Pressure
	case ParamAirTemp2m:
		return pp.AirTemp2m
	case ParamAirTemp5cm:
		return pp.AirTemp5cm
	case ParamHumidity:
		return pp.Humidity
	case ParamDewPoint:
		return pp.DewPoint
	default:
		return nil
	}
}

// Set stores v for p. Unknown parameters are ignored.
func (pp *PerParameter[T]) Set(p Parameter, v *T) {
	switch p {
	case ParamPressure:
		pp.Pressure = v
	case ParamAirTemp2m:
		pp.AirTemp2m = v
	case ParamAirTemp5cm:
		pp.AirTemp5cm = v
	case ParamHumidity:
		pp.Humidity = v
	case ParamDewPoint:
		pp.DewPoint = v
	}
}

// MetadataInterval is the complete known state of a station for one
// contiguous, inclusive time range. For a single station the full set is
// totally ordered, non-overlapping, and after orphan synthesis covers every
// observation timestamp. Immutable once written; re-ingestion replaces the
// whole set for a station.
type MetadataInterval struct {
	StationID int       `json:"station_id"`
	ValidFrom time.Time `json:"valid_from"`
	ValidTo   time.Time `json:"valid_to"`

	StationName *string  `json:"station_name"`
	Operator    *string  `json:"operator"`
	State       *string  `json:"state"` // administrative region, identity lookup only
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Elevation   *float64 `json:"elevation_m"`

	Parameters  PerParameter[ParameterDescription] `json:"parameters"`
	Instruments PerParameter[Instrument]           `json:"instruments"`

	// Synthesized marks gap-filling intervals produced after the station
	// scan; all attributes except identity are null on those.
	Synthesized bool `json:"synthesized"`

	Provenance Provenance `json:"provenance"`
}

// Contains reports whether ts falls inside the inclusive validity range.
func (mi *MetadataInterval) Contains(ts time.Time) bool {
	return !ts.Before(mi.ValidFrom) && !ts.After(mi.ValidTo)
}

// Observation is one normalized reading: one station, one instant.
// The pair (StationID, TimestampUTC) is unique within a station's canonical
// record set; a duplicate with differing values is a hard error.
type Observation struct {
	StationID       int                   `json:"station_id"`
	TimestampRaw    string                `json:"timestamp_local"`
	TimestampCET    time.Time             `json:"timestamp_cet"`
	TimestampUTC    time.Time             `json:"timestamp_utc"`
	QualityLevel    *int                  `json:"quality_level"`
	Values          PerParameter[float64] `json:"values"`
	MetadataMatched bool                  `json:"metadata_matched"`

	Provenance Provenance `json:"provenance"`
}

// DataEqual reports whether two observations carry the same reading:
// identity, timestamps, quality, and every parameter value. Provenance is
// excluded; it describes the packaging of the row, not the reading, and the
// same byte-identical row re-read from a later archive must dedupe silently.
func (o *Observation) DataEqual(other *Observation) bool {
	if o.StationID != other.StationID ||
		o.TimestampRaw != other.TimestampRaw ||
		!o.TimestampCET.Equal(other.TimestampCET) ||
		!o.TimestampUTC.Equal(other.TimestampUTC) ||
		!intPtrEqual(o.QualityLevel, other.QualityLevel) {
		return false
	}
	for _, p := range Parameters {
		if !floatPtrEqual(o.Values.Get(p), other.Values.Get(p)) {
			return false
		}
	}
	return true
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Resolution is a fixed aggregation window size.
type Resolution string

const (
	ResolutionHour    Resolution = "hour"
	ResolutionDay     Resolution = "day"
	ResolutionWeek    Resolution = "week" // ISO weeks, Monday 00:00 UTC
	ResolutionMonth   Resolution = "month"
	ResolutionQuarter Resolution = "quarter"
	ResolutionYear    Resolution = "year"
)

// Resolutions lists all aggregation tiers from finest to coarsest.
var Resolutions = []Resolution{
	ResolutionHour,
	ResolutionDay,
	ResolutionWeek,
	ResolutionMonth,
	ResolutionQuarter,
	ResolutionYear,
}

// AggregateRecord holds the statistics of one parameter for one station in
// one calendar-aligned window. Count is the number of contributing non-null
// readings; a zero count is a valid state with null statistics, not an
// excluded window.
type AggregateRecord struct {
	StationID   int        `json:"station_id"`
	Parameter   Parameter  `json:"parameter"`
	Resolution  Resolution `json:"resolution"`
	PeriodStart time.Time  `json:"period_start"`
	PeriodEnd   time.Time  `json:"period_end"`
	Mean        *float64   `json:"mean"`
	Min         *float64   `json:"min"`
	Max         *float64   `json:"max"`
	Count       int        `json:"count"`
}

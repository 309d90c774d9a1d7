// Package domain models Deutscher Wetterdienst (DWD) 10-minute station
// observation data and implements the normalization core: metadata timeline
// merging, timestamp dual-encoding, metadata matching with orphan detection,
// record normalization, and calendar-window aggregation.
//
// # Data Source
//
// Observations originate from the DWD Climate Data Center open-data archive
// (https://opendata.dwd.de/climate_environment/CDC/), dataset
// "10_minutes/air_temperature". Each station ships as a product file of
// semicolon-separated rows plus a metadata archive describing the station's
// geography, name/operator, and per-parameter descriptions and instruments
// over time.
//
// # DWD Data Conventions
//
// Product row layout (header STATIONS_ID;MESS_DATUM;QN;PP_10;TT_10;TM5_10;
// RF_10;TD_10;eor):
//
//	MESS_DATUM  wall-clock timestamp, YYYYMMDDHHMM, minute precision
//	QN          quality level: 1 = only formal control,
//	            2 = controlled with individually defined criteria,
//	            3 = automatic control and correction
//	PP_10       air pressure at station altitude [hPa]
//	TT_10       air temperature 2 m above ground [°C]
//	TM5_10      air temperature 5 cm above ground [°C]
//	RF_10       relative humidity [%]
//	TD_10       dew point temperature [°C]
//
// Missing readings carry the sentinel -999 and normalize to null.
//
// Time reference:
//
//	Rows stamped before 2000-01-01 00:00 are legacy MEZ (CET, UTC+1, never
//	DST); rows at or after it are UTC. This is the "Messnetz2000" cutover
//	documented in the DWD source descriptions ("Zeitbezug ist MEZ" until
//	31.12.1999, "Zeitbezug ist UTC" from 01.01.2000). Every record keeps both
//	encodings, see [EncodeTimestamp].
//
// Metadata timelines:
//
//	Metadaten_Geographie_<id>        station coordinates and elevation
//	Metadaten_Stationsname_Betreibername_<id>  station name and operator
//	Metadaten_Parameter_<id>         per-parameter description, unit,
//	                                 data source, notes, literature
//	Metadaten_Geraete_<param>_<id>   per-parameter device, sensor height,
//	                                 measurement method
//
// Each timeline is a list of inclusive [Von_Datum, Bis_Datum] day ranges.
// Timelines are independent and overlap each other freely; within one
// timeline ranges must not overlap (that is a source-data defect and fails
// the station, see [OverlappingIntervalsError]).
//
// Matching raw rows against metadata is a range join on (station, UTC
// timestamp). Rows outside all metadata coverage are orphans: they keep
// metadata_matched=false and, after the station's full scan, get a
// synthesized identity-only interval so the join is total, see
// [SynthesizeIntervals].
package domain

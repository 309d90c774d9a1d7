package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
	"github.com/couchcryptid/dwd-archive-etl/internal/pipeline"
)

// insertChunk bounds multi-row inserts; lib/pq caps a statement at 65535
// bind parameters.
const insertChunk = 1000

// Store persists normalized station output to PostgreSQL. It implements
// pipeline.Sink.
//
// Each station is written in one transaction that first deletes the
// station's previous rows, so re-ingesting an archive replaces the station
// wholesale and a failed run leaves the previous state untouched.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// aggregateTable maps a resolution to its table. Separate tables per tier
// keep indexes small and let coarse tiers be queried without filtering.
func aggregateTable(res domain.Resolution) string {
	return "aggregates_" + string(res)
}

const schema = `
CREATE TABLE IF NOT EXISTS metadata_intervals (
	station_id   INTEGER     NOT NULL,
	valid_from   TIMESTAMPTZ NOT NULL,
	valid_to     TIMESTAMPTZ NOT NULL,
	station_name TEXT,
	operator     TEXT,
	state        TEXT,
	latitude     DOUBLE PRECISION,
	longitude    DOUBLE PRECISION,
	elevation_m  DOUBLE PRECISION,
	parameters   JSONB       NOT NULL,
	instruments  JSONB       NOT NULL,
	synthesized  BOOLEAN     NOT NULL,
	provenance   JSONB       NOT NULL,
	PRIMARY KEY (station_id, valid_from)
);

CREATE TABLE IF NOT EXISTS observations (
	station_id       INTEGER     NOT NULL,
	timestamp_utc    TIMESTAMPTZ NOT NULL,
	timestamp_cet    TIMESTAMPTZ NOT NULL,
	timestamp_local  TEXT        NOT NULL,
	quality_level    INTEGER,
	pp_10            DOUBLE PRECISION,
	tt_10            DOUBLE PRECISION,
	tm5_10           DOUBLE PRECISION,
	rf_10            DOUBLE PRECISION,
	td_10            DOUBLE PRECISION,
	metadata_matched BOOLEAN     NOT NULL,
	provenance       JSONB       NOT NULL,
	PRIMARY KEY (station_id, timestamp_utc)
);
`

const aggregateSchema = `
CREATE TABLE IF NOT EXISTS %s (
	station_id   INTEGER     NOT NULL,
	parameter    TEXT        NOT NULL,
	period_start TIMESTAMPTZ NOT NULL,
	period_end   TIMESTAMPTZ NOT NULL,
	mean         DOUBLE PRECISION,
	min          DOUBLE PRECISION,
	max          DOUBLE PRECISION,
	count        INTEGER     NOT NULL,
	PRIMARY KEY (station_id, parameter, period_start)
);
`

// EnsureSchema creates all tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	for _, res := range domain.Resolutions {
		stmt := fmt.Sprintf(aggregateSchema, aggregateTable(res))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create %s: %w", aggregateTable(res), err)
		}
	}
	return nil
}

// PersistStation writes intervals, observations, and aggregates in one
// transaction, replacing any previous state of the station.
func (s *Store) PersistStation(ctx context.Context, out *pipeline.StationOutput) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.deleteStation(ctx, tx, out.StationID); err != nil {
		return err
	}
	if err := s.insertIntervals(ctx, tx, out.Intervals); err != nil {
		return err
	}
	if err := s.insertObservations(ctx, tx, out.StationID, out.Observations); err != nil {
		return err
	}
	for _, res := range domain.Resolutions {
		if err := s.insertAggregates(ctx, tx, res, out.Aggregates[res]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit station %d: %w", out.StationID, err)
	}
	s.logger.Debug("station persisted",
		"station_id", out.StationID,
		"intervals", len(out.Intervals),
		"records", len(out.Observations),
	)
	return nil
}

func (s *Store) deleteStation(ctx context.Context, tx *sqlx.Tx, stationID int) error {
	tables := []string{"metadata_intervals", "observations"}
	for _, res := range domain.Resolutions {
		tables = append(tables, aggregateTable(res))
	}
	for _, table := range tables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE station_id = $1", stationID); err != nil {
			return fmt.Errorf("clear %s for station %d: %w", table, stationID, err)
		}
	}
	return nil
}

func (s *Store) insertIntervals(ctx context.Context, tx *sqlx.Tx, intervals []domain.MetadataInterval) error {
	const query = `INSERT INTO metadata_intervals (
		station_id, valid_from, valid_to, station_name, operator, state,
		latitude, longitude, elevation_m, parameters, instruments, synthesized, provenance
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	for i := range intervals {
		iv := &intervals[i]
		params, err := json.Marshal(iv.Parameters)
		if err != nil {
			return fmt.Errorf("marshal parameters: %w", err)
		}
		instrs, err := json.Marshal(iv.Instruments)
		if err != nil {
			return fmt.Errorf("marshal instruments: %w", err)
		}
		prov, err := json.Marshal(iv.Provenance)
		if err != nil {
			return fmt.Errorf("marshal provenance: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query,
			iv.StationID, iv.ValidFrom, iv.ValidTo, iv.StationName, iv.Operator, iv.State,
			iv.Latitude, iv.Longitude, iv.Elevation, params, instrs, iv.Synthesized, prov,
		); err != nil {
			return fmt.Errorf("insert interval: %w", err)
		}
	}
	return nil
}

func (s *Store) insertObservations(ctx context.Context, tx *sqlx.Tx, stationID int, observations []domain.Observation) error {
	const columns = 12
	prefix := `INSERT INTO observations (
		station_id, timestamp_utc, timestamp_cet, timestamp_local, quality_level,
		pp_10, tt_10, tm5_10, rf_10, td_10, metadata_matched, provenance
	) VALUES `

	for start := 0; start < len(observations); start += insertChunk {
		end := start + insertChunk
		if end > len(observations) {
			end = len(observations)
		}
		chunk := observations[start:end]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, len(chunk)*columns)
		for i := range chunk {
			o := &chunk[i]
			prov, err := json.Marshal(o.Provenance)
			if err != nil {
				return fmt.Errorf("marshal provenance: %w", err)
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholders(i*columns+1, columns))
			args = append(args,
				stationID, o.TimestampUTC, o.TimestampCET, o.TimestampRaw, o.QualityLevel,
				o.Values.Pressure, o.Values.AirTemp2m, o.Values.AirTemp5cm,
				o.Values.Humidity, o.Values.DewPoint, o.MetadataMatched, prov,
			)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert observations: %w", err)
		}
	}
	return nil
}

func (s *Store) insertAggregates(ctx context.Context, tx *sqlx.Tx, res domain.Resolution, recs []domain.AggregateRecord) error {
	const columns = 8
	prefix := fmt.Sprintf(`INSERT INTO %s (
		station_id, parameter, period_start, period_end, mean, min, max, count
	) VALUES `, aggregateTable(res))

	for start := 0; start < len(recs); start += insertChunk {
		end := start + insertChunk
		if end > len(recs) {
			end = len(recs)
		}
		chunk := recs[start:end]

		var sb strings.Builder
		sb.WriteString(prefix)
		args := make([]any, 0, len(chunk)*columns)
		for i := range chunk {
			r := &chunk[i]
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholders(i*columns+1, columns))
			args = append(args,
				r.StationID, string(r.Parameter), r.PeriodStart, r.PeriodEnd,
				r.Mean, r.Min, r.Max, r.Count,
			)
		}
		if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
			return fmt.Errorf("insert %s: %w", aggregateTable(res), err)
		}
	}
	return nil
}

// placeholders renders "($n, $n+1, ...)" for one inserted row.
func placeholders(first, count int) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", first+i)
	}
	sb.WriteByte(')')
	return sb.String()
}

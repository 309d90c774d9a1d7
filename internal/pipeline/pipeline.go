package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
	"github.com/couchcryptid/dwd-archive-etl/internal/observability"
	"github.com/couchcryptid/dwd-archive-etl/internal/parse"
)

// StationLoader reads one station's raw archive content.
type StationLoader interface {
	LoadMetadata(ctx context.Context, stationID int) (domain.MetadataSources, domain.SourceContext, error)
	LoadProducts(ctx context.Context, stationID int) ([]parse.Product, error)
}

// Sink persists one fully processed station. Implementations must be
// all-or-nothing per station: on error nothing of the station may remain
// visible downstream.
type Sink interface {
	PersistStation(ctx context.Context, out *StationOutput) error
}

// StationOutput is everything the run produces for one station.
type StationOutput struct {
	StationID    int
	Intervals    []domain.MetadataInterval
	Observations []domain.Observation
	Aggregates   map[domain.Resolution][]domain.AggregateRecord
}

// StationPipeline normalizes one station at a time: metadata merge, row
// normalization, orphan synthesis, aggregation, persistence. Any fatal
// archive defect aborts the station with nothing persisted; other stations
// are unaffected.
type StationPipeline struct {
	loader  StationLoader
	lookup  domain.IdentityLookup
	sink    Sink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a StationPipeline with the given stages and observability.
func New(loader StationLoader, lookup domain.IdentityLookup, sink Sink, logger *slog.Logger, metrics *observability.Metrics) *StationPipeline {
	return &StationPipeline{
		loader:  loader,
		lookup:  lookup,
		sink:    sink,
		logger:  logger,
		metrics: metrics,
	}
}

// ProcessStation runs the full normalization sequence for one station.
func (p *StationPipeline) ProcessStation(ctx context.Context, stationID int) error {
	start := time.Now()
	logger := p.logger.With("station_id", stationID)

	sources, metaCtx, err := p.loader.LoadMetadata(ctx, stationID)
	if err != nil {
		return fmt.Errorf("load metadata: %w", err)
	}

	intervals, err := domain.MergeIntervals(sources, metaCtx.Provenance())
	if err != nil {
		return fmt.Errorf("merge metadata intervals: %w", err)
	}
	p.metrics.MergedIntervals.Add(float64(len(intervals)))

	products, err := p.loader.LoadProducts(ctx, stationID)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	normalizer := domain.NewNormalizer(intervals)
	var observations []domain.Observation
	rows, orphans, duplicates := 0, 0, 0
	for _, product := range products {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, row := range product.Rows {
			rows++
			obs, kept, err := normalizer.NormalizeRow(row, product.Source)
			if err != nil {
				return err
			}
			if !kept {
				duplicates++
				continue
			}
			if !obs.MetadataMatched {
				orphans++
			}
			observations = append(observations, obs)
		}
	}
	p.metrics.RowsNormalized.Add(float64(len(observations)))
	p.metrics.RowsDeduplicated.Add(float64(duplicates))
	p.metrics.OrphanRows.Add(float64(orphans))
	p.metrics.RowsPerStation.Observe(float64(rows))

	synthesized, err := domain.SynthesizeIntervals(stationID, normalizer.Tracker().Gaps(), intervals, p.lookup, metaCtx.Provenance())
	if err != nil {
		return fmt.Errorf("synthesize orphan intervals: %w", err)
	}
	p.metrics.SynthesizedIntervals.Add(float64(len(synthesized)))
	intervals = domain.AppendIntervals(intervals, synthesized)

	// After synthesis every record must have a covering interval. A miss
	// here is a bug in gap tracking or synthesis, not a data defect.
	for i := range observations {
		if _, found := domain.FindInterval(intervals, observations[i].TimestampUTC); !found {
			return fmt.Errorf("station %d: record at %s has no covering interval after synthesis",
				stationID, observations[i].TimestampUTC.Format(time.RFC3339))
		}
	}

	aggregates := make(map[domain.Resolution][]domain.AggregateRecord, len(domain.Resolutions))
	for _, res := range domain.Resolutions {
		aggregates[res] = domain.Aggregate(observations, res)
	}

	out := &StationOutput{
		StationID:    stationID,
		Intervals:    intervals,
		Observations: observations,
		Aggregates:   aggregates,
	}
	if err := p.sink.PersistStation(ctx, out); err != nil {
		p.metrics.SinkErrors.Inc()
		return fmt.Errorf("persist station: %w", err)
	}
	for res, recs := range aggregates {
		p.metrics.AggregatesWritten.WithLabelValues(string(res)).Add(float64(len(recs)))
	}

	p.metrics.StationsProcessed.Inc()
	p.metrics.StationDuration.Observe(time.Since(start).Seconds())
	logger.Info("station processed",
		"rows", rows,
		"records", len(observations),
		"duplicates", duplicates,
		"orphans", orphans,
		"intervals", len(intervals),
		"synthesized", len(synthesized),
		"duration", time.Since(start),
	)
	return nil
}

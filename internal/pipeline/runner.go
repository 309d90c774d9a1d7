package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/dwd-archive-etl/internal/observability"
)

// StationProcessor processes one station end to end.
type StationProcessor interface {
	ProcessStation(ctx context.Context, stationID int) error
}

// StationFailure records a station aborted by a fatal defect.
type StationFailure struct {
	StationID int
	Err       error
}

// RunReport summarizes one ingestion run.
type RunReport struct {
	Succeeded []int
	Failures  []StationFailure
}

// Failed reports whether any station failed.
func (r *RunReport) Failed() bool { return len(r.Failures) > 0 }

// Runner fans stations out to a fixed pool of workers. Failure isolation is
// per station: a fatal defect in one archive never aborts the others.
// Cancellation is station-granular; in-flight stations finish or abort via
// their context, queued ones are dropped.
type Runner struct {
	processor StationProcessor
	workers   int
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewRunner creates a Runner with the given worker count.
func NewRunner(processor StationProcessor, workers int, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		processor: processor,
		workers:   workers,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the run has completed at least one
// station.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no station processed yet")
	}
	return nil
}

// Run processes all stations and returns the per-station outcome. The
// report is complete even when the context is cancelled mid-run; stations
// never started appear in neither list.
func (r *Runner) Run(ctx context.Context, stations []int) RunReport {
	r.logger.Info("run started", "stations", len(stations), "workers", r.workers)
	r.metrics.RunActive.Set(1)
	defer r.metrics.RunActive.Set(0)

	jobs := make(chan int)
	var mu sync.Mutex
	var report RunReport

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for stationID := range jobs {
				err := r.processor.ProcessStation(ctx, stationID)
				mu.Lock()
				if err != nil {
					report.Failures = append(report.Failures, StationFailure{StationID: stationID, Err: err})
				} else {
					report.Succeeded = append(report.Succeeded, stationID)
				}
				mu.Unlock()
				if err != nil {
					r.metrics.StationsFailed.Inc()
					if ctx.Err() == nil {
						r.logger.Error("station failed", "station_id", stationID, "error", err)
					}
				} else {
					r.ready.Store(true)
				}
			}
		}()
	}

feed:
	for _, stationID := range stations {
		select {
		case jobs <- stationID:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Ints(report.Succeeded)
	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].StationID < report.Failures[j].StationID
	})
	r.logger.Info("run finished", "succeeded", len(report.Succeeded), "failed", len(report.Failures))
	return report
}

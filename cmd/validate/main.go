// Command validate performs an offline dry run over a DWD archive directory:
// it merges every station's metadata, normalizes every product row, and
// synthesizes orphan intervals, without writing to any sink. It reports
// per-station counts and fails on the first defect each station carries.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/dwd-archive-etl/internal/domain"
	"github.com/couchcryptid/dwd-archive-etl/internal/parse"
)

// stationReport tracks the outcome of one station's dry run.
type stationReport struct {
	stationID   int
	rows        int
	records     int
	duplicates  int
	orphans     int
	intervals   int
	synthesized int
	err         error
}

func (r *stationReport) passed() bool { return r.err == nil }

func main() {
	dataDir := flag.String("data-dir", "", "directory containing the extracted DWD archive")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if code := run(ctx, *dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(ctx context.Context, dataDir string) int {
	loader := parse.NewArchiveLoader(dataDir)

	lookup, err := loader.StationIndex()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load station index: %v\n", err)
		return 1
	}

	stations, err := loader.Stations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: discover stations: %v\n", err)
		return 1
	}

	fmt.Println("=== DWD Archive Validation ===")
	fmt.Println()

	reports := make([]*stationReport, 0, len(stations))
	for _, id := range stations {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "FATAL: interrupted")
			return 1
		}
		reports = append(reports, dryRunStation(ctx, loader, lookup, id))
	}

	allPassed := true
	for _, r := range reports {
		status := "\033[32mPASS\033[0m"
		if !r.passed() {
			status = "\033[31mFAIL\033[0m"
			allPassed = false
		}
		fmt.Printf("  station %05d  rows=%-8d records=%-8d dup=%-5d orphans=%-6d intervals=%d(+%d synth)  %s\n",
			r.stationID, r.rows, r.records, r.duplicates, r.orphans, r.intervals, r.synthesized, status)
	}

	fmt.Println()
	for _, r := range reports {
		if r.passed() {
			continue
		}
		fmt.Printf("--- station %05d ---\n  %v\n", r.stationID, r.err)
	}

	if allPassed {
		fmt.Printf("All %d stations validated.\n", len(reports))
		return 0
	}
	fmt.Println("Validation FAILED.")
	return 1
}

// dryRunStation runs the full normalization path for one station and returns
// its counts. Any defect aborts that station only.
func dryRunStation(ctx context.Context, loader *parse.ArchiveLoader, lookup domain.IdentityLookup, stationID int) *stationReport {
	r := &stationReport{stationID: stationID}

	sources, metaCtx, err := loader.LoadMetadata(ctx, stationID)
	if err != nil {
		r.err = fmt.Errorf("load metadata: %w", err)
		return r
	}

	intervals, err := domain.MergeIntervals(sources, metaCtx.Provenance())
	if err != nil {
		r.err = fmt.Errorf("merge intervals: %w", err)
		return r
	}
	r.intervals = len(intervals)

	products, err := loader.LoadProducts(ctx, stationID)
	if err != nil {
		r.err = fmt.Errorf("load products: %w", err)
		return r
	}

	normalizer := domain.NewNormalizer(intervals)
	for _, product := range products {
		for _, row := range product.Rows {
			obs, fresh, err := normalizer.NormalizeRow(row, product.Source)
			if err != nil {
				r.err = err
				return r
			}
			r.rows++
			if !fresh {
				r.duplicates++
				continue
			}
			r.records++
			if !obs.MetadataMatched {
				r.orphans++
			}
		}
	}

	synthesized, err := domain.SynthesizeIntervals(stationID, normalizer.Tracker().Gaps(), intervals, lookup, metaCtx.Provenance())
	if err != nil {
		r.err = fmt.Errorf("synthesize intervals: %w", err)
		return r
	}
	r.synthesized = len(synthesized)
	return r
}

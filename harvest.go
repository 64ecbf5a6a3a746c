package europepmc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// HarvestOptions configures a harvest run. Zero values defer to the Config.
type HarvestOptions struct {
	// Reset drops the ledger before harvesting, forcing a full re-harvest
	Reset bool

	// RefreshArchive refetches the candidate list instead of reusing the cache file
	RefreshArchive bool

	// Workers is the number of concurrent article fetches (default harvest.workers)
	Workers int

	// Limit caps the number of new articles fetched in this run (0 = no limit)
	Limit int

	// Progress is called for every candidate skipped or attempted
	Progress func(processed int, id string)
}

// RunStats summarizes a harvest run.
type RunStats struct {
	RunID string

	// FromCache is set when the candidate list was read from the cache file
	FromCache bool

	Candidates  int // identifiers read from the list
	Skipped     int // already captured
	Unavailable int // no full text upstream
	Malformed   int // fetched but not parseable
	Failed      int // transport errors
	Inserted    int
	Duplicates  int // insert was a no-op
}

// Harvester incrementally captures full-text articles into a Ledger.
type Harvester struct {
	cfg    *Config
	src    Source
	ledger *Ledger
	logger *slog.Logger
}

// NewHarvester creates a harvester. A nil logger discards log output.
func NewHarvester(cfg *Config, src Source, ledger *Ledger, logger *slog.Logger) *Harvester {
	if logger == nil {
		logger = discardLogger()
	}
	return &Harvester{
		cfg:    cfg,
		src:    src,
		ledger: ledger,
		logger: logger,
	}
}

// Run harvests every candidate not yet in the ledger.
//
// Candidates are visited in list order. Identifiers already captured are
// never fetched. Articles without full text, unreachable articles and
// malformed documents are skipped and counted; they are retried on the next
// run. Each captured article is committed on its own, so an interrupted run
// resumes where it stopped. Errors reading the candidate list or writing the
// ledger abort the run.
func (h *Harvester) Run(ctx context.Context, opts *HarvestOptions) (*RunStats, error) {
	if opts == nil {
		opts = &HarvestOptions{}
	}
	reset := opts.Reset || h.cfg.EuropePMC.RerunArchive
	refresh := opts.RefreshArchive || h.cfg.EuropePMC.RerunArchive
	workers := opts.Workers
	if workers <= 0 {
		workers = h.cfg.Harvest.Workers
	}
	if workers < 1 {
		workers = 1
	}

	stats := &RunStats{RunID: uuid.NewString()}
	log := h.logger.With("run", stats.RunID)
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if err := h.ledger.Initialize(ctx, reset); err != nil {
		return stats, fmt.Errorf("initialize ledger: %w", err)
	}

	known, err := h.ledger.KnownIDs(ctx)
	if err != nil {
		return stats, err
	}
	skip := make(map[string]struct{}, len(known))
	for _, id := range known {
		skip[id] = struct{}{}
	}

	cands, err := OpenCandidates(ctx, h.src, h.cfg.EuropePMC.ArchiveFile, refresh)
	if err != nil {
		return stats, err
	}
	defer cands.Close()
	stats.FromCache = cands.Cached()

	log.Info("harvest started",
		"known", len(known),
		"reset", reset,
		"cached_archive", stats.FromCache,
		"workers", workers)

	// mu serializes ledger writes and stats updates.
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	attempted := 0
	for cands.Next() {
		if gctx.Err() != nil {
			break
		}
		id := cands.ID()
		_, seen := skip[id]
		if !seen && opts.Limit > 0 && attempted >= opts.Limit {
			break
		}

		mu.Lock()
		stats.Candidates++
		processed := stats.Candidates
		if seen {
			stats.Skipped++
		}
		mu.Unlock()

		if opts.Progress != nil {
			opts.Progress(processed, id)
		}
		if seen {
			continue
		}
		skip[id] = struct{}{}
		attempted++

		g.Go(func() error {
			return h.capture(gctx, log, id, stats, &mu)
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	if err := cands.Err(); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	log.Info("harvest complete",
		"candidates", stats.Candidates,
		"skipped", stats.Skipped,
		"inserted", stats.Inserted,
		"unavailable", stats.Unavailable,
		"malformed", stats.Malformed,
		"failed", stats.Failed)
	return stats, nil
}

// capture fetches, extracts and stores one article.
func (h *Harvester) capture(ctx context.Context, log *slog.Logger, id string, stats *RunStats, mu *sync.Mutex) error {
	doc, err := h.src.FetchArticle(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		mu.Lock()
		defer mu.Unlock()
		switch {
		case errors.Is(err, ErrNotAvailable):
			stats.Unavailable++
			log.Debug("full text not available", "pmcid", id)
		case errors.Is(err, ErrMalformed):
			stats.Malformed++
			log.Warn("skipping malformed document", "pmcid", id, "error", err)
		default:
			stats.Failed++
			log.Warn("fetch failed", "pmcid", id, "error", err)
		}
		return nil
	}

	rec := Extract(id, doc)

	mu.Lock()
	defer mu.Unlock()
	inserted, err := h.ledger.InsertIfAbsent(ctx, rec)
	if err != nil {
		return err
	}
	if inserted {
		stats.Inserted++
		log.Debug("captured", "pmcid", id)
	} else {
		stats.Duplicates++
	}
	return nil
}

// Package crawl drives the search workflow: one person at a time, every
// enabled source, results evaluated and persisted as they arrive.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"genecrawler/internal/logging"
	"genecrawler/internal/match"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
)

// Crawler runs searches sequentially. Sources are shared community services;
// pacing between persons is part of the contract, not an optimization knob.
type Crawler struct {
	registry    *sources.Registry
	engine      *match.Engine
	personDelay time.Duration
	logger      *slog.Logger
}

// New creates a crawler.
func New(registry *sources.Registry, engine *match.Engine, personDelay time.Duration, logger *slog.Logger) (*Crawler, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, fmt.Errorf("crawler requires at least one source")
	}
	if engine == nil {
		return nil, fmt.Errorf("crawler requires a match engine")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Crawler{
		registry:    registry,
		engine:      engine,
		personDelay: personDelay,
		logger:      logger,
	}, nil
}

// Summary aggregates what one run did.
type Summary struct {
	Persons       int
	Searched      int
	SkippedSource int
	Candidates    int
	Accepted      int
	Created       int
	SourceErrors  int
}

// Run crawls every person in order. Source failures are logged and counted
// but never stop the run; storage failures and context cancellation do.
func (c *Crawler) Run(ctx context.Context, persons []*person.Person) (Summary, error) {
	logger := c.logger.With(slog.String("run_id", uuid.NewString()))
	logger.Info("crawl starting",
		slog.Int("persons", len(persons)),
		slog.Int("sources", c.registry.Len()))

	var summary Summary
	for i, p := range persons {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Persons++

		personLogger := logger.With(
			slog.String("person", p.ID),
			slog.String("name", p.FullName()))
		personLogger.Info("searching person",
			slog.Int("position", i+1),
			slog.Int("total", len(persons)))

		if err := c.searchPerson(ctx, p, personLogger, &summary); err != nil {
			return summary, err
		}

		if i < len(persons)-1 {
			if err := sleepContext(ctx, c.personDelay); err != nil {
				return summary, err
			}
		}
	}

	logger.Info("crawl finished",
		slog.Int("persons", summary.Persons),
		slog.Int("candidates", summary.Candidates),
		slog.Int("accepted", summary.Accepted),
		slog.Int("new", summary.Created),
		slog.Int("source_errors", summary.SourceErrors))
	return summary, nil
}

func (c *Crawler) searchPerson(ctx context.Context, p *person.Person, logger *slog.Logger, summary *Summary) error {
	for _, searcher := range c.registry.Ordered() {
		sourceLogger := logger.With(slog.String("source", string(searcher.ID())))

		// Geneteka only indexes Polish records; skip people whose known
		// locations place them elsewhere.
		if searcher.ID() == sources.Geneteka && !p.HasPolishConnection() {
			sourceLogger.Info("skipped, no Polish connection")
			summary.SkippedSource++
			continue
		}

		candidates, err := searcher.Search(ctx, p)
		summary.Searched++
		summary.Candidates += len(candidates)
		if err != nil {
			if sources.IsFatal(err) {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			summary.SourceErrors++
			sourceLogger.Warn("source search failed",
				slog.Int("partial_candidates", len(candidates)),
				slog.Any("error", err))
		}

		outcome, storeErr := c.engine.EvaluateAndStore(ctx, p, candidates)
		summary.Accepted += outcome.Accepted
		summary.Created += outcome.Created
		if storeErr != nil {
			return storeErr
		}
		if outcome.Accepted > 0 {
			sourceLogger.Info("matches recorded",
				slog.Int("candidates", len(candidates)),
				slog.Int("accepted", outcome.Accepted),
				slog.Int("new", outcome.Created))
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

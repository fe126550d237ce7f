package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"genecrawler/internal/config"
	"genecrawler/internal/crawl"
	"genecrawler/internal/fetch"
	"genecrawler/internal/heredis"
	"genecrawler/internal/location"
	"genecrawler/internal/match"
	"genecrawler/internal/matchstore"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
	"genecrawler/internal/sources/basia"
	"genecrawler/internal/sources/geneteka"
	"genecrawler/internal/sources/poznan"
	"genecrawler/internal/sources/ptg"
)

const crawlerUserAgent = "genecrawler/0.1.0"

type crawlFlags struct {
	sources     []string
	limit       int
	maxPages    int
	recentOnly  bool
	useGeocoder bool
	recordID    string
	random      bool
	minYear     int
	maxYear     int
}

func newCrawlCommand(ctx *commandContext) *cobra.Command {
	var flags crawlFlags

	cmd := &cobra.Command{
		Use:   "crawl <heredis-db>",
		Short: "Search the enabled sources for every person in a Heredis database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrawl(cmd, ctx, args[0], flags)
		},
	}

	cmd.Flags().StringSliceVar(&flags.sources, "sources", nil, "Sources to search (geneteka, ptg, poznan, basia, all)")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Crawl at most N persons (0 = all)")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "Cap paginated retrieval per search (0 = config value)")
	cmd.Flags().BoolVar(&flags.recentOnly, "recent-only", false, "Restrict Geneteka to recently added or updated records")
	cmd.Flags().BoolVar(&flags.useGeocoder, "use-geocoder", false, "Resolve unknown localities through Nominatim")
	cmd.Flags().StringVar(&flags.recordID, "record-id", "", "Crawl a single person by record ID (accepts 53 or @53@)")
	cmd.Flags().BoolVar(&flags.random, "random", false, "Shuffle persons instead of crawling oldest first")
	cmd.Flags().IntVar(&flags.minYear, "min-year", 0, "Skip persons born before this year")
	cmd.Flags().IntVar(&flags.maxYear, "max-year", 0, "Skip persons born after this year (0 = config value)")

	return cmd
}

func runCrawl(cmd *cobra.Command, cmdCtx *commandContext, dbPath string, flags crawlFlags) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cmdCtx.newLogger()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := matchstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("open match store: %w", err)
	}
	defer store.Close()

	normalizer, err := buildNormalizer(cfg, flags.useGeocoder, store)
	if err != nil {
		return err
	}

	adapter, err := heredis.Open(dbPath,
		heredis.WithNormalizer(normalizer),
		heredis.WithLogger(logger))
	if err != nil {
		return err
	}
	defer adapter.Close()

	persons, stats, err := adapter.Load(ctx)
	if err != nil {
		return fmt.Errorf("load persons: %w", err)
	}

	persons, err = selectPersons(persons, cfg, flags)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Loaded %d person(s) (%d skipped), crawling %d\n",
		stats.Loaded, stats.SkippedNoName+stats.SkippedUncertain, len(persons))
	if len(persons) == 0 {
		return nil
	}

	registry, err := buildRegistry(cfg, flags, logger)
	if err != nil {
		return err
	}
	engine, err := match.New(store, cfg.Crawl.YearWindow, logger)
	if err != nil {
		return err
	}
	crawler, err := crawl.New(registry, engine, cfg.PersonDelay(), logger)
	if err != nil {
		return err
	}

	summary, err := crawler.Run(ctx, persons)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Crawled %d person(s): %d candidate(s), %d match(es) (%d new), %d source error(s)\n",
		summary.Persons, summary.Candidates, summary.Accepted, summary.Created, summary.SourceErrors)
	return nil
}

func buildNormalizer(cfg *config.Config, useGeocoder bool, store *matchstore.Store) (*location.Normalizer, error) {
	opts := []location.Option{}
	if useGeocoder || cfg.Geocoder.Enabled {
		client, err := location.NewNominatimClient(
			cfg.Geocoder.BaseURL,
			cfg.Geocoder.UserAgent,
			location.WithSpacing(cfg.GeocoderSpacing()),
			location.WithCache(store),
		)
		if err != nil {
			return nil, fmt.Errorf("configure geocoder: %w", err)
		}
		opts = append(opts, location.WithGeocoder(client))
	}
	return location.NewNormalizer(opts...), nil
}

func selectPersons(persons []*person.Person, cfg *config.Config, flags crawlFlags) ([]*person.Person, error) {
	if flags.recordID != "" {
		wanted := person.NormalizeRecordID(flags.recordID)
		for _, p := range persons {
			if p.ID == wanted {
				return []*person.Person{p}, nil
			}
		}
		return nil, fmt.Errorf("record %s not found in database", wanted)
	}

	maxYear := cfg.Crawl.MaxBirthYear
	if flags.maxYear > 0 {
		maxYear = flags.maxYear
	}

	filtered := persons[:0:0]
	for _, p := range persons {
		if p.BirthYear != nil {
			if maxYear > 0 && *p.BirthYear > maxYear {
				continue
			}
			if flags.minYear > 0 && *p.BirthYear < flags.minYear {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	if flags.random {
		rand.Shuffle(len(filtered), func(i, j int) {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		})
	} else {
		person.SortOldestFirst(filtered)
	}

	if flags.limit > 0 && len(filtered) > flags.limit {
		filtered = filtered[:flags.limit]
	}
	return filtered, nil
}

func buildRegistry(cfg *config.Config, flags crawlFlags, logger *slog.Logger) (*sources.Registry, error) {
	selection := flags.sources
	if len(selection) == 0 {
		selection = cfg.Crawl.Sources
	}
	ids, err := sources.ParseIDs(selection)
	if err != nil {
		return nil, err
	}

	maxPages := cfg.Crawl.MaxPages
	if flags.maxPages > 0 {
		maxPages = flags.maxPages
	}

	fetcher := fetch.NewHTTPFetcher(cfg.RequestTimeout(), crawlerUserAgent)
	window := cfg.Crawl.YearWindow

	searchers := make([]sources.Searcher, 0, len(ids))
	for _, id := range ids {
		var (
			searcher sources.Searcher
			buildErr error
		)
		switch id {
		case sources.Geneteka:
			searcher, buildErr = geneteka.New(fetcher, geneteka.Config{
				MaxPages:   maxPages,
				RecentOnly: flags.recentOnly,
				YearWindow: window,
				PageDelay:  cfg.PageDelay(),
			}, logger)
		case sources.PTG:
			searcher, buildErr = ptg.New(fetcher, ptg.Config{YearWindow: window}, logger)
		case sources.Poznan:
			searcher, buildErr = poznan.New(fetcher, poznan.Config{}, logger)
		case sources.Basia:
			searcher, buildErr = basia.New(fetcher, basia.Config{YearWindow: window}, logger)
		default:
			buildErr = fmt.Errorf("no searcher for source %q", id)
		}
		if buildErr != nil {
			return nil, buildErr
		}
		searchers = append(searchers, searcher)
	}
	return sources.NewRegistry(searchers...), nil
}

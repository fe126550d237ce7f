package geneteka

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"genecrawler/internal/fetch"
	"genecrawler/internal/location"
	"genecrawler/internal/logging"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
)

// DefaultBaseURL is the production Geneteka endpoint.
const DefaultBaseURL = "https://geneteka.genealodzy.pl"

// marriage queries have no direct year anchor; estimate from birth year.
const (
	marriageYearOffset = 25
	marriageYearBefore = 10
	marriageYearAfter  = 10
)

// Config tunes the searcher.
type Config struct {
	// BaseURL overrides the service endpoint (tests point it at a stub).
	BaseURL string
	// MaxPages caps paginated retrieval per category/region query. Zero
	// means unlimited.
	MaxPages int
	// RecentOnly restricts queries to records the service marks as added
	// or updated recently.
	RecentOnly bool
	// YearWindow is the ± tolerance around known birth/death years.
	YearWindow int
	// PageDelay is the pause between consecutive result pages.
	PageDelay time.Duration
}

// Searcher implements sources.Searcher for Geneteka.
type Searcher struct {
	fetcher fetch.Fetcher
	cfg     Config
	logger  *slog.Logger
}

var _ sources.Searcher = (*Searcher)(nil)

// New creates a Geneteka searcher.
func New(fetcher fetch.Fetcher, cfg Config, logger *slog.Logger) (*Searcher, error) {
	if fetcher == nil {
		return nil, sources.Wrap(sources.ErrConfiguration, sources.Geneteka, "init", "nil fetcher", nil)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.YearWindow <= 0 {
		cfg.YearWindow = 5
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Searcher{fetcher: fetcher, cfg: cfg, logger: logger}, nil
}

// ID returns the source identifier.
func (s *Searcher) ID() sources.ID {
	return sources.Geneteka
}

// categoryQuery describes one record-category search against one region.
type categoryQuery struct {
	kind     sources.RecordKind
	bdm      string
	tableID  string
	fromYear *int
	toYear   *int
}

// Search runs every applicable category/region query for the person and
// collects the candidates. A transient fetch failure aborts the remaining
// queries for this person and returns what was collected so far.
func (s *Searcher) Search(ctx context.Context, p *person.Person) ([]sources.Candidate, error) {
	regions := s.searchRegions(p)
	queries := s.categoryQueries(p)

	var collected []sources.Candidate
	for _, query := range queries {
		for _, region := range regions {
			candidates, err := s.runQuery(ctx, p, query, region)
			collected = append(collected, candidates...)
			if err != nil {
				return collected, err
			}
		}
	}
	return collected, nil
}

// searchRegions returns the regions to query: the person's derived region
// when Geneteka has a code for it, otherwise all sixteen.
func (s *Searcher) searchRegions(p *person.Person) []location.Region {
	if region, ok := p.QueryRegion(); ok {
		if _, known := RegionCode(region); known {
			return []location.Region{region}
		}
	}
	return location.Regions()
}

func (s *Searcher) categoryQueries(p *person.Person) []categoryQuery {
	window := s.cfg.YearWindow

	queries := []categoryQuery{
		{kind: sources.KindBirth, bdm: "B", tableID: "table_b"},
		{kind: sources.KindMarriage, bdm: "M", tableID: "table_s"},
		{kind: sources.KindDeath, bdm: "D", tableID: "table_d"},
	}

	if p.BirthYear != nil {
		queries[0].fromYear = intPtr(*p.BirthYear - window)
		queries[0].toYear = intPtr(*p.BirthYear + window)
		queries[1].fromYear = intPtr(*p.BirthYear + marriageYearOffset - marriageYearBefore)
		queries[1].toYear = intPtr(*p.BirthYear + marriageYearOffset + marriageYearAfter)
	}
	if p.DeathYear != nil {
		queries[2].fromYear = intPtr(*p.DeathYear - window)
		queries[2].toYear = intPtr(*p.DeathYear + window)
	}
	return queries
}

func (s *Searcher) buildForm(p *person.Person, query categoryQuery, code string) url.Values {
	form := url.Values{}
	form.Set("op", "gt")
	form.Set("lang", "pol")
	form.Set("bdm", query.bdm)
	form.Set("w", code)
	form.Set("search_lastname", p.Surname)
	form.Set("search_name", p.SearchGivenName())
	if query.fromYear != nil {
		form.Set("from_date", strconv.Itoa(*query.fromYear))
	}
	if query.toYear != nil {
		form.Set("to_date", strconv.Itoa(*query.toYear))
	}
	if s.cfg.RecentOnly {
		form.Set("search_only_recent", "1")
	}
	return form
}

// runQuery drives paginated retrieval for one category/region combination.
func (s *Searcher) runQuery(ctx context.Context, p *person.Person, query categoryQuery, region location.Region) ([]sources.Candidate, error) {
	code, ok := RegionCode(region)
	if !ok {
		return nil, nil
	}

	logger := s.logger.With(
		slog.String("source", string(sources.Geneteka)),
		slog.String("kind", string(query.kind)),
		slog.String("region", string(region)),
		slog.String("person", p.ID),
	)

	request := fetch.Request{
		URL:  s.cfg.BaseURL + "/index.php",
		Form: s.buildForm(p, query, code),
	}

	pager := sources.NewPager(s.cfg.MaxPages)
	var collected []sources.Candidate

	for {
		page, err := s.fetcher.Fetch(ctx, request)
		if err != nil {
			return collected, sources.Wrap(sources.ErrTransient, sources.Geneteka, "fetch page",
				"page "+strconv.Itoa(pager.Page()), err)
		}

		records, nextHref := s.parsePage(page, query, region, logger)
		collected = append(collected, records...)
		if len(records) > 0 {
			logger.Debug("parsed result page",
				slog.Int("page", pager.Page()),
				slog.Int("records", len(records)))
		}

		if pager.Advance(len(records), nextHref != "") == sources.PageDone {
			break
		}

		if err := sleepContext(ctx, s.cfg.PageDelay); err != nil {
			return collected, sources.Wrap(sources.ErrTransient, sources.Geneteka, "page delay", "", err)
		}
		request = fetch.Request{URL: fetch.ResolveLink(page.FinalURL, nextHref)}
	}

	if pager.Truncated() {
		logger.Info("page limit truncated results",
			slog.Int("max_pages", s.cfg.MaxPages),
			slog.Int("records", len(collected)))
	}
	return collected, nil
}

// parsePage extracts this page's records and the next-page affordance. A page
// without the expected table contributes zero records; individual malformed
// rows are skipped.
func (s *Searcher) parsePage(page *fetch.Page, query categoryQuery, region location.Region, logger *slog.Logger) ([]sources.Candidate, string) {
	root, err := sources.ParseHTML(page.Body)
	if err != nil {
		logger.Warn("unparseable page content", slog.Any("error", err))
		return nil, ""
	}

	table := sources.FindByID(root, query.tableID)
	if table == nil || !sources.HasClass(table, "tablesearch") {
		return nil, ""
	}

	rows := sources.TableRows(table)
	var records []sources.Candidate
	for i, row := range rows {
		candidate, ok := parseRow(row, query, region)
		if !ok {
			// header rows and spacer rows land here too
			if len(sources.RowCells(row)) > 0 {
				logger.Debug("skipped malformed result row", slog.Int("row", i))
			}
			continue
		}
		records = append(records, candidate)
	}

	return records, nextPageHref(root, query.tableID)
}

func intPtr(v int) *int {
	return &v
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

// Package poznan searches the Poznan Project marriage index at
// poznan-project.psnc.pl. The index holds marriage records only, so the
// query year range is estimated from the person's birth year and each result
// row yields one candidate per spouse.
package poznan

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"genecrawler/internal/fetch"
	"genecrawler/internal/logging"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
	"genecrawler/internal/textnorm"
)

// DefaultBaseURL is the production endpoint.
const DefaultBaseURL = "https://poznan-project.psnc.pl"

// Marriage years are estimated as birth year plus a generation offset.
const (
	marriageYearOffset = 25
	marriageYearBefore = 10
	marriageYearAfter  = 10
)

// Config tunes the searcher.
type Config struct {
	BaseURL string
}

// Searcher implements sources.Searcher for the Poznan Project.
type Searcher struct {
	fetcher fetch.Fetcher
	cfg     Config
	logger  *slog.Logger
}

var _ sources.Searcher = (*Searcher)(nil)

// New creates a Poznan Project searcher.
func New(fetcher fetch.Fetcher, cfg Config, logger *slog.Logger) (*Searcher, error) {
	if fetcher == nil {
		return nil, sources.Wrap(sources.ErrConfiguration, sources.Poznan, "init", "nil fetcher", nil)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Searcher{fetcher: fetcher, cfg: cfg, logger: logger}, nil
}

// ID returns the source identifier.
func (s *Searcher) ID() sources.ID {
	return sources.Poznan
}

// Search runs the extended marriage search and parses the single result
// table.
func (s *Searcher) Search(ctx context.Context, p *person.Person) ([]sources.Candidate, error) {
	form := url.Values{}
	form.Set("surname", p.Surname)
	form.Set("firstname1", p.SearchGivenName())
	if p.BirthYear != nil {
		estimate := *p.BirthYear + marriageYearOffset
		form.Set("yearfrom", strconv.Itoa(estimate-marriageYearBefore))
		form.Set("yearto", strconv.Itoa(estimate+marriageYearAfter))
	}

	page, err := s.fetcher.Fetch(ctx, fetch.Request{
		URL:  s.cfg.BaseURL + "/search.php",
		Form: form,
	})
	if err != nil {
		return nil, sources.Wrap(sources.ErrTransient, sources.Poznan, "fetch results", "", err)
	}

	root, err := sources.ParseHTML(page.Body)
	if err != nil {
		return nil, sources.Wrap(sources.ErrParse, sources.Poznan, "parse results", "", err)
	}

	table := sources.FindByID(root, "results")
	if table == nil {
		return nil, nil
	}

	var candidates []sources.Candidate
	for i, row := range sources.TableRows(table) {
		parsed, ok := parseRow(row)
		if !ok {
			if len(sources.RowCells(row)) > 0 {
				s.logger.Debug("skipped malformed result row",
					slog.String("source", string(sources.Poznan)),
					slog.Int("row", i))
			}
			continue
		}
		candidates = append(candidates, parsed...)
	}
	return candidates, nil
}

// parseRow turns one marriage row into candidates for both spouses. The
// match engine later decides which spouse, if either, the searched person is.
func parseRow(row *html.Node) ([]sources.Candidate, bool) {
	cells := sources.RowCells(row)
	if len(cells) < 4 {
		return nil, false
	}

	groom := sources.Text(cells[0])
	bride := sources.Text(cells[1])
	yearText := sources.Text(cells[2])
	parish := sources.Text(cells[3])

	if groom == "" && bride == "" {
		return nil, false
	}

	var year *int
	if parsed, ok := textnorm.ExtractYear(yearText); ok {
		year = &parsed
	}
	raw := strings.Join([]string{groom, bride, yearText, parish}, " | ")

	var candidates []sources.Candidate
	for _, spouse := range []string{groom, bride} {
		given, surname := sources.SplitFullName(spouse)
		if given == "" && surname == "" {
			continue
		}
		candidates = append(candidates, sources.Candidate{
			Source:    sources.Poznan,
			Kind:      sources.KindMarriage,
			Year:      year,
			GivenName: given,
			Surname:   surname,
			Parish:    parish,
			Raw:       raw,
		})
	}
	return candidates, len(candidates) > 0
}

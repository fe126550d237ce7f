// Package basia searches BaSIA, the Wielkopolska civil-registration index at
// basia.famula.pl. Results carry a document-type label that determines the
// record kind.
package basia

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
const DefaultBaseURL = "https://www.basia.famula.pl/en/"

// Config tunes the searcher.
type Config struct {
	BaseURL string
	// YearWindow is the ± tolerance around the known birth year.
	YearWindow int
}

// Searcher implements sources.Searcher for BaSIA.
type Searcher struct {
	fetcher fetch.Fetcher
	cfg     Config
	logger  *slog.Logger
}

var _ sources.Searcher = (*Searcher)(nil)

// New creates a BaSIA searcher.
func New(fetcher fetch.Fetcher, cfg Config, logger *slog.Logger) (*Searcher, error) {
	if fetcher == nil {
		return nil, sources.Wrap(sources.ErrConfiguration, sources.Basia, "init", "nil fetcher", nil)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
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
	return sources.Basia
}

// Search submits the index form and parses the single result table.
func (s *Searcher) Search(ctx context.Context, p *person.Person) ([]sources.Candidate, error) {
	form := url.Values{}
	form.Set("firstname", p.SearchGivenName())
	form.Set("lastname", p.Surname)
	if p.BirthYear != nil {
		form.Set("yearfrom", strconv.Itoa(*p.BirthYear-s.cfg.YearWindow))
		form.Set("yearto", strconv.Itoa(*p.BirthYear+s.cfg.YearWindow))
	}

	page, err := s.fetcher.Fetch(ctx, fetch.Request{URL: s.cfg.BaseURL, Form: form})
	if err != nil {
		return nil, sources.Wrap(sources.ErrTransient, sources.Basia, "fetch results", "", err)
	}

	root, err := sources.ParseHTML(page.Body)
	if err != nil {
		return nil, sources.Wrap(sources.ErrParse, sources.Basia, "parse results", "", err)
	}

	table := resultTable(root)
	if table == nil {
		return nil, nil
	}

	var candidates []sources.Candidate
	for i, row := range sources.TableRows(table) {
		candidate, ok := parseRow(row)
		if !ok {
			if len(sources.RowCells(row)) > 0 {
				s.logger.Debug("skipped malformed result row",
					slog.String("source", string(sources.Basia)),
					slog.Int("row", i))
			}
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func resultTable(root *html.Node) *html.Node {
	tables := sources.FindAllByClass(root, "table", "results")
	if len(tables) == 0 {
		return nil
	}
	return tables[0]
}

func parseRow(row *html.Node) (sources.Candidate, bool) {
	cells := sources.RowCells(row)
	if len(cells) < 4 {
		return sources.Candidate{}, false
	}

	name := sources.Text(cells[0])
	yearText := sources.Text(cells[1])
	place := sources.Text(cells[2])
	documentType := sources.Text(cells[3])

	given, surname := sources.SplitFullName(name)
	if given == "" && surname == "" {
		return sources.Candidate{}, false
	}

	candidate := sources.Candidate{
		Source:    sources.Basia,
		Kind:      sources.KindFromDocumentType(documentType),
		GivenName: given,
		Surname:   surname,
		Locality:  place,
		Raw:       strings.Join([]string{name, yearText, place, documentType}, " | "),
	}
	if year, ok := textnorm.ExtractYear(yearText); ok {
		candidate.Year = &year
	}
	return candidate, true
}

// Package ptg searches PTG PomGenBaza, the Pomeranian metrical-register
// index at ptg.gda.pl. The service returns everything matching the form in
// one response, so there is no pagination to drive.
package ptg

import (
	"context"
	"log/slog"
	"net/http"
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

// DefaultBaseURL is the production search endpoint.
const DefaultBaseURL = "https://www.ptg.gda.pl/language/pl/pomgenbaza/przeszukiwanie-rejestrow-metrykalnych/"

// Config tunes the searcher.
type Config struct {
	BaseURL string
	// YearWindow is the ± tolerance around the known birth year.
	YearWindow int
}

// Searcher implements sources.Searcher for PTG PomGenBaza.
type Searcher struct {
	fetcher fetch.Fetcher
	cfg     Config
	logger  *slog.Logger
}

var _ sources.Searcher = (*Searcher)(nil)

// New creates a PTG searcher.
func New(fetcher fetch.Fetcher, cfg Config, logger *slog.Logger) (*Searcher, error) {
	if fetcher == nil {
		return nil, sources.Wrap(sources.ErrConfiguration, sources.PTG, "init", "nil fetcher", nil)
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
	return sources.PTG
}

// Search submits the metrical-register form and parses the single result
// listing.
func (s *Searcher) Search(ctx context.Context, p *person.Person) ([]sources.Candidate, error) {
	form := url.Values{}
	form.Set("mim", p.SearchGivenName())
	form.Set("mnz", p.Surname)
	if p.BirthYear != nil {
		form.Set("ode", strconv.Itoa(*p.BirthYear-s.cfg.YearWindow))
		form.Set("doe", strconv.Itoa(*p.BirthYear+s.cfg.YearWindow))
	}

	page, err := s.fetcher.Fetch(ctx, fetch.Request{
		URL:    s.cfg.BaseURL,
		Method: http.MethodPost,
		Form:   form,
	})
	if err != nil {
		return nil, sources.Wrap(sources.ErrTransient, sources.PTG, "fetch results", "", err)
	}

	root, err := sources.ParseHTML(page.Body)
	if err != nil {
		return nil, sources.Wrap(sources.ErrParse, sources.PTG, "parse results", "", err)
	}

	container := sources.FindByID(root, "ptgSearchResults")
	if container == nil {
		return nil, nil
	}

	rows := sources.FindAllByClass(container, "div", "ptg-search-row")
	candidates := make([]sources.Candidate, 0, len(rows))
	for i, row := range rows {
		candidate, ok := parseRow(row)
		if !ok {
			s.logger.Debug("skipped malformed result row",
				slog.String("source", string(sources.PTG)),
				slog.Int("row", i))
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func parseRow(row *html.Node) (sources.Candidate, bool) {
	name := spanText(row, "name")
	yearText := spanText(row, "year")
	parish := spanText(row, "parish")

	if name == "" && yearText == "" && parish == "" {
		return sources.Candidate{}, false
	}

	given, surname := sources.SplitFullName(name)
	candidate := sources.Candidate{
		Source:    sources.PTG,
		Kind:      sources.KindOther,
		GivenName: given,
		Surname:   surname,
		Parish:    parish,
		Raw:       strings.Join([]string{name, yearText, parish}, " | "),
	}
	if year, ok := textnorm.ExtractYear(yearText); ok {
		candidate.Year = &year
	}
	return candidate, true
}

func spanText(row *html.Node, class string) string {
	spans := sources.FindAllByClass(row, "span", class)
	if len(spans) == 0 {
		return ""
	}
	return sources.Text(spans[0])
}

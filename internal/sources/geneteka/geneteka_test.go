package geneteka_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"genecrawler/internal/fetch"
	"genecrawler/internal/location"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
	"genecrawler/internal/sources/geneteka"
)

type stubFetcher struct {
	mu       sync.Mutex
	requests []fetch.Request
	respond  func(req fetch.Request) (*fetch.Page, error)
}

func (s *stubFetcher) Fetch(_ context.Context, req fetch.Request) (*fetch.Page, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return s.respond(req)
}

func (s *stubFetcher) recorded() []fetch.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fetch.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

const emptyPage = `<html><body><p>Brak wyników</p></body></html>`

func birthPage(rows string, next string) string {
	var builder strings.Builder
	builder.WriteString(`<html><body><table id="table_b" class="tablesearch">`)
	builder.WriteString(`<thead><tr><th>Rok</th><th>Akt</th><th>Imię</th><th>Nazwisko</th>`)
	builder.WriteString(`<th>Imię ojca</th><th>Imię matki</th><th>Nazwisko matki</th>`)
	builder.WriteString(`<th>Parafia</th><th>Miejscowość</th><th>Uwagi</th></tr></thead><tbody>`)
	builder.WriteString(rows)
	builder.WriteString(`</tbody></table>`)
	builder.WriteString(next)
	builder.WriteString(`</body></html>`)
	return builder.String()
}

const kowalskiRow = `<tr><td>1882</td><td>15</td><td>Jan</td><td>Kowalski</td>` +
	`<td>Józef</td><td>Maria</td><td>Nowak</td><td>Bochnia</td><td>Bochnia</td>` +
	`<td><a href="#" onclick="show()">i</a><a href="https://metryki.example/skan/1" target="doc">Skan</a></td></tr>`

func mustPerson(t *testing.T, fields person.Fields) *person.Person {
	t.Helper()
	p, err := person.New(fields)
	if err != nil {
		t.Fatalf("person.New: %v", err)
	}
	return p
}

func intPtr(v int) *int { return &v }

func regionPtr(r location.Region) *location.Region { return &r }

func newSearcher(t *testing.T, stub *stubFetcher, cfg geneteka.Config) *geneteka.Searcher {
	t.Helper()
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://geneteka.test"
	}
	s, err := geneteka.New(stub, cfg, nil)
	if err != nil {
		t.Fatalf("geneteka.New: %v", err)
	}
	return s
}

func TestSearchParsesBirthRows(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			body := emptyPage
			if req.Form.Get("bdm") == "B" {
				body = birthPage(kowalskiRow, "")
			}
			return &fetch.Page{Body: []byte(body), FinalURL: req.URL}, nil
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{YearWindow: 5})

	p := mustPerson(t, person.Fields{
		ID:          "@1@",
		GivenName:   "Jan Maria",
		Surname:     "Kowalski",
		BirthYear:   intPtr(1880),
		BirthRegion: regionPtr(location.Malopolskie),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Source != sources.Geneteka {
		t.Errorf("Source = %q", c.Source)
	}
	if c.Kind != sources.KindBirth {
		t.Errorf("Kind = %q", c.Kind)
	}
	if c.Year == nil || *c.Year != 1882 {
		t.Errorf("Year = %v, want 1882", c.Year)
	}
	if c.Act != "15" {
		t.Errorf("Act = %q", c.Act)
	}
	if c.GivenName != "Jan" || c.Surname != "Kowalski" {
		t.Errorf("name = %q %q", c.GivenName, c.Surname)
	}
	if c.FatherGivenName != "Józef" || c.MotherGivenName != "Maria" || c.MotherSurname != "Nowak" {
		t.Errorf("parents = %q %q %q", c.FatherGivenName, c.MotherGivenName, c.MotherSurname)
	}
	if c.Parish != "Bochnia" || c.Locality != "Bochnia" {
		t.Errorf("place = %q %q", c.Parish, c.Locality)
	}
	if c.Link != "https://metryki.example/skan/1" {
		t.Errorf("Link = %q", c.Link)
	}
	if c.Region == nil || *c.Region != location.Malopolskie {
		t.Errorf("Region = %v", c.Region)
	}
}

func TestSearchQueryConstruction(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			return &fetch.Page{Body: []byte(emptyPage), FinalURL: req.URL}, nil
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{YearWindow: 5, RecentOnly: true})

	p := mustPerson(t, person.Fields{
		ID:          "@2@",
		GivenName:   "Anna Zofia",
		Surname:     "Wiśniewska",
		BirthYear:   intPtr(1880),
		DeathYear:   intPtr(1950),
		BirthRegion: regionPtr(location.Malopolskie),
	})

	if _, err := searcher.Search(context.Background(), p); err != nil {
		t.Fatalf("Search: %v", err)
	}

	requests := stub.recorded()
	if len(requests) != 3 {
		t.Fatalf("got %d requests, want 3 (one per record category)", len(requests))
	}

	byCategory := map[string]fetch.Request{}
	for _, req := range requests {
		byCategory[req.Form.Get("bdm")] = req
	}

	birth := byCategory["B"]
	if got := birth.Form.Get("w"); got != "06mp" {
		t.Errorf("birth w = %q, want 06mp", got)
	}
	if birth.Form.Get("search_name") != "Anna" {
		t.Errorf("search_name = %q, want first given name only", birth.Form.Get("search_name"))
	}
	if birth.Form.Get("search_lastname") != "Wiśniewska" {
		t.Errorf("search_lastname = %q", birth.Form.Get("search_lastname"))
	}
	if birth.Form.Get("from_date") != "1875" || birth.Form.Get("to_date") != "1885" {
		t.Errorf("birth years = %s..%s, want 1875..1885",
			birth.Form.Get("from_date"), birth.Form.Get("to_date"))
	}
	if birth.Form.Get("search_only_recent") != "1" {
		t.Errorf("search_only_recent missing")
	}

	marriage := byCategory["M"]
	if marriage.Form.Get("from_date") != "1895" || marriage.Form.Get("to_date") != "1915" {
		t.Errorf("marriage years = %s..%s, want 1895..1915",
			marriage.Form.Get("from_date"), marriage.Form.Get("to_date"))
	}

	death := byCategory["D"]
	if death.Form.Get("from_date") != "1945" || death.Form.Get("to_date") != "1955" {
		t.Errorf("death years = %s..%s, want 1945..1955",
			death.Form.Get("from_date"), death.Form.Get("to_date"))
	}
}

func TestSearchAllRegionsWhenLocationUnknown(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			return &fetch.Page{Body: []byte(emptyPage), FinalURL: req.URL}, nil
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{})

	p := mustPerson(t, person.Fields{ID: "@3@", GivenName: "Piotr", Surname: "Zieliński"})

	if _, err := searcher.Search(context.Background(), p); err != nil {
		t.Fatalf("Search: %v", err)
	}

	codes := map[string]struct{}{}
	for _, req := range stub.recorded() {
		if req.Form.Get("bdm") == "B" {
			codes[req.Form.Get("w")] = struct{}{}
		}
	}
	if len(codes) != 16 {
		t.Errorf("birth queries covered %d voivodeships, want 16", len(codes))
	}
}

func TestSearchFollowsNextPageLink(t *testing.T) {
	secondRow := `<tr><td>1883</td><td>44</td><td>Jan</td><td>Kowalski</td>` +
		`<td>Adam</td><td>Ewa</td><td>Lis</td><td>Tarnów</td><td>Tarnów</td><td></td></tr>`
	next := `<a id="table_b_next" href="index.php?op=gt&page=2">&raquo;</a>`

	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			switch {
			case strings.Contains(req.URL, "page=2"):
				return &fetch.Page{Body: []byte(birthPage(secondRow, "")), FinalURL: req.URL}, nil
			case req.Form.Get("bdm") == "B":
				return &fetch.Page{
					Body:     []byte(birthPage(kowalskiRow, next)),
					FinalURL: "https://geneteka.test/index.php",
				}, nil
			default:
				return &fetch.Page{Body: []byte(emptyPage), FinalURL: req.URL}, nil
			}
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{})

	p := mustPerson(t, person.Fields{
		ID:          "@4@",
		GivenName:   "Jan",
		Surname:     "Kowalski",
		BirthRegion: regionPtr(location.Malopolskie),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates across pages, want 2", len(candidates))
	}

	var followed bool
	for _, req := range stub.recorded() {
		if req.URL == "https://geneteka.test/index.php?op=gt&page=2" {
			followed = true
		}
	}
	if !followed {
		t.Errorf("next-page link was not resolved against the page URL")
	}
}

func TestSearchStopsAtDisabledNextControl(t *testing.T) {
	disabled := `<a id="table_b_next" class="paginate_button disabled" href="#">&raquo;</a>`
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			body := emptyPage
			if req.Form.Get("bdm") == "B" {
				body = birthPage(kowalskiRow, disabled)
			}
			return &fetch.Page{Body: []byte(body), FinalURL: req.URL}, nil
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{})

	p := mustPerson(t, person.Fields{
		ID:          "@5@",
		GivenName:   "Jan",
		Surname:     "Kowalski",
		BirthRegion: regionPtr(location.Malopolskie),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("got %d candidates, want 1", len(candidates))
	}

	var birthFetches int
	for _, req := range stub.recorded() {
		if req.Form.Get("bdm") == "B" {
			birthFetches++
		}
	}
	if birthFetches != 1 {
		t.Errorf("birth table fetched %d times, want 1", birthFetches)
	}
}

func TestSearchPageLimitTruncates(t *testing.T) {
	next := `<a id="table_b_next" href="index.php?op=gt&page=next">&raquo;</a>`
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			body := emptyPage
			if req.Form.Get("bdm") == "B" || strings.Contains(req.URL, "page=next") {
				body = birthPage(kowalskiRow, next)
			}
			return &fetch.Page{Body: []byte(body), FinalURL: req.URL}, nil
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{MaxPages: 3})

	p := mustPerson(t, person.Fields{
		ID:          "@6@",
		GivenName:   "Jan",
		Surname:     "Kowalski",
		BirthRegion: regionPtr(location.Malopolskie),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 3 {
		t.Errorf("got %d candidates, want 3 (one per allowed page)", len(candidates))
	}
}

func TestSearchReturnsPartialResultsOnFetchError(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			switch req.Form.Get("bdm") {
			case "B":
				return &fetch.Page{Body: []byte(birthPage(kowalskiRow, "")), FinalURL: req.URL}, nil
			default:
				return nil, errors.New("connection reset")
			}
		},
	}
	searcher := newSearcher(t, stub, geneteka.Config{})

	p := mustPerson(t, person.Fields{
		ID:          "@7@",
		GivenName:   "Jan",
		Surname:     "Kowalski",
		BirthRegion: regionPtr(location.Malopolskie),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if !errors.Is(err, sources.ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
	if sources.IsFatal(err) {
		t.Errorf("transient fetch failure classified as fatal")
	}
	if len(candidates) != 1 {
		t.Errorf("got %d candidates before the failure, want 1", len(candidates))
	}
}

func TestNewRejectsNilFetcher(t *testing.T) {
	_, err := geneteka.New(nil, geneteka.Config{}, nil)
	if !errors.Is(err, sources.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

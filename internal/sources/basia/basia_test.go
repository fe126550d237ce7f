package basia_test

import (
	"context"
	"errors"
	"testing"

	"genecrawler/internal/fetch"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
	"genecrawler/internal/sources/basia"
)

type stubFetcher struct {
	requests []fetch.Request
	respond  func(req fetch.Request) (*fetch.Page, error)
}

func (s *stubFetcher) Fetch(_ context.Context, req fetch.Request) (*fetch.Page, error) {
	s.requests = append(s.requests, req)
	return s.respond(req)
}

const resultsPage = `<html><body>
<table class="results">
<tr><th>Name</th><th>Year</th><th>Place</th><th>Type</th></tr>
<tr><td>Stanisław Górski</td><td>1888</td><td>Szamotuły</td><td>akt urodzenia</td></tr>
<tr><td>Stanisława Górska</td><td>1910</td><td>Oborniki</td><td>akt ślubu</td></tr>
<tr><td></td><td></td><td></td><td></td></tr>
</table>
</body></html>`

func intPtr(v int) *int { return &v }

func mustPerson(t *testing.T, fields person.Fields) *person.Person {
	t.Helper()
	p, err := person.New(fields)
	if err != nil {
		t.Fatalf("person.New: %v", err)
	}
	return p
}

func TestSearchParsesResultTable(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			return &fetch.Page{Body: []byte(resultsPage), FinalURL: req.URL}, nil
		},
	}
	searcher, err := basia.New(stub, basia.Config{BaseURL: "https://basia.test/", YearWindow: 5}, nil)
	if err != nil {
		t.Fatalf("basia.New: %v", err)
	}

	p := mustPerson(t, person.Fields{
		ID:        "@31@",
		GivenName: "Stanisław",
		Surname:   "Górski",
		BirthYear: intPtr(1890),
	})

	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (empty row skipped)", len(candidates))
	}

	birth := candidates[0]
	if birth.Kind != sources.KindBirth {
		t.Errorf("first row Kind = %q, want birth", birth.Kind)
	}
	if birth.GivenName != "Stanisław" || birth.Surname != "Górski" {
		t.Errorf("name = %q %q", birth.GivenName, birth.Surname)
	}
	if birth.Year == nil || *birth.Year != 1888 {
		t.Errorf("Year = %v, want 1888", birth.Year)
	}
	if birth.Locality != "Szamotuły" {
		t.Errorf("Locality = %q", birth.Locality)
	}

	if candidates[1].Kind != sources.KindMarriage {
		t.Errorf("second row Kind = %q, want marriage", candidates[1].Kind)
	}

	req := stub.requests[0]
	if req.Form.Get("firstname") != "Stanisław" || req.Form.Get("lastname") != "Górski" {
		t.Errorf("form names = %q %q", req.Form.Get("firstname"), req.Form.Get("lastname"))
	}
	if req.Form.Get("yearfrom") != "1885" || req.Form.Get("yearto") != "1895" {
		t.Errorf("form years = %s..%s, want 1885..1895",
			req.Form.Get("yearfrom"), req.Form.Get("yearto"))
	}
}

func TestSearchNoResultTable(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			return &fetch.Page{Body: []byte(`<html><body><p>No results.</p></body></html>`)}, nil
		},
	}
	searcher, err := basia.New(stub, basia.Config{}, nil)
	if err != nil {
		t.Fatalf("basia.New: %v", err)
	}

	p := mustPerson(t, person.Fields{ID: "@32@", GivenName: "Jan", Surname: "Nowak"})
	candidates, err := searcher.Search(context.Background(), p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("got %d candidates, want none", len(candidates))
	}
}

func TestSearchFetchFailureIsTransient(t *testing.T) {
	stub := &stubFetcher{
		respond: func(req fetch.Request) (*fetch.Page, error) {
			return nil, errors.New("connection refused")
		},
	}
	searcher, err := basia.New(stub, basia.Config{}, nil)
	if err != nil {
		t.Fatalf("basia.New: %v", err)
	}

	p := mustPerson(t, person.Fields{ID: "@33@", GivenName: "Jan", Surname: "Nowak"})
	_, err = searcher.Search(context.Background(), p)
	if !errors.Is(err, sources.ErrTransient) {
		t.Fatalf("err = %v, want ErrTransient", err)
	}
}

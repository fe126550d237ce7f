package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"genecrawler/internal/crawl"
	"genecrawler/internal/match"
	"genecrawler/internal/matchstore"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
)

type stubSearcher struct {
	id         sources.ID
	candidates []sources.Candidate
	err        error
	searched   []string
}

func (s *stubSearcher) ID() sources.ID {
	return s.id
}

func (s *stubSearcher) Search(_ context.Context, p *person.Person) ([]sources.Candidate, error) {
	s.searched = append(s.searched, p.ID)
	return s.candidates, s.err
}

type memoryStore struct {
	records map[string]matchstore.Record
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]matchstore.Record)}
}

func (m *memoryStore) UpsertMatch(_ context.Context, rec matchstore.Record) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	key := rec.PersonID + "|" + rec.Source + "|" + rec.RecordType + "|" + rec.Fingerprint
	_, exists := m.records[key]
	m.records[key] = rec
	return !exists, nil
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }

func mustPerson(t *testing.T, fields person.Fields) *person.Person {
	t.Helper()
	p, err := person.New(fields)
	if err != nil {
		t.Fatalf("person.New: %v", err)
	}
	return p
}

func newCrawler(t *testing.T, store match.Store, searchers ...sources.Searcher) *crawl.Crawler {
	t.Helper()
	engine, err := match.New(store, 5, nil)
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	crawler, err := crawl.New(sources.NewRegistry(searchers...), engine, 0, nil)
	if err != nil {
		t.Fatalf("crawl.New: %v", err)
	}
	return crawler
}

func matchingCandidate(id sources.ID, p *person.Person) sources.Candidate {
	return sources.Candidate{
		Source:    id,
		Kind:      sources.KindBirth,
		Year:      p.BirthYear,
		GivenName: p.GivenName,
		Surname:   p.Surname,
	}
}

func TestRunSearchesEveryPersonAndSource(t *testing.T) {
	jan := mustPerson(t, person.Fields{ID: "@1@", GivenName: "Jan", Surname: "Kowalski", BirthYear: intPtr(1880)})
	anna := mustPerson(t, person.Fields{ID: "@2@", GivenName: "Anna", Surname: "Nowak", BirthYear: intPtr(1890)})

	geneteka := &stubSearcher{id: sources.Geneteka, candidates: []sources.Candidate{matchingCandidate(sources.Geneteka, jan)}}
	basia := &stubSearcher{id: sources.Basia}

	store := newMemoryStore()
	crawler := newCrawler(t, store, geneteka, basia)

	summary, err := crawler.Run(context.Background(), []*person.Person{jan, anna})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Persons != 2 {
		t.Errorf("Persons = %d, want 2", summary.Persons)
	}
	if summary.Searched != 4 {
		t.Errorf("Searched = %d, want 4 (2 persons x 2 sources)", summary.Searched)
	}
	if len(geneteka.searched) != 2 || len(basia.searched) != 2 {
		t.Errorf("searcher calls = %d/%d, want 2/2", len(geneteka.searched), len(basia.searched))
	}
	if summary.Accepted != 1 || summary.Created != 1 {
		t.Errorf("Accepted/Created = %d/%d, want 1/1", summary.Accepted, summary.Created)
	}
}

func TestRunSkipsGenetekaWithoutPolishConnection(t *testing.T) {
	abroad := mustPerson(t, person.Fields{
		ID:         "@3@",
		GivenName:  "John",
		Surname:    "Smith",
		BirthPlace: strPtr("Chicago, Illinois, USA"),
	})

	geneteka := &stubSearcher{id: sources.Geneteka}
	basia := &stubSearcher{id: sources.Basia}
	crawler := newCrawler(t, newMemoryStore(), geneteka, basia)

	summary, err := crawler.Run(context.Background(), []*person.Person{abroad})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(geneteka.searched) != 0 {
		t.Errorf("geneteka searched a person without a Polish connection")
	}
	if len(basia.searched) != 1 {
		t.Errorf("other sources should still be searched")
	}
	if summary.SkippedSource != 1 {
		t.Errorf("SkippedSource = %d, want 1", summary.SkippedSource)
	}
}

func TestRunContinuesPastSourceErrors(t *testing.T) {
	jan := mustPerson(t, person.Fields{ID: "@4@", GivenName: "Jan", Surname: "Kowalski", BirthYear: intPtr(1880)})

	failing := &stubSearcher{
		id:         sources.PTG,
		candidates: []sources.Candidate{matchingCandidate(sources.PTG, jan)},
		err:        sources.Wrap(sources.ErrTransient, sources.PTG, "fetch", "", errors.New("timeout")),
	}
	healthy := &stubSearcher{id: sources.Basia, candidates: []sources.Candidate{matchingCandidate(sources.Basia, jan)}}

	store := newMemoryStore()
	crawler := newCrawler(t, store, failing, healthy)

	summary, err := crawler.Run(context.Background(), []*person.Person{jan})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.SourceErrors != 1 {
		t.Errorf("SourceErrors = %d, want 1", summary.SourceErrors)
	}
	// partial candidates from the failing source still count
	if summary.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2 (partial results evaluated)", summary.Accepted)
	}
	if len(healthy.searched) != 1 {
		t.Errorf("healthy source skipped after another source failed")
	}
}

func TestRunStopsOnConfigurationError(t *testing.T) {
	jan := mustPerson(t, person.Fields{ID: "@5@", GivenName: "Jan", Surname: "Kowalski"})

	broken := &stubSearcher{
		id:  sources.PTG,
		err: sources.Wrap(sources.ErrConfiguration, sources.PTG, "init", "bad endpoint", nil),
	}
	crawler := newCrawler(t, newMemoryStore(), broken)

	if _, err := crawler.Run(context.Background(), []*person.Person{jan}); !errors.Is(err, sources.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestRunStopsOnStorageFailure(t *testing.T) {
	jan := mustPerson(t, person.Fields{ID: "@6@", GivenName: "Jan", Surname: "Kowalski", BirthYear: intPtr(1880)})

	searcher := &stubSearcher{id: sources.Basia, candidates: []sources.Candidate{matchingCandidate(sources.Basia, jan)}}
	store := newMemoryStore()
	store.err = errors.New("disk full")
	crawler := newCrawler(t, store, searcher)

	if _, err := crawler.Run(context.Background(), []*person.Person{jan}); err == nil {
		t.Fatalf("expected storage failure to stop the run")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	jan := mustPerson(t, person.Fields{ID: "@7@", GivenName: "Jan", Surname: "Kowalski"})
	anna := mustPerson(t, person.Fields{ID: "@8@", GivenName: "Anna", Surname: "Nowak"})

	searcher := &stubSearcher{id: sources.Basia}
	engine, err := match.New(newMemoryStore(), 5, nil)
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	crawler, err := crawl.New(sources.NewRegistry(searcher), engine, time.Minute, nil)
	if err != nil {
		t.Fatalf("crawl.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, runErr := crawler.Run(ctx, []*person.Person{jan, anna})
		done <- runErr
	}()

	// give the first search a moment, then cancel during the person delay
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case runErr := <-done:
		if !errors.Is(runErr, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", runErr)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancellation")
	}
}

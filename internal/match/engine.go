// Package match decides which search candidates belong to a person and
// persists the accepted ones.
package match

import (
	"context"
	"fmt"
	"log/slog"

	"genecrawler/internal/logging"
	"genecrawler/internal/matchstore"
	"genecrawler/internal/person"
	"genecrawler/internal/sources"
	"genecrawler/internal/textnorm"
)

// Marriage records carry no birth year, so their acceptance window is
// anchored on an estimated marriage age.
const (
	marriageYearOffset = 25
	marriageYearBefore = 10
	marriageYearAfter  = 10
)

// Store persists accepted matches.
type Store interface {
	UpsertMatch(ctx context.Context, rec matchstore.Record) (bool, error)
}

// Engine evaluates candidates against a person using deterministic rules:
// name equality under diacritic folding and an inclusive year window. No
// fuzzy scoring; a candidate either matches or it does not.
type Engine struct {
	store      Store
	yearWindow int
	logger     *slog.Logger
}

// New creates an engine. yearWindow is the ± tolerance applied around known
// event years.
func New(store Store, yearWindow int, logger *slog.Logger) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("match engine requires a store")
	}
	if yearWindow <= 0 {
		yearWindow = 5
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{store: store, yearWindow: yearWindow, logger: logger}, nil
}

// Outcome summarizes one evaluation pass.
type Outcome struct {
	// Evaluated counts candidates considered.
	Evaluated int
	// Accepted counts candidates that matched and were stored.
	Accepted int
	// Created counts accepted candidates not already in the store.
	Created int
}

// EvaluateAndStore filters candidates through the match rules and upserts the
// accepted ones. Storage failures abort immediately; unlike source errors
// they indicate the run can no longer record results.
func (e *Engine) EvaluateAndStore(ctx context.Context, p *person.Person, candidates []sources.Candidate) (Outcome, error) {
	var outcome Outcome
	for _, candidate := range candidates {
		outcome.Evaluated++
		if !e.Matches(p, candidate) {
			continue
		}

		created, err := e.store.UpsertMatch(ctx, recordFor(p, candidate))
		if err != nil {
			return outcome, fmt.Errorf("store match for %s: %w", p.ID, err)
		}
		outcome.Accepted++
		if created {
			outcome.Created++
		}

		e.logger.Info("match accepted",
			slog.String("person", p.ID),
			slog.String("source", string(candidate.Source)),
			slog.String("kind", string(candidate.Kind)),
			slog.Bool("new", created))
	}
	return outcome, nil
}

// Matches applies the deterministic match rules. Candidates with no parsed
// names never match; sources emit such rows for listings that only make sense
// to a human reader.
func (e *Engine) Matches(p *person.Person, c sources.Candidate) bool {
	given := textnorm.Fold(textnorm.FirstToken(c.GivenName))
	surname := textnorm.Fold(c.Surname)
	if given == "" || surname == "" {
		return false
	}
	if given != textnorm.Fold(p.SearchGivenName()) {
		return false
	}
	if surname != textnorm.Fold(p.Surname) {
		return false
	}
	return e.yearAcceptable(p, c)
}

// yearAcceptable checks the candidate year against the window appropriate
// for its record kind. A candidate without a year, or a person without any
// usable anchor year, is not rejected on year grounds.
func (e *Engine) yearAcceptable(p *person.Person, c sources.Candidate) bool {
	if c.Year == nil {
		return true
	}
	year := *c.Year

	switch c.Kind {
	case sources.KindBirth:
		if p.BirthYear != nil {
			return within(year, *p.BirthYear, e.yearWindow)
		}
		if p.DeathYear != nil {
			return year <= *p.DeathYear
		}
	case sources.KindDeath:
		if p.DeathYear != nil {
			return within(year, *p.DeathYear, e.yearWindow)
		}
		if p.BirthYear != nil {
			return year >= *p.BirthYear
		}
	case sources.KindMarriage:
		if p.BirthYear != nil {
			estimate := *p.BirthYear + marriageYearOffset
			return year >= estimate-marriageYearBefore && year <= estimate+marriageYearAfter
		}
	default:
		if p.BirthYear != nil || p.DeathYear != nil {
			return plausibleLifetime(p, year, e.yearWindow)
		}
	}
	return true
}

func within(year, anchor, window int) bool {
	return year >= anchor-window && year <= anchor+window
}

// plausibleLifetime accepts years that fall inside the person's padded
// lifespan, for records whose kind the source does not report.
func plausibleLifetime(p *person.Person, year, window int) bool {
	if p.BirthYear != nil && year < *p.BirthYear-window {
		return false
	}
	if p.DeathYear != nil && year > *p.DeathYear+window {
		return false
	}
	return true
}

func recordFor(p *person.Person, c sources.Candidate) matchstore.Record {
	voivodeship := ""
	if c.Region != nil {
		voivodeship = string(*c.Region)
	}
	return matchstore.Record{
		PersonID:        p.ID,
		PersonGivenName: p.GivenName,
		PersonSurname:   p.Surname,
		Source:          string(c.Source),
		RecordType:      string(c.Kind),
		Year:            c.Year,
		Act:             c.Act,
		ResultGivenName: c.GivenName,
		ResultSurname:   c.Surname,
		FatherGivenName: c.FatherGivenName,
		MotherGivenName: c.MotherGivenName,
		MotherSurname:   c.MotherSurname,
		Parish:          c.Parish,
		Locality:        c.Locality,
		Voivodeship:     voivodeship,
		ScanLink:        c.Link,
		Raw:             c.Raw,
		Fingerprint:     Fingerprint(c),
	}
}

package person

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"genecrawler/internal/location"
	"genecrawler/internal/textnorm"
)

var (
	// ErrMissingName marks rows without both a given name and a surname.
	ErrMissingName = errors.New("person missing name")
	// ErrUncertainName marks rows whose name carries an uncertainty marker.
	ErrUncertainName = errors.New("person name uncertain")
)

// uncertainMarker is how the source database flags unverified names.
const uncertainMarker = "?"

// Person represents one individual from the source genealogy database.
type Person struct {
	ID        string
	GivenName string
	Surname   string

	BirthYear *int
	DeathYear *int

	BirthPlace  *string
	DeathPlace  *string
	BirthRegion *location.Region
	DeathRegion *location.Region

	FatherName *string
	MotherName *string
}

// Fields carries the raw attributes a source adapter extracted for one row.
type Fields struct {
	ID        string
	GivenName string
	Surname   string

	BirthYear *int
	DeathYear *int

	BirthPlace  *string
	DeathPlace  *string
	BirthRegion *location.Region
	DeathRegion *location.Region

	FatherName *string
	MotherName *string
}

// New validates the extracted fields and constructs a Person. Rows missing
// either name, or carrying the uncertainty marker in one, are rejected.
func New(fields Fields) (*Person, error) {
	given := strings.TrimSpace(fields.GivenName)
	surname := strings.TrimSpace(fields.Surname)

	if given == "" || surname == "" {
		return nil, fmt.Errorf("%w: id=%s", ErrMissingName, fields.ID)
	}
	if strings.Contains(given, uncertainMarker) || strings.Contains(surname, uncertainMarker) {
		return nil, fmt.Errorf("%w: id=%s", ErrUncertainName, fields.ID)
	}

	return &Person{
		ID:          strings.TrimSpace(fields.ID),
		GivenName:   given,
		Surname:     surname,
		BirthYear:   fields.BirthYear,
		DeathYear:   fields.DeathYear,
		BirthPlace:  fields.BirthPlace,
		DeathPlace:  fields.DeathPlace,
		BirthRegion: fields.BirthRegion,
		DeathRegion: fields.DeathRegion,
		FatherName:  fields.FatherName,
		MotherName:  fields.MotherName,
	}, nil
}

// FullName returns "Given Surname" for display.
func (p *Person) FullName() string {
	return p.GivenName + " " + p.Surname
}

// SearchGivenName returns the first token of the given name. External
// services index primary given names only.
func (p *Person) SearchGivenName() string {
	return textnorm.FirstToken(p.GivenName)
}

// QueryRegion returns the region used for search-query construction. Birth
// region takes precedence over death region when both are known.
func (p *Person) QueryRegion() (location.Region, bool) {
	if p.BirthRegion != nil {
		return *p.BirthRegion, true
	}
	if p.DeathRegion != nil {
		return *p.DeathRegion, true
	}
	return "", false
}

// HasPolishConnection reports whether the person plausibly belongs in Polish
// record sets: a known voivodeship, a place string mentioning Poland, or no
// location information at all (assumed Polish).
func (p *Person) HasPolishConnection() bool {
	if p.BirthRegion != nil || p.DeathRegion != nil {
		return true
	}
	if p.BirthPlace == nil && p.DeathPlace == nil {
		return true
	}
	for _, place := range []*string{p.BirthPlace, p.DeathPlace} {
		if place == nil {
			continue
		}
		upper := strings.ToUpper(*place)
		if strings.Contains(upper, "POLAND") || strings.Contains(upper, "POLSKA") || strings.Contains(upper, "POL") {
			return true
		}
	}
	return false
}

// SortOldestFirst orders persons by birth year ascending, with unknown birth
// years last. The sort is stable so source ordering breaks ties.
func SortOldestFirst(persons []*Person) {
	sort.SliceStable(persons, func(i, j int) bool {
		a, b := persons[i].BirthYear, persons[j].BirthYear
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
}

// NormalizeRecordID accepts both "53" and "@53@" and returns the canonical
// "@53@" form used as the person identifier.
func NormalizeRecordID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if !strings.HasPrefix(id, "@") {
		id = "@" + id
	}
	if !strings.HasSuffix(id, "@") {
		id = id + "@"
	}
	return id
}

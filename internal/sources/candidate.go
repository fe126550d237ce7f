package sources

import (
	"fmt"
	"strings"

	"genecrawler/internal/location"
)

// ID identifies an external genealogical service.
type ID string

const (
	Geneteka ID = "geneteka"
	PTG      ID = "ptg"
	Poznan   ID = "poznan"
	Basia    ID = "basia"
)

var allIDs = []ID{Geneteka, PTG, Poznan, Basia}

// KnownIDs returns every supported source in canonical order.
func KnownIDs() []ID {
	out := make([]ID, len(allIDs))
	copy(out, allIDs)
	return out
}

// ParseIDs expands and validates a source selection. "all" expands to every
// known source; duplicates collapse; order is canonical regardless of input
// order.
func ParseIDs(names []string) ([]ID, error) {
	selected := make(map[ID]struct{}, len(allIDs))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if name == "all" {
			for _, id := range allIDs {
				selected[id] = struct{}{}
			}
			continue
		}
		id := ID(name)
		known := false
		for _, candidate := range allIDs {
			if candidate == id {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown source %q", name)
		}
		selected[id] = struct{}{}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no sources selected")
	}
	out := make([]ID, 0, len(selected))
	for _, id := range allIDs {
		if _, ok := selected[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// RecordKind categorizes what event an external record documents.
type RecordKind string

const (
	KindBirth    RecordKind = "birth"
	KindMarriage RecordKind = "marriage"
	KindDeath    RecordKind = "death"
	KindOther    RecordKind = "other"
)

// KindFromDocumentType maps a source-reported document label onto a record
// kind. Unrecognized labels become KindOther rather than an error.
func KindFromDocumentType(label string) RecordKind {
	switch folded := strings.ToLower(strings.TrimSpace(label)); {
	case strings.Contains(folded, "birth"), strings.Contains(folded, "baptism"),
		strings.Contains(folded, "urodzen"), strings.Contains(folded, "chrzt"):
		return KindBirth
	case strings.Contains(folded, "marriage"), strings.Contains(folded, "slub"),
		strings.Contains(folded, "ślub"), strings.Contains(folded, "malzenstw"),
		strings.Contains(folded, "małżeństw"):
		return KindMarriage
	case strings.Contains(folded, "death"), strings.Contains(folded, "burial"),
		strings.Contains(folded, "zgon"), strings.Contains(folded, "pogrzeb"):
		return KindDeath
	default:
		return KindOther
	}
}

// Candidate is one row returned by an external search, prior to match
// evaluation. It exists only within one crawl pass; accepted candidates are
// persisted as match records, never as raw candidates.
type Candidate struct {
	Source ID
	Kind   RecordKind

	// Year is the event year as reported, when parseable.
	Year *int

	// Act is the source-reported record/act number, when present.
	Act string

	GivenName string
	Surname   string

	FatherGivenName string
	MotherGivenName string
	MotherSurname   string

	Parish   string
	Locality string

	// Region is the voivodeship the search that produced this candidate was
	// scoped to, when the source supports regional scoping.
	Region *location.Region

	// Link references the original document scan, when the source offers one.
	Link string

	// Raw preserves the row as reported, for diagnostics and storage.
	Raw string
}

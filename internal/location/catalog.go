package location

import (
	"strings"

	"genecrawler/internal/textnorm"
)

// Region identifies one of the sixteen Polish voivodeships. The canonical
// value is the lowercase Polish name with diacritics, matching what external
// genealogical services expect in their own code tables.
type Region string

const (
	Dolnoslaskie       Region = "dolnośląskie"
	KujawskoPomorskie  Region = "kujawsko-pomorskie"
	Lubelskie          Region = "lubelskie"
	Lubuskie           Region = "lubuskie"
	Lodzkie            Region = "łódzkie"
	Malopolskie        Region = "małopolskie"
	Mazowieckie        Region = "mazowieckie"
	Opolskie           Region = "opolskie"
	Podkarpackie       Region = "podkarpackie"
	Podlaskie          Region = "podlaskie"
	Pomorskie          Region = "pomorskie"
	Slaskie            Region = "śląskie"
	Swietokrzyskie     Region = "świętokrzyskie"
	WarminskoMazurskie Region = "warmińsko-mazurskie"
	Wielkopolskie      Region = "wielkopolskie"
	Zachodniopomorskie Region = "zachodniopomorskie"
)

type catalogEntry struct {
	region Region
	// forms are pre-folded surface forms: native names, ASCII spellings,
	// and translated administrative names.
	forms []string
}

// catalog order is load-bearing: entries whose surface forms contain another
// entry's form as a substring ("dolnoslaskie" vs "slaskie", "malopolskie" vs
// "opolskie", "zachodniopomorskie" vs "pomorskie") are listed first so the
// first-match-wins scan stays unambiguous.
var catalog = []catalogEntry{
	{Dolnoslaskie, []string{"dolnoslaskie", "lower silesian voivodeship", "lower silesia"}},
	{KujawskoPomorskie, []string{"kujawsko-pomorskie", "kuyavian-pomeranian voivodeship", "kuyavian-pomeranian"}},
	{Zachodniopomorskie, []string{"zachodniopomorskie", "west pomeranian voivodeship", "west pomerania"}},
	{Malopolskie, []string{"malopolskie", "malopolska", "lesser poland voivodeship", "lesser poland"}},
	{Wielkopolskie, []string{"wielkopolskie", "wielkopolska", "greater poland voivodeship", "greater poland"}},
	{WarminskoMazurskie, []string{"warminsko-mazurskie", "warmian-masurian voivodeship", "warmian-masurian"}},
	{Opolskie, []string{"opolskie", "opole voivodeship"}},
	{Lubelskie, []string{"lubelskie", "lublin voivodeship"}},
	{Lubuskie, []string{"lubuskie", "lubusz voivodeship"}},
	{Lodzkie, []string{"lodzkie", "lodz voivodeship"}},
	{Mazowieckie, []string{"mazowieckie", "masovian voivodeship", "masovia"}},
	{Podkarpackie, []string{"podkarpackie", "subcarpathian voivodeship", "subcarpathia"}},
	{Podlaskie, []string{"podlaskie", "podlasie", "podlachia"}},
	{Pomorskie, []string{"pomorskie", "pomeranian voivodeship", "pomerania"}},
	{Slaskie, []string{"slaskie", "silesian voivodeship", "silesia"}},
	{Swietokrzyskie, []string{"swietokrzyskie", "holy cross voivodeship"}},
}

// Regions returns every canonical region in catalog order.
func Regions() []Region {
	out := make([]Region, 0, len(catalog))
	for _, entry := range catalog {
		out = append(out, entry.region)
	}
	return out
}

// Match scans raw text for any recognized voivodeship surface form and
// returns the canonical region. The scan is case and diacritic insensitive.
func Match(raw string) (Region, bool) {
	folded := textnorm.Fold(raw)
	if folded == "" {
		return "", false
	}
	for _, entry := range catalog {
		for _, form := range entry.forms {
			if strings.Contains(folded, form) {
				return entry.region, true
			}
		}
	}
	return "", false
}

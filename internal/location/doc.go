// Package location maps free-text place descriptions to canonical Polish
// voivodeship identifiers.
//
// Source databases record places as comma-separated administrative chains
// ("Modlniczka, Powiat Krakowski, MAŁOPOLSKA, POLAND") with inconsistent
// casing, diacritics, and translated region names. The Normalizer scans the
// folded text against a fixed catalog of the sixteen voivodeships and their
// recognized surface forms, memoizing results (including misses) per raw
// string. An optional geocoding fallback resolves localities the catalog
// cannot, rate limited and persistently cached so repeated runs never repeat
// a lookup.
package location

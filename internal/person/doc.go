// Package person defines the canonical in-memory representation of one
// individual from the local genealogy database.
//
// A Person is constructed once during ingestion and treated as immutable for
// the rest of the crawl pass. Construction rejects rows without both name
// fields or with an uncertainty marker in either, so downstream components
// never see a half-named person. Optional attributes (years, places, regions,
// parent names) are pointers; absence is a distinct state, never zero or
// empty string.
package person

// Package config loads, normalizes, and validates genecrawler configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the crawler needs: data/log directories, crawl pacing and page limits,
// source selection, and the geocoding fallback. Configuration errors are
// rejected here, before any crawling begins.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config

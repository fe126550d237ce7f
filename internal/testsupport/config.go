// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"genecrawler/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithSources overrides the crawl source selection on the test config.
func WithSources(sources ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Crawl.Sources = sources
	}
}

// WithGeocoder enables the geocoder on the test config.
func WithGeocoder(baseURL string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Geocoder.Enabled = true
		cfg.Geocoder.BaseURL = baseURL
	}
}

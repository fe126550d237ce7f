package matchstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"genecrawler/internal/location"
)

var _ location.GeocodeCache = (*Store)(nil)

// CachedRegion looks up a previous geocoder answer. Negative answers are
// cached too, so cached=true with found=false means the locality was looked
// up before and resolved to no voivodeship.
func (s *Store) CachedRegion(ctx context.Context, query string) (location.Region, bool, bool, error) {
	ctx = ensureContext(ctx)

	var (
		voivodeship string
		resolved    int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT voivodeship, resolved FROM nominatim_cache WHERE locality = ?",
		cacheKey(query),
	).Scan(&voivodeship, &resolved)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, false, nil
	case err != nil:
		return "", false, false, fmt.Errorf("read geocode cache: %w", err)
	}

	if resolved == 0 {
		return "", false, true, nil
	}
	return location.Region(voivodeship), true, true, nil
}

// StoreRegion records a geocoder answer, replacing any previous one.
func (s *Store) StoreRegion(ctx context.Context, query string, region location.Region, found bool) error {
	ctx = ensureContext(ctx)

	resolved := 0
	voivodeship := ""
	if found {
		resolved = 1
		voivodeship = string(region)
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO nominatim_cache (locality, voivodeship, resolved, cached_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(locality) DO UPDATE SET
		 voivodeship = excluded.voivodeship,
		 resolved = excluded.resolved,
		 cached_at = excluded.cached_at`,
		cacheKey(query), voivodeship, resolved, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write geocode cache: %w", err)
	}
	return nil
}

func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

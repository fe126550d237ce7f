package location

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"genecrawler/internal/logging"
)

// Geocoder resolves a single locality name to a region. Implementations are
// expected to enforce their own rate limits; lookup failures must be reported
// as errors rather than silent misses so the normalizer can avoid caching
// them.
type Geocoder interface {
	Region(ctx context.Context, locality string) (Region, bool, error)
}

// Normalizer maps raw place strings to canonical regions, memoizing every
// answer (hits and misses) per exact raw string. It is safe for concurrent
// use.
type Normalizer struct {
	mu       sync.Mutex
	cache    map[string]cachedRegion
	geocoder Geocoder
	logger   *slog.Logger
}

type cachedRegion struct {
	region Region
	ok     bool
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithGeocoder enables the external geocoding fallback for place strings the
// catalog cannot resolve.
func WithGeocoder(g Geocoder) Option {
	return func(n *Normalizer) {
		n.geocoder = g
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNormalizer constructs a Normalizer with an empty cache.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		cache:  make(map[string]cachedRegion),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps a raw free-text place description to a canonical region.
// The second return value is false when no region could be determined; that
// outcome is also memoized so repeated misses cost nothing. Geocoder failures
// degrade to a miss and are not cached.
func (n *Normalizer) Normalize(ctx context.Context, rawPlace string) (Region, bool) {
	if strings.TrimSpace(rawPlace) == "" {
		return "", false
	}

	n.mu.Lock()
	if entry, hit := n.cache[rawPlace]; hit {
		n.mu.Unlock()
		return entry.region, entry.ok
	}
	n.mu.Unlock()

	if region, ok := Match(rawPlace); ok {
		n.store(rawPlace, region, true)
		return region, true
	}

	if n.geocoder != nil {
		locality := firstSegment(rawPlace)
		if locality != "" {
			region, ok, err := n.geocoder.Region(ctx, locality)
			if err != nil {
				n.logger.Warn("geocoder lookup failed",
					slog.String("locality", locality),
					slog.Any("error", err))
				return "", false
			}
			n.store(rawPlace, region, ok)
			return region, ok
		}
	}

	n.store(rawPlace, "", false)
	return "", false
}

func (n *Normalizer) store(rawPlace string, region Region, ok bool) {
	n.mu.Lock()
	n.cache[rawPlace] = cachedRegion{region: region, ok: ok}
	n.mu.Unlock()
}

// firstSegment returns the most specific comma-separated segment, which by
// convention is the town name.
func firstSegment(rawPlace string) string {
	segment, _, _ := strings.Cut(rawPlace, ",")
	return strings.TrimSpace(segment)
}

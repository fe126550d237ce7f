package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// GeocodeCache persists geocoder answers across runs. Misses are cached too:
// the cached return distinguishes "looked up before, no region" from "never
// looked up".
type GeocodeCache interface {
	CachedRegion(ctx context.Context, query string) (region Region, found bool, cached bool, err error)
	StoreRegion(ctx context.Context, query string, region Region, found bool) error
}

// NominatimClient resolves locality names through the OpenStreetMap Nominatim
// API. Calls are serialized with a minimum inter-call spacing to respect the
// service's rate policy.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	cache      GeocodeCache

	mu      sync.Mutex
	nextAt  time.Time
	spacing time.Duration
}

var _ Geocoder = (*NominatimClient)(nil)

// NominatimOption configures a NominatimClient.
type NominatimOption func(*NominatimClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) NominatimOption {
	return func(c *NominatimClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCache attaches a persistent lookup cache.
func WithCache(cache GeocodeCache) NominatimOption {
	return func(c *NominatimClient) {
		c.cache = cache
	}
}

// WithSpacing overrides the minimum delay between consecutive API calls.
func WithSpacing(spacing time.Duration) NominatimOption {
	return func(c *NominatimClient) {
		if spacing > 0 {
			c.spacing = spacing
		}
	}
}

// NewNominatimClient creates a geocoder client.
func NewNominatimClient(baseURL, userAgent string, opts ...NominatimOption) (*NominatimClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("nominatim base url required")
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("nominatim user agent required")
	}
	client := &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		spacing:    time.Second,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		State string `json:"state"`
	} `json:"address"`
}

// Region looks up the voivodeship containing the named locality. Cached
// answers (including previous misses) short-circuit the network call.
func (c *NominatimClient) Region(ctx context.Context, locality string) (Region, bool, error) {
	locality = strings.TrimSpace(locality)
	if locality == "" {
		return "", false, nil
	}

	if c.cache != nil {
		region, found, cached, err := c.cache.CachedRegion(ctx, locality)
		if err == nil && cached {
			return region, found, nil
		}
	}

	if err := c.waitTurn(ctx); err != nil {
		return "", false, err
	}

	query := url.Values{}
	query.Set("q", locality)
	query.Set("format", "jsonv2")
	query.Set("addressdetails", "1")
	query.Set("limit", "1")
	query.Set("countrycodes", "pl")

	endpoint := c.baseURL + "/search?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", false, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", false, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return "", false, fmt.Errorf("decode nominatim response: %w", err)
	}

	region, found := regionFromPlaces(places)
	if c.cache != nil {
		_ = c.cache.StoreRegion(ctx, locality, region, found)
	}
	return region, found, nil
}

// regionFromPlaces maps the geocoder's state field ("województwo
// małopolskie") through the voivodeship catalog.
func regionFromPlaces(places []nominatimPlace) (Region, bool) {
	for _, place := range places {
		if region, ok := Match(place.Address.State); ok {
			return region, true
		}
		if region, ok := Match(place.DisplayName); ok {
			return region, true
		}
	}
	return "", false
}

// waitTurn reserves the next call slot and blocks until it arrives or the
// context is cancelled.
func (c *NominatimClient) waitTurn(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	at := c.nextAt
	if at.Before(now) {
		at = now
	}
	c.nextAt = at.Add(c.spacing)
	c.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

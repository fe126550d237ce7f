package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownSources = map[string]struct{}{
	"all":      {},
	"geneteka": {},
	"ptg":      {},
	"poznan":   {},
	"basia":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCrawl(); err != nil {
		return err
	}
	if err := c.validateGeocoder(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateCrawl() error {
	if len(c.Crawl.Sources) == 0 {
		return errors.New("crawl.sources must name at least one source")
	}
	for _, source := range c.Crawl.Sources {
		if _, ok := knownSources[source]; !ok {
			return fmt.Errorf("crawl.sources: unknown source %q", source)
		}
	}
	if c.Crawl.PersonDelaySeconds < 0 {
		return errors.New("crawl.person_delay_seconds must not be negative")
	}
	if c.Crawl.PageDelayMillis < 0 {
		return errors.New("crawl.page_delay_millis must not be negative")
	}
	if c.Crawl.MaxPages < 0 {
		return errors.New("crawl.max_pages must not be negative")
	}
	if c.Crawl.YearWindow <= 0 {
		return errors.New("crawl.year_window must be positive")
	}
	if c.Crawl.MaxBirthYear < 0 {
		return errors.New("crawl.max_birth_year must not be negative")
	}
	if c.Crawl.RequestTimeoutSeconds <= 0 {
		return errors.New("crawl.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeocoder() error {
	if !c.Geocoder.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Geocoder.BaseURL) == "" {
		return errors.New("geocoder.base_url must be set when the geocoder is enabled")
	}
	if strings.TrimSpace(c.Geocoder.UserAgent) == "" {
		return errors.New("geocoder.user_agent must be set when the geocoder is enabled")
	}
	if c.Geocoder.SpacingSeconds <= 0 {
		return errors.New("geocoder.spacing_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

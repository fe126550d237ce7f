package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Crawl contains pacing, limit, and filter settings for the crawl pass.
type Crawl struct {
	// Sources selects which external services to query. "all" expands to
	// every known source.
	Sources []string `toml:"sources"`
	// PersonDelaySeconds is the minimum pause between consecutive persons.
	PersonDelaySeconds int `toml:"person_delay_seconds"`
	// PageDelayMillis is the pause between consecutive result pages of one
	// search.
	PageDelayMillis int `toml:"page_delay_millis"`
	// MaxPages caps paginated retrieval per search. Zero means unlimited.
	MaxPages int `toml:"max_pages"`
	// YearWindow is the ± tolerance applied around known birth/death years,
	// both for query construction and for match acceptance.
	YearWindow int `toml:"year_window"`
	// MaxBirthYear excludes persons born after this year from crawling.
	// Zero disables the filter.
	MaxBirthYear int `toml:"max_birth_year"`
	// RequestTimeoutSeconds bounds a single page fetch.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// Geocoder contains configuration for the Nominatim fallback used when the
// voivodeship catalog cannot resolve a place string.
type Geocoder struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	SpacingSeconds int    `toml:"spacing_seconds"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for genecrawler.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Crawl    Crawl    `toml:"crawl"`
	Geocoder Geocoder `toml:"geocoder"`
	Logging  Logging  `toml:"logging"`
}

// SampleConfig returns the annotated sample configuration file contents.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration file to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// ExpandPath expands a leading tilde and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/genecrawler/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The second return value
// is the resolved path, the third reports whether a file was found there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("genecrawler.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the location of the match database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "genecrawler.db")
}

// PersonDelay returns the inter-person pacing delay as a duration.
func (c *Config) PersonDelay() time.Duration {
	return time.Duration(c.Crawl.PersonDelaySeconds) * time.Second
}

// PageDelay returns the inter-page pacing delay as a duration.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.Crawl.PageDelayMillis) * time.Millisecond
}

// RequestTimeout returns the single-fetch timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Crawl.RequestTimeoutSeconds) * time.Second
}

// GeocoderSpacing returns the minimum delay between geocoder calls.
func (c *Config) GeocoderSpacing() time.Duration {
	return time.Duration(c.Geocoder.SpacingSeconds) * time.Second
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	normalized := make([]string, 0, len(c.Crawl.Sources))
	for _, source := range c.Crawl.Sources {
		source = strings.ToLower(strings.TrimSpace(source))
		if source != "" {
			normalized = append(normalized, source)
		}
	}
	c.Crawl.Sources = normalized
	return nil
}

func expandPath(pathValue string) (string, error) {
	pathValue = strings.TrimSpace(pathValue)
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			return home, nil
		}
		return filepath.Join(home, pathValue[2:]), nil
	}
	return filepath.Abs(pathValue)
}

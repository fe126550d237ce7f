package config

const (
	defaultDataDir               = "~/.local/share/genecrawler"
	defaultLogDir                = "~/.local/share/genecrawler/logs"
	defaultPersonDelaySeconds    = 2
	defaultPageDelayMillis       = 500
	defaultYearWindow            = 5
	defaultMaxBirthYear          = 1978
	defaultRequestTimeoutSeconds = 30
	defaultGeocoderBaseURL       = "https://nominatim.openstreetmap.org"
	defaultGeocoderUserAgent     = "genecrawler/0.1.0"
	defaultGeocoderSpacing       = 1
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Crawl: Crawl{
			Sources:               []string{"all"},
			PersonDelaySeconds:    defaultPersonDelaySeconds,
			PageDelayMillis:       defaultPageDelayMillis,
			YearWindow:            defaultYearWindow,
			MaxBirthYear:          defaultMaxBirthYear,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		},
		Geocoder: Geocoder{
			BaseURL:        defaultGeocoderBaseURL,
			UserAgent:      defaultGeocoderUserAgent,
			SpacingSeconds: defaultGeocoderSpacing,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

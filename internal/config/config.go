// Package config loads the daemon configuration from the environment and
// the optional group file.
package config

import "time"

// Config is the daemon's runtime configuration, read once at startup.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string
	// DataFile is the JSON state file holding sessions and members.
	DataFile string
	// LibraryFile is the read-only whisky reference library.
	LibraryFile string
	// StaticDir serves the web UI when it exists.
	StaticDir string
	// GroupFile optionally overrides host aliases and the round size.
	GroupFile string
	// RoundSize is the number of members hosting per round.
	RoundSize int
	// CatalogBaseURL is the product catalog to scrape for enrichment.
	CatalogBaseURL string
	// CatalogTimeout bounds a single catalog page fetch.
	CatalogTimeout time.Duration
}

// FromEnv builds the configuration from WN_* environment variables,
// falling back to defaults that match the original deployment.
func FromEnv() Config {
	return Config{
		Listen:         ParseString("WN_LISTEN", ":5001"),
		DataFile:       ParseString("WN_DATA_FILE", "data/sessions.json"),
		LibraryFile:    ParseString("WN_LIBRARY_FILE", "data/whisky-library.json"),
		StaticDir:      ParseString("WN_STATIC_DIR", "static"),
		GroupFile:      ParseString("WN_GROUP_FILE", ""),
		RoundSize:      ParseInt("WN_ROUND_SIZE", DefaultRoundSize),
		CatalogBaseURL: ParseString("WN_CATALOG_URL", "https://www.danmurphys.com.au"),
		CatalogTimeout: ParseDuration("WN_CATALOG_TIMEOUT", 10*time.Second),
	}
}

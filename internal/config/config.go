package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Basin source selectors accepted by SHIPSDB_SOURCES.
var validSources = []string{"AL", "EP", "CP", "WP", "IO", "SH"}

// Config holds all module settings, populated from environment variables.
type Config struct {
	DataDir   string
	DBPath    string
	RawPath   string
	DocPath   string
	TableName string
	BatchSize int
	Sources   []string
	Exclude   []string // empty means the default exclusion policy
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Validation failures are surfaced immediately, before any
// parsing begins.
func Load() (*Config, error) {
	dataDir := envOrDefault("SHIPSDB_DATA_DIR", defaultDataDir())

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	sources, err := parseSources()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataDir:   dataDir,
		DBPath:    envOrDefault("SHIPSDB_DB_PATH", filepath.Join(dataDir, "ships.db")),
		RawPath:   envOrDefault("SHIPSDB_RAW_PATH", filepath.Join(dataDir, "ships.txt")),
		DocPath:   envOrDefault("SHIPSDB_DOC_PATH", filepath.Join(dataDir, "ships_predictor_file_2020.txt")),
		TableName: envOrDefault("SHIPSDB_TABLE", "diagnostics"),
		BatchSize: batchSize,
		Sources:   sources,
		Exclude:   parseList(os.Getenv("SHIPSDB_EXCLUDE")),
		LogLevel:  envOrDefault("SHIPSDB_LOG_LEVEL", "info"),
		LogFormat: envOrDefault("SHIPSDB_LOG_FORMAT", "text"),
	}

	if cfg.TableName == "" {
		return nil, errors.New("SHIPSDB_TABLE must not be empty")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid SHIPSDB_LOG_FORMAT %q, want text or json", cfg.LogFormat)
	}

	return cfg, nil
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "data"
	}
	return filepath.Join(home, ".shipsdb")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBatchSize() (int, error) {
	s := os.Getenv("SHIPSDB_BATCH_SIZE")
	if s == "" {
		return 100, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid SHIPSDB_BATCH_SIZE %q", s)
	}
	return n, nil
}

func parseSources() ([]string, error) {
	raw := os.Getenv("SHIPSDB_SOURCES")
	if raw == "" || strings.EqualFold(raw, "all") {
		return append([]string(nil), validSources...), nil
	}
	sources := parseList(raw)
	for _, s := range sources {
		if !isValidSource(s) {
			return nil, fmt.Errorf("unrecognized data source %q, want one of %s",
				s, strings.Join(validSources, ", "))
		}
	}
	if len(sources) == 0 {
		return nil, errors.New("SHIPSDB_SOURCES must name at least one basin")
	}
	return sources, nil
}

func isValidSource(s string) bool {
	for _, v := range validSources {
		if s == v {
			return true
		}
	}
	return false
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

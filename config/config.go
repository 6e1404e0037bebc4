package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Fetch modes supported by the pipeline. Relay routes every request through
// the ScraperAPI-style relay, direct talks to the marketplace itself, browser
// drives a headless Chrome for pages that only render client side.
const (
	FetchModeRelay   = "relay"
	FetchModeDirect  = "direct"
	FetchModeBrowser = "browser"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	ScraperAPIKey string
	RelayURL      string
	RelayRender   bool
	FetchMode     string

	RequestTimeoutSec int
	MaxRetries        int
	RequestDelayMs    int
	MaxConcurrency    int
	PagesToScrape     int

	GigsOutputDir     string
	AnalysisOutputDir string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ChromeBin string
	Debug     bool
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		ScraperAPIKey: getEnv("SCRAPER_API_KEY", ""),
		RelayURL:      getEnv("RELAY_URL", "http://api.scraperapi.com/"),
		RelayRender:   getEnvBool("RELAY_RENDER", false),
		FetchMode:     getEnv("FETCH_MODE", ""),

		RequestTimeoutSec: getEnvInt("REQUEST_TIMEOUT_SEC", 70),
		MaxRetries:        getEnvInt("MAX_RETRIES", 3),
		RequestDelayMs:    getEnvInt("REQUEST_DELAY_MS", 2000),
		MaxConcurrency:    getEnvInt("MAX_CONCURRENCY", 1),
		PagesToScrape:     getEnvInt("PAGES_TO_SCRAPE", 1),

		GigsOutputDir:     getEnv("GIGS_OUTPUT_DIR", "gigs_data"),
		AnalysisOutputDir: getEnv("ANALYSIS_OUTPUT_DIR", "keyword_analysis"),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresDB:       getEnv("POSTGRES_DB", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		ChromeBin: getEnv("CHROME_BIN", ""),
		Debug:     getEnvBool("DEBUG", false),
	}

	switch cfg.FetchMode {
	case FetchModeRelay, FetchModeDirect, FetchModeBrowser:
	case "":
		if cfg.ScraperAPIKey != "" {
			cfg.FetchMode = FetchModeRelay
		} else {
			cfg.FetchMode = FetchModeDirect
		}
	default:
		log.Printf("[config] Unknown FETCH_MODE %q, falling back to direct", cfg.FetchMode)
		cfg.FetchMode = FetchModeDirect
	}
	if cfg.FetchMode == FetchModeRelay && cfg.ScraperAPIKey == "" {
		log.Println("[config] FETCH_MODE=relay but SCRAPER_API_KEY is empty, falling back to direct")
		cfg.FetchMode = FetchModeDirect
	}

	return cfg
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// PostgresEnabled reports whether the optional database mirror is configured.
// The mirror stays off unless both a host and a database name are set.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != "" && c.PostgresDB != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val := strings.ToLower(os.Getenv(key))
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

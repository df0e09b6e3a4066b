package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Simplici0/feeworks/internal/pricing"
)

const (
	defaultEnv             = "development"
	defaultDBPath          = "./dev.db"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultCatalogCacheTTL = time.Minute
	defaultRateLimitRPS    = 10
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env             string
	DBPath          string
	Port            string
	LogLevel        string
	Workers         int
	CatalogCacheTTL time.Duration
	RateLimitRPS    float64
	SeedDefaults    bool
	Fees            pricing.Options
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	return c.Env == "" || strings.EqualFold(c.Env, defaultEnv) || strings.EqualFold(c.Env, "dev")
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is ignored and
// variables already present in the environment win over the file.
func LoadFrom(dotenvPath string) Config {
	if err := godotenv.Load(dotenvPath); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: could not read %s: %v", dotenvPath, err)
	}

	cfg := Config{
		Env:             getEnv("APP_ENV", defaultEnv),
		DBPath:          getEnv("DB_PATH", defaultDBPath),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        getEnv("LOG_LEVEL", defaultLogLevel),
		Workers:         getInt("WORKERS", 0),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", defaultCatalogCacheTTL),
		RateLimitRPS:    getFloat("RATE_LIMIT_RPS", defaultRateLimitRPS),
	}
	// The sample fee catalog is seeded by default only in development.
	cfg.SeedDefaults = getBool("SEED_DEFAULTS", cfg.IsDev())

	defaults := pricing.DefaultOptions()
	cfg.Fees = pricing.Options{
		TaxRate:                 getFloat("TAX_RATE", defaults.TaxRate),
		ClosingLegacyThreshold:  getFloat("CLOSING_LEGACY_THRESHOLD", defaults.ClosingLegacyThreshold),
		ClosingLegacyFee:        getFloat("CLOSING_LEGACY_FEE", defaults.ClosingLegacyFee),
		StorageMinimumFee:       getFloat("STORAGE_MIN_FEE", defaults.StorageMinimumFee),
		StorageFallbackStandard: getFloat("STORAGE_FALLBACK_STANDARD", defaults.StorageFallbackStandard),
		StorageFallbackOther:    getFloat("STORAGE_FALLBACK_OTHER", defaults.StorageFallbackOther),
		DefaultStorageRate:      getFloat("DEFAULT_STORAGE_RATE", defaults.DefaultStorageRate),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		log.Printf("warning: invalid %s=%q, using %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		log.Printf("warning: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("warning: invalid %s=%q, using %s", key, raw, fallback)
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("warning: invalid %s=%q, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test; godotenv never
// overwrites a variable that is present, even when empty.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "DB_PATH", "PORT", "LOG_LEVEL", "WORKERS", "CATALOG_CACHE_TTL", "TAX_RATE", "CLOSING_LEGACY_FEE", "SEED_DEFAULTS")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.DBPath != defaultDBPath || cfg.Port != defaultPort || cfg.LogLevel != defaultLogLevel {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected development env by default")
	}
	if cfg.CatalogCacheTTL != defaultCatalogCacheTTL {
		t.Fatalf("CatalogCacheTTL=%s, want %s", cfg.CatalogCacheTTL, defaultCatalogCacheTTL)
	}
	if cfg.Fees.TaxRate != 0.18 || cfg.Fees.ClosingLegacyFee != 51 || cfg.Fees.ClosingLegacyThreshold != 1000 {
		t.Fatalf("unexpected fee defaults: %+v", cfg.Fees)
	}
	if !cfg.SeedDefaults {
		t.Fatalf("expected SeedDefaults to default to true")
	}
}

func TestLoadFrom_ReadsDotEnvAndIgnoresNoise(t *testing.T) {
	unsetEnv(t, "DB_PATH", "WORKERS", "CLOSING_LEGACY_FEE", "CATALOG_CACHE_TTL")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := []byte(`
# comment

DB_PATH=/tmp/fees.db
export WORKERS=4
CLOSING_LEGACY_FEE="60"
CATALOG_CACHE_TTL='30s'
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	cfg := LoadFrom(path)

	if cfg.DBPath != "/tmp/fees.db" {
		t.Fatalf("DBPath=%q, want %q", cfg.DBPath, "/tmp/fees.db")
	}
	if cfg.Workers != 4 {
		t.Fatalf("Workers=%d, want 4", cfg.Workers)
	}
	if cfg.Fees.ClosingLegacyFee != 60 {
		t.Fatalf("ClosingLegacyFee=%v, want 60", cfg.Fees.ClosingLegacyFee)
	}
	if cfg.CatalogCacheTTL != 30*time.Second {
		t.Fatalf("CatalogCacheTTL=%s, want 30s", cfg.CatalogCacheTTL)
	}
}

func TestLoadFrom_DoesNotOverwriteExistingEnv(t *testing.T) {
	t.Setenv("PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("PORT=7070\n"), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if got := LoadFrom(path).Port; got != "9090" {
		t.Fatalf("Port=%q, want %q", got, "9090")
	}
}

func TestLoadFrom_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("TAX_RATE", "eighteen")
	t.Setenv("WORKERS", "-2")
	t.Setenv("STORAGE_MIN_FEE", "2.5")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Fees.TaxRate != 0.18 {
		t.Fatalf("TaxRate=%v, want 0.18", cfg.Fees.TaxRate)
	}
	if cfg.Workers != 0 {
		t.Fatalf("Workers=%d, want 0", cfg.Workers)
	}
	if cfg.Fees.StorageMinimumFee != 2.5 {
		t.Fatalf("StorageMinimumFee=%v, want 2.5", cfg.Fees.StorageMinimumFee)
	}
}

func TestIsDev(t *testing.T) {
	for env, want := range map[string]bool{"": true, "development": true, "DEV": true, "production": false} {
		if got := (Config{Env: env}).IsDev(); got != want {
			t.Fatalf("IsDev(%q)=%t, want %t", env, got, want)
		}
	}
}

func TestLoadFrom_SeedDefaultsFollowsEnv(t *testing.T) {
	unsetEnv(t, "SEED_DEFAULTS")
	t.Setenv("APP_ENV", "production")

	if cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env")); cfg.SeedDefaults {
		t.Fatalf("expected SeedDefaults off outside development")
	}

	t.Setenv("SEED_DEFAULTS", "true")
	if cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env")); !cfg.SeedDefaults {
		t.Fatalf("expected explicit SEED_DEFAULTS=true to win")
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv(KeyEnv, "")
	return filepath.Join(dir, "thenumber")
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	useTempConfigDir(t)

	if Exists() {
		t.Fatal("Exists() = true before any Save")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.General.Timezone != DefaultTimezone {
		t.Fatalf("Timezone = %q, want %q", cfg.General.Timezone, DefaultTimezone)
	}
	if cfg.Interval() != time.Minute {
		t.Fatalf("Interval = %v, want 1m", cfg.Interval())
	}
	if !strings.HasSuffix(cfg.DBPath(), filepath.Join("thenumber", "thenumber.db")) {
		t.Fatalf("DBPath = %q", cfg.DBPath())
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.General.Timezone = "Europe/Berlin"
	cfg.Storage.DBPath = "/tmp/elsewhere.db"
	cfg.Daemon.IntervalSec = 15

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Timezone != "Europe/Berlin" {
		t.Fatalf("Timezone = %q, want Europe/Berlin", got.General.Timezone)
	}
	if got.DBPath() != "/tmp/elsewhere.db" {
		t.Fatalf("DBPath = %q", got.DBPath())
	}
	if got.Interval() != 15*time.Second {
		t.Fatalf("Interval = %v, want 15s", got.Interval())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	useTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.General.Timezone = "Europe/Berlin"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	t.Setenv("THENUMBER_TIMEZONE", "Asia/Tokyo")
	t.Setenv("THENUMBER_LOG_LEVEL", "debug")

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.Timezone != "Asia/Tokyo" {
		t.Fatalf("Timezone = %q, want Asia/Tokyo", got.General.Timezone)
	}
	if got.Log.Level != "debug" {
		t.Fatalf("Log.Level = %q, want debug", got.Log.Level)
	}
	if got.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("Theme = %q, unset variables must not clear file values", got.Appearance.Theme)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != DefaultTimezone {
		t.Fatalf("Location = %s, want %s", loc, DefaultTimezone)
	}

	cfg.General.Timezone = "Not/AZone"
	loc, err = cfg.Location()
	if err == nil {
		t.Fatal("expected error for unknown timezone")
	}
	if loc != time.UTC {
		t.Fatalf("fallback Location = %s, want UTC", loc)
	}
}

func TestEnsureKey_GeneratesOnce(t *testing.T) {
	dir := useTempConfigDir(t)

	calls := 0
	gen := func() (string, error) {
		calls++
		return "a2V5LWZvci10ZXN0cw==", nil
	}

	first, err := EnsureKey(gen)
	if err != nil {
		t.Fatalf("EnsureKey: %v", err)
	}
	second, err := EnsureKey(gen)
	if err != nil {
		t.Fatalf("EnsureKey again: %v", err)
	}
	if first != second {
		t.Fatalf("key changed between calls: %q vs %q", first, second)
	}
	if calls != 1 {
		t.Fatalf("generator called %d times, want 1", calls)
	}

	info, err := os.Stat(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("key file mode = %o, want 600", perm)
	}
}

func TestEnsureKey_EnvWins(t *testing.T) {
	useTempConfigDir(t)
	t.Setenv(KeyEnv, "from-env")

	key, err := EnsureKey(func() (string, error) {
		t.Fatal("generator must not run when the variable is set")
		return "", nil
	})
	if err != nil {
		t.Fatalf("EnsureKey: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("key = %q, want from-env", key)
	}
	if _, err := os.Stat(KeyFilePath()); !os.IsNotExist(err) {
		t.Fatalf("key file written despite env key: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Store.Database != "todo_app" {
		t.Errorf("Store.Database = %q", cfg.Store.Database)
	}
	if cfg.Model.Timeout != 30*time.Second {
		t.Errorf("Model.Timeout = %v", cfg.Model.Timeout)
	}
	if got, want := cfg.DatabasePath(), filepath.Join(dir, DatabaseFile); got != want {
		t.Errorf("DatabasePath() = %q, want %q", got, want)
	}
	if got, want := cfg.TokenPath(), filepath.Join(dir, TokenFile); got != want {
		t.Errorf("TokenPath() = %q, want %q", got, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestNewReadsYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `owner_id: user-1
timezone: Europe/Berlin
store:
  driver: memory
model:
  name: gemini-1.5-flash
  temperature: 0.2
  timeout: 5s
`
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.OwnerID != "user-1" {
		t.Errorf("OwnerID = %q", cfg.OwnerID)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("Store.Driver = %q", cfg.Store.Driver)
	}
	if cfg.Store.Database != "todo_app" {
		t.Errorf("unset keys keep defaults, got Store.Database = %q", cfg.Store.Database)
	}
	if cfg.Model.Timeout != 5*time.Second {
		t.Errorf("Model.Timeout = %v", cfg.Model.Timeout)
	}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location: %v", err)
	}
	if loc.String() != "Europe/Berlin" {
		t.Errorf("Location = %v", loc)
	}
}

func TestNewRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFile), []byte("store: [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")
	t.Setenv("MONGO_URL", "mongodb://localhost:27017")
	t.Setenv("DATABASE_NAME", "automator_env")
	t.Setenv("AUTOMATOR_OWNER", "env-owner")

	cfg, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Model.APIKey != "env-key" {
		t.Errorf("Model.APIKey = %q", cfg.Model.APIKey)
	}
	if cfg.Store.Driver != DriverMongo || cfg.Store.MongoURL != "mongodb://localhost:27017" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Database != "automator_env" {
		t.Errorf("Store.Database = %q", cfg.Store.Database)
	}
	if cfg.OwnerID != "env-owner" {
		t.Errorf("OwnerID = %q", cfg.OwnerID)
	}
}

func TestSaveKeepsSecretsOut(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "env-key")
	dir := t.TempDir()

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cfg.SetOwner("user-9")
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	t.Setenv("GOOGLE_API_KEY", "")
	reloaded, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if reloaded.OwnerID != "user-9" {
		t.Errorf("OwnerID = %q, want user-9", reloaded.OwnerID)
	}
	if reloaded.Model.APIKey != "" {
		t.Errorf("env API key leaked into config.yaml")
	}
	if reloaded.Model.Timeout != 30*time.Second {
		t.Errorf("Model.Timeout = %v after round trip", reloaded.Model.Timeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Settings: DefaultSettings()}

	cfg.Store.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown driver")
	}

	cfg.Store.Driver = DriverMongo
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for mongo without URL")
	}

	cfg.Store.Driver = DriverMemory
	cfg.Timezone = "Mars/Olympus"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestDefaultConfigDirUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := DefaultConfigDir(), filepath.Join("/tmp/xdg", AppName); got != want {
		t.Errorf("DefaultConfigDir() = %q, want %q", got, want)
	}
}

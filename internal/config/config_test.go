package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return p
}

func TestLoad_defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("BaseURL got %q, want default", cfg.API.BaseURL)
	}
	if cfg.Listing.PageSize != 12 {
		t.Errorf("PageSize got %d, want 12", cfg.Listing.PageSize)
	}
	if cfg.Storage.Driver != DriverFile {
		t.Errorf("Driver got %q, want %q", cfg.Storage.Driver, DriverFile)
	}
	if !cfg.Session.LogoutOnUnauthorized {
		t.Errorf("LogoutOnUnauthorized got false, want true")
	}
}

func TestLoad_fileThenEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p := writeConfig(t, `
api:
  base_url: "https://market.example.com/api/"
listing:
  page_size: 24
storage:
  driver: sqlite
`)
	t.Setenv("BOOKSWAP_LISTING_PAGE_SIZE", "6")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://market.example.com/api" {
		t.Errorf("BaseURL got %q, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.Listing.PageSize != 6 {
		t.Errorf("PageSize got %d, want env override 6", cfg.Listing.PageSize)
	}
	if filepath.Base(cfg.Storage.Path) != "bookswap.db" {
		t.Errorf("sqlite Path got %q, want bookswap.db default", cfg.Storage.Path)
	}
}

func TestLoad_storagePathPerDriver(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(cfg.Storage.Path) != "credentials.json" {
		t.Errorf("file Path got %q, want credentials.json default", cfg.Storage.Path)
	}

	t.Setenv("BOOKSWAP_STORAGE_DRIVER", DriverSQLite)
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(cfg.Storage.Path) != "bookswap.db" {
		t.Errorf("sqlite Path got %q, want bookswap.db default", cfg.Storage.Path)
	}

	explicit := filepath.Join(t.TempDir(), "sessions.db")
	t.Setenv("BOOKSWAP_STORAGE_PATH", explicit)
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Path != explicit {
		t.Errorf("sqlite Path got %q, want %q", cfg.Storage.Path, explicit)
	}
}

func TestLoad_rejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cases := map[string]string{
		"relative base url": "api:\n  base_url: \"/api\"\n",
		"zero page size":    "listing:\n  page_size: 0\n",
		"unknown driver":    "storage:\n  driver: floppy\n",
	}
	for name, body := range cases {
		p := writeConfig(t, body)
		if _, err := Load(p); err == nil {
			t.Errorf("%s: expected error, got nil", name)
		}
	}
}

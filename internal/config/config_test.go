package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genecrawler/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if cfg.Crawl.YearWindow != 5 {
		t.Fatalf("expected default year window 5, got %d", cfg.Crawl.YearWindow)
	}
	if cfg.Crawl.MaxPages != 0 {
		t.Fatalf("expected unlimited pages by default, got %d", cfg.Crawl.MaxPages)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"

[crawl]
sources = ["Geneteka", "BASIA"]
max_pages = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if got := cfg.Crawl.Sources; len(got) != 2 || got[0] != "geneteka" || got[1] != "basia" {
		t.Fatalf("sources not normalized: %v", got)
	}
	if cfg.Crawl.MaxPages != 3 {
		t.Fatalf("max_pages = %d, want 3", cfg.Crawl.MaxPages)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data_dir not absolute: %s", cfg.Paths.DataDir)
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Crawl.Sources = []string{"ancestry"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "unknown source") {
		t.Fatalf("expected unknown source error, got %v", err)
	}
}

func TestValidateRejectsBadNumbers(t *testing.T) {
	cfg := config.Default()
	cfg.Crawl.YearWindow = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero year window")
	}

	cfg = config.Default()
	cfg.Crawl.MaxPages = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max pages")
	}
}

func TestValidateGeocoderRequiresEndpoint(t *testing.T) {
	cfg := config.Default()
	cfg.Geocoder.Enabled = true
	cfg.Geocoder.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for enabled geocoder without base url")
	}
}

func TestSampleConfigParses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(config.SampleConfig()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config must load: %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.DDR.BaseURL != defaultDDRBaseURL {
		t.Fatalf("unexpected base url: %s", cfg.DDR.BaseURL)
	}
	if cfg.Publish.DownloadInfoID != "DDR_DOWNLOAD1" {
		t.Fatalf("unexpected download info id: %s", cfg.Publish.DownloadInfoID)
	}
	if cfg.Cleanup.MaxRetries != defaultCleanupMaxRetries {
		t.Fatalf("unexpected cleanup retries: %d", cfg.Cleanup.MaxRetries)
	}
}

func TestLoadParsesSections(t *testing.T) {
	path := writeConfig(t, `
[ddr]
base_url = "https://ddr.example.ca/"
request_timeout = 30

[project]
english_path = "/data/wells_en.qgs"
french_path = "/data/wells_fr.qgs"

[publish]
department = "nrcan"
email = "user@nrcan-rncan.gc.ca"

[cleanup]
keep_files = true
`)

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s, got %s (exists=%v)", path, resolved, exists)
	}
	if cfg.DDR.BaseURL != "https://ddr.example.ca" {
		t.Fatalf("trailing slash should be trimmed, got %q", cfg.DDR.BaseURL)
	}
	if cfg.DDR.RequestTimeout != 30 {
		t.Fatalf("unexpected timeout: %d", cfg.DDR.RequestTimeout)
	}
	if cfg.Project.FrenchPath != "/data/wells_fr.qgs" {
		t.Fatalf("unexpected french path: %s", cfg.Project.FrenchPath)
	}
	if !cfg.Cleanup.KeepFiles {
		t.Fatal("expected keep_files to be true")
	}
}

func TestLoadRejectsBadProjectExtension(t *testing.T) {
	path := writeConfig(t, `
[project]
english_path = "/data/wells_en.qgz"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for non-.qgs project path")
	}
}

func TestLoadRejectsBadBaseURL(t *testing.T) {
	path := writeConfig(t, `
[ddr]
base_url = "not a url"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid base url")
	}
}

func TestLoadRejectsBadLogging(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "yaml"
`)
	if _, _, _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestExpandPathHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := ExpandPath("~/projects/wells.qgs")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, home) {
		t.Fatalf("expected %q under %q", got, home)
	}
}

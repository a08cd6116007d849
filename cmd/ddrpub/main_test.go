package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddrpub/internal/testsupport"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeCLIConfig drops a full config file rooted in temp directories and
// returns its path plus the token path for assertions.
func writeCLIConfig(t *testing.T, baseURL string, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	tokenPath := filepath.Join(dir, "ddr_auth.json")
	content := fmt.Sprintf(`[paths]
work_dir = %q
log_dir = %q

[ddr]
base_url = %q
token_path = %q

[logging]
format = "json"
level = "debug"
%s`, t.TempDir(), t.TempDir(), baseURL, tokenPath, extra)

	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, tokenPath
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("output does not name the file: %s", out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[ddr]") {
		t.Fatal("sample config is missing the [ddr] section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := executeCommand(t, "config", "init", "--path", target); err != nil {
		t.Fatal(err)
	}
	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init overwrote an existing config")
	}
}

func TestLoginPersistsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":       "tok-789",
			"expires_in":         300,
			"refresh_token":      "ref-789",
			"refresh_expires_in": 1800,
			"token_type":         "Bearer",
		})
	}))
	defer server.Close()

	configPath, tokenPath := writeCLIConfig(t, server.URL, "")
	out, err := executeCommand(t, "--config", configPath, "login", "--username", "alice", "--password", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Logged in as alice") {
		t.Fatalf("output = %s", out)
	}

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		t.Fatalf("token not persisted: %v", err)
	}
	if !strings.Contains(string(data), "tok-789") {
		t.Fatalf("token file content = %s", data)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	t.Setenv("DDR_USERNAME", "")
	t.Setenv("DDR_PASSWORD", "")
	configPath, _ := writeCLIConfig(t, "http://127.0.0.1:0", "")
	if _, err := executeCommand(t, "--config", configPath, "login"); err == nil {
		t.Fatal("login without credentials succeeded")
	}
}

func TestCatalogThemesRendersTable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/czs_themes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `[{"theme_uuid":"1b0e","title":{"en":"Hydrology","fr":"Hydrologie"}}]`)
	}))
	defer server.Close()

	configPath, tokenPath := writeCLIConfig(t, server.URL, "")
	seedToken(t, tokenPath)

	out, err := executeCommand(t, "--config", configPath, "catalog", "themes")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"1b0e", "Hydrology", "Hydrologie"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table output missing %q:\n%s", want, out)
		}
	}
}

func seedToken(t *testing.T, tokenPath string) {
	t.Helper()
	cred := map[string]any{"access_token": "tok-123", "token_type": "Bearer"}
	data, err := json.Marshal(cred)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tokenPath, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestValidateCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "wells_src.gpkg")
	table := testsupport.WriteSourceGeoPackage(t, source, "wells", "POINT", 2)
	layers := []testsupport.LayerSpec{{
		Name:       "Wells",
		ShortName:  "wells",
		Geometry:   "Point",
		DataSource: source + "|layername=" + table,
	}}
	enPath := testsupport.WriteProject(t, dir, "wells_en.qgs", layers)
	frPath := testsupport.WriteProject(t, dir, "wells_fr.qgs", layers)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/validate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"checks":"passed"}`)
	}))
	defer server.Close()

	extra := fmt.Sprintf(`
[project]
english_path = %q
french_path = %q

[publish]
department = "nrcan"
service_schema_name = "nrcan"
email = "publisher@example.ca"
download_package_name = "wells"
`, enPath, frPath)

	configPath, tokenPath := writeCLIConfig(t, server.URL, extra)
	seedToken(t, tokenPath)

	out, err := executeCommand(t, "--config", configPath, "validate")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "validate completed successfully") {
		t.Fatalf("output = %s", out)
	}
}

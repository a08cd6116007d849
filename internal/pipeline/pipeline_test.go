package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddrpub/internal/archive"
	"ddrpub/internal/config"
	"ddrpub/internal/ddr"
	"ddrpub/internal/logging"
	"ddrpub/internal/project"
	"ddrpub/internal/registry"
	"ddrpub/internal/services"
	"ddrpub/internal/testsupport"
)

type harness struct {
	cfg      *config.Config
	runner   *Runner
	projects *project.Context
	enPath   string
	frPath   string
}

// newHarness wires a runner against a real project pair, a GeoPackage
// source, and an already-authenticated client pointed at serverURL.
func newHarness(t *testing.T, serverURL string) *harness {
	t.Helper()
	return newHarnessWith(t, serverURL, []string{"Wells"})
}

// newHarnessWith builds the harness with one vector layer per display
// name, each backed by its own two-row GeoPackage source.
func newHarnessWith(t *testing.T, serverURL string, names []string) *harness {
	t.Helper()

	dir := t.TempDir()
	layers := make([]testsupport.LayerSpec, 0, len(names))
	for _, name := range names {
		short := strings.ToLower(name)
		source := filepath.Join(dir, short+"_src.gpkg")
		table := testsupport.WriteSourceGeoPackage(t, source, short, "POINT", 2)
		layers = append(layers, testsupport.LayerSpec{
			Name:       name,
			ShortName:  short,
			Geometry:   "Point",
			DataSource: source + "|layername=" + table,
		})
	}
	enPath := testsupport.WriteProject(t, dir, "wells_en.qgs", layers)
	frPath := testsupport.WriteProject(t, dir, "wells_fr.qgs", layers)

	cfg := testsupport.NewConfig(t)
	cfg.DDR.BaseURL = serverURL

	projects := project.NewContext()
	if _, err := projects.Read(enPath); err != nil {
		t.Fatal(err)
	}

	session := ddr.NewSession(nil)
	if err := session.SetCredential(ddr.Credential{AccessToken: "tok-123", TokenType: "Bearer"}); err != nil {
		t.Fatal(err)
	}
	client := ddr.NewClient(cfg, session, logging.NewNop())

	return &harness{
		cfg:      cfg,
		runner:   NewRunner(cfg, logging.NewNop(), client, registry.New(), projects),
		projects: projects,
		enPath:   enPath,
		frPath:   frPath,
	}
}

func (h *harness) request(operation string) *Request {
	return &Request{
		Operation: operation,
		Control: &archive.ControlRecord{
			Department:          "nrcan",
			DownloadInfoID:      "DDR_DOWNLOAD1",
			Email:               "publisher@example.ca",
			QGISServerID:        "DDR_QGS1",
			DownloadPackageName: "wells",
			CoreSubjectTerm:     "economy",
			ServiceSchemaName:   "nrcan",
			LocaleInputs: []project.LocaleInput{
				{Locale: project.LocaleEnglish, Path: h.enPath},
				{Locale: project.LocaleFrench, Path: h.frPath},
			},
		},
	}
}

// tempDirs lists qgis_ working directories left under the configured
// work base.
func tempDirs(t *testing.T, workBase string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(workBase, "qgis_*"))
	if err != nil {
		t.Fatal(err)
	}
	return matches
}

func TestRunPublishDeliversArchiveAndCleansUp(t *testing.T) {
	var uploaded bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/processes" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		file, header, err := r.FormFile("zip_file")
		if err != nil {
			t.Errorf("missing zip_file part: %v", err)
		} else {
			file.Close()
			if header.Filename != archive.ArchiveFileName {
				t.Errorf("uploaded file name = %q", header.Filename)
			}
		}
		uploaded = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	h := newHarness(t, server.URL)
	outcome := h.runner.Run(context.Background(), h.request(ddr.OpPublish))

	if outcome.Status != StatusCompleted {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}
	if !uploaded {
		t.Fatal("archive never reached the server")
	}
	if dirs := tempDirs(t, h.cfg.Paths.WorkDir); len(dirs) != 0 {
		t.Fatalf("working directories left behind: %v", dirs)
	}
	if got := h.projects.Current().FileName(); got != h.enPath {
		t.Fatalf("project context points at %q after the run", got)
	}
}

func TestRunRefusesDirtyProjectWithoutTouchingDisk(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:0")
	h.projects.Current().MarkDirty()

	outcome := h.runner.Run(context.Background(), h.request(ddr.OpValidate))

	if outcome.Status != StatusFailed || outcome.Kind != services.KindUserInput {
		t.Fatalf("status = %s, kind = %s, err = %v", outcome.Status, outcome.Kind, outcome.Err)
	}
	if dirs := tempDirs(t, h.cfg.Paths.WorkDir); len(dirs) != 0 {
		t.Fatalf("a refused run created working directories: %v", dirs)
	}
}

func TestRunKeepFilesRetainsWorkingDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := newHarness(t, server.URL)
	req := h.request(ddr.OpValidate)
	req.Control.KeepFiles = true

	outcome := h.runner.Run(context.Background(), req)
	if outcome.Status != StatusCompleted {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}
	if outcome.WorkDir == "" {
		t.Fatal("outcome does not report the retained working directory")
	}
	for _, name := range []string{archive.ManifestFileName, archive.ContainerFileName, archive.ArchiveFileName} {
		if _, err := os.Stat(filepath.Join(outcome.WorkDir, name)); err != nil {
			t.Fatalf("retained directory is missing %s: %v", name, err)
		}
	}
}

func TestRunAuthFailureStillRestoresAndCleans(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(ddr.ErrorBody{
			Detail: "token expired", DetailFR: "jeton expiré",
			Status: 401, Title: "Unauthorized", Type: "about:blank",
		})
	}))
	defer server.Close()

	h := newHarness(t, server.URL)
	outcome := h.runner.Run(context.Background(), h.request(ddr.OpPublish))

	if outcome.Status != StatusFailed || outcome.Kind != services.KindAuthentication {
		t.Fatalf("status = %s, kind = %s, err = %v", outcome.Status, outcome.Kind, outcome.Err)
	}
	if dirs := tempDirs(t, h.cfg.Paths.WorkDir); len(dirs) != 0 {
		t.Fatalf("working directories left behind: %v", dirs)
	}
	if got := h.projects.Current().FileName(); got != h.enPath {
		t.Fatalf("project context points at %q after the run", got)
	}
}

func TestRunUnknownThemeIsUserInput(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:0")
	req := h.request(ddr.OpPublish)
	req.Theme = "No Such Theme"

	outcome := h.runner.Run(context.Background(), req)
	if outcome.Status != StatusFailed || outcome.Kind != services.KindUserInput {
		t.Fatalf("status = %s, kind = %s, err = %v", outcome.Status, outcome.Kind, outcome.Err)
	}
	if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), "No Such Theme") {
		t.Fatalf("err = %v", outcome.Err)
	}
}

func TestRunLayerSelectionPrunesProjects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := newHarnessWith(t, server.URL, []string{"Wells", "Rivers"})
	req := h.request(ddr.OpValidate)
	req.Layers = []string{"Wells"}
	req.Control.KeepFiles = true

	outcome := h.runner.Run(context.Background(), req)
	if outcome.Status != StatusCompleted {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}

	containerPath := filepath.Join(outcome.WorkDir, archive.ContainerFileName)
	if got := testsupport.CountRows(t, containerPath, "gpkg_contents"); got != 1 {
		t.Fatalf("gpkg_contents rows = %d, want 1 (unselected layer must be pruned)", got)
	}
	for _, name := range []string{"wells_en.qgs", "wells_fr.qgs"} {
		reloaded, err := project.Load(filepath.Join(outcome.WorkDir, name))
		if err != nil {
			t.Fatal(err)
		}
		layers := reloaded.Layers()
		if len(layers) != 1 || layers[0].Name != "Wells" {
			t.Fatalf("%s layers = %+v, want only Wells", name, layers)
		}
	}
}

func TestRunUnknownLayerSelectionIsUserInput(t *testing.T) {
	h := newHarness(t, "http://127.0.0.1:0")
	req := h.request(ddr.OpValidate)
	req.Layers = []string{"Glaciers"}

	outcome := h.runner.Run(context.Background(), req)
	if outcome.Status != StatusFailed || outcome.Kind != services.KindUserInput {
		t.Fatalf("status = %s, kind = %s, err = %v", outcome.Status, outcome.Kind, outcome.Err)
	}
	if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), "Glaciers") {
		t.Fatalf("err = %v", outcome.Err)
	}
	if dirs := tempDirs(t, h.cfg.Paths.WorkDir); len(dirs) != 0 {
		t.Fatalf("working directories left behind: %v", dirs)
	}
}

func TestRunSanitizesDownloadPackageName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := newHarness(t, server.URL)
	req := h.request(ddr.OpValidate)
	req.Control.DownloadPackageName = ` atlantic/wells: 2024?`
	req.Control.KeepFiles = true

	outcome := h.runner.Run(context.Background(), req)
	if outcome.Status != StatusCompleted {
		t.Fatalf("status = %s, err = %v", outcome.Status, outcome.Err)
	}

	data, err := os.ReadFile(filepath.Join(outcome.WorkDir, archive.ManifestFileName))
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Generic struct {
			PackageName string `json:"download_package_name"`
		} `json:"generic_parameters"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if want := "atlantic-wells- 2024"; doc.Generic.PackageName != want {
		t.Fatalf("download_package_name = %q, want %q", doc.Generic.PackageName, want)
	}
}

func TestRunProducesIdenticalManifestsAcrossRuns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	manifests := make([][]byte, 0, 2)
	for i := 0; i < 2; i++ {
		h := newHarness(t, server.URL)
		req := h.request(ddr.OpValidate)
		req.Control.KeepFiles = true
		req.Control.MetadataUUID = "8b62bc5e-0f95-4a7e-9a1e-2d9f5f0c7b11"

		outcome := h.runner.Run(context.Background(), req)
		if outcome.Status != StatusCompleted {
			t.Fatalf("run %d: status = %s, err = %v", i, outcome.Status, outcome.Err)
		}
		data, err := os.ReadFile(filepath.Join(outcome.WorkDir, archive.ManifestFileName))
		if err != nil {
			t.Fatal(err)
		}
		manifests = append(manifests, data)
	}

	if !bytes.Equal(manifests[0], manifests[1]) {
		t.Fatalf("manifests differ:\n%s\n---\n%s", manifests[0], manifests[1])
	}
}

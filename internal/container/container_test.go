package container

import (
	"database/sql"
	"path/filepath"
	"testing"

	"ddrpub/internal/project"
	"ddrpub/internal/testsupport"
)

func TestWriterConsolidatesLayers(t *testing.T) {
	dir := t.TempDir()
	srcA := filepath.Join(dir, "wells.gpkg")
	srcB := filepath.Join(dir, "rivers.gpkg")
	testsupport.WriteSourceGeoPackage(t, srcA, "wells", "POINT", 3)
	testsupport.WriteSourceGeoPackage(t, srcB, "rivers", "LINESTRING", 2)

	dst := filepath.Join(dir, "qgis_vector_layers.gpkg")
	w, err := NewWriter(dst)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddLayer("water_wells", project.GeometryPoint, srcA, "wells"); err != nil {
		t.Fatal(err)
	}
	if err := w.AddLayer("rivers", project.GeometryLine, srcB, "rivers"); err != nil {
		t.Fatal(err)
	}
	if w.LayerCount() != 2 {
		t.Fatalf("expected 2 layers, got %d", w.LayerCount())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if got := testsupport.CountRows(t, dst, "water_wells"); got != 3 {
		t.Fatalf("expected 3 wells rows, got %d", got)
	}
	if got := testsupport.CountRows(t, dst, "rivers"); got != 2 {
		t.Fatalf("expected 2 rivers rows, got %d", got)
	}

	db, err := sql.Open("sqlite", dst)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var geomType string
	var srs int
	if err := db.QueryRow(
		`SELECT geometry_type_name, srs_id FROM gpkg_geometry_columns WHERE table_name = 'water_wells'`).
		Scan(&geomType, &srs); err != nil {
		t.Fatal(err)
	}
	if geomType != "POINT" || srs != 4326 {
		t.Fatalf("unexpected registration: %s srs=%d", geomType, srs)
	}

	var appID int
	if err := db.QueryRow(`PRAGMA application_id`).Scan(&appID); err != nil {
		t.Fatal(err)
	}
	if appID != gpkgApplicationID {
		t.Fatalf("expected GPKG application id, got %#x", appID)
	}
}

func TestWriterRejectsMissingSource(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(filepath.Join(dir, "out.gpkg"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	err = w.AddLayer("ghost", project.GeometryPoint, filepath.Join(dir, "missing.gpkg"), "ghost")
	if err == nil {
		t.Fatal("expected error for missing source")
	}
	if w.LayerCount() != 0 {
		t.Fatalf("failed layer must not count, got %d", w.LayerCount())
	}
}

func TestWriterDuplicateShortNameFailsCleanly(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wells.gpkg")
	testsupport.WriteSourceGeoPackage(t, src, "wells", "POINT", 1)

	w, err := NewWriter(filepath.Join(dir, "out.gpkg"))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.AddLayer("wells", project.GeometryPoint, src, "wells"); err != nil {
		t.Fatal(err)
	}
	if err := w.AddLayer("wells", project.GeometryPoint, src, "wells"); err == nil {
		t.Fatal("expected duplicate table error")
	}
	if w.LayerCount() != 1 {
		t.Fatalf("expected 1 layer after duplicate failure, got %d", w.LayerCount())
	}
}

func TestSplitOGRSource(t *testing.T) {
	path, layer := SplitOGRSource("/data/wells.gpkg|layername=wells")
	if path != "/data/wells.gpkg" || layer != "wells" {
		t.Fatalf("got %q %q", path, layer)
	}

	path, layer = SplitOGRSource("/data/single.gpkg")
	if path != "/data/single.gpkg" || layer != "" {
		t.Fatalf("got %q %q", path, layer)
	}

	if !IsGeoPackageSource("/data/wells.gpkg|layername=wells") {
		t.Fatal("expected gpkg source")
	}
	if IsGeoPackageSource("host=db port=5432 dbname=gis") {
		t.Fatal("postgres source misdetected")
	}

	if got := EncodeOGRSource("/tmp/out.gpkg", "wells"); got != "/tmp/out.gpkg|layername=wells" {
		t.Fatalf("unexpected encoding: %q", got)
	}
}

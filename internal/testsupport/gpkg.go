package testsupport

import (
	"database/sql"
	"fmt"
	"testing"

	_ "modernc.org/sqlite"
)

// WriteSourceGeoPackage creates a minimal GeoPackage at path holding one
// feature table with the given number of rows, registered in gpkg_contents
// and gpkg_geometry_columns. Returns the table name for convenience.
func WriteSourceGeoPackage(t *testing.T, path, table, geometryType string, rows int) string {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	statements := []string{
		`CREATE TABLE gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER
		)`,
		`CREATE TABLE gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			PRIMARY KEY (table_name, column_name)
		)`,
		fmt.Sprintf(`CREATE TABLE %q (fid INTEGER PRIMARY KEY, geom BLOB, name TEXT)`, table),
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := db.Exec(
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id)
		 VALUES (?, 'features', ?, -80.0, 43.0, -75.0, 46.0, 4326)`, table, table); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		`INSERT INTO gpkg_geometry_columns VALUES (?, 'geom', ?, 4326, 0, 0)`, table, geometryType); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < rows; i++ {
		if _, err := db.Exec(fmt.Sprintf(`INSERT INTO %q (geom, name) VALUES (?, ?)`, table),
			[]byte{0x47, 0x50, byte(i)}, fmt.Sprintf("feature-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	return table
}

// CountRows returns the row count of a table inside a sqlite database file.
func CountRows(t *testing.T, path, table string) int {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow(fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)).Scan(&count); err != nil {
		t.Fatalf("count rows in %s: %v", table, err)
	}
	return count
}

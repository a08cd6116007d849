package container

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"ddrpub/internal/project"
)

// ErrContainerCreation reports that the consolidated container could not be
// created at all. Per-layer append failures after a successful creation are
// recoverable; this one aborts the run.
var ErrContainerCreation = errors.New("unable to create the consolidated vector container")

// gpkgApplicationID is the GeoPackage magic ("GPKG") stored in the sqlite
// application_id header field.
const gpkgApplicationID = 0x47504B47

// Writer consolidates vector layers into a single GeoPackage file, one
// feature table per layer keyed by its registry short name.
type Writer struct {
	path       string
	db         *sql.DB
	layerCount int
}

// NewWriter creates the container file with its GeoPackage metadata tables.
func NewWriter(path string) (*Writer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerCreation, err)
	}
	// ATTACH is per connection; the pool must not hand statements to a
	// connection that never saw it.
	db.SetMaxOpenConns(1)
	w := &Writer{path: path, db: db}
	if err := w.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrContainerCreation, err)
	}
	return w, nil
}

func (w *Writer) initSchema() error {
	statements := []string{
		fmt.Sprintf("PRAGMA application_id = %d", gpkgApplicationID),
		"PRAGMA user_version = 10300",
		`CREATE TABLE IF NOT EXISTS gpkg_spatial_ref_sys (
			srs_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL PRIMARY KEY,
			organization TEXT NOT NULL,
			organization_coordsys_id INTEGER NOT NULL,
			definition TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_contents (
			table_name TEXT NOT NULL PRIMARY KEY,
			data_type TEXT NOT NULL,
			identifier TEXT UNIQUE,
			description TEXT DEFAULT '',
			last_change DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			min_x DOUBLE, min_y DOUBLE, max_x DOUBLE, max_y DOUBLE,
			srs_id INTEGER,
			CONSTRAINT fk_gc_r_srs_id FOREIGN KEY (srs_id) REFERENCES gpkg_spatial_ref_sys(srs_id)
		)`,
		`CREATE TABLE IF NOT EXISTS gpkg_geometry_columns (
			table_name TEXT NOT NULL,
			column_name TEXT NOT NULL,
			geometry_type_name TEXT NOT NULL,
			srs_id INTEGER NOT NULL,
			z TINYINT NOT NULL,
			m TINYINT NOT NULL,
			CONSTRAINT pk_geom_cols PRIMARY KEY (table_name, column_name)
		)`,
		`INSERT OR IGNORE INTO gpkg_spatial_ref_sys VALUES
			('WGS 84 geodetic', 4326, 'EPSG', 4326, 'GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563]]]', 'longitude/latitude'),
			('Undefined cartesian SRS', -1, 'NONE', -1, 'undefined', 'undefined cartesian coordinate reference system'),
			('Undefined geographic SRS', 0, 'NONE', 0, 'undefined', 'undefined geographic coordinate reference system')`,
	}
	for _, stmt := range statements {
		if _, err := w.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// AddLayer copies one vector layer out of a GeoPackage source into the
// container under shortName. The source table's rows, bounding box, and SRS
// are carried over. Layer names arrive pre-folded so they are safe as sqlite
// identifiers.
func (w *Writer) AddLayer(shortName string, geometry project.GeometryKind, sourcePath, sourceTable string) error {
	if strings.TrimSpace(shortName) == "" {
		return errors.New("layer short name is empty")
	}

	if _, err := w.db.Exec(`ATTACH DATABASE ? AS src`, sourcePath); err != nil {
		return fmt.Errorf("attach source %s: %w", sourcePath, err)
	}
	defer w.db.Exec(`DETACH DATABASE src`)

	copyStmt := fmt.Sprintf(`CREATE TABLE main.%s AS SELECT * FROM src.%s`,
		quoteIdent(shortName), quoteIdent(sourceTable))
	if _, err := w.db.Exec(copyStmt); err != nil {
		return fmt.Errorf("copy layer table %s: %w", sourceTable, err)
	}

	if err := w.registerLayer(shortName, geometry, sourceTable); err != nil {
		_, _ = w.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS main.%s`, quoteIdent(shortName)))
		return err
	}

	w.layerCount++
	return nil
}

func (w *Writer) registerLayer(shortName string, geometry project.GeometryKind, sourceTable string) error {
	var (
		srsID                  = 4326
		minX, minY, maxX, maxY sql.NullFloat64
		geomColumn             = "geom"
		geomType               = geometryTypeName(geometry)
	)

	// Carry SRS and bounds from the source registration when available.
	row := w.db.QueryRow(
		`SELECT srs_id, min_x, min_y, max_x, max_y FROM src.gpkg_contents WHERE table_name = ?`,
		sourceTable)
	var srcSRS sql.NullInt64
	if err := row.Scan(&srcSRS, &minX, &minY, &maxX, &maxY); err == nil && srcSRS.Valid {
		srsID = int(srcSRS.Int64)
	}
	row = w.db.QueryRow(
		`SELECT column_name, geometry_type_name FROM src.gpkg_geometry_columns WHERE table_name = ?`,
		sourceTable)
	var srcColumn, srcType sql.NullString
	if err := row.Scan(&srcColumn, &srcType); err == nil {
		if srcColumn.Valid && srcColumn.String != "" {
			geomColumn = srcColumn.String
		}
		if srcType.Valid && srcType.String != "" {
			geomType = srcType.String
		}
	}

	if _, err := w.db.Exec(
		`INSERT INTO gpkg_contents (table_name, data_type, identifier, min_x, min_y, max_x, max_y, srs_id)
		 VALUES (?, 'features', ?, ?, ?, ?, ?, ?)`,
		shortName, shortName, minX, minY, maxX, maxY, srsID); err != nil {
		return fmt.Errorf("register layer in gpkg_contents: %w", err)
	}
	if _, err := w.db.Exec(
		`INSERT INTO gpkg_geometry_columns (table_name, column_name, geometry_type_name, srs_id, z, m)
		 VALUES (?, ?, ?, ?, 0, 0)`,
		shortName, geomColumn, geomType, srsID); err != nil {
		return fmt.Errorf("register layer in gpkg_geometry_columns: %w", err)
	}
	return nil
}

// LayerCount returns the number of layers written so far.
func (w *Writer) LayerCount() int { return w.layerCount }

// Path returns the container file path.
func (w *Writer) Path() string { return w.path }

// Close flushes and closes the container database.
func (w *Writer) Close() error {
	if w.db == nil {
		return nil
	}
	err := w.db.Close()
	w.db = nil
	return err
}

func geometryTypeName(kind project.GeometryKind) string {
	switch kind {
	case project.GeometryPoint:
		return "POINT"
	case project.GeometryLine:
		return "LINESTRING"
	case project.GeometryPolygon:
		return "POLYGON"
	default:
		return "GEOMETRY"
	}
}

// quoteIdent wraps a sqlite identifier in double quotes, escaping embedded
// quotes. Short names are folded to ASCII before they reach here, but the
// quoting keeps hand-supplied table names from breaking statements.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

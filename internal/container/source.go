package container

import "strings"

// SplitOGRSource splits a QGIS ogr datasource string of the form
// "/path/to/data.gpkg|layername=wells" into the file path and layer name.
// A datasource without a layername component names a single-layer file; the
// returned layer name is empty and the caller falls back to the layer name
// from the project.
func SplitOGRSource(datasource string) (path, layerName string) {
	parts := strings.Split(datasource, "|")
	path = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		if value, ok := strings.CutPrefix(strings.TrimSpace(part), "layername="); ok {
			layerName = value
		}
	}
	return path, layerName
}

// IsGeoPackageSource reports whether the datasource points at a GeoPackage
// file. Only GeoPackage sources can be consolidated; other providers are
// skipped with a warning.
func IsGeoPackageSource(datasource string) bool {
	path, _ := SplitOGRSource(datasource)
	return strings.HasSuffix(strings.ToLower(path), ".gpkg")
}

// EncodeOGRSource builds the ogr datasource string QGIS uses to address a
// named layer inside a GeoPackage.
func EncodeOGRSource(path, layerName string) string {
	if layerName == "" {
		return path
	}
	return path + "|layername=" + layerName
}

// Package container writes the consolidated vector container shipped inside
// a publication archive: a single GeoPackage holding one feature table per
// published layer, keyed by the layer's folded short name.
//
// GeoPackage is sqlite underneath, so layers are consolidated by attaching
// each source file and copying its feature table plus the gpkg_contents and
// gpkg_geometry_columns registrations. Only GeoPackage sources can be
// consolidated this way; layers on other providers are skipped by the
// archive builder.
package container

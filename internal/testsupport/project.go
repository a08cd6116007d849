package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// LayerSpec describes one layer of a generated test project.
type LayerSpec struct {
	Name       string
	ShortName  string
	Type       string // vector, raster, no-geometry
	Geometry   string // Point, Line, Polygon
	Provider   string
	DataSource string
}

// WriteProject writes a minimal .qgs project file containing the given
// layers and returns its path.
func WriteProject(t *testing.T, dir, name string, layers []LayerSpec) string {
	t.Helper()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<qgis version="3.28">` + "\n")
	fmt.Fprintf(&b, "  <title>%s</title>\n", strings.TrimSuffix(name, ".qgs"))
	b.WriteString("  <projectlayers>\n")
	for _, layer := range layers {
		layerType := layer.Type
		if layerType == "" {
			layerType = "vector"
		}
		provider := layer.Provider
		if provider == "" {
			provider = "ogr"
		}
		fmt.Fprintf(&b, `    <maplayer type="%s" geometry="%s">`+"\n", layerType, layer.Geometry)
		fmt.Fprintf(&b, "      <id>%s</id>\n", layer.Name)
		fmt.Fprintf(&b, "      <datasource>%s</datasource>\n", layer.DataSource)
		fmt.Fprintf(&b, "      <layername>%s</layername>\n", layer.Name)
		if layer.ShortName != "" {
			fmt.Fprintf(&b, "      <shortname>%s</shortname>\n", layer.ShortName)
		}
		fmt.Fprintf(&b, "      <provider>%s</provider>\n", provider)
		b.WriteString("    </maplayer>\n")
	}
	b.WriteString("  </projectlayers>\n")
	b.WriteString("</qgis>\n")

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

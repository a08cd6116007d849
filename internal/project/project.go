package project

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingProject reports that no project file path is set.
	ErrMissingProject = errors.New("a QGS project file is not loaded")
	// ErrInvalidProjectFormat reports a project file without the .qgs extension.
	ErrInvalidProjectFormat = errors.New("the QGIS project file extension must be .qgs")
	// ErrDirtyProject reports unsaved modifications on the original project.
	ErrDirtyProject = errors.New("the QGIS project file must be saved before starting the DDR publication")
)

// Locale identifies which language variant of a project a file represents.
type Locale string

const (
	LocaleEnglish Locale = "English"
	LocaleFrench  Locale = "French"
)

// GeometryKind is the geometry family of a vector layer.
type GeometryKind string

const (
	GeometryPoint   GeometryKind = "Point"
	GeometryLine    GeometryKind = "Line"
	GeometryPolygon GeometryKind = "Polygon"
	GeometryUnknown GeometryKind = "Unknown"
)

// LayerKind is the publication-relevant classification of a layer, resolved
// once when the project file is parsed instead of re-probed at every stage.
type LayerKind int

const (
	KindVector LayerKind = iota
	KindNonVector
	KindNonSpatial
)

// Layer is one <maplayer> entry of a QGIS project file.
type Layer struct {
	Name       string
	ShortName  string
	Provider   string
	DataSource string
	Kind       LayerKind
	Geometry   GeometryKind
}

// Spatial reports whether the layer carries geometry at all.
func (l *Layer) Spatial() bool { return l.Kind != KindNonSpatial }

// Vector reports whether the layer is a spatial vector layer.
func (l *Layer) Vector() bool { return l.Kind == KindVector }

// Project is the publication-relevant subset of a .qgs project document.
type Project struct {
	path   string
	title  string
	layers []*Layer
	dirty  bool
}

type xmlMapLayer struct {
	Type       string `xml:"type,attr"`
	Geometry   string `xml:"geometry,attr"`
	ID         string `xml:"id"`
	DataSource string `xml:"datasource"`
	LayerName  string `xml:"layername"`
	ShortName  string `xml:"shortname"`
	Provider   string `xml:"provider"`
}

type xmlProject struct {
	XMLName xml.Name      `xml:"qgis"`
	Version string        `xml:"version,attr"`
	Title   string        `xml:"title"`
	Layers  []xmlMapLayer `xml:"projectlayers>maplayer"`
}

// Load parses the publication-relevant subset of a .qgs project file.
func Load(path string) (*Project, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrMissingProject
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".qgs" {
		return nil, fmt.Errorf("%w, not %q", ErrInvalidProjectFormat, ext)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingProject, path)
		}
		return nil, fmt.Errorf("read project file: %w", err)
	}

	var doc xmlProject
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse project file %s: %w", path, err)
	}

	proj := &Project{path: path, title: doc.Title}
	for _, entry := range doc.Layers {
		proj.layers = append(proj.layers, layerFromXML(entry))
	}
	return proj, nil
}

func layerFromXML(entry xmlMapLayer) *Layer {
	layer := &Layer{
		Name:       entry.LayerName,
		ShortName:  entry.ShortName,
		Provider:   entry.Provider,
		DataSource: entry.DataSource,
		Geometry:   GeometryUnknown,
	}
	switch strings.ToLower(strings.TrimSpace(entry.Type)) {
	case "vector":
		layer.Kind = KindVector
	case "", "annotation", "no-geometry":
		layer.Kind = KindNonSpatial
	default:
		layer.Kind = KindNonVector
	}
	switch strings.ToLower(strings.TrimSpace(entry.Geometry)) {
	case "point", "multipoint":
		layer.Geometry = GeometryPoint
	case "line", "linestring", "multilinestring":
		layer.Geometry = GeometryLine
	case "polygon", "multipolygon":
		layer.Geometry = GeometryPolygon
	case "no geometry", "nogeometry":
		layer.Kind = KindNonSpatial
		layer.Geometry = GeometryUnknown
	}
	return layer
}

// FileName returns the path the project was loaded from or last written to.
func (p *Project) FileName() string { return p.path }

// Title returns the project title.
func (p *Project) Title() string { return p.title }

// Dirty reports whether the in-memory project diverges from its file.
func (p *Project) Dirty() bool { return p.dirty }

// MarkDirty flags the project as modified without writing it. Intended for
// tests exercising the dirty-project precondition.
func (p *Project) MarkDirty() { p.dirty = true }

// Layers returns the parsed layers in document order.
func (p *Project) Layers() []*Layer { return p.layers }

// VectorLayers returns only the spatial vector layers.
func (p *Project) VectorLayers() []*Layer {
	var out []*Layer
	for _, layer := range p.layers {
		if layer.Vector() {
			out = append(out, layer)
		}
	}
	return out
}

// SetDataSource re-points the named layer at a new provider/source pair and
// marks the project dirty.
func (p *Project) SetDataSource(layerName, provider, source string) error {
	for _, layer := range p.layers {
		if layer.Name == layerName {
			layer.Provider = provider
			layer.DataSource = source
			p.dirty = true
			return nil
		}
	}
	return fmt.Errorf("layer %q not found in project", layerName)
}

// RemoveLayer drops the named layer from the project and marks it dirty.
func (p *Project) RemoveLayer(layerName string) bool {
	for i, layer := range p.layers {
		if layer.Name == layerName {
			p.layers = append(p.layers[:i], p.layers[i+1:]...)
			p.dirty = true
			return true
		}
	}
	return false
}

// Write serializes the project to path and re-points the project at it,
// clearing the dirty flag. This is the "save as" used to drop per-locale
// copies into the working directory.
func (p *Project) Write(path string) error {
	doc := xmlProject{Version: "3.28", Title: p.title}
	for _, layer := range p.layers {
		doc.Layers = append(doc.Layers, xmlMapLayer{
			Type:       layerKindAttr(layer.Kind),
			Geometry:   string(layer.Geometry),
			ID:         layer.Name,
			DataSource: layer.DataSource,
			LayerName:  layer.Name,
			ShortName:  layer.ShortName,
			Provider:   layer.Provider,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize project: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	p.path = path
	p.dirty = false
	return nil
}

func layerKindAttr(kind LayerKind) string {
	switch kind {
	case KindVector:
		return "vector"
	case KindNonVector:
		return "raster"
	default:
		return "no-geometry"
	}
}

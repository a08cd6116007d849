package registry

import (
	"errors"
	"fmt"
	"sync"

	"ddrpub/internal/project"
	"ddrpub/internal/textutil"
)

var (
	// ErrMissingShortName reports a layer without a declared short name.
	ErrMissingShortName = errors.New("layer has no short name")
	// ErrDuplicateShortName reports a short-name collision within one locale.
	// Short names key the consolidated container, so a collision would
	// silently overwrite layer data.
	ErrDuplicateShortName = errors.New("duplicate layer short name")
)

// Record is a project layer's identity for publication purposes.
type Record struct {
	DisplayName   string
	ShortName     string
	Geometry      project.GeometryKind
	Spatial       bool
	Vector        bool
	ContainerPath string
}

// Registry tracks per-locale layer short names and the remote catalogs
// fetched once per session. One pipeline run writes at a time.
type Registry struct {
	mu     sync.Mutex
	layers map[project.Locale][]*Record
	byName map[project.Locale]map[string]*Record

	departments []string
	themes      []Theme
	email       string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		layers: make(map[project.Locale][]*Record),
		byName: make(map[project.Locale]map[string]*Record),
	}
}

// AddLayer derives the layer's folded short name and records it under the
// locale. Uniqueness is enforced at insertion: on collision the registry is
// left exactly as it was before the call.
func (r *Registry) AddLayer(layer *project.Layer, locale project.Locale) (*Record, error) {
	if layer.ShortName == "" {
		return nil, fmt.Errorf("%w: layer %q", ErrMissingShortName, layer.Name)
	}
	short := textutil.FoldASCII(layer.ShortName)
	if short == "" {
		return nil, fmt.Errorf("%w: layer %q short name %q folds to nothing", ErrMissingShortName, layer.Name, layer.ShortName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	names := r.byName[locale]
	if names == nil {
		names = make(map[string]*Record)
		r.byName[locale] = names
	}
	if existing, ok := names[short]; ok {
		return nil, fmt.Errorf("%w: %q collides with layer %q in %s project",
			ErrDuplicateShortName, short, existing.DisplayName, locale)
	}

	record := &Record{
		DisplayName: layer.Name,
		ShortName:   short,
		Geometry:    layer.Geometry,
		Spatial:     layer.Spatial(),
		Vector:      layer.Vector(),
	}
	names[short] = record
	r.layers[locale] = append(r.layers[locale], record)
	return record, nil
}

// ShortName returns the folded short name recorded for the layer's display
// name within the locale.
func (r *Registry) ShortName(displayName string, locale project.Locale) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.layers[locale] {
		if record.DisplayName == displayName {
			return record.ShortName, true
		}
	}
	return "", false
}

// Layers returns the records registered for a locale, in insertion order.
func (r *Registry) Layers(locale project.Locale) []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Record, len(r.layers[locale]))
	copy(out, r.layers[locale])
	return out
}

// LayerCount returns the maximum layer count across locales, supporting
// asymmetric locale layer sets.
func (r *Registry) LayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, records := range r.layers {
		if len(records) > max {
			max = len(records)
		}
	}
	return max
}

package archive

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"ddrpub/internal/container"
	"ddrpub/internal/logging"
	"ddrpub/internal/project"
	"ddrpub/internal/registry"
)

// BuildContainer consolidates every publishable vector layer from the
// snapshot's locale projects into a single GeoPackage in the working
// directory. Layers shared between locales are copied once, keyed by folded
// short name. Non-vector, non-spatial, and non-GeoPackage layers are skipped
// with a warning.
//
// Failure on the very first layer aborts the build: an empty container would
// mean the source data itself is unreadable. Later per-layer failures skip
// the layer so one broken source does not sink the whole publication.
func BuildContainer(logger *slog.Logger, control *ControlRecord, snap *project.Snapshot, reg *registry.Registry) error {
	path := filepath.Join(control.WorkDir, ContainerFileName)
	writer, err := container.NewWriter(path)
	if err != nil {
		return err
	}
	defer writer.Close()

	consolidated := make(map[string]bool)
	for _, locale := range localeOrder {
		proj, ok := snap.Projects[locale]
		if !ok {
			continue
		}
		records := recordsByShortName(reg, locale)
		for _, layer := range proj.Layers() {
			short, ok := reg.ShortName(layer.Name, locale)
			if !ok {
				continue
			}
			if consolidated[short] {
				if record := records[short]; record != nil {
					record.ContainerPath = path
				}
				continue
			}
			if !layer.Vector() {
				logger.Warn("skipping non-vector layer",
					logging.String("layer", layer.Name),
					logging.String("locale", string(locale)))
				continue
			}
			if !layer.Spatial() {
				logger.Warn("skipping non-spatial layer",
					logging.String("layer", layer.Name),
					logging.String("locale", string(locale)))
				continue
			}
			if !container.IsGeoPackageSource(layer.DataSource) {
				logger.Warn("skipping layer without a GeoPackage source",
					logging.String("layer", layer.Name),
					logging.String("locale", string(locale)),
					logging.String("provider", layer.Provider))
				continue
			}

			srcPath, srcTable := container.SplitOGRSource(layer.DataSource)
			if srcTable == "" {
				srcTable = layer.Name
			}
			if err := writer.AddLayer(short, layer.Geometry, srcPath, srcTable); err != nil {
				if writer.LayerCount() == 0 {
					return fmt.Errorf("%w: first layer %q: %v", container.ErrContainerCreation, layer.Name, err)
				}
				logger.Warn("skipping layer after copy failure",
					logging.String("layer", layer.Name),
					logging.String("locale", string(locale)),
					logging.Error(err))
				continue
			}
			consolidated[short] = true
			if record := records[short]; record != nil {
				record.ContainerPath = path
			}
		}
	}

	if writer.LayerCount() == 0 {
		return fmt.Errorf("%w: the project has no publishable GeoPackage vector layers", container.ErrContainerCreation)
	}
	control.ContainerPath = path
	return nil
}

// RewriteSources repoints every consolidated layer of each locale copy at
// the container and serializes the copies back to disk. Only layers that
// actually made it into the container are repointed; a layer BuildContainer
// skipped keeps its original source rather than pointing at data the archive
// does not carry. The container is addressed by bare file name so the
// rewritten projects stay valid wherever the archive is unpacked.
func RewriteSources(control *ControlRecord, snap *project.Snapshot, reg *registry.Registry) error {
	for _, locale := range localeOrder {
		proj, ok := snap.Projects[locale]
		if !ok {
			continue
		}
		records := recordsByShortName(reg, locale)
		for _, layer := range proj.Layers() {
			short, ok := reg.ShortName(layer.Name, locale)
			if !ok {
				continue
			}
			record := records[short]
			if record == nil || record.ContainerPath == "" {
				continue
			}
			source := container.EncodeOGRSource("./"+ContainerFileName, short)
			if err := proj.SetDataSource(layer.Name, "ogr", source); err != nil {
				return fmt.Errorf("rewrite %s layer %q: %w", locale, layer.Name, err)
			}
		}
		if err := proj.Write(snap.Copies[locale]); err != nil {
			return fmt.Errorf("serialize %s project copy: %w", locale, err)
		}
	}
	return nil
}

func recordsByShortName(reg *registry.Registry, locale project.Locale) map[string]*registry.Record {
	out := make(map[string]*registry.Record)
	for _, record := range reg.Layers(locale) {
		out[record.ShortName] = record
	}
	return out
}

package archive

import (
	"ddrpub/internal/project"
)

// Fixed file names inside the working directory. The remote service expects
// these exact entry names in the uploaded archive.
const (
	ManifestFileName  = "ControlFile.json"
	ContainerFileName = "qgis_vector_layers.gpkg"
	ArchiveFileName   = "ddr_publish.zip"
)

// ControlRecord carries one publication job's parameters and the state the
// pipeline stages derive along the way. A record lives for exactly one run;
// its working directory is never reused.
type ControlRecord struct {
	Department          string
	DownloadInfoID      string
	Email               string
	MetadataUUID        string
	QGISServerID        string
	DownloadPackageName string
	CoreSubjectTerm     string
	CszCollectionTheme  string
	ServiceSchemaName   string

	LocaleInputs []project.LocaleInput
	KeepFiles    bool

	// Derived per run.
	WorkDir       string
	ContainerPath string
	ManifestPath  string
	ArchivePath   string
}

package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ddrpub/internal/project"
)

type genericParameters struct {
	Department          string `json:"department"`
	DownloadInfoID      string `json:"download_info_id"`
	Email               string `json:"email"`
	MetadataUUID        string `json:"metadata_uuid"`
	QGISServerID        string `json:"qgis_server_id"`
	DownloadPackageName string `json:"download_package_name"`
	CoreSubjectTerm     string `json:"core_subject_term"`
	CzsCollectionTheme  string `json:"czs_collection_theme"`
}

type serviceParameter struct {
	InProjectFilename string `json:"in_project_filename"`
	Language          string `json:"language"`
	ServiceSchemaName string `json:"service_schema_name"`
}

type manifest struct {
	GenericParameters genericParameters  `json:"generic_parameters"`
	ServiceParameters []serviceParameter `json:"service_parameters"`
}

// localeOrder keeps service_parameters entries deterministic across runs.
var localeOrder = []project.Locale{project.LocaleEnglish, project.LocaleFrench}

// WriteManifest renders the JSON control document into the working
// directory. One service_parameters entry is emitted per locale copy, in
// English-then-French order.
func WriteManifest(control *ControlRecord, snap *project.Snapshot) error {
	doc := manifest{
		GenericParameters: genericParameters{
			Department:          control.Department,
			DownloadInfoID:      control.DownloadInfoID,
			Email:               control.Email,
			MetadataUUID:        control.MetadataUUID,
			QGISServerID:        control.QGISServerID,
			DownloadPackageName: control.DownloadPackageName,
			CoreSubjectTerm:     control.CoreSubjectTerm,
			CzsCollectionTheme:  control.CszCollectionTheme,
		},
	}

	for _, locale := range localeOrder {
		copyPath, ok := snap.Copies[locale]
		if !ok {
			continue
		}
		doc.ServiceParameters = append(doc.ServiceParameters, serviceParameter{
			InProjectFilename: filepath.Base(copyPath),
			Language:          string(locale),
			ServiceSchemaName: control.ServiceSchemaName,
		})
	}
	if len(doc.ServiceParameters) == 0 {
		return fmt.Errorf("no locale project copies to describe in the control file")
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode control file: %w", err)
	}

	control.ManifestPath = filepath.Join(control.WorkDir, ManifestFileName)
	if err := os.WriteFile(control.ManifestPath, data, 0o644); err != nil {
		return fmt.Errorf("write control file: %w", err)
	}
	return nil
}

package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ddrpub/internal/project"
)

// Zip packs the control file, the consolidated container, and every locale
// project copy into the upload archive. Entries carry bare file names so the
// archive unpacks flat on the remote side.
func Zip(control *ControlRecord, snap *project.Snapshot) error {
	control.ArchivePath = filepath.Join(control.WorkDir, ArchiveFileName)

	members := []string{control.ManifestPath, control.ContainerPath}
	for _, locale := range localeOrder {
		if copyPath, ok := snap.Copies[locale]; ok {
			members = append(members, copyPath)
		}
	}

	out, err := os.Create(control.ArchivePath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	writer := zip.NewWriter(out)

	for _, member := range members {
		if member == "" {
			continue
		}
		if err := addMember(writer, member); err != nil {
			writer.Close()
			out.Close()
			return err
		}
	}

	if err := writer.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func addMember(writer *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read archive member: %w", err)
	}
	defer src.Close()

	entry, err := writer.Create(filepath.Base(path))
	if err != nil {
		return fmt.Errorf("add archive entry %s: %w", filepath.Base(path), err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("write archive entry %s: %w", filepath.Base(path), err)
	}
	return nil
}

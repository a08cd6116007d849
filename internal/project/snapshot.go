package project

import (
	"fmt"
	"os"
	"path/filepath"

	"ddrpub/internal/fileutil"
)

// LocaleInput names one locale variant of the project to snapshot.
type LocaleInput struct {
	Locale Locale
	Path   string
}

// Snapshot is the isolated on-disk working copy of a publication run.
type Snapshot struct {
	WorkDir  string
	Copies   map[Locale]string
	Projects map[Locale]*Project
}

// Extract validates the original project, creates a fresh working directory,
// copies each locale input into it, and loads the copies. The context is left
// pointing at the last-loaded locale; restoring the original afterwards is
// the caller's responsibility.
//
// Validation runs before the working directory is created so a refused run
// leaves no temp directory behind.
func Extract(projCtx *Context, original *Project, inputs []LocaleInput, workBase string) (*Snapshot, error) {
	if original == nil || original.FileName() == "" {
		return nil, ErrMissingProject
	}
	if ext := filepath.Ext(original.FileName()); ext != ".qgs" {
		return nil, fmt.Errorf("%w, not %q", ErrInvalidProjectFormat, ext)
	}
	if original.Dirty() {
		return nil, ErrDirtyProject
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no locale inputs configured", ErrMissingProject)
	}
	for _, input := range inputs {
		if input.Path == "" {
			return nil, fmt.Errorf("%w: %s project path is not set", ErrMissingProject, input.Locale)
		}
		if ext := filepath.Ext(input.Path); ext != ".qgs" {
			return nil, fmt.Errorf("%w, not %q (%s)", ErrInvalidProjectFormat, ext, input.Locale)
		}
	}

	workDir, err := os.MkdirTemp(workBase, "qgis_")
	if err != nil {
		return nil, fmt.Errorf("create working directory: %w", err)
	}

	snap := &Snapshot{
		WorkDir:  workDir,
		Copies:   make(map[Locale]string, len(inputs)),
		Projects: make(map[Locale]*Project, len(inputs)),
	}

	for _, input := range inputs {
		dst := filepath.Join(workDir, filepath.Base(input.Path))
		if err := fileutil.CopyFile(input.Path, dst); err != nil {
			return snap, fmt.Errorf("copy %s project into working directory: %w", input.Locale, err)
		}
		proj, err := projCtx.Read(dst)
		if err != nil {
			return snap, fmt.Errorf("load %s project: %w", input.Locale, err)
		}
		snap.Copies[input.Locale] = dst
		snap.Projects[input.Locale] = proj
	}

	return snap, nil
}

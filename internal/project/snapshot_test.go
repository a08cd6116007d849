package project_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddrpub/internal/project"
	"ddrpub/internal/testsupport"
)

func localePair(t *testing.T, dir string) (string, string) {
	t.Helper()
	layers := []testsupport.LayerSpec{
		{Name: "Wells", ShortName: "wells", Geometry: "Point", DataSource: "/data/wells.gpkg|layername=wells"},
	}
	en := testsupport.WriteProject(t, dir, "wells_en.qgs", layers)
	fr := testsupport.WriteProject(t, dir, "wells_fr.qgs", layers)
	return en, fr
}

func TestExtractCopiesEachLocale(t *testing.T) {
	dir := t.TempDir()
	workBase := t.TempDir()
	en, fr := localePair(t, dir)

	ctx := project.NewContext()
	original, err := ctx.Read(en)
	if err != nil {
		t.Fatal(err)
	}

	snap, err := project.Extract(ctx, original, []project.LocaleInput{
		{Locale: project.LocaleEnglish, Path: en},
		{Locale: project.LocaleFrench, Path: fr},
	}, workBase)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(filepath.Base(snap.WorkDir), "qgis_") {
		t.Fatalf("working directory = %q", snap.WorkDir)
	}
	sources := map[project.Locale]string{
		project.LocaleEnglish: en,
		project.LocaleFrench:  fr,
	}
	for locale, copyPath := range snap.Copies {
		if filepath.Dir(copyPath) != snap.WorkDir {
			t.Fatalf("%s copy outside the working directory: %q", locale, copyPath)
		}
		want, err := os.ReadFile(sources[locale])
		if err != nil {
			t.Fatal(err)
		}
		got, err := os.ReadFile(copyPath)
		if err != nil {
			t.Fatalf("%s copy missing: %v", locale, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("%s copy differs from its source", locale)
		}
		if snap.Projects[locale].FileName() != copyPath {
			t.Fatalf("%s project not re-pointed at its copy", locale)
		}
	}
	if len(snap.Copies) != 2 {
		t.Fatalf("copy count = %d", len(snap.Copies))
	}
}

func TestExtractRefusesDirtyProjectBeforeCreatingDirectories(t *testing.T) {
	dir := t.TempDir()
	workBase := t.TempDir()
	en, fr := localePair(t, dir)

	ctx := project.NewContext()
	original, err := ctx.Read(en)
	if err != nil {
		t.Fatal(err)
	}
	original.MarkDirty()

	_, err = project.Extract(ctx, original, []project.LocaleInput{
		{Locale: project.LocaleEnglish, Path: en},
		{Locale: project.LocaleFrench, Path: fr},
	}, workBase)
	if !errors.Is(err, project.ErrDirtyProject) {
		t.Fatalf("err = %v", err)
	}

	entries, err := os.ReadDir(workBase)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("a refused extraction created %d entries", len(entries))
	}
}

func TestExtractValidatesInputs(t *testing.T) {
	dir := t.TempDir()
	en, _ := localePair(t, dir)
	ctx := project.NewContext()
	original, err := ctx.Read(en)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		inputs []project.LocaleInput
		want   error
	}{
		{"no inputs", nil, project.ErrMissingProject},
		{"empty path", []project.LocaleInput{{Locale: project.LocaleFrench}}, project.ErrMissingProject},
		{"wrong extension", []project.LocaleInput{{Locale: project.LocaleFrench, Path: "/tmp/wells_fr.qgz"}}, project.ErrInvalidProjectFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := project.Extract(ctx, original, tc.inputs, t.TempDir())
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

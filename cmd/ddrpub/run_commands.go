package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ddrpub/internal/archive"
	"ddrpub/internal/ddr"
	"ddrpub/internal/pipeline"
	"ddrpub/internal/project"
	"ddrpub/internal/registry"
)

var runOperations = map[string]string{
	"validate":  ddr.OpValidate,
	"publish":   ddr.OpPublish,
	"unpublish": ddr.OpUnpublish,
}

type runFlags struct {
	enProject      string
	frProject      string
	department     string
	metadataUUID   string
	downloadInfoID string
	email          string
	serverID       string
	schema         string
	theme          string
	packageName    string
	subjectTerm    string
	layers         []string
	keepFiles      bool
}

// newRunCommand builds one of the three pipeline commands. They share every
// flag; only the remote operation differs.
func newRunCommand(ctx *commandContext, name, short string) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, runOperations[name], &flags)
		},
	}

	cmd.Flags().StringVar(&flags.enProject, "en-project", "", "English .qgs project file (defaults to the configured path)")
	cmd.Flags().StringVar(&flags.frProject, "fr-project", "", "French .qgs project file (defaults to the configured path)")
	cmd.Flags().StringVar(&flags.department, "department", "", "Publishing department")
	cmd.Flags().StringVar(&flags.metadataUUID, "metadata-uuid", "", "Metadata record UUID (generated when omitted)")
	cmd.Flags().StringVar(&flags.downloadInfoID, "download-info-id", "", "Download service identifier")
	cmd.Flags().StringVar(&flags.email, "email", "", "Publisher contact email (defaults to the DDR account email)")
	cmd.Flags().StringVar(&flags.serverID, "server-id", "", "Target QGIS server identifier")
	cmd.Flags().StringVar(&flags.schema, "schema", "", "Service schema name")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "Clip-Zip-Ship collection theme (UUID or title in either language)")
	cmd.Flags().StringVar(&flags.packageName, "package-name", "", "Download package name")
	cmd.Flags().StringVar(&flags.subjectTerm, "subject-term", "", "Core subject term")
	cmd.Flags().StringSliceVar(&flags.layers, "layers", nil, "Publish only the named layers (repeatable or comma separated)")
	cmd.Flags().BoolVar(&flags.keepFiles, "keep-files", false, "Keep the working directory after the run")

	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, operation string, flags *runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	enPath := firstNonEmpty(flags.enProject, cfg.Project.EnglishPath)
	frPath := firstNonEmpty(flags.frProject, cfg.Project.FrenchPath)
	if enPath == "" {
		return fmt.Errorf("no English project file: set project.english_path or pass --en-project")
	}

	projects := project.NewContext()
	if _, err := projects.Read(enPath); err != nil {
		return err
	}

	inputs := []project.LocaleInput{{Locale: project.LocaleEnglish, Path: enPath}}
	if frPath != "" {
		inputs = append(inputs, project.LocaleInput{Locale: project.LocaleFrench, Path: frPath})
	}

	control := &archive.ControlRecord{
		Department:          firstNonEmpty(flags.department, cfg.Publish.Department),
		DownloadInfoID:      firstNonEmpty(flags.downloadInfoID, cfg.Publish.DownloadInfoID),
		Email:               firstNonEmpty(flags.email, cfg.Publish.Email),
		MetadataUUID:        flags.metadataUUID,
		QGISServerID:        firstNonEmpty(flags.serverID, cfg.Publish.QGISServerID),
		DownloadPackageName: firstNonEmpty(flags.packageName, cfg.Publish.DownloadPackageName),
		CoreSubjectTerm:     firstNonEmpty(flags.subjectTerm, cfg.Publish.CoreSubjectTerm),
		ServiceSchemaName:   firstNonEmpty(flags.schema, cfg.Publish.ServiceSchemaName),
		LocaleInputs:        inputs,
		KeepFiles:           flags.keepFiles || cfg.Cleanup.KeepFiles,
	}

	reg := registry.New()
	runner, err := ctx.runner(projects, reg)
	if err != nil {
		return err
	}

	// Theme resolution and the email fallback both read the remote
	// catalogs; skip the round trips when neither is needed.
	if flags.theme != "" || control.Email == "" {
		if err := runner.FetchCatalogs(cmd.Context()); err != nil {
			return err
		}
	}

	outcome := runner.Run(cmd.Context(), &pipeline.Request{
		Operation: operation,
		Theme:     flags.theme,
		Layers:    flags.layers,
		Control:   control,
	})

	out := cmd.OutOrStdout()
	if outcome.Result != nil {
		for _, line := range outcome.Result.FeedbackLines() {
			fmt.Fprintln(out, line)
		}
	}
	if outcome.WorkDir != "" {
		fmt.Fprintf(out, "Working directory kept at %s\n", outcome.WorkDir)
	}
	if outcome.Err != nil {
		return fmt.Errorf("%s failed (%s): %w", operation, outcome.Kind, outcome.Err)
	}
	fmt.Fprintf(out, "%s completed successfully\n", operation)
	return nil
}

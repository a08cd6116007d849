package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"ddrpub/internal/archive"
	"ddrpub/internal/config"
	"ddrpub/internal/ddr"
	"ddrpub/internal/fileutil"
	"ddrpub/internal/logging"
	"ddrpub/internal/project"
	"ddrpub/internal/registry"
	"ddrpub/internal/services"
	"ddrpub/internal/textutil"
)

// Stage names in execution order. Restore and cleanup run after the main
// sequence regardless of where it stopped.
const (
	StageSnapshot  = "snapshot"
	StagePrune     = "prune_layers"
	StageRegister  = "register_layers"
	StageContainer = "build_container"
	StageRewrite   = "rewrite_sources"
	StageManifest  = "write_manifest"
	StageArchive   = "zip"
	StageRemote    = "remote"
	StageRestore   = "restore_original"
	StageCleanup   = "cleanup"
)

// Status is the boundary verdict of one publication run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Request describes one publication run.
type Request struct {
	// Operation is one of ddr.OpValidate, ddr.OpPublish, ddr.OpUnpublish.
	Operation string
	// Theme selects the CSZ collection theme by UUID or by either locale
	// title. Empty means no theme.
	Theme string
	// Layers restricts the run to the named layers; the working copies are
	// pruned to this set before registration. Empty publishes every layer.
	Layers  []string
	Control *archive.ControlRecord
}

// Outcome is what a run reports back. Run never panics and never returns a
// raw error; every failure is folded into the outcome after restore and
// cleanup have had their chance.
type Outcome struct {
	Status Status
	Kind   services.Kind
	Err    error
	// Result carries the remote operation's response when the run got that
	// far, including feedback lines for display.
	Result *ddr.Result
	// WorkDir points at the retained working directory when the run is
	// configured to keep files; empty otherwise.
	WorkDir string
}

var localeOrder = []project.Locale{project.LocaleEnglish, project.LocaleFrench}

// Runner executes publication runs against one project context and one
// authenticated client session.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	client   *ddr.Client
	registry *registry.Registry
	projects *project.Context
}

func NewRunner(cfg *config.Config, logger *slog.Logger, client *ddr.Client, reg *registry.Registry, projects *project.Context) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		registry: reg,
		projects: projects,
	}
}

type step struct {
	name string
	fn   func(context.Context) error
}

// Run drives the publication sequence for one request. The first failing
// stage stops the main sequence; restore and cleanup always execute
// afterwards so the user's project and disk are left as they were found,
// minus the working directory.
func (r *Runner) Run(ctx context.Context, req *Request) *Outcome {
	control := req.Control
	outcome := &Outcome{Status: StatusCompleted}
	original := r.projects.Current()

	ctx = services.WithOperation(ctx, req.Operation)
	ctx = services.WithRequestID(ctx, uuid.NewString())

	if control.MetadataUUID == "" {
		control.MetadataUUID = uuid.NewString()
	}
	if control.Email == "" {
		control.Email = r.registry.Email()
	}
	control.DownloadPackageName = textutil.SanitizeFileName(control.DownloadPackageName)

	var snap *project.Snapshot

	steps := []step{
		{StageSnapshot, func(ctx context.Context) error {
			theme, err := r.registry.ResolveTheme(req.Theme)
			if err != nil {
				return services.Wrap(services.ErrUserInput, StageSnapshot, req.Operation, "", err)
			}
			control.CszCollectionTheme = theme

			s, err := project.Extract(r.projects, original, control.LocaleInputs, r.cfg.Paths.WorkDir)
			if s != nil {
				// A partially extracted snapshot still owns a temp
				// directory; record it so cleanup can take it down.
				control.WorkDir = s.WorkDir
			}
			if err != nil {
				return services.Wrap(services.ErrUserInput, StageSnapshot, req.Operation, "", err)
			}
			snap = s
			return nil
		}},
		{StagePrune, func(ctx context.Context) error {
			return r.pruneLayers(snap, req.Layers, req.Operation)
		}},
		{StageRegister, func(ctx context.Context) error {
			return r.registerLayers(snap, req.Operation)
		}},
		{StageContainer, func(ctx context.Context) error {
			if err := archive.BuildContainer(logging.WithContext(ctx, r.logger), control, snap, r.registry); err != nil {
				return services.Wrap(services.ErrUserInput, StageContainer, req.Operation, "", err)
			}
			return nil
		}},
		{StageRewrite, func(ctx context.Context) error {
			return archive.RewriteSources(control, snap, r.registry)
		}},
		{StageManifest, func(ctx context.Context) error {
			return archive.WriteManifest(control, snap)
		}},
		{StageArchive, func(ctx context.Context) error {
			return archive.Zip(control, snap)
		}},
		{StageRemote, func(ctx context.Context) error {
			return r.remote(ctx, req, outcome)
		}},
	}

	for _, s := range steps {
		if err := r.runStage(ctx, s.name, s.fn); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
			outcome.Kind = services.FailureKind(err)
			break
		}
	}

	r.restoreOriginal(ctx, original)
	r.cleanup(ctx, control, outcome)

	return outcome
}

// pruneLayers drops every layer outside the selection from each locale copy
// and rewrites the copies that changed. An empty selection keeps everything.
// A selected name that matches no layer in any locale refuses the run.
func (r *Runner) pruneLayers(snap *project.Snapshot, selection []string, operation string) error {
	if len(selection) == 0 {
		return nil
	}

	keep := make(map[string]bool, len(selection))
	for _, name := range selection {
		if name = strings.TrimSpace(name); name != "" {
			keep[name] = false
		}
	}

	for _, locale := range localeOrder {
		proj, ok := snap.Projects[locale]
		if !ok {
			continue
		}
		var drop []string
		for _, layer := range proj.Layers() {
			if _, selected := keep[layer.Name]; selected {
				keep[layer.Name] = true
				continue
			}
			drop = append(drop, layer.Name)
		}
		for _, name := range drop {
			proj.RemoveLayer(name)
		}
		if proj.Dirty() {
			if err := proj.Write(snap.Copies[locale]); err != nil {
				return services.Wrap(services.ErrUserInput, StagePrune, operation, string(locale), err)
			}
		}
	}

	for name, matched := range keep {
		if !matched {
			return services.Wrap(services.ErrUserInput, StagePrune, operation, "",
				fmt.Errorf("selected layer %q is not in any project", name))
		}
	}
	return nil
}

// registerLayers records every short-named layer of each locale copy. A
// vector spatial layer without a short name refuses the run: it would have
// no identity inside the container.
func (r *Runner) registerLayers(snap *project.Snapshot, operation string) error {
	for _, locale := range localeOrder {
		proj, ok := snap.Projects[locale]
		if !ok {
			continue
		}
		for _, layer := range proj.Layers() {
			if layer.ShortName == "" {
				if layer.Vector() && layer.Spatial() {
					return services.Wrap(services.ErrUserInput, StageRegister, operation,
						fmt.Sprintf("%s layer %q", locale, layer.Name), registry.ErrMissingShortName)
				}
				continue
			}
			if _, err := r.registry.AddLayer(layer, locale); err != nil {
				return services.Wrap(services.ErrUserInput, StageRegister, operation, string(locale), err)
			}
		}
	}
	return nil
}

func (r *Runner) remote(ctx context.Context, req *Request, outcome *Outcome) error {
	var (
		result *ddr.Result
		err    error
	)
	switch req.Operation {
	case ddr.OpValidate:
		result, err = r.client.Validate(ctx, req.Control.ArchivePath)
	case ddr.OpPublish:
		result, err = r.client.Publish(ctx, req.Control.ArchivePath)
	case ddr.OpUnpublish:
		result, err = r.client.Unpublish(ctx, req.Control.ArchivePath)
	default:
		return fmt.Errorf("unknown remote operation %q", req.Operation)
	}
	outcome.Result = result
	if err != nil {
		return err
	}

	log := logging.WithContext(ctx, r.logger)
	for _, line := range result.FeedbackLines() {
		log.Info(line)
	}
	return nil
}

// restoreOriginal puts the project context back on the pre-run project.
// Reloading from disk sheds any state the snapshot loads left behind; when
// the reload fails the in-memory original is reinstated instead.
func (r *Runner) restoreOriginal(ctx context.Context, original *project.Project) {
	_ = r.runStage(ctx, StageRestore, func(ctx context.Context) error {
		if original == nil {
			return nil
		}
		if _, err := r.projects.Read(original.FileName()); err != nil {
			logging.WithContext(ctx, r.logger).Warn("reload of the original project failed, reinstating in-memory copy",
				logging.Error(err))
			r.projects.Set(original)
		}
		return nil
	})
}

// cleanup removes the run's working directory. Exhausting the retry budget
// downgrades to a warning: a leftover temp directory must not mask the run's
// real verdict.
func (r *Runner) cleanup(ctx context.Context, control *archive.ControlRecord, outcome *Outcome) {
	_ = r.runStage(ctx, StageCleanup, func(ctx context.Context) error {
		if control.WorkDir == "" {
			return nil
		}
		log := logging.WithContext(ctx, r.logger)
		if control.KeepFiles {
			outcome.WorkDir = control.WorkDir
			log.Info("keeping working directory", logging.String("work_dir", control.WorkDir))
			return nil
		}
		if err := fileutil.RemoveAllRetry(control.WorkDir, r.cfg.Cleanup.MaxRetries); err != nil {
			log.Warn("working directory could not be removed",
				logging.String("work_dir", control.WorkDir),
				logging.Error(err))
		}
		return nil
	})
}

func (r *Runner) runStage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := logging.WithStage(ctx, name)
	log := logging.WithContext(stageCtx, r.logger)

	log.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	if err := fn(stageCtx); err != nil {
		log.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("failure_kind", string(services.FailureKind(err))),
			logging.Error(err))
		return err
	}
	log.Info("stage completed", logging.String(logging.FieldEventType, "stage_complete"))
	return nil
}

// Login authenticates the client and primes the registry with the remote
// catalogs in one shot, matching how an interactive session begins.
func (r *Runner) Login(ctx context.Context, username, password string) error {
	if _, err := r.client.Login(ctx, username, password); err != nil {
		return err
	}
	return r.FetchCatalogs(ctx)
}

// FetchCatalogs loads the themes, departments, and publisher email catalogs
// into the registry using the current session token.
func (r *Runner) FetchCatalogs(ctx context.Context) error {
	themes, err := r.client.FetchThemes(ctx)
	if err != nil {
		return err
	}
	if err := r.registry.AddThemes(themes); err != nil {
		return err
	}

	departments, err := r.client.FetchDepartments(ctx)
	if err != nil {
		return err
	}
	if err := r.registry.AddDepartments(departments); err != nil {
		return err
	}

	email, err := r.client.FetchEmail(ctx)
	if err != nil {
		return err
	}
	if err := r.registry.AddEmail(email); err != nil {
		return err
	}
	return nil
}

// Package pipeline runs one generation: load the document, clear the output
// root, write a request module per path group and a model class per
// definition.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"github.com/mark3labs/swagger2request/internal/emitter/jsemitter"
	"github.com/mark3labs/swagger2request/internal/format"
	"github.com/mark3labs/swagger2request/internal/output"
	"github.com/mark3labs/swagger2request/internal/paths"
	"github.com/mark3labs/swagger2request/internal/spec"
)

// ModelsDir is the directory, below the API directory, that holds classes.
const ModelsDir = "models"

// Config is the explicit input of a run.
type Config struct {
	// SourceURL is an http(s) URL or a local path of the document.
	SourceURL string
	// OutputRoot is wiped and regenerated.
	OutputRoot string
	// RequestModule is the import reference of the HTTP helper.
	RequestModule string
}

// LoadFunc loads and normalizes the document at source.
type LoadFunc func(ctx context.Context, source string) (*spec.Document, error)

// Settings holds the collaborators and switches of a run.
type Settings struct {
	Logger           *slog.Logger
	Formatter        format.Formatter
	FS               output.FS
	Load             LoadFunc
	DryRun           bool
	BestEffort       bool
	LegacyModelsPath bool
	ExcludePrefixes  []string
}

// Option mutates Settings.
type Option func(*Settings)

func WithLogger(l *slog.Logger) Option        { return func(s *Settings) { s.Logger = l } }
func WithFormatter(f format.Formatter) Option { return func(s *Settings) { s.Formatter = f } }
func WithFS(fs output.FS) Option              { return func(s *Settings) { s.FS = fs } }
func WithLoader(fn LoadFunc) Option           { return func(s *Settings) { s.Load = fn } }
func WithDryRun(v bool) Option                { return func(s *Settings) { s.DryRun = v } }

// WithBestEffort downgrades cleanup, mkdir and module write failures to
// warnings so the run continues with the next file.
func WithBestEffort(v bool) Option { return func(s *Settings) { s.BestEffort = v } }

// WithLegacyModelsPath places classes in "<root><basePath>models" (no
// separator before "models"), the layout older trees were generated with.
func WithLegacyModelsPath(v bool) Option { return func(s *Settings) { s.LegacyModelsPath = v } }

// WithExcludePrefixes replaces the default definition exclusion prefixes.
func WithExcludePrefixes(p []string) Option { return func(s *Settings) { s.ExcludePrefixes = p } }

// DefaultSettings loads documents with spec.Load and writes to disk.
func DefaultSettings() Settings {
	return Settings{
		Formatter: format.JS{},
		FS:        output.Disk{},
	}
}

// FileKind tells modules and classes apart in a Result.
type FileKind string

const (
	KindModule FileKind = "module"
	KindClass  FileKind = "class"
)

// GeneratedFile is one rendered output file.
type GeneratedFile struct {
	Path    string
	Content []byte
}

// PlannedFile describes a file the run wrote, or would write on a dry run.
type PlannedFile struct {
	Kind FileKind
	// Name is the group key or the definition name.
	Name      string
	Path      string
	RelPath   string
	Size      int
	Formatted bool
}

// Skipped is a group or definition that produced no file.
type Skipped struct {
	Kind   FileKind
	Name   string
	Reason string
}

// Result summarizes a run.
type Result struct {
	Root      string
	APIDir    string
	ModelsDir string
	Planned   []PlannedFile
	Skipped   []Skipped
	// Excluded lists definitions dropped by the exclusion prefixes.
	Excluded []string
	// Warnings counts non-fatal problems that were logged.
	Warnings int
}

// Run generates the output tree described by cfg. Steps run strictly in
// sequence; ctx is checked between files.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	s := DefaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	if s.Logger == nil {
		s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.FS == nil {
		s.FS = output.Disk{}
	}
	if s.Load == nil {
		logger := s.Logger
		s.Load = func(ctx context.Context, source string) (*spec.Document, error) {
			return spec.Load(ctx, source, spec.WithLogger(logger))
		}
	}

	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	cfg.OutputRoot = strings.TrimSpace(cfg.OutputRoot)
	if cfg.SourceURL == "" {
		return nil, errors.New("pipeline: source is required")
	}
	if cfg.OutputRoot == "" {
		return nil, errors.New("pipeline: output root is required")
	}
	if cfg.RequestModule == "" {
		cfg.RequestModule = jsemitter.DefaultRequestModule
	}

	doc, err := s.Load(ctx, cfg.SourceURL)
	if err != nil {
		return nil, err
	}

	r := &runner{s: s, cfg: cfg, doc: doc, res: &Result{Root: cfg.OutputRoot}}
	r.res.APIDir = apiDir(cfg.OutputRoot, doc.BasePath)
	r.res.ModelsDir = modelsDir(cfg.OutputRoot, doc.BasePath, s.LegacyModelsPath)

	if err := r.clean(); err != nil {
		return r.res, err
	}
	if err := r.modules(ctx); err != nil {
		return r.res, err
	}
	if err := r.classes(ctx); err != nil {
		return r.res, err
	}
	s.Logger.Info("generation finished",
		"root", cfg.OutputRoot,
		"files", len(r.res.Planned),
		"skipped", len(r.res.Skipped),
		"excluded", len(r.res.Excluded),
		"warnings", r.res.Warnings,
	)
	return r.res, nil
}

type runner struct {
	s   Settings
	cfg Config
	doc *spec.Document
	res *Result
	// created remembers directories already made in this run.
	created map[string]bool
}

func (r *runner) clean() error {
	if r.s.DryRun {
		return nil
	}
	if err := output.Guard(r.cfg.OutputRoot); err != nil {
		return err
	}
	if err := r.s.FS.RemoveAll(r.cfg.OutputRoot); err != nil {
		return r.ioFailure(err)
	}
	return nil
}

func (r *runner) modules(ctx context.Context) error {
	for _, g := range paths.GroupByPrefix(r.doc.Templates()) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if paths.IsPlaceholderKey(g.Key) {
			r.warn("group key is a path placeholder", "group", g.Key, "templates", len(g.Templates))
		}

		var ops []spec.Operation
		for _, t := range g.Templates {
			if item := r.doc.Path(t); item != nil {
				ops = append(ops, item.Operations...)
			}
		}
		mod, err := jsemitter.EmitModule(g.Key, ops, jsemitter.ModuleOptions{
			RequestModule: r.cfg.RequestModule,
			Formatter:     r.s.Formatter,
		})
		if err != nil {
			if !r.s.BestEffort {
				return err
			}
			r.skip(KindModule, g.Key, err)
			continue
		}
		for _, rn := range mod.Renames {
			r.warn("identifier collision", "group", g.Key, "template", rn.Template, "method", rn.Method, "name", rn.From, "renamed", rn.To)
		}
		if mod.FormatErr != nil {
			r.warn("module left unformatted", "group", g.Key, "error", mod.FormatErr)
		}

		file := GeneratedFile{Path: filepath.Join(r.res.APIDir, mod.FileName), Content: []byte(mod.Source)}
		if err := r.write(file); err != nil {
			if !r.s.BestEffort {
				return fmt.Errorf("pipeline: %w", err)
			}
			r.skip(KindModule, g.Key, err)
			continue
		}
		r.plan(KindModule, g.Key, file, mod.Formatted)
		r.s.Logger.Debug("group written", "group", g.Key, "path", file.Path, "methods", len(mod.Methods))
	}
	return nil
}

func (r *runner) classes(ctx context.Context) error {
	for _, def := range r.doc.Definitions {
		if err := ctx.Err(); err != nil {
			return err
		}
		class, err := jsemitter.EmitClass(def, jsemitter.ClassOptions{
			ExcludePrefixes: r.s.ExcludePrefixes,
			Formatter:       r.s.Formatter,
		})
		switch {
		case errors.Is(err, jsemitter.ErrExcluded):
			r.res.Excluded = append(r.res.Excluded, def.Name)
			r.s.Logger.Debug("definition excluded", "definition", def.Name)
			continue
		case err != nil:
			r.skip(KindClass, def.Name, err)
			continue
		}

		if class.FormatErr != nil {
			r.warn("class left unformatted", "definition", def.Name, "error", class.FormatErr)
		}

		file := GeneratedFile{Path: filepath.Join(r.res.ModelsDir, class.FileName), Content: []byte(class.Source)}
		if err := r.write(file); err != nil {
			r.skip(KindClass, def.Name, err)
			continue
		}
		r.plan(KindClass, def.Name, file, class.Formatted)
	}
	return nil
}

// write creates the parent directory once per run and writes the file.
// Dry runs touch nothing.
func (r *runner) write(f GeneratedFile) error {
	if r.s.DryRun {
		return nil
	}
	dir := filepath.Dir(f.Path)
	if !r.created[dir] {
		if err := r.s.FS.MkdirAll(dir); err != nil {
			return err
		}
		if r.created == nil {
			r.created = map[string]bool{}
		}
		r.created[dir] = true
	}
	return r.s.FS.WriteFile(f.Path, f.Content)
}

// ioFailure applies the cleanup error policy: fatal unless best effort is
// on, in which case it is logged and nil is returned.
func (r *runner) ioFailure(err error) error {
	if !r.s.BestEffort {
		return fmt.Errorf("pipeline: %w", err)
	}
	r.warn("filesystem operation failed", "error", err)
	return nil
}

func (r *runner) warn(msg string, args ...any) {
	r.res.Warnings++
	r.s.Logger.Warn(msg, args...)
}

func (r *runner) skip(kind FileKind, name string, err error) {
	r.res.Skipped = append(r.res.Skipped, Skipped{Kind: kind, Name: name, Reason: err.Error()})
	r.warn("skipped", "kind", kind, "name", name, "error", err)
}

func (r *runner) plan(kind FileKind, name string, f GeneratedFile, formatted bool) {
	rel, err := filepath.Rel(r.cfg.OutputRoot, f.Path)
	if err != nil {
		rel = f.Path
	}
	r.res.Planned = append(r.res.Planned, PlannedFile{
		Kind:      kind,
		Name:      name,
		Path:      f.Path,
		RelPath:   filepath.ToSlash(rel),
		Size:      len(f.Content),
		Formatted: formatted,
	})
}

// cleanBasePath turns a document basePath into a relative slash path. "/"
// and "" give "". Dot segments cannot climb above the root.
func cleanBasePath(basePath string) string {
	return strings.Trim(path.Clean("/"+strings.TrimSpace(basePath)), "/")
}

func apiDir(root, basePath string) string {
	return filepath.Join(root, filepath.FromSlash(cleanBasePath(basePath)))
}

func modelsDir(root, basePath string, legacy bool) string {
	if legacy {
		// Plain concatenation: "out" + "/v2" + "models" gives "out/v2models".
		return filepath.Clean(filepath.FromSlash(strings.TrimRight(root, "/") + "/" + cleanBasePath(basePath) + ModelsDir))
	}
	return filepath.Join(apiDir(root, basePath), ModelsDir)
}

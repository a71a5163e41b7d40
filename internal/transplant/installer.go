package transplant

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
)

// Action is what happened to one file during an install.
type Action string

const (
	ActionWritten Action = "written"
	ActionSkipped Action = "skipped"
	ActionFailed  Action = "failed"
	ActionPlanned Action = "planned"
)

// FileResult records the outcome for one file.
type FileResult struct {
	Component string
	Source    string
	Dest      string
	Action    Action
	Err       error
}

// Report summarizes an install.
type Report struct {
	// Components lists installed components and hooks in install order.
	Components []string

	// Files has one entry per file considered.
	Files []FileResult

	// Dependencies are the npm packages the installed items need, sorted.
	Dependencies []string
}

func (r *Report) filter(a Action) []FileResult {
	var out []FileResult
	for _, f := range r.Files {
		if f.Action == a {
			out = append(out, f)
		}
	}
	return out
}

// Written returns the files that were written.
func (r *Report) Written() []FileResult { return r.filter(ActionWritten) }

// Skipped returns the files left alone because they already existed.
func (r *Report) Skipped() []FileResult { return r.filter(ActionSkipped) }

// Failed returns the files that could not be copied.
func (r *Report) Failed() []FileResult { return r.filter(ActionFailed) }

// Planned returns the files a dry run would write.
func (r *Report) Planned() []FileResult { return r.filter(ActionPlanned) }

// HasFailures reports whether any file failed.
func (r *Report) HasFailures() bool { return len(r.Failed()) > 0 }

// InstallCommand returns the npm command installing Dependencies, or "".
func (r *Report) InstallCommand() string {
	if len(r.Dependencies) == 0 {
		return ""
	}
	return "npm install " + strings.Join(r.Dependencies, " ")
}

// Installer copies components from a checkout into a consumer project.
type Installer struct {
	// Repo is the root of the Zoo checkout.
	Repo string

	Catalog *catalog.Catalog
	Config  *config.ComponentsConfig

	// Overwrite replaces files that already exist.
	Overwrite bool

	// DryRun reports what would be written without touching the project.
	DryRun bool

	Logger *zap.Logger

	rewriter *Rewriter
}

// NewInstaller creates an Installer.
func NewInstaller(repo string, cat *catalog.Catalog, cfg *config.ComponentsConfig, logger *zap.Logger) *Installer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Installer{
		Repo:     repo,
		Catalog:  cat,
		Config:   cfg,
		Logger:   logger,
		rewriter: NewRewriter(cfg.Aliases),
	}
}

// Rewriter returns the rewriter built from the project aliases.
func (i *Installer) Rewriter() *Rewriter {
	if i.rewriter == nil {
		i.rewriter = NewRewriter(i.Config.Aliases)
	}
	return i.rewriter
}

// job is one file to copy.
type job struct {
	component string
	src, dst  string
}

// Add installs the named components (with their registry dependencies) and
// hooks. Unknown names fail before anything is written. A failing file is
// logged and recorded, and the remaining files are still copied.
func (i *Installer) Add(ctx context.Context, names []string) (*Report, error) {
	var componentNames []string
	var hooks []*catalog.HookInfo
	for _, name := range names {
		if h := i.Catalog.FindHook(name); h != nil {
			hooks = append(hooks, h)
			continue
		}
		componentNames = append(componentNames, name)
	}

	components, err := i.Catalog.Resolve(componentNames)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	deps := map[string]bool{}
	var jobs []job

	for _, info := range components {
		report.Components = append(report.Components, info.Name)
		for _, d := range info.Dependencies {
			deps[i.packageName(d)] = true
		}
		dir := filepath.Join(i.Config.UIPath(), info.Name)
		for _, file := range info.Files {
			jobs = append(jobs, job{
				component: info.Name,
				src:       filepath.Join(info.SourceDir(i.Repo), filepath.FromSlash(file)),
				dst:       filepath.Join(dir, filepath.FromSlash(file)),
			})
		}
	}
	for _, h := range hooks {
		report.Components = append(report.Components, h.Name)
		for _, d := range h.Dependencies {
			deps[i.packageName(d)] = true
		}
		jobs = append(jobs, job{
			component: h.Name,
			src:       h.SourceFile(i.Repo),
			dst:       filepath.Join(i.Config.HooksPath(), h.File),
		})
	}

	for _, j := range jobs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Files = append(report.Files, i.install(j))
	}

	for d := range deps {
		report.Dependencies = append(report.Dependencies, d)
	}
	sort.Strings(report.Dependencies)
	return report, nil
}

func (i *Installer) install(j job) FileResult {
	res := FileResult{Component: j.component, Source: j.src, Dest: j.dst}

	if !i.Overwrite {
		if _, err := os.Stat(j.dst); err == nil {
			i.Logger.Debug("file exists, skipping", zap.String("path", j.dst))
			res.Action = ActionSkipped
			return res
		}
	}

	if i.DryRun {
		if _, err := os.Stat(j.src); err != nil {
			res.Action = ActionFailed
			res.Err = errors.New("E121").WithDetail("Source file not found: " + j.src)
			return res
		}
		res.Action = ActionPlanned
		return res
	}

	if err := CopyFile(j.src, j.dst, i.Rewriter()); err != nil {
		i.Logger.Warn("copy failed",
			zap.String("component", j.component),
			zap.String("src", j.src),
			zap.Error(err))
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	i.Logger.Debug("copied", zap.String("src", j.src), zap.String("dst", j.dst))
	res.Action = ActionWritten
	return res
}

// packageName maps the Zoo package names used in the catalog to the names
// configured for the project.
func (i *Installer) packageName(dep string) string {
	switch dep {
	case config.SourcePackage:
		return i.Config.Packages.UI
	case "@zoo/logic":
		return i.Config.Packages.Logic
	}
	return dep
}

// FailureError summarizes failed files as an E122 error, or returns nil.
func (r *Report) FailureError() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	lines := make([]string, len(failed))
	for n, f := range failed {
		lines[n] = fmt.Sprintf("%s: %v", f.Dest, f.Err)
	}
	return errors.New("E122").
		WithDetail(fmt.Sprintf("%d file(s) could not be copied:\n%s", len(failed), strings.Join(lines, "\n")))
}

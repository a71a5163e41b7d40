package transplant

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/flowtomic/zoo/internal/errors"
)

// FileDiff compares one installed file with its upstream version.
type FileDiff struct {
	Component string
	Path      string

	// Missing is set when the file is not installed.
	Missing bool

	// Lines holds the line diff prefixed with "+", "-" or " ". Empty when
	// the files match.
	Lines []string
}

// Changed reports whether the installed file differs from upstream.
func (d *FileDiff) Changed() bool {
	return d.Missing || len(d.Lines) > 0
}

// String renders the diff the way `zoo diff` prints it.
func (d *FileDiff) String() string {
	var b strings.Builder
	b.WriteString("--- " + d.Path + " (installed)\n")
	b.WriteString("+++ " + d.Path + " (upstream)\n")
	for _, l := range d.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Installed returns the catalog components that have a directory under the
// project's ui alias, in catalog order.
func (i *Installer) Installed() []string {
	var names []string
	for _, info := range i.Catalog.Components {
		dir := filepath.Join(i.Config.UIPath(), info.Name)
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			names = append(names, info.Name)
		}
	}
	return names
}

// Diff compares an installed component with the rewritten upstream sources.
// Unchanged files are returned with no lines.
func (i *Installer) Diff(ctx context.Context, name string) ([]FileDiff, error) {
	info := i.Catalog.FindComponent(name)
	if info == nil {
		return nil, errors.New("E120").
			WithDetail("Component '" + name + "' is not in the catalog")
	}

	dir := filepath.Join(i.Config.UIPath(), info.Name)
	var diffs []FileDiff
	for _, file := range info.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		upstream, err := ReadRewritten(filepath.Join(info.SourceDir(i.Repo), filepath.FromSlash(file)), i.Rewriter())
		if err != nil {
			return nil, err
		}

		d := FileDiff{Component: info.Name, Path: filepath.Join(dir, filepath.FromSlash(file))}
		local, err := os.ReadFile(d.Path)
		switch {
		case os.IsNotExist(err):
			d.Missing = true
		case err != nil:
			return nil, errors.New("E122").Wrap(err)
		default:
			d.Lines = lineDiff(string(local), upstream)
		}
		diffs = append(diffs, d)
	}
	return diffs, nil
}

// lineDiff returns a line-level diff of a against b, or nil if they match.
func lineDiff(a, b string) []string {
	if a == b {
		return nil
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var out []string
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, prefix+strings.TrimSuffix(line, "\n"))
		}
	}
	return out
}

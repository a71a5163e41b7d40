package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/flowtomic/zoo/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// UtilsFile is the path of the utils module relative to the project
	// root, without extension (e.g. "src/lib/utils").
	UtilsFile string

	// TSX selects TypeScript output.
	TSX bool
}

// Ext returns the script extension for the project.
func (c Config) Ext() string {
	if c.TSX {
		return "ts"
	}
	return "js"
}

// Template is a set of files written into a project.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps relative paths to file contents. Both are text/template
	// sources executed with Config.
	Files map[string]string
}

var templates = map[string]*Template{
	"utils": utilsTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.Newf(errors.CategoryCLI, "template %q not found (available: %s)",
			name, strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Result lists what Create did, as paths relative to the project root.
type Result struct {
	Written []string
	Skipped []string
}

// Create renders the template into dir. Existing files are left untouched
// and reported as skipped.
func (t *Template) Create(dir string, cfg Config) (*Result, error) {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	res := &Result{}
	for _, pathTmpl := range paths {
		relPath, err := render("path", pathTmpl, cfg)
		if err != nil {
			return res, err
		}
		content, err := render(relPath, t.Files[pathTmpl], cfg)
		if err != nil {
			return res, err
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if _, err := os.Stat(fullPath); err == nil {
			res.Skipped = append(res.Skipped, relPath)
			continue
		}

		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return res, err
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			return res, err
		}
		res.Written = append(res.Written, relPath)
	}
	return res, nil
}

func render(name, src string, cfg Config) (string, error) {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return "", errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.String(), nil
}

// utilsTemplate returns the cn() helper every component imports.
func utilsTemplate() *Template {
	return &Template{
		Name:        "utils",
		Description: "Class name helper imported by every component",
		Files: map[string]string{
			"{{.UtilsFile}}.{{.Ext}}": `import { clsx{{if .TSX}}, type ClassValue{{end}} } from "clsx";
import { twMerge } from "tailwind-merge";

export function cn(...inputs{{if .TSX}}: ClassValue[]{{end}}) {
  return twMerge(clsx(inputs));
}
`,
		},
	}
}

// UtilsDependencies are the npm packages the utils template imports.
var UtilsDependencies = []string{"clsx", "tailwind-merge"}

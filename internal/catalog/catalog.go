package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/stoewer/go-strcase"
	"gopkg.in/yaml.v3"

	"github.com/flowtomic/zoo/internal/errors"
)

const (
	// ComponentsRoot is where component sources live inside a Zoo checkout.
	// Its presence marks a directory as a Zoo repository.
	ComponentsRoot = "packages/ui/src/components"

	// HooksRoot is where hook sources live inside a Zoo checkout.
	HooksRoot = "packages/ui/src/hooks"

	// RepoCatalogPath is the catalog file a checkout may carry to override the
	// embedded one.
	RepoCatalogPath = "registry/components.yaml"
)

// Tier is the Atomic Design tier of a component.
type Tier string

const (
	TierAtom     Tier = "atom"
	TierMolecule Tier = "molecule"
	TierOrganism Tier = "organism"
)

// Tiers lists tiers from simplest to most complex.
var Tiers = []Tier{TierAtom, TierMolecule, TierOrganism}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierAtom || t == TierMolecule || t == TierOrganism
}

// Plural returns the directory-style plural ("atoms").
func (t Tier) Plural() string {
	return string(t) + "s"
}

// ComponentInfo describes one installable component.
type ComponentInfo struct {
	Name                 string   `yaml:"name" json:"name"`
	Type                 Tier     `yaml:"type" json:"type"`
	Path                 string   `yaml:"path" json:"path"`
	Description          string   `yaml:"description,omitempty" json:"description,omitempty"`
	Files                []string `yaml:"files" json:"files"`
	Dependencies         []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	RegistryDependencies []string `yaml:"registryDependencies,omitempty" json:"registryDependencies,omitempty"`
}

// SourceDir returns the component's directory inside a checkout.
func (c *ComponentInfo) SourceDir(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(ComponentsRoot), filepath.FromSlash(c.Path))
}

// HookInfo describes one installable hook.
type HookInfo struct {
	Name         string   `yaml:"name" json:"name"`
	File         string   `yaml:"file" json:"file"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// SourceFile returns the hook's file inside a checkout.
func (h *HookInfo) SourceFile(repoRoot string) string {
	return filepath.Join(repoRoot, filepath.FromSlash(HooksRoot), h.File)
}

// Catalog is the static component map. It is immutable once parsed.
type Catalog struct {
	Components []ComponentInfo
	Hooks      []HookInfo
	Aliases    map[string]string

	source     string
	components map[string]int
	hooks      map[string]int
}

// document mirrors the YAML file. Entries are kept as nodes so validation
// errors can point at a line.
type document struct {
	Components []yaml.Node       `yaml:"components"`
	Hooks      []yaml.Node       `yaml:"hooks"`
	Aliases    map[string]string `yaml:"aliases"`
}

// Parse decodes and validates a catalog. source names the data for errors.
func Parse(data []byte, source string) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("E130").
			WithDetail(source + ": " + err.Error())
	}

	c := &Catalog{
		Aliases:    doc.Aliases,
		source:     source,
		components: make(map[string]int, len(doc.Components)),
		hooks:      make(map[string]int, len(doc.Hooks)),
	}
	if c.Aliases == nil {
		c.Aliases = map[string]string{}
	}

	for i := range doc.Components {
		node := &doc.Components[i]
		var info ComponentInfo
		if err := node.Decode(&info); err != nil {
			return nil, c.errorAt(node, err.Error())
		}
		if msg := validateComponent(&info); msg != "" {
			return nil, c.errorAt(node, msg)
		}
		if _, dup := c.components[info.Name]; dup {
			return nil, c.errorAt(node, fmt.Sprintf("duplicate component %q", info.Name))
		}
		c.components[info.Name] = len(c.Components)
		c.Components = append(c.Components, info)
	}

	for i := range doc.Hooks {
		node := &doc.Hooks[i]
		var info HookInfo
		if err := node.Decode(&info); err != nil {
			return nil, c.errorAt(node, err.Error())
		}
		if !isKebab(info.Name) || info.File == "" {
			return nil, c.errorAt(node, fmt.Sprintf("hook %q needs a kebab-case name and a file", info.Name))
		}
		if !isRelativeFile(info.File) {
			return nil, c.errorAt(node, fmt.Sprintf("hook %q has invalid file %q", info.Name, info.File))
		}
		if _, dup := c.hooks[info.Name]; dup {
			return nil, c.errorAt(node, fmt.Sprintf("duplicate hook %q", info.Name))
		}
		if _, clash := c.components[info.Name]; clash {
			return nil, c.errorAt(node, fmt.Sprintf("hook %q shadows a component", info.Name))
		}
		c.hooks[info.Name] = len(c.Hooks)
		c.Hooks = append(c.Hooks, info)
	}

	if err := c.validateReferences(); err != nil {
		return nil, err
	}
	return c, nil
}

func validateComponent(info *ComponentInfo) string {
	switch {
	case !isKebab(info.Name):
		return fmt.Sprintf("component name %q must be kebab-case", info.Name)
	case !info.Type.Valid():
		return fmt.Sprintf("component %q has unknown type %q (want atom, molecule or organism)", info.Name, info.Type)
	case info.Path == "":
		return fmt.Sprintf("component %q has no path", info.Name)
	case !isRelativeFile(info.Path):
		return fmt.Sprintf("component %q has invalid path %q", info.Name, info.Path)
	case len(info.Files) == 0:
		return fmt.Sprintf("component %q lists no files", info.Name)
	}
	for _, f := range info.Files {
		if !isRelativeFile(f) {
			return fmt.Sprintf("component %q has invalid file %q", info.Name, f)
		}
	}
	return ""
}

// isRelativeFile reports whether p stays below the directory it is joined to.
func isRelativeFile(p string) bool {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return false
	}
	for _, part := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return false
		}
	}
	return true
}

func (c *Catalog) validateReferences() error {
	for alias, target := range c.Aliases {
		if _, ok := c.components[target]; !ok {
			return errors.New("E130").
				WithDetail(fmt.Sprintf("%s: alias %q points to unknown component %q", c.source, alias, target))
		}
		if _, ok := c.components[alias]; ok {
			return errors.New("E130").
				WithDetail(fmt.Sprintf("%s: alias %q shadows a component", c.source, alias))
		}
	}
	for _, info := range c.Components {
		for _, dep := range info.RegistryDependencies {
			if _, ok := c.components[dep]; !ok {
				return errors.New("E130").
					WithDetail(fmt.Sprintf("%s: component %q depends on unknown component %q", c.source, info.Name, dep))
			}
		}
	}
	// Cycles surface as resolution errors.
	_, err := c.Resolve(c.Names())
	return err
}

func (c *Catalog) errorAt(node *yaml.Node, msg string) error {
	err := errors.New("E130").WithDetail(msg)
	if _, statErr := os.Stat(c.source); statErr == nil {
		return err.WithLocation(c.source, node.Line, node.Column)
	}
	err.Location = &errors.Location{File: c.source, Line: node.Line, Column: node.Column}
	return err
}

// isKebab reports whether name is non-empty lower kebab-case.
func isKebab(name string) bool {
	return name != "" && strcase.KebabCase(name) == name
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E130").Wrap(err)
	}
	return Parse(data, path)
}

// ForRepo returns the catalog a checkout carries at RepoCatalogPath, or the
// embedded default when it carries none.
func ForRepo(repoRoot string) (*Catalog, error) {
	path := filepath.Join(repoRoot, filepath.FromSlash(RepoCatalogPath))
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return Default()
}

// Source returns where the catalog was read from.
func (c *Catalog) Source() string {
	return c.source
}

// FindComponent returns the component with the given name or declared alias,
// or nil. Lookups are exact: no case folding or fuzzy matching.
func (c *Catalog) FindComponent(name string) *ComponentInfo {
	if i, ok := c.components[name]; ok {
		return &c.Components[i]
	}
	if target, ok := c.Aliases[name]; ok {
		if i, ok := c.components[target]; ok {
			return &c.Components[i]
		}
	}
	return nil
}

// FindHook returns the hook with the given name, or nil.
func (c *Catalog) FindHook(name string) *HookInfo {
	if i, ok := c.hooks[name]; ok {
		return &c.Hooks[i]
	}
	return nil
}

// Names returns all component names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Components))
	for i, info := range c.Components {
		names[i] = info.Name
	}
	return names
}

// HookNames returns all hook names in catalog order.
func (c *Catalog) HookNames() []string {
	names := make([]string, len(c.Hooks))
	for i, h := range c.Hooks {
		names[i] = h.Name
	}
	return names
}

// ByTier returns the components of one tier sorted by name.
func (c *Catalog) ByTier(t Tier) []ComponentInfo {
	var out []ComponentInfo
	for _, info := range c.Components {
		if info.Type == t {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Resolve returns the named components plus their registryDependencies in
// install order: every dependency precedes its dependents and each
// component appears once.
func (c *Catalog) Resolve(names []string) ([]*ComponentInfo, error) {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int)
	var order []*ComponentInfo

	var resolve func(name string, chain []string) error
	resolve = func(name string, chain []string) error {
		info := c.FindComponent(name)
		if info == nil {
			return errors.New("E120").
				WithDetail("Component '" + name + "' is not in the catalog")
		}

		switch state[info.Name] {
		case done:
			return nil
		case visiting:
			return errors.New("E130").
				WithDetail("dependency cycle: " + strings.Join(append(chain, info.Name), " → "))
		}

		state[info.Name] = visiting
		for _, dep := range info.RegistryDependencies {
			if err := resolve(dep, append(chain, info.Name)); err != nil {
				return err
			}
		}
		state[info.Name] = done
		order = append(order, info)
		return nil
	}

	for _, name := range names {
		if err := resolve(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/flowtomic/zoo/internal/errors"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "components.json"

	// SchemaURL is written into new components.json files.
	SchemaURL = "https://zoo.flowtomic.dev/schema/components.json"

	// SourcePackage is the package name component sources import themselves by.
	SourcePackage = "@zoo/ui"

	// DefaultSrcDir is the directory "@/" aliases resolve to.
	DefaultSrcDir = "src"
)

// ComponentsConfig represents components.json in a consumer project.
type ComponentsConfig struct {
	// Schema is the JSON schema URL.
	Schema string `json:"$schema,omitempty"`

	// Style is the component style variant.
	Style string `json:"style,omitempty"`

	// TSX reports whether the project uses TypeScript.
	TSX bool `json:"tsx"`

	// SrcDir is the project directory "@/" aliases point to.
	SrcDir string `json:"srcDir,omitempty"`

	// Aliases are the import aliases components are rewritten to.
	Aliases Aliases `json:"aliases"`

	// Packages are the npm package names of the Zoo packages.
	Packages Packages `json:"packages"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// Aliases holds the import aliases of the consumer project.
type Aliases struct {
	Components string `json:"components"`
	Utils      string `json:"utils"`
	UI         string `json:"ui"`
	Hooks      string `json:"hooks"`
}

// Packages holds the npm package names used by the consumer project.
type Packages struct {
	UI    string `json:"ui"`
	Logic string `json:"logic"`
}

// New creates a ComponentsConfig with default values.
func New() *ComponentsConfig {
	return &ComponentsConfig{
		Schema: SchemaURL,
		Style:  "default",
		TSX:    true,
		SrcDir: DefaultSrcDir,
		Aliases: Aliases{
			Components: "@/components",
			Utils:      "@/lib/utils",
			UI:         "@/components/ui",
			Hooks:      "@/hooks",
		},
		Packages: Packages{
			UI:    SourcePackage,
			Logic: "@zoo/logic",
		},
	}
}

// Load reads components.json from the specified directory.
func Load(dir string) (*ComponentsConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*ComponentsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E100").
				WithDetail("No components.json found in " + filepath.Dir(path))
		}
		return nil, errors.New("E101").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E101").
			WithDetail("Failed to parse components.json: " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *ComponentsConfig) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *ComponentsConfig) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Create writes a new components.json into dir. It never overwrites an
// existing file; in that case it returns an E102 error.
func (c *ComponentsConfig) Create(dir string) error {
	path := filepath.Join(dir, ConfigFileName)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("E101").Wrap(err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.New("E102").WithDetail(path)
		}
		return errors.New("E101").Wrap(err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.New("E101").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *ComponentsConfig) Path() string {
	return c.configPath
}

// Dir returns the project root, the directory containing components.json.
func (c *ComponentsConfig) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *ComponentsConfig) applyDefaults() {
	def := New()
	if c.SrcDir == "" {
		c.SrcDir = def.SrcDir
	}
	if c.Packages.UI == "" {
		c.Packages.UI = def.Packages.UI
	}
	if c.Packages.Logic == "" {
		c.Packages.Logic = def.Packages.Logic
	}
}

// Validate checks that every alias is usable as a rewrite target.
func (c *ComponentsConfig) Validate() error {
	aliases := []struct{ name, value string }{
		{"components", c.Aliases.Components},
		{"utils", c.Aliases.Utils},
		{"ui", c.Aliases.UI},
		{"hooks", c.Aliases.Hooks},
	}
	for _, a := range aliases {
		if err := validateAlias(a.value); err != "" {
			return errors.New("E103").
				WithDetail("aliases." + a.name + " " + err)
		}
	}
	return nil
}

func validateAlias(alias string) string {
	switch {
	case strings.TrimSpace(alias) == "":
		return "is empty"
	case strings.ContainsAny(alias, "\"'` \t\r\n"):
		return "must not contain quotes or whitespace"
	case strings.HasPrefix(alias, "."):
		return "must not be a relative path"
	case alias == SourcePackage || strings.HasPrefix(alias, SourcePackage+"/"):
		return "must not point into " + SourcePackage
	}
	return ""
}

// ResolveAlias maps an import alias to a directory inside the project.
// "@/x" and "~/x" resolve to SrcDir/x, "@x/y" (tsconfig-style paths) to
// SrcDir/x/y; any other alias is taken relative to the project root.
func (c *ComponentsConfig) ResolveAlias(alias string) string {
	rel := filepath.FromSlash(alias)
	switch {
	case strings.HasPrefix(alias, "@/"), strings.HasPrefix(alias, "~/"):
		rel = filepath.Join(c.SrcDir, filepath.FromSlash(alias[2:]))
	case strings.HasPrefix(alias, "@"):
		rel = filepath.Join(c.SrcDir, filepath.FromSlash(alias[1:]))
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.Dir(), rel)
}

// UIPath returns the absolute directory UI components are written to.
func (c *ComponentsConfig) UIPath() string {
	return c.ResolveAlias(c.Aliases.UI)
}

// HooksPath returns the absolute directory hooks are written to.
func (c *ComponentsConfig) HooksPath() string {
	return c.ResolveAlias(c.Aliases.Hooks)
}

// UtilsFile returns the absolute path of the utils module without extension.
func (c *ComponentsConfig) UtilsFile() string {
	return c.ResolveAlias(c.Aliases.Utils)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing components.json, or an E100 error.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E100").
				WithDetail("No components.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromDir finds the project root above dir and loads its components.json.
func LoadFromDir(dir string) (*ComponentsConfig, error) {
	root, err := FindProjectRoot(dir)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

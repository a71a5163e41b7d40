package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/errors"
)

const (
	// SchemaURL is the JSON schema of registry.json.
	SchemaURL = "https://ui.shadcn.com/schema/registry.json"

	// ItemSchemaURL is the JSON schema of a single registry item.
	ItemSchemaURL = "https://ui.shadcn.com/schema/registry-item.json"

	// Name is the registry name.
	Name = "zoo"

	// Homepage is the registry homepage.
	Homepage = "https://zoo.flowtomic.dev"

	// FileName is the default output file of a build.
	FileName = "registry.json"

	// ItemsDir holds one <name>.json per item next to FileName.
	ItemsDir = "r"
)

// ItemType is the shadcn registry type of an item.
type ItemType string

const (
	TypeUI    ItemType = "registry:ui"
	TypeBlock ItemType = "registry:block"
	TypeHook  ItemType = "registry:hook"
)

// TypeForTier maps a component tier to its item type. Atoms and molecules
// are UI primitives; organisms are blocks.
func TypeForTier(t catalog.Tier) ItemType {
	if t == catalog.TierOrganism {
		return TypeBlock
	}
	return TypeUI
}

// File is one source file embedded in an item.
type File struct {
	Path    string   `json:"path"`
	Type    ItemType `json:"type"`
	Content string   `json:"content"`
}

// Item is one installable entry of the registry.
type Item struct {
	Schema               string   `json:"$schema,omitempty"`
	Name                 string   `json:"name"`
	Type                 ItemType `json:"type"`
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	Dependencies         []string `json:"dependencies,omitempty"`
	RegistryDependencies []string `json:"registryDependencies,omitempty"`
	Files                []File   `json:"files"`
}

// Registry is the document served as registry.json.
type Registry struct {
	Schema   string `json:"$schema"`
	Name     string `json:"name"`
	Homepage string `json:"homepage"`
	Version  string `json:"version,omitempty"`
	Items    []Item `json:"items"`
}

// Empty returns the registry served when no build output exists.
func Empty() *Registry {
	return &Registry{
		Schema:   SchemaURL,
		Name:     Name,
		Homepage: Homepage,
		Items:    []Item{},
	}
}

// View selects a subset of items.
type View string

const (
	ViewAll        View = "all"
	ViewComponents View = "components"
	ViewBlocks     View = "blocks"
)

// Views lists every view in publishing order.
var Views = []View{ViewAll, ViewComponents, ViewBlocks}

// View returns a copy of r holding only the items of view v. Unknown views
// return nil.
func (r *Registry) View(v View) *Registry {
	var keep func(Item) bool
	switch v {
	case ViewAll:
		keep = func(Item) bool { return true }
	case ViewComponents:
		keep = func(it Item) bool { return it.Type == TypeUI }
	case ViewBlocks:
		keep = func(it Item) bool { return it.Type == TypeBlock }
	default:
		return nil
	}

	out := *r
	out.Items = []Item{}
	for _, it := range r.Items {
		if keep(it) {
			out.Items = append(out.Items, it)
		}
	}
	return &out
}

// Item returns the named item ready to be served on its own, or nil.
func (r *Registry) Item(name string) *Item {
	for _, it := range r.Items {
		if it.Name == name {
			item := it
			item.Schema = ItemSchemaURL
			return &item
		}
	}
	return nil
}

// Load reads a registry.json. Missing or malformed files yield E132.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E132").
			WithDetail(err.Error())
	}
	return Parse(data, path)
}

// Parse decodes registry.json content.
func Parse(data []byte, source string) (*Registry, error) {
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, errors.New("E132").
			WithDetail(source + ": " + err.Error())
	}
	if reg.Items == nil {
		reg.Items = []Item{}
	}
	return &reg, nil
}

// Write stores the registry at path and one file per item under
// <dir of path>/r. Files are written to a temp file and renamed into place.
func Write(reg *Registry, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.New("E131").Wrap(err)
	}
	if err := writeJSON(path, reg); err != nil {
		return err
	}

	itemsDir := filepath.Join(filepath.Dir(path), ItemsDir)
	if err := os.MkdirAll(itemsDir, 0755); err != nil {
		return errors.New("E131").Wrap(err)
	}
	for _, it := range reg.Items {
		if err := writeJSON(filepath.Join(itemsDir, it.Name+".json"), reg.Item(it.Name)); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.New("E131").Wrap(err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.New("E131").Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.New("E131").Wrap(err)
	}
	return nil
}

package registry

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/errors"
)

const testCatalog = `
components:
  - name: button
    type: atom
    path: atoms/button
    description: Clickable button.
    files: [button.tsx, index.ts]
    dependencies: [class-variance-authority]
  - name: dropdown-menu
    type: molecule
    path: molecules/dropdown-menu
    files: [dropdown-menu.tsx]
  - name: data-table
    type: organism
    path: organisms/data-table
    files: [data-table.tsx, columns.tsx]
    registryDependencies: [button, dropdown-menu]
hooks:
  - name: use-debounce
    file: use-debounce.ts
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func fixture(t *testing.T, skip ...string) *Builder {
	t.Helper()
	repo := t.TempDir()
	comps := filepath.Join(repo, filepath.FromSlash(catalog.ComponentsRoot))

	files := map[string]string{
		filepath.Join(comps, "atoms", "button", "button.tsx"):                         `import { cn } from "@zoo/ui/lib/utils";` + "\n",
		filepath.Join(comps, "atoms", "button", "index.ts"):                           `export * from "./button";` + "\n",
		filepath.Join(comps, "molecules", "dropdown-menu", "dropdown-menu.tsx"):       "export {}\n",
		filepath.Join(comps, "organisms", "data-table", "data-table.tsx"):             `import { Button } from "../../atoms/button";` + "\n",
		filepath.Join(comps, "organisms", "data-table", "columns.tsx"):                "export const columns = []\n",
		filepath.Join(repo, filepath.FromSlash(catalog.HooksRoot), "use-debounce.ts"): "export function useDebounce() {}\n",
	}
	for path, content := range files {
		skipped := false
		for _, s := range skip {
			if filepath.Base(path) == s {
				skipped = true
			}
		}
		if !skipped {
			writeFile(t, path, content)
		}
	}

	cat, err := catalog.Parse([]byte(testCatalog), "test")
	require.NoError(t, err)
	return &Builder{Repo: repo, Catalog: cat, Version: "1.2.0"}
}

func TestBuild(t *testing.T) {
	reg, err := fixture(t).Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, SchemaURL, reg.Schema)
	assert.Equal(t, Name, reg.Name)
	assert.Equal(t, "1.2.0", reg.Version)
	require.Len(t, reg.Items, 4)

	button := reg.Items[0]
	assert.Equal(t, "button", button.Name)
	assert.Equal(t, TypeUI, button.Type)
	assert.Equal(t, "Button", button.Title)
	assert.Equal(t, "Clickable button.", button.Description)
	require.Len(t, button.Files, 2)
	assert.Equal(t, "ui/button/button.tsx", button.Files[0].Path)
	assert.Equal(t, `import { cn } from "@/lib/utils";`+"\n", button.Files[0].Content)

	assert.Equal(t, "Dropdown Menu", reg.Items[1].Title)
	assert.Equal(t, TypeUI, reg.Items[1].Type)

	table := reg.Items[2]
	assert.Equal(t, TypeBlock, table.Type)
	assert.Equal(t, []string{"button", "dropdown-menu"}, table.RegistryDependencies)
	assert.Contains(t, table.Files[0].Content, `"@/components/ui/button"`)

	hook := reg.Items[3]
	assert.Equal(t, TypeHook, hook.Type)
	assert.Equal(t, "hooks/use-debounce.ts", hook.Files[0].Path)
}

func TestBuild_MissingFileWarns(t *testing.T) {
	reg, err := fixture(t, "columns.tsx").Build(context.Background())
	require.NoError(t, err)

	table := reg.Items[2]
	require.Len(t, table.Files, 1)
	assert.Equal(t, "ui/data-table/data-table.tsx", table.Files[0].Path)
}

func TestBuild_DropsItemWithoutFiles(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := fixture(t, "dropdown-menu.tsx")
	b.Logger = zap.New(core)

	reg, err := b.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, reg.Items, 3)
	assert.Nil(t, reg.Item("dropdown-menu"))
	for _, it := range reg.Items {
		assert.NotEmpty(t, it.Files, it.Name)
	}
	assert.Equal(t, 1, logs.FilterMessage("item has no source files, dropped").Len())
}

func TestBuild_MissingFileStrict(t *testing.T) {
	b := fixture(t, "columns.tsx")
	b.Strict = true

	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E131"))
	assert.Contains(t, err.Error(), "columns.tsx")
}

func TestBuild_Version(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", DefaultVersion, false},
		{"1.2.3", "1.2.3", false},
		{"v2.0.0-beta.1", "2.0.0-beta.1", false},
		{"banana", "", true},
		{"1.2.3.4", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b := fixture(t)
			b.Version = tt.in
			reg, err := b.Build(context.Background())
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, "E131"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, reg.Version)
		})
	}
}

func TestViews(t *testing.T) {
	reg, err := fixture(t).Build(context.Background())
	require.NoError(t, err)

	names := func(r *Registry) []string {
		var out []string
		for _, it := range r.Items {
			out = append(out, it.Name)
		}
		return out
	}

	assert.Equal(t, []string{"button", "dropdown-menu", "data-table", "use-debounce"}, names(reg.View(ViewAll)))
	assert.Equal(t, []string{"button", "dropdown-menu"}, names(reg.View(ViewComponents)))
	assert.Equal(t, []string{"data-table"}, names(reg.View(ViewBlocks)))
	assert.Nil(t, reg.View("nope"))
	assert.Len(t, reg.Items, 4, "views must not mutate the registry")
}

func TestItem(t *testing.T) {
	reg, err := fixture(t).Build(context.Background())
	require.NoError(t, err)

	it := reg.Item("button")
	require.NotNil(t, it)
	assert.Equal(t, ItemSchemaURL, it.Schema)
	assert.Empty(t, reg.Items[0].Schema)
	assert.Nil(t, reg.Item("nope"))
}

func TestWriteAndLoad(t *testing.T) {
	b := fixture(t)
	out := filepath.Join(t.TempDir(), "public", FileName)

	reg, err := b.BuildFile(context.Background(), out)
	require.NoError(t, err)

	loaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, reg, loaded)

	data, err := os.ReadFile(filepath.Join(filepath.Dir(out), ItemsDir, "data-table.json"))
	require.NoError(t, err)
	var item Item
	require.NoError(t, json.Unmarshal(data, &item))
	assert.Equal(t, "data-table", item.Name)
	assert.Equal(t, ItemSchemaURL, item.Schema)
}

func TestEmpty(t *testing.T) {
	data, err := json.Marshal(Empty())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"$schema": "https://ui.shadcn.com/schema/registry.json",
		"name": "zoo",
		"homepage": "https://zoo.flowtomic.dev",
		"items": []
	}`, string(data))
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.HasCode(err, "E132"))

	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{not json")
	_, err = Load(bad)
	assert.True(t, errors.HasCode(err, "E132"))
}

func TestBuild_EmbeddedCatalogCancelled(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Builder{Repo: t.TempDir(), Catalog: cat}).Build(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

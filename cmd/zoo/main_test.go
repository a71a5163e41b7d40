package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/errors"
	"github.com/flowtomic/zoo/internal/registry"
)

// isolate keeps the test away from the user's config, cache and network.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ZOO_CACHE_DIR", t.TempDir())
	t.Setenv("ZOO_OFFLINE", "true")
	t.Setenv("ZOO_REPO_PATH", "")
	t.Setenv("NO_COLOR", "1")
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// fakeRepo creates a checkout holding the button sources only.
func fakeRepo(t *testing.T) string {
	t.Helper()
	repo := t.TempDir()
	dir := filepath.Join(repo, filepath.FromSlash(catalog.ComponentsRoot), "atoms", "button")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "button.tsx"),
		[]byte(`import { cn } from "@zoo/ui/lib/utils";`+"\nexport function Button() {}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.ts"),
		[]byte(`export * from "./button";`+"\n"), 0644))
	return repo
}

func TestInit(t *testing.T) {
	isolate(t)
	project := t.TempDir()

	out, _, err := run(t, "init", "--cwd", project)
	require.NoError(t, err)
	assert.Contains(t, out, "Created components.json")
	assert.Contains(t, out, "npm install clsx tailwind-merge")
	assert.FileExists(t, filepath.Join(project, "components.json"))
	assert.FileExists(t, filepath.Join(project, "src", "lib", "utils.ts"))
}

func TestInit_NeverOverwrites(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	path := filepath.Join(project, "components.json")
	original := `{"aliases": {"components": "@/c", "utils": "@/u", "ui": "@/c/ui", "hooks": "@/h"}}`
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	out, _, err := run(t, "init", "--yes", "--cwd", project)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestAdd_Button(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	repo := fakeRepo(t)

	_, _, err := run(t, "init", "--yes", "--cwd", project)
	require.NoError(t, err)

	out, _, err := run(t, "add", "button", "--repo", repo, "--cwd", project)
	require.NoError(t, err)
	assert.Contains(t, out, "Added")
	assert.Contains(t, out, "npm install @radix-ui/react-slot class-variance-authority")

	dir := filepath.Join(project, "src", "components", "ui", "button")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"button.tsx", "index.ts"}, names)

	data, err := os.ReadFile(filepath.Join(dir, "button.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `from "@/lib/utils"`)

	out, _, err = run(t, "diff", "--repo", repo, "--cwd", project)
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestAdd_FromEnvRepoPath(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	t.Setenv("ZOO_REPO_PATH", fakeRepo(t))

	_, _, err := run(t, "init", "--yes", "--cwd", project)
	require.NoError(t, err)
	_, _, err = run(t, "add", "button", "--dry-run", "--cwd", project)
	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(project, "src", "components", "ui", "button"))
}

func TestAdd_Errors(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	repo := fakeRepo(t)

	_, _, err := run(t, "add", "button", "--repo", repo, "--cwd", project)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E100"))

	_, _, err = run(t, "init", "--yes", "--cwd", project)
	require.NoError(t, err)

	_, _, err = run(t, "add", "nope", "--repo", repo, "--cwd", project)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E120"))

	_, _, err = run(t, "add", "button", "--cwd", project)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E110"))

	// card's files are missing from the fake checkout.
	_, stderr, err := run(t, "add", "card", "--repo", repo, "--cwd", project)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E122"))
	assert.Contains(t, stderr, "card.tsx")
}

func TestList_JSON(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "list", "--json", "--cwd", t.TempDir())
	require.NoError(t, err)

	var got listOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Components)
	assert.NotEmpty(t, got.Hooks)
	assert.Equal(t, "dropdown-menu", got.Aliases["dropdown"])
}

func TestList_Text(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "ls", "--cwd", t.TempDir())
	require.NoError(t, err)
	atoms := strings.Index(out, "Atoms")
	molecules := strings.Index(out, "Molecules")
	organisms := strings.Index(out, "Organisms")
	hooks := strings.Index(out, "Hooks")
	assert.True(t, atoms >= 0 && atoms < molecules && molecules < organisms && organisms < hooks, out)
	assert.Contains(t, out, "button")
}

func TestRegistryBuild(t *testing.T) {
	isolate(t)
	repo := fakeRepo(t)
	outDir := t.TempDir()
	out := filepath.Join(outDir, "registry.json")

	stdout, _, err := run(t, "registry", "build", "--repo", repo, "--out", out, "--version", "2.0.0")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")

	reg, err := registry.Load(out)
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", reg.Version)
	button := reg.Item("button")
	require.NotNil(t, button)
	assert.Len(t, button.Files, 2)
	assert.FileExists(t, filepath.Join(outDir, "r", "button.json"))

	_, _, err = run(t, "registry", "build", "--repo", repo, "--out", out, "--strict")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E131"))
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, _, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}

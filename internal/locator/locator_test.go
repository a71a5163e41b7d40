package locator

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
)

func makeCheckout(t *testing.T, dir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, Marker), 0755))
	return dir
}

// isolated returns a Locator that cannot see the real machine.
func isolated(t *testing.T) *Locator {
	t.Helper()
	root := t.TempDir()
	work := filepath.Join(root, "work", "app")
	require.NoError(t, os.MkdirAll(work, 0755))
	return &Locator{
		Settings: config.Settings{
			CacheDir: filepath.Join(root, "cache"),
			Offline:  true,
		},
		WorkDir: work,
		Home:    filepath.Join(root, "home"),
		Cloner:  failingCloner{},
	}
}

type failingCloner struct{}

func (failingCloner) Clone(context.Context, string, string, string) error {
	return fmt.Errorf("network disabled")
}

type fakeCloner struct {
	withMarker bool
	calls      int
}

func (f *fakeCloner) Clone(_ context.Context, _, _, dest string) error {
	f.calls++
	if f.withMarker {
		return os.MkdirAll(filepath.Join(dest, Marker), 0755)
	}
	return os.MkdirAll(dest, 0755)
}

func TestLocate_EnvOverride(t *testing.T) {
	l := isolated(t)
	repo := makeCheckout(t, t.TempDir())
	l.Settings.RepoPath = repo

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StrategyEnv, loc.Strategy)
	assert.Equal(t, repo, loc.Path)
}

func TestLocate_EnvWithoutMarkerFallsThrough(t *testing.T) {
	l := isolated(t)
	l.Settings.RepoPath = t.TempDir()
	makeCheckout(t, filepath.Join(l.Home, "zoo"))

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StrategyLocal, loc.Strategy)
}

func TestLocate_Ancestor(t *testing.T) {
	l := isolated(t)
	repo := makeCheckout(t, t.TempDir())
	l.WorkDir = filepath.Join(repo, "packages", "ui", "src")

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StrategyAncestor, loc.Strategy)
	assert.Equal(t, repo, loc.Path)
}

func TestLocate_LocalPaths(t *testing.T) {
	tests := []struct {
		name  string
		place func(l *Locator) string
	}{
		{"sibling", func(l *Locator) string { return filepath.Join(l.WorkDir, "..", "zoo") }},
		{"home", func(l *Locator) string { return filepath.Join(l.Home, "zoo") }},
		{"home code", func(l *Locator) string { return filepath.Join(l.Home, "code", "zoo") }},
		{"home projects", func(l *Locator) string { return filepath.Join(l.Home, "projects", "zoo") }},
		{"cached clone", func(l *Locator) string { return filepath.Join(l.Settings.CacheDir, "repo") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := isolated(t)
			makeCheckout(t, tt.place(l))

			loc, err := l.Locate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, StrategyLocal, loc.Strategy)
			assert.True(t, HasMarker(loc.Path))
		})
	}
}

func TestLocate_ConfiguredLocalPath(t *testing.T) {
	l := isolated(t)
	repo := makeCheckout(t, t.TempDir())
	l.Settings.LocalPaths = []string{repo}

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, repo, loc.Path)
}

func TestLocate_OfflineNotFound(t *testing.T) {
	l := isolated(t)

	loc, err := l.Locate(context.Background())
	assert.Nil(t, loc)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E110"))
	assert.Contains(t, err.Error(), "git (offline")
}

func TestLocate_GitClone(t *testing.T) {
	l := isolated(t)
	cloner := &fakeCloner{withMarker: true}
	l.Cloner = cloner
	l.Settings.Offline = false
	l.Settings.RepoURL = "https://example.invalid/zoo.git"

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StrategyGit, loc.Strategy)
	assert.Equal(t, 1, cloner.calls)
	assert.Equal(t, filepath.Join(l.Settings.CacheDir, "repo"), loc.Path)
}

func TestNew_ClonerUsesProgress(t *testing.T) {
	l := New(config.Settings{}, nil)
	assert.Nil(t, l.Cloner)

	var progress bytes.Buffer
	l.Progress = &progress
	assert.Equal(t, GitCloner{Progress: &progress}, l.cloner())

	fake := &fakeCloner{}
	l.Cloner = fake
	assert.Same(t, fake, l.cloner())
}

func TestLocate_TarballAfterBadClone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buildTarball(t, map[string]string{
			"zoo-main/packages/ui/src/components/atoms/button/button.tsx": "export {}",
			"zoo-main/README.md": "# zoo",
		}))
	}))
	defer srv.Close()

	l := isolated(t)
	l.Cloner = &fakeCloner{withMarker: false}
	l.Settings.Offline = false
	l.Settings.RepoURL = "https://example.invalid/zoo.git"
	l.Settings.TarballURL = srv.URL + "/main.tar.gz"
	l.HTTPClient = srv.Client()

	loc, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StrategyTarball, loc.Strategy)
	assert.FileExists(t, filepath.Join(loc.Path, "packages", "ui", "src", "components", "atoms", "button", "button.tsx"))
	assert.FileExists(t, filepath.Join(loc.Path, "README.md"))
}

func TestLocate_TarballServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	l := isolated(t)
	l.Settings.Offline = false
	l.Settings.TarballURL = srv.URL
	l.HTTPClient = srv.Client()

	_, err := l.Locate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestExtract_RejectsEscape(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	require.NoError(t, os.WriteFile(archive, buildTarball(t, map[string]string{
		"top/../../escape.txt": "x",
	}), 0644))

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	err := extract(archive, dest)
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestStripTopDir(t *testing.T) {
	assert.Equal(t, "", stripTopDir("zoo-main/"))
	assert.Equal(t, "a/b.ts", stripTopDir("zoo-main/a/b.ts"))
	assert.Equal(t, "a", stripTopDir("./zoo-main/a"))
	assert.Equal(t, "", stripTopDir("pax_global_header"))
}

func TestLocate_ResultAlwaysHasMarker(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := isolated(t)
		candidates := []string{
			filepath.Join(l.Home, "zoo"),
			filepath.Join(l.Home, "code", "zoo"),
			filepath.Join(l.Home, "projects", "zoo"),
		}
		for _, c := range candidates {
			require.NoError(t, os.MkdirAll(c, 0755))
			if rapid.Bool().Draw(rt, c) {
				makeCheckout(t, c)
			}
		}

		loc, err := l.Locate(context.Background())
		if err != nil {
			assert.True(t, errors.HasCode(err, "E110"))
			return
		}
		assert.True(t, HasMarker(loc.Path))
	})
}

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

package locator

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
)

// Strategy names one way of finding a checkout.
type Strategy string

const (
	StrategyEnv      Strategy = "env"
	StrategyAncestor Strategy = "ancestor"
	StrategyLocal    Strategy = "local"
	StrategyGit      Strategy = "git"
	StrategyTarball  Strategy = "tarball"
)

// Location is a directory holding a Zoo checkout.
type Location struct {
	Path     string
	Strategy Strategy
}

// errSkip marks a strategy that does not apply (unset variable, offline).
var errSkip = stderrors.New("skipped")

// Locator finds a Zoo repository. Strategies run in order and the first one
// producing a directory with the marker wins; failures are logged and the
// chain moves on.
type Locator struct {
	// Settings supply the env override, URLs, cache dir and extra paths.
	Settings config.Settings

	// WorkDir is where the ancestor search starts. Defaults to os.Getwd().
	WorkDir string

	// Home is the user's home directory. Defaults to os.UserHomeDir().
	Home string

	// Cloner performs the git strategy. Nil uses a GitCloner writing to
	// Progress.
	Cloner Cloner

	// HTTPClient downloads the tarball.
	HTTPClient *http.Client

	// Progress receives clone and download progress. Nil disables it.
	Progress io.Writer

	// Logger receives one debug line per attempted strategy.
	Logger *zap.Logger
}

// New creates a Locator from settings with default collaborators.
func New(settings config.Settings, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		Settings: settings,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		Logger: logger,
	}
}

// Marker is the directory, relative to the repo root, that identifies a checkout.
var Marker = filepath.FromSlash(catalog.ComponentsRoot)

// HasMarker reports whether dir contains the marker directory.
func HasMarker(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, Marker))
	return err == nil && info.IsDir()
}

// Locate runs the strategies in order and returns the first checkout found.
// The returned path always contains Marker. When every strategy fails it
// returns an E110 error listing what was tried.
func (l *Locator) Locate(ctx context.Context) (*Location, error) {
	strategies := []struct {
		name Strategy
		find func(context.Context) (string, error)
	}{
		{StrategyEnv, l.fromEnv},
		{StrategyAncestor, l.fromAncestors},
		{StrategyLocal, l.fromLocalPaths},
		{StrategyGit, l.fromGit},
		{StrategyTarball, l.fromTarball},
	}

	var tried []string
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := s.find(ctx)
		switch {
		case err != nil:
			l.logger().Debug("repo strategy failed", zap.String("strategy", string(s.name)), zap.Error(err))
			tried = append(tried, fmt.Sprintf("%s (%v)", s.name, err))
			continue
		case !HasMarker(path):
			l.logger().Debug("repo candidate lacks marker", zap.String("strategy", string(s.name)), zap.String("path", path))
			tried = append(tried, fmt.Sprintf("%s (%s has no %s)", s.name, path, filepath.ToSlash(Marker)))
			continue
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		l.logger().Debug("repo found", zap.String("strategy", string(s.name)), zap.String("path", abs))
		return &Location{Path: abs, Strategy: s.name}, nil
	}

	return nil, errors.New("E110").
		WithDetail("Tried: " + strings.Join(tried, "; "))
}

func (l *Locator) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l *Locator) workDir() (string, error) {
	if l.WorkDir != "" {
		return l.WorkDir, nil
	}
	return os.Getwd()
}

func (l *Locator) home() string {
	if l.Home != "" {
		return l.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// expandHome replaces a leading ~ with the home directory.
func (l *Locator) expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home := l.home(); home != "" {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func (l *Locator) fromEnv(context.Context) (string, error) {
	if l.Settings.RepoPath == "" {
		return "", fmt.Errorf("%s_REPO_PATH not set: %w", config.EnvPrefix, errSkip)
	}
	return l.expandHome(l.Settings.RepoPath), nil
}

func (l *Locator) fromAncestors(context.Context) (string, error) {
	start, err := l.workDir()
	if err != nil {
		return "", err
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if HasMarker(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no checkout above %s", start)
		}
		dir = parent
	}
}

// LocalCandidates returns the directories probed by the local strategy.
func (l *Locator) LocalCandidates() []string {
	var candidates []string
	if wd, err := l.workDir(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "..", "zoo"))
	}
	if home := l.home(); home != "" {
		candidates = append(candidates,
			filepath.Join(home, "zoo"),
			filepath.Join(home, "code", "zoo"),
			filepath.Join(home, "projects", "zoo"),
		)
	}
	for _, p := range l.Settings.LocalPaths {
		candidates = append(candidates, l.expandHome(p))
	}
	if l.Settings.CacheDir != "" {
		candidates = append(candidates, l.gitDir(), l.tarballDir())
	}
	return candidates
}

func (l *Locator) fromLocalPaths(context.Context) (string, error) {
	for _, candidate := range l.LocalCandidates() {
		if HasMarker(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("none of %d known paths holds a checkout", len(l.LocalCandidates()))
}

func (l *Locator) gitDir() string {
	return filepath.Join(l.expandHome(l.Settings.CacheDir), "repo")
}

func (l *Locator) tarballDir() string {
	return filepath.Join(l.expandHome(l.Settings.CacheDir), "tarball")
}

func (l *Locator) fromGit(ctx context.Context) (string, error) {
	if l.Settings.Offline {
		return "", fmt.Errorf("offline: %w", errSkip)
	}
	if l.Settings.RepoURL == "" || l.Settings.CacheDir == "" {
		return "", fmt.Errorf("no repo URL or cache dir: %w", errSkip)
	}

	dest := l.gitDir()
	if err := os.RemoveAll(dest); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	if err := l.cloner().Clone(ctx, l.Settings.RepoURL, l.Settings.RepoRef, dest); err != nil {
		os.RemoveAll(dest)
		return "", fmt.Errorf("clone %s: %w", l.Settings.RepoURL, err)
	}
	return dest, nil
}

func (l *Locator) fromTarball(ctx context.Context) (string, error) {
	if l.Settings.Offline {
		return "", fmt.Errorf("offline: %w", errSkip)
	}
	if l.Settings.TarballURL == "" || l.Settings.CacheDir == "" {
		return "", fmt.Errorf("no tarball URL or cache dir: %w", errSkip)
	}

	d := &tarball{
		URL:      l.Settings.TarballURL,
		Dest:     l.tarballDir(),
		Client:   l.HTTPClient,
		Progress: l.Progress,
	}
	if err := d.Fetch(ctx); err != nil {
		return "", errors.New("E111").Wrap(err)
	}
	return d.Dest, nil
}

func (l *Locator) cloner() Cloner {
	if l.Cloner != nil {
		return l.Cloner
	}
	return GitCloner{Progress: l.Progress}
}

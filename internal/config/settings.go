package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/flowtomic/zoo/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "ZOO"

	// DefaultRepoURL is the upstream repository cloned when no checkout is found.
	DefaultRepoURL = "https://github.com/flowtomic/zoo.git"

	// DefaultRepoRef is the branch cloned or downloaded.
	DefaultRepoRef = "main"

	// DefaultTarballURL is the archive downloaded when cloning fails.
	DefaultTarballURL = "https://codeload.github.com/flowtomic/zoo/tar.gz/refs/heads/main"
)

// Settings are the CLI-level settings, read from flags, ZOO_* environment
// variables and an optional ~/.config/zoo/config.yaml, in that order of
// precedence.
type Settings struct {
	// RepoPath overrides repository discovery (ZOO_REPO_PATH).
	RepoPath string `mapstructure:"repo_path"`

	// RepoURL is the git URL cloned as a fallback.
	RepoURL string `mapstructure:"repo_url"`

	// RepoRef is the branch to clone.
	RepoRef string `mapstructure:"repo_ref"`

	// TarballURL is the gzip tarball downloaded as the last fallback.
	TarballURL string `mapstructure:"tarball_url"`

	// CacheDir holds cloned and downloaded checkouts.
	CacheDir string `mapstructure:"cache_dir"`

	// LocalPaths are extra directories probed before going to the network.
	LocalPaths []string `mapstructure:"local_paths"`

	// Offline disables the git and tarball strategies.
	Offline bool `mapstructure:"offline"`

	// LogLevel is the zap level for CLI diagnostics.
	LogLevel string `mapstructure:"log_level"`
}

var settingKeys = []string{
	"repo_path", "repo_url", "repo_ref", "tarball_url",
	"cache_dir", "local_paths", "offline", "log_level",
}

// NewViper returns a viper instance with defaults, environment binding and
// the optional user config file registered.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("repo_path", "")
	v.SetDefault("repo_url", DefaultRepoURL)
	v.SetDefault("repo_ref", DefaultRepoRef)
	v.SetDefault("tarball_url", DefaultTarballURL)
	v.SetDefault("cache_dir", defaultCacheDir())
	v.SetDefault("local_paths", []string{})
	v.SetDefault("offline", false)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	for _, key := range settingKeys {
		_ = v.BindEnv(key)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "zoo"))
	}

	return v
}

// LoadSettings reads the optional config file and unmarshals settings.
// A missing config file is not an error.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Newf(errors.CategoryConfig, "reading %s: %v", v.ConfigFileUsed(), err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Newf(errors.CategoryConfig, "decoding settings: %v", err)
	}
	if s.CacheDir == "" {
		s.CacheDir = defaultCacheDir()
	}
	return &s, nil
}

// defaultCacheDir returns ~/.cache/zoo (or the platform equivalent).
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".", ".zoo", "cache")
	}
	return filepath.Join(dir, "zoo")
}

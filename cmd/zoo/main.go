package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
	"github.com/flowtomic/zoo/internal/locator"
	"github.com/flowtomic/zoo/internal/logging"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╺━┓┏━┓┏━┓
  ┏━┛┃ ┃┃ ┃
  ┗━╸┗━┛┗━┛
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		errors.PrintError(err)
		stop()
		os.Exit(1)
	}
}

// cli holds the state shared by every command.
type cli struct {
	v        *viper.Viper
	cwd      string
	verbose  bool
	noColor  bool
	settings *config.Settings
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.NewViper(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "zoo",
		Short: "Copy Zoo UI components into your project",
		Long: `zoo installs Flowtomic Zoo UI components as source code you own.

Components are organized as atoms, molecules and organisms. zoo finds a
checkout of the Zoo repository, copies the files you ask for into your
project and rewrites their imports to your aliases.

  zoo init                 create components.json
  zoo add button dialog    copy components into the project
  zoo list                 show what is available
  zoo registry build       generate registry.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("repo", "", "Path to a Zoo checkout (overrides ZOO_REPO_PATH)")
	flags.Bool("offline", false, "Never clone or download the repository")
	flags.StringVar(&c.cwd, "cwd", "", "Run as if started in this directory")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Print debug logs")
	flags.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	_ = c.v.BindPFlag("repo_path", flags.Lookup("repo"))
	_ = c.v.BindPFlag("offline", flags.Lookup("offline"))

	rootCmd.AddCommand(
		initCmd(c),
		addCmd(c),
		listCmd(c),
		diffCmd(c),
		registryCmd(c),
		versionCmd(),
	)

	return rootCmd
}

// setup resolves settings, the working directory and the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	if c.noColor || os.Getenv("NO_COLOR") != "" {
		errors.DisableColors()
	}

	settings, err := config.LoadSettings(c.v)
	if err != nil {
		return err
	}
	c.settings = settings

	c.logger = logging.NewCLI(cmd.ErrOrStderr(), settings.LogLevel, c.verbose)

	if c.cwd == "" {
		if c.cwd, err = os.Getwd(); err != nil {
			return err
		}
	}
	c.cwd, err = filepath.Abs(c.cwd)
	return err
}

// locate finds a Zoo checkout. With network false the clone and download
// strategies are skipped.
func (c *cli) locate(cmd *cobra.Command, network bool) (*locator.Location, error) {
	settings := *c.settings
	if !network {
		settings.Offline = true
	}

	l := locator.New(settings, c.logger)
	l.WorkDir = c.cwd
	l.Progress = cmd.ErrOrStderr()

	loc, err := l.Locate(cmd.Context())
	if err != nil {
		return nil, err
	}
	c.logger.Debug("using repository", zap.String("path", loc.Path), zap.String("strategy", string(loc.Strategy)))
	return loc, nil
}

// catalogFor returns the catalog of a checkout, or the embedded one when
// loc is nil.
func catalogFor(loc *locator.Location) (*catalog.Catalog, error) {
	if loc == nil {
		return catalog.Default()
	}
	return catalog.ForRepo(loc.Path)
}

// relPath shortens path for display.
func (c *cli) relPath(path string) string {
	if rel, err := filepath.Rel(c.cwd, path); err == nil && !filepath.IsAbs(rel) && rel[0] != '.' {
		return rel
	}
	return path
}

var (
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	styleDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	styleBold    = lipgloss.NewStyle().Bold(true)
)

func paint(style lipgloss.Style, text string) string {
	if !errors.ColorsEnabled() {
		return text
	}
	return style.Render(text)
}

// printBanner prints the zoo ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(styleSuccess, "✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(styleWarn, "⚠"), fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", paint(styleError, "✗"), fmt.Sprintf(format, args...))
}

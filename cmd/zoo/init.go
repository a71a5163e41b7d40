package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/errors"
	"github.com/flowtomic/zoo/internal/templates"
)

func initCmd(c *cli) *cobra.Command {
	var (
		srcDir string
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create components.json",
		Long: `Create components.json in the current project.

The file records where components, hooks and the utils helper live so
'zoo add' can rewrite imports. It also writes the cn() helper to the
utils alias if it does not exist yet.

An existing components.json is never overwritten.

Examples:
  zoo init
  zoo init --src-dir app --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, c, srcDir, yes)
		},
	}

	cmd.Flags().StringVar(&srcDir, "src-dir", config.DefaultSrcDir, "Directory that \"@/\" aliases resolve to")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func runInit(cmd *cobra.Command, c *cli, srcDir string, yes bool) error {
	out := cmd.OutOrStdout()

	if config.Exists(c.cwd) {
		warn(out, "%s already exists in %s, leaving it untouched", config.ConfigFileName, c.cwd)
		return nil
	}

	if !yes {
		ok, err := confirm(cmd.InOrStdin(), out,
			fmt.Sprintf("Write %s to %s?", config.ConfigFileName, c.cwd))
		if err != nil {
			return err
		}
		if !ok {
			info(out, "Aborted")
			return nil
		}
	}

	cfg := config.New()
	cfg.SrcDir = filepath.ToSlash(filepath.Clean(srcDir))
	if err := cfg.Create(c.cwd); err != nil {
		if errors.HasCode(err, "E102") {
			warn(out, "%s already exists in %s, leaving it untouched", config.ConfigFileName, c.cwd)
			return nil
		}
		return err
	}
	success(out, "Created %s", config.ConfigFileName)

	utilsFile, err := filepath.Rel(cfg.Dir(), cfg.UtilsFile())
	if err != nil {
		return err
	}
	tmpl, err := templates.Get("utils")
	if err != nil {
		return err
	}
	res, err := tmpl.Create(cfg.Dir(), templates.Config{
		UtilsFile: filepath.ToSlash(utilsFile),
		TSX:       cfg.TSX,
	})
	if err != nil {
		return err
	}
	for _, p := range res.Written {
		success(out, "Created %s", p)
	}
	for _, p := range res.Skipped {
		info(out, "Kept existing %s", p)
	}

	fmt.Fprintln(out)
	info(out, "Install the helper dependencies:")
	info(out, "  npm install %s", strings.Join(templates.UtilsDependencies, " "))
	fmt.Fprintln(out)
	info(out, "Then add components with:")
	info(out, "  zoo add button card dialog")
	fmt.Fprintln(out)
	return nil
}

// confirm asks a yes/no question defaulting to yes. End of input counts as
// the default.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s %s ", question, paint(styleDim, "[Y/n]"))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	fmt.Fprintln(out)

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true, nil
	}
	return false, nil
}

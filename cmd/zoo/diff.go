package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/transplant"
)

func diffCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "diff [component]",
		Short: "Compare installed components with upstream",
		Long: `Show how installed component files differ from the upstream sources.

Upstream files are rewritten with your aliases before comparing, so only
real changes are shown. Without an argument every installed component is
checked.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, c, args)
		},
	}
}

func runDiff(cmd *cobra.Command, c *cli, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadFromDir(c.cwd)
	if err != nil {
		return err
	}
	loc, err := c.locate(cmd, true)
	if err != nil {
		return err
	}
	cat, err := catalogFor(loc)
	if err != nil {
		return err
	}

	inst := transplant.NewInstaller(loc.Path, cat, cfg, c.logger)
	names := args
	if len(names) == 0 {
		names = inst.Installed()
		if len(names) == 0 {
			info(out, "No installed components found in %s", c.relPath(cfg.UIPath()))
			return nil
		}
	}

	changed := 0
	for _, name := range names {
		diffs, err := inst.Diff(cmd.Context(), name)
		if err != nil {
			return err
		}
		for _, d := range diffs {
			switch {
			case d.Missing:
				changed++
				warn(out, "%s is not installed", c.relPath(d.Path))
			case d.Changed():
				changed++
				printDiff(out, &d)
			}
		}
	}

	if changed == 0 {
		success(out, "Everything is up to date")
		return nil
	}
	fmt.Fprintln(out)
	info(out, "%d file(s) differ. Run 'zoo add <component> --overwrite' to take the upstream version.", changed)
	return nil
}

func printDiff(out io.Writer, d *transplant.FileDiff) {
	for _, line := range strings.Split(strings.TrimSuffix(d.String(), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = paint(styleBold, line)
		case strings.HasPrefix(line, "+"):
			line = paint(styleSuccess, line)
		case strings.HasPrefix(line, "-"):
			line = paint(styleError, line)
		}
		fmt.Fprintln(out, line)
	}
}

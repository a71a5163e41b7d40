package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
	"github.com/flowtomic/zoo/internal/prompt"
	"github.com/flowtomic/zoo/internal/transplant"
)

func addCmd(c *cli) *cobra.Command {
	var (
		overwrite bool
		dryRun    bool
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "add [components...]",
		Short: "Copy components into your project",
		Long: `Copy Zoo UI components into your project.

Components are copied as source code that you own, together with the
components they build on. Imports are rewritten to the aliases in
components.json. Hooks can be added by name too.

Without arguments an interactive picker is shown.

Examples:
  zoo add button
  zoo add dialog data-table
  zoo add use-debounce
  zoo add button --overwrite --yes
  zoo add navbar --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, c, args, addOptions{
				overwrite: overwrite,
				dryRun:    dryRun,
				yes:       yes,
			})
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that already exist")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompts")

	return cmd
}

type addOptions struct {
	overwrite bool
	dryRun    bool
	yes       bool
}

func runAdd(cmd *cobra.Command, c *cli, names []string, opts addOptions) error {
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

	if len(names) == 0 {
		names, err = prompt.Run("Select components to add", pickerItems(cat), cmd.InOrStdin(), out)
		if stderrors.Is(err, prompt.ErrCancelled) {
			info(out, "Cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		if len(names) == 0 {
			info(out, "Nothing selected")
			return nil
		}
	}

	if opts.overwrite && !opts.dryRun && !opts.yes {
		ok, err := confirm(cmd.InOrStdin(), out, "Existing files will be replaced. Continue?")
		if err != nil {
			return err
		}
		if !ok {
			info(out, "Aborted")
			return nil
		}
	}

	inst := transplant.NewInstaller(loc.Path, cat, cfg, c.logger)
	inst.Overwrite = opts.overwrite
	inst.DryRun = opts.dryRun

	report, err := inst.Add(cmd.Context(), names)
	if err != nil {
		return err
	}

	for _, f := range report.Files {
		dest := c.relPath(f.Dest)
		switch f.Action {
		case transplant.ActionWritten:
			success(out, "Added %s", dest)
		case transplant.ActionPlanned:
			info(out, "Would write %s", dest)
		case transplant.ActionSkipped:
			warn(out, "Skipped %s %s", dest, paint(styleDim, "(exists, use --overwrite)"))
		case transplant.ActionFailed:
			errorMsg(cmd.ErrOrStderr(), "Failed %s: %v", dest, f.Err)
		}
	}

	if installCmd := report.InstallCommand(); installCmd != "" {
		fmt.Fprintln(out)
		info(out, "Install the npm dependencies:")
		info(out, "  %s", installCmd)
	}
	fmt.Fprintln(out)

	return report.FailureError()
}

// pickerItems lists components by tier, then hooks.
func pickerItems(cat *catalog.Catalog) []prompt.Item {
	var items []prompt.Item
	for _, tier := range catalog.Tiers {
		group := tierTitle(tier)
		for _, comp := range cat.ByTier(tier) {
			items = append(items, prompt.Item{Name: comp.Name, Group: group, Description: comp.Description})
		}
	}
	for _, h := range cat.Hooks {
		items = append(items, prompt.Item{Name: h.Name, Group: "Hooks", Description: h.Description})
	}
	return items
}

func tierTitle(t catalog.Tier) string {
	switch t {
	case catalog.TierAtom:
		return "Atoms"
	case catalog.TierMolecule:
		return "Molecules"
	case catalog.TierOrganism:
		return "Organisms"
	}
	return string(t)
}

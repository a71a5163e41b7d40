package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flowtomic/zoo/internal/catalog"
	"github.com/flowtomic/zoo/internal/config"
)

func listCmd(c *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available components and hooks",
		Long: `List every component grouped by tier, then the hooks.

The catalog of a local checkout is used when one is found; otherwise the
catalog built into zoo is shown. Components already present in the
project are marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, c, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the catalog as JSON")

	return cmd
}

type listOutput struct {
	Source     string                  `json:"source"`
	Components []catalog.ComponentInfo `json:"components"`
	Hooks      []catalog.HookInfo      `json:"hooks"`
	Aliases    map[string]string       `json:"aliases,omitempty"`
}

func runList(cmd *cobra.Command, c *cli, asJSON bool) error {
	out := cmd.OutOrStdout()

	// Listing never goes to the network.
	loc, err := c.locate(cmd, false)
	if err != nil {
		loc = nil
	}
	cat, err := catalogFor(loc)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listOutput{
			Source:     cat.Source(),
			Components: cat.Components,
			Hooks:      cat.Hooks,
			Aliases:    cat.Aliases,
		})
	}

	installed := installedComponents(c)

	fmt.Fprintln(out)
	for _, tier := range catalog.Tiers {
		comps := cat.ByTier(tier)
		if len(comps) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s\n", paint(styleBold, tierTitle(tier)))
		for _, comp := range comps {
			status := "    "
			if installed[comp.Name] {
				status = paint(styleSuccess, " ✓  ")
			}
			deps := ""
			if len(comp.RegistryDependencies) > 0 {
				deps = paint(styleDim, fmt.Sprintf(" (requires: %s)", strings.Join(comp.RegistryDependencies, ", ")))
			}
			fmt.Fprintf(out, "%s%-16s %s%s\n", status, comp.Name, paint(styleDim, comp.Description), deps)
		}
		fmt.Fprintln(out)
	}

	if len(cat.Hooks) > 0 {
		fmt.Fprintf(out, "  %s\n", paint(styleBold, "Hooks"))
		for _, h := range cat.Hooks {
			fmt.Fprintf(out, "    %-16s %s\n", h.Name, paint(styleDim, h.Description))
		}
		fmt.Fprintln(out)
	}

	info(out, "Catalog: %s", cat.Source())
	fmt.Fprintln(out)
	return nil
}

// installedComponents returns the names of component directories under the
// project's ui alias, or nil outside a project.
func installedComponents(c *cli) map[string]bool {
	cfg, err := config.LoadFromDir(c.cwd)
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(cfg.UIPath())
	if err != nil {
		return nil
	}
	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names[filepath.Base(e.Name())] = true
		}
	}
	return names
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/check"
	"github.com/reqpin/reqpin/internal/logging"
	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/tui"
	"github.com/reqpin/reqpin/internal/tui/components"
	"github.com/reqpin/reqpin/internal/workspace"
)

// upgradeCmd represents the upgrade command.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade [file]",
	Short: "Upgrade outdated pins to their latest releases",
	Long: `Upgrade outdated pins in a requirements manifest.

The manifest is checked against the package registry, then an
interactive picker lets you choose which packages to upgrade. Chosen
pins are rewritten in place; comments, blank lines, and everything
else in the file stay untouched. The file is replaced atomically.

With --all or --no-tui, or when stdout is not a terminal, every
outdated pin is upgraded without the picker.

Examples:
  reqpin upgrade                     # Pick upgrades interactively
  reqpin upgrade --all               # Upgrade everything outdated
  reqpin upgrade --dry-run           # Show what would change
  reqpin upgrade --pre               # Consider pre-releases`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpgrade,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)

	upgradeCmd.Flags().BoolP("all", "a", false, "Upgrade all outdated pins without prompting")
	upgradeCmd.Flags().BoolP("dry-run", "n", false, "Show planned upgrades without writing the file")
	upgradeCmd.Flags().Bool("no-tui", false, "Never open the interactive picker")
	upgradeCmd.Flags().Bool("pre", false, "Consider pre-release and dev versions")
	upgradeCmd.Flags().Int("concurrency", 0, "Parallel registry lookups (default from config)")
}

// runUpgrade is the main entry point for the upgrade command.
func runUpgrade(cmd *cobra.Command, args []string) error {
	path := workspace.DefaultManifest(".")
	if len(args) == 1 {
		path = args[0]
	}

	file, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noTUI, _ := cmd.Flags().GetBool("no-tui")

	fetch := func() []components.ChecklistItem {
		return upgradeCandidates(checkManifest(cmd.Context(), cmd, file))
	}

	var selected []components.ChecklistItem
	if all || dryRun || noTUI || !stdoutIsTerminal() {
		selected = fetch()
	} else {
		// The picker shows a spinner while fetch queries the registry.
		picked, confirmed, err := tui.Run(fetch)
		if err != nil {
			return err
		}
		if !confirmed {
			cmd.Println("Upgrade cancelled.")
			return nil
		}
		selected = picked
	}
	if len(selected) == 0 {
		cmd.Println("All pins are up to date.")
		return nil
	}

	for _, item := range selected {
		if dryRun {
			cmd.Printf("would upgrade %s %s -> %s\n", item.Name, item.Current, item.Latest)
			continue
		}
		if err := file.SetPin(item.Name, item.Latest); err != nil {
			return err
		}
		cmd.Printf("upgraded %s %s -> %s\n", item.Name, item.Current, item.Latest)
	}
	if dryRun {
		return nil
	}

	if err := file.WriteFile(path); err != nil {
		return err
	}
	logging.Info("upgraded pins", "path", path, "count", len(selected))
	return nil
}

// upgradeCandidates keeps the outdated results as picker items.
func upgradeCandidates(results []check.Result) []components.ChecklistItem {
	var candidates []components.ChecklistItem
	for _, r := range results {
		if r.State == check.StateOutdated {
			candidates = append(candidates, components.ChecklistItem{
				Name:    r.Requirement.Name,
				Current: r.Current,
				Latest:  r.Latest,
			})
		}
	}
	return candidates
}

// stdoutIsTerminal reports whether stdout is attached to a terminal.
func stdoutIsTerminal() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

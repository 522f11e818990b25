package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/logging"
	"github.com/reqpin/reqpin/internal/manifest"
)

// fmtCmd represents the fmt command.
var fmtCmd = &cobra.Command{
	Use:   "fmt [file...]",
	Short: "Rewrite manifests in canonical form",
	Long: `Rewrite requirements manifests in canonical form.

Formatting trims trailing whitespace, rewrites each requirement with
canonical spacing (name==version  # comment), collapses runs of blank
lines, and drops blank lines at the edges of the file. Lines that do
not parse are left untouched.

With --sort, requirements are ordered alphabetically within each
blank-line separated block; comments stay attached to the requirement
below them.

Examples:
  reqpin fmt requirements.txt           # Format in place
  reqpin fmt --check requirements.txt   # Exit non-zero if not canonical
  reqpin fmt --sort requirements.txt    # Also sort each block`,
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolP("check", "c", false, "Report files that need formatting without rewriting them")
	fmtCmd.Flags().BoolP("sort", "s", false, "Sort requirements within each block")
}

// runFmt is the main entry point for the fmt command.
func runFmt(cmd *cobra.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")
	sortFlag, _ := cmd.Flags().GetBool("sort")

	opts := manifest.FormatOptions{Sort: sortFlag || activeConfig().Format.Sort}

	paths, err := resolveManifests(args)
	if err != nil {
		return err
	}

	dirty := 0
	for _, path := range paths {
		file, err := manifest.ParseFile(path)
		if err != nil {
			return err
		}

		original := file.String()
		formatted := manifest.Format(file, opts)
		if formatted == original {
			continue
		}
		dirty++

		if check {
			cmd.Printf("%s is not canonically formatted\n", path)
			continue
		}

		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			return err
		}
		logging.Info("formatted", "path", path)
		if !quiet {
			cmd.Printf("formatted %s\n", path)
		}
	}

	if check && dirty > 0 {
		return fmt.Errorf("%d file(s) need formatting", dirty)
	}
	return nil
}

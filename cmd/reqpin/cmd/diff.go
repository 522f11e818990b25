package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/diff"
	"github.com/reqpin/reqpin/internal/manifest"
)

// diffCmd represents the diff command.
var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compare two manifests pin by pin",
	Long: `Compare two requirements manifests pin by pin.

Packages are matched by normalized name, so numpy, NumPy, and
numpy (spelled with '_' or '.') all refer to the same package.
Each difference is classified:

  + added        only in NEW
  - removed      only in OLD
  ↑ upgraded     pinned version increased
  ↓ downgraded   pinned version decreased
  ~ changed      extras, markers, or unorderable versions changed

Exit status is 1 when the manifests differ.

Examples:
  reqpin diff requirements.txt requirements-new.txt
  git show HEAD~1:requirements.txt > /tmp/old && reqpin diff /tmp/old requirements.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)

	diffCmd.Flags().Bool("summary", false, "Print per-kind counts after the changes")
}

// runDiff is the main entry point for the diff command.
func runDiff(cmd *cobra.Command, args []string) error {
	oldFile, err := manifest.ParseFile(args[0])
	if err != nil {
		return err
	}
	newFile, err := manifest.ParseFile(args[1])
	if err != nil {
		return err
	}

	result := diff.Compare(oldFile, newFile)
	cmd.Print(result.String())

	summary, _ := cmd.Flags().GetBool("summary")
	if summary && !result.Empty() {
		counts := result.Summary()
		cmd.Printf("\n%d added, %d removed, %d upgraded, %d downgraded, %d changed, %d unchanged\n",
			counts[diff.KindAdded], counts[diff.KindRemoved],
			counts[diff.KindUpgraded], counts[diff.KindDowngraded],
			counts[diff.KindChanged], result.Unchanged)
	}

	if !result.Empty() {
		return fmt.Errorf("manifests differ (%d change(s))", len(result.Changes))
	}
	return nil
}

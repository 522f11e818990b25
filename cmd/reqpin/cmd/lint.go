package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	reqerrors "github.com/reqpin/reqpin/internal/errors"
	"github.com/reqpin/reqpin/internal/lint"
	"github.com/reqpin/reqpin/internal/logging"
	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/workspace"
)

// lintCmd represents the lint command.
var lintCmd = &cobra.Command{
	Use:   "lint [file...]",
	Short: "Check manifests against the exact-pin convention",
	Long: `Check requirements manifests against the exact-pin convention.

Every non-blank, non-comment line must be a well-formed name==version
pin. Further rules catch duplicate packages, malformed versions,
non-normalized names, and trailing whitespace.

Without arguments, lint discovers manifests under the current
directory (requirements.txt, requirements-*.txt, requirements/*.txt,
constraints.txt).

Rule severities are configured in .reqpin.yaml:
  lint:
    rules:
      pins-only: error
      unsorted: warning

Examples:
  reqpin lint                        # Lint all discovered manifests
  reqpin lint requirements.txt       # Lint one file
  reqpin lint --format json          # Machine-readable output`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringP("format", "f", "text", "Output format: text, json, yaml")
}

// runLint is the main entry point for the lint command.
func runLint(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if !lint.ValidOutputFormat(format) {
		return reqerrors.Newf(reqerrors.ErrConfig, "unknown output format %q", format)
	}

	paths, err := resolveManifests(args)
	if err != nil {
		return err
	}

	runner, err := lint.NewRunner(activeConfig().Lint)
	if err != nil {
		return err
	}

	var reports []*lint.Report
	errorCount := 0
	for _, path := range paths {
		file, err := manifest.ParseFile(path)
		if err != nil {
			return err
		}
		report := runner.Run(file)
		report.Path = path
		if report.HasErrors() {
			errs, _, _ := report.Counts()
			errorCount += errs
		}
		reports = append(reports, report)
		logging.Debug("linted", "path", path, "findings", len(report.Findings))
	}

	out, err := lint.Render(reports, lint.OutputFormat(format))
	if err != nil {
		return err
	}
	cmd.Print(out)

	if errorCount > 0 {
		return fmt.Errorf("lint found %d error(s)", errorCount)
	}
	return nil
}

// resolveManifests returns the manifests named by args, or discovers
// them under the current directory when args is empty.
func resolveManifests(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	found, err := workspace.Discover(".")
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, reqerrors.ManifestNotFound("requirements.txt")
	}

	paths := make([]string, len(found))
	for i, m := range found {
		paths[i] = m.Path
	}
	return paths, nil
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/check"
	"github.com/reqpin/reqpin/internal/logging"
	"github.com/reqpin/reqpin/internal/manifest"
	"github.com/reqpin/reqpin/internal/pypi"
	"github.com/reqpin/reqpin/internal/workspace"
)

// outdatedCmd represents the outdated command.
var outdatedCmd = &cobra.Command{
	Use:   "outdated [file]",
	Short: "Check pins against the package registry",
	Long: `Check every pin in a requirements manifest against the package
registry and report packages with newer releases, yanked pins, and
unpinned requirements.

Lookups run in parallel, bounded by registry.concurrency in
.reqpin.yaml (default 8). Results are printed in manifest order.

Exit status is 1 when any pin is outdated or yanked.

Examples:
  reqpin outdated                      # Check ./requirements.txt
  reqpin outdated requirements-dev.txt
  reqpin outdated --pre                # Consider pre-releases
  reqpin outdated --json               # Machine-readable output`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOutdated,
}

func init() {
	rootCmd.AddCommand(outdatedCmd)

	outdatedCmd.Flags().Bool("pre", false, "Consider pre-release and dev versions")
	outdatedCmd.Flags().Int("concurrency", 0, "Parallel registry lookups (default from config)")
	outdatedCmd.Flags().Bool("json", false, "Output results as JSON")
}

// outdatedJSON is the JSON shape of one result.
type outdatedJSON struct {
	Name       string `json:"name"`
	Line       int    `json:"line"`
	Current    string `json:"current,omitempty"`
	Latest     string `json:"latest,omitempty"`
	State      string `json:"state"`
	YankReason string `json:"yank_reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// runOutdated is the main entry point for the outdated command.
func runOutdated(cmd *cobra.Command, args []string) error {
	path := workspace.DefaultManifest(".")
	if len(args) == 1 {
		path = args[0]
	}

	file, err := manifest.ParseFile(path)
	if err != nil {
		return err
	}

	results := checkManifest(cmd.Context(), cmd, file)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		out := make([]outdatedJSON, len(results))
		for i, r := range results {
			out[i] = outdatedJSON{
				Name:       r.Requirement.Name,
				Line:       r.Line,
				Current:    r.Current,
				Latest:     r.Latest,
				State:      string(r.State),
				YankReason: r.YankReason,
			}
			if r.Err != nil {
				out[i].Error = r.Err.Error()
			}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
	} else {
		printResults(cmd, results)
	}

	counts := check.Summary(results)
	if n := counts[check.StateOutdated] + counts[check.StateYanked]; n > 0 {
		return fmt.Errorf("%d pin(s) need attention", n)
	}
	return nil
}

// checkManifest runs the registry check with flag and config settings applied.
func checkManifest(ctx context.Context, cmd *cobra.Command, file *manifest.File) []check.Result {
	registryCfg := activeConfig().Registry

	pre, _ := cmd.Flags().GetBool("pre")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	if concurrency <= 0 {
		concurrency = registryCfg.Concurrency
	}

	client := pypi.NewClient(
		pypi.WithBaseURL(registryCfg.IndexURL),
		pypi.WithTimeout(registryCfg.Timeout),
	)

	opts := check.Options{
		Concurrency:        concurrency,
		IncludePrereleases: pre || registryCfg.AllowPrereleases,
	}
	logging.Debug("checking registry", "requirements", len(file.Requirements()), "concurrency", opts.Concurrency)

	return check.Outdated(ctx, client, file, opts)
}

// printResults renders results as an aligned text table.
func printResults(cmd *cobra.Command, results []check.Result) {
	if len(results) == 0 {
		cmd.Println("No requirements found.")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, r := range results {
		switch r.State {
		case check.StateUpToDate:
			if !quiet {
				fmt.Fprintf(w, "%s\t%s\tup to date\n", r.Requirement.Name, r.Current)
			}
		case check.StateOutdated:
			fmt.Fprintf(w, "%s\t%s -> %s\toutdated\n", r.Requirement.Name, r.Current, r.Latest)
		case check.StateYanked:
			reason := ""
			if r.YankReason != "" {
				reason = " (" + r.YankReason + ")"
			}
			fmt.Fprintf(w, "%s\t%s\tyanked%s\n", r.Requirement.Name, r.Current, reason)
		case check.StateUnpinned:
			fmt.Fprintf(w, "%s\t\tunpinned\n", r.Requirement.Name)
		default:
			fmt.Fprintf(w, "%s\t%s\tunknown: %v\n", r.Requirement.Name, r.Current, r.Err)
		}
	}
	w.Flush()
}

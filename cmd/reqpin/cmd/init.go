package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/config"
	reqerrors "github.com/reqpin/reqpin/internal/errors"
)

// defaultConfigYAML is the scaffolded .reqpin.yaml with every setting
// at its default, commented for editing.
const defaultConfigYAML = `# reqpin configuration
# Environment variables with the REQPIN_ prefix override these values,
# e.g. REQPIN_REGISTRY_INDEX_URL, REQPIN_LOG_LEVEL.

registry:
  # Package index base URL.
  index_url: https://pypi.org
  # Per-request timeout.
  timeout: 10s
  # Parallel registry lookups for outdated/upgrade.
  concurrency: 8
  # Consider pre-release and dev versions when resolving latest.
  allow_prereleases: false

lint:
  # Rule severities: error, warning, info, or off.
  # The syntax rule always runs as an error.
  rules:
    pins-only: error
    well-formed-version: error
    duplicate-package: error
    non-normalized-name: warning
    trailing-whitespace: warning
    unsorted: off

format:
  # Sort requirements within each blank-line separated block.
  sort: false

log:
  # Minimum level: debug, info, warn, error.
  level: info
  # Log directory; empty disables file logging.
  dir: .reqpin/logs
  # Also log to stderr.
  console: false
  # Use JSON log format.
  json: false
`

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .reqpin.yaml in the current directory",
	Long: `Create a .reqpin.yaml configuration file in the current directory
with every setting at its default, ready to edit.

Use --force to overwrite an existing configuration.

Examples:
  reqpin init          # Create .reqpin.yaml
  reqpin init --force  # Overwrite an existing .reqpin.yaml`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolP("force", "f", false, "Overwrite existing configuration")
}

// runInit is the main entry point for the init command.
func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(config.DefaultConfigName); err == nil && !force {
		return reqerrors.Newf(reqerrors.ErrConfig,
			"%s already exists (use --force to overwrite)", config.DefaultConfigName)
	}

	if err := os.WriteFile(config.DefaultConfigName, []byte(defaultConfigYAML), 0644); err != nil {
		return err
	}

	cmd.Printf("Created %s\n", config.DefaultConfigName)
	cmd.Println("Edit it to configure lint rules, formatting, and the registry.")
	cmd.Println("Run 'reqpin lint' to check your manifests.")

	return nil
}

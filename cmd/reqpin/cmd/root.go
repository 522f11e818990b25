// Package cmd provides the CLI commands for reqpin.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqpin/reqpin/internal/config"
	"github.com/reqpin/reqpin/internal/logging"
)

// Version information - set via ldflags at build time in main.go.
// These are exported so main.go can set them before Execute().
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Persistent flag values.
var (
	cfgFile string
	verbose bool
	quiet   bool
)

// cfg is the loaded configuration, populated in setupRoot.
var cfg *config.Config

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "reqpin",
	Short: "reqpin - keep requirements.txt pinned, tidy, and current",
	Long: `reqpin is a toolkit for Python requirements.txt manifests that
follow the exact-pin convention: every dependency is pinned with
name==version.

It lints manifests against that convention, formats them canonically,
diffs two manifests, and checks pins against the package registry to
find and apply upgrades.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRoot,
	PersistentPostRun: teardownRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .reqpin.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
}

// setupRoot loads configuration and initializes logging before any command runs.
func setupRoot(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		// An explicit --config must exist.
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadOrDefault(config.DefaultConfigName)
	}
	if err != nil {
		return err
	}

	logCfg := &logging.Config{
		Level:       logging.ParseLevel(cfg.Log.Level),
		LogDir:      cfg.Log.Dir,
		MaxLogFiles: cfg.Log.MaxFiles,
		MaxLogAge:   cfg.Log.MaxAge,
		Console:     cfg.Log.Console,
		JSONFormat:  cfg.Log.JSON,
	}
	if verbose {
		logCfg.Level = logging.LevelDebug
		logCfg.Console = true
	}
	if err := logging.InitGlobal(logCfg); err != nil {
		// Logging failures never block the command itself.
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: logging disabled: %v\n", err)
	}

	logging.Debug("starting", "command", cmd.Name(), "version", Version)
	return nil
}

// teardownRoot flushes and closes the log file.
func teardownRoot(cmd *cobra.Command, args []string) {
	logging.CloseGlobal()
}

// activeConfig returns the loaded configuration, falling back to
// defaults when commands run outside Execute (tests).
func activeConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return config.NewConfig()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("reqpin {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}

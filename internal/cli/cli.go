package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/foamium/cargo-sources/pkg/buildinfo"
	"github.com/foamium/cargo-sources/pkg/cargo"
	"github.com/foamium/cargo-sources/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display and completions.
const appName = "cargo-sources"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Runner starts cargo. Nil means a runner wired to the command's
	// stdout and stderr.
	Runner cargo.Runner
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Running the root command generates the manifest.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool
	var opts generateFlags

	root := &cobra.Command{
		Use:   appName,
		Short: "Generate flatpak/cargo-sources.json for offline Flatpak builds",
		Long: `cargo-sources prepares the cargo dependencies of a Rust project for an
offline Flatpak build.

It runs "cargo fetch" and "cargo metadata", then writes
flatpak/cargo-sources.json. By default the file holds an empty list and
instructions for flatpak-cargo-generator are printed; with --from-lock the
list is generated from Cargo.lock.`,
		Version:       buildinfo.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.SetCommandHooks(commandLog{logger: c.Logger})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	opts.register(root)

	root.AddCommand(c.completionCommand())

	return root
}

// runner returns the cargo runner for cmd.
func (c *CLI) runner(cmd *cobra.Command) cargo.Runner {
	if c.Runner != nil {
		return c.Runner
	}
	return &cargo.ExecRunner{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()}
}

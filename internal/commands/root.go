// Package commands provides the CLI commands for randomid.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags)
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "randomid",
		Short: "Generate non-sequential, collision-free IDs from a keyed permutation",
		Long: `randomid issues every integer of a domain [0, N) exactly once, in an order
that cannot be predicted without the secret key. IDs are computed on demand
from a counter, so the only state to keep between runs is the counter itself.

Use 'randomid keygen' to create a key, then 'randomid generate' to print IDs.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		// Errors are logged by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := &globalFlags{}
	flags.register(root)

	root.AddCommand(
		newKeygenCommand(),
		newGenerateCommand(flags),
		newPermuteCommand(flags),
		newVerifyCommand(flags),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}

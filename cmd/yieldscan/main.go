package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/yieldscan/internal/version"
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yieldscan",
		Short: "Generator route analysis for Python, C# and Go",
		Long: `yieldscan enumerates the execution routes of generator functions.

It groups the emit and stop statements of a Python generator, a C# iterator
or a Go range-over-func iterator into blocks, builds a route tree from the
enclosing if/else structure and lists every route from entry to a terminal
point together with the values it emits.

Functions whose emits sit under switch-style branching are reported as
unsupported, and functions beyond the configured caps as too complex.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRoutesCmd())
	rootCmd.AddCommand(NewTreeCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

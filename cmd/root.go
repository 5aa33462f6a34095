// Package cmd wires the core analysis engine to a cobra CLI: check, init,
// explain, and serve (LSP over stdio).
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kaizen/output"
)

var (
	// Version and GitCommit are set by the build (ldflags); the defaults
	// below are only seen when running from source.
	Version   = "0.1.0"
	GitCommit = "HEAD"
)

var rootCmd = &cobra.Command{
	Use:   "kaizen",
	Short: "Static analysis for JavaScript and TypeScript",
	Long: `kaizen analyzes JavaScript and TypeScript source for quality and
security issues: unsafe patterns, unused bindings, and taint flows from
untrusted input into dangerous sinks.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Loads KAIZEN_API_KEY / KAIZEN_API_URL from a local .env file for
		// license/tier resolution during development; a missing .env is not
		// an error.
		_ = godotenv.Load()

		noBanner, _ := cmd.Flags().GetBool("no-banner")
		logger := output.NewLogger(output.VerbosityNormal)
		if cmd.Name() == "help" || (len(os.Args) == 1 || (len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h"))) {
			if output.ShouldShowBanner(logger.IsTTY(), noBanner) {
				output.PrintBanner(logger.GetWriter(), Version, output.DefaultBannerOptions())
			} else if logger.IsTTY() && !noBanner {
				fmt.Fprintln(os.Stderr, output.GetCompactBanner(Version))
				fmt.Fprintln(os.Stderr)
			}
		}
	},
}

// Execute runs the root command; main calls this and exits with its error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("no-banner", false, "Disable the startup banner")
	rootCmd.PersistentFlags().Bool("verbose", false, "Verbose output")
}

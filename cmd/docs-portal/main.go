// Package main is the entry point for the docs-portal server and its
// static build.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docs-portal",
		Short: "StarRocks best-practice manual with reader sign-in",
		Long: `docs-portal serves the StarRocks best-practice manual together with the
login and register pages and the navbar sign-in status.

Example usage:
  docs-portal serve                  # Run the web server
  docs-portal prerender --out dist   # Write every doc as static HTML
  docs-portal healthcheck            # Check the local server (container healthcheck)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newPrerenderCmd(), newHealthcheckCmd())
	return root
}

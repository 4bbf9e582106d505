// cmd/melodicamate/root.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	var configPath string

	serve := func(_ *cobra.Command, _ []string) error {
		return run(configPath)
	}

	cmd := &cobra.Command{
		Use:          "melodicamate",
		Short:        "MelodicaMate practice coach backend",
		SilenceUsage: true,
		RunE:         serve,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: configs/config.yaml if present)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  serve,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintf(c.OutOrStdout(), "melodicamate %s (%s)\n", version, commit)
		},
	})
	return cmd
}

// Package cmd defines the CLI commands for the curator executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Product curation service for marketplace dashboards",
		Long: `curator turns marketplace product URLs into normalized, reviewable
records. It classifies URLs, extracts names, images, and prices through a
CORS read-through proxy, synthesizes descriptions, and manages the
pending/approved/disapproved review workflow with season groupings.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newFetchCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

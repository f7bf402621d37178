package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for paramscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paramscan",
		Short: "Crawl a site and collect its distinct query-parameter shapes",
		Long: `paramscan crawls a web site within a single host and a depth limit and
records the first URL seen for every distinct set of query-parameter names.

The output file gets one URL per line and is only ever appended to, so
repeated runs accumulate. Runs are also recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Package cmd defines and implements the CLI commands for the countryscrape executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// newScrapeCmd creates and configures the 'scrape' subcommand.
// This command runs the whole batch job: fetch the source page, extract
// the country records, full-refresh the store, and print the report.
func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetches the countries page and refreshes the store",
		Long: `Fetches the configured countries page, extracts up to the configured
number of country records, replaces the contents of the destination
table with them, and prints the first rows plus the population total.

A fetch failure or a page without recognizable country blocks halts the
run cleanly without touching the store. Store failures exit non-zero.`,

		RunE: runScrapeCommand,
	}
	return cmd
}

func runScrapeCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := appInstance.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run scrape: %w", err)
	}
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/report"
)

// summaryCmd prints the feed metadata and whole-feed totals.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the kill feed",
	Long: `Display the feed's generation time and record count, the number of
players seen, the date range covered, the top enrage and the average kill time.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, _ []string) error {
	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	return printSummary(d)
}

func printSummary(d *dashboard) error {
	db, err := d.snapshot()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	report.PrintFeedSummary(os.Stdout, d.Meta, d.TotalRecords, ov, d.Location)
	return nil
}

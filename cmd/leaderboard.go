package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/report"
)

var leaderboardLimit int

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Personal best enrage for every player",
	Long: `Rank players by their highest enrage kill. Equal enrage is ranked by the
faster kill time.`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().IntVar(&leaderboardLimit, "limit", 0, "show only the top N players (0 = all)")
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	return printLeaderboard(d, leaderboardLimit)
}

func printLeaderboard(d *dashboard, limit int) error {
	db, err := d.snapshot()
	if err != nil {
		return err
	}
	defer db.Close()

	pbs, err := db.PersonalBests(limit)
	if err != nil {
		return fmt.Errorf("personal bests: %w", err)
	}
	if len(pbs) == 0 {
		fmt.Fprintln(os.Stdout, "No kills recorded yet.")
		return nil
	}
	report.PrintLeaderboard(os.Stdout, pbs, d.Location)
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/feed"
	"github.com/diealivers/enrage-tracker/internal/report"
)

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List every player in the feed",
	Args:  cobra.NoArgs,
	RunE:  runPlayers,
}

func runPlayers(cmd *cobra.Command, _ []string) error {
	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	printPlayers(d)
	return nil
}

func printPlayers(d *dashboard) {
	names := feed.UniquePlayers(d.Result)
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "No kills recorded yet.")
		return
	}
	report.PrintPlayerList(os.Stdout, names, d.Players)
}

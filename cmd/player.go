package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/aggregator"
	"github.com/diealivers/enrage-tracker/internal/model"
	"github.com/diealivers/enrage-tracker/internal/report"
)

var (
	playerAll    bool
	playerRecent int
	playerJSON   bool
)

// playerCmd shows the full statistics view for one player.
var playerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "Enrage statistics for one player",
	Long: `Show a player's overview, enrage brackets, milestone timeline, busiest
24 hours, progress predictions and most recent kills.

Names with spaces may be given unquoted. If there is no exact match a unique
case-insensitive match is used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().BoolVar(&playerAll, "all", false, "list every kill instead of the most recent ones")
	playerCmd.Flags().IntVar(&playerRecent, "recent", 0, "number of recent kills to list (default from config)")
	playerCmd.Flags().BoolVar(&playerJSON, "json", false, "print the statistics as JSON")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	name := strings.Join(args, " ")

	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	stats, err := playerStats(d, name)
	if err != nil {
		return err
	}

	if playerJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return fmt.Errorf("encode stats: %w", err)
		}
		return nil
	}

	limit := cfg.Display.RecentKills
	if cmd.Flags().Changed("recent") {
		limit = playerRecent
	}
	if playerAll {
		limit = 0
	}
	printPlayerStats(os.Stdout, stats, d.Location, limit)
	return nil
}

// playerStats computes the statistics for name against the loaded dashboard.
func playerStats(d *dashboard, name string) (*model.PlayerStats, error) {
	p := findPlayer(d.Players, name)
	if p == nil {
		return nil, fmt.Errorf("no kills found for player %q", name)
	}
	stats := aggregator.PlayerStats(p.Kills, p.Player, d.Now)
	if stats == nil {
		return nil, fmt.Errorf("no kills found for player %q", name)
	}
	return stats, nil
}

// printPlayerStats writes every section of the player view. limit <= 0 lists all kills.
func printPlayerStats(w io.Writer, stats *model.PlayerStats, loc *time.Location, limit int) {
	report.PrintPlayerOverview(w, stats)

	fmt.Fprintf(w, "--- Enrage brackets ---\n\n")
	report.PrintBracketTable(w, stats.Brackets)

	fmt.Fprintf(w, "\n--- Milestones ---\n\n")
	report.PrintMilestoneTable(w, stats.Timeline, loc)

	fmt.Fprintln(w)
	report.PrintBest24h(w, stats.MostKills24h, loc)
	report.PrintPredictions(w, stats.Predictions)

	if limit > 0 && len(stats.AllKills) > limit {
		fmt.Fprintf(w, "--- Recent kills (%d of %d) ---\n\n", limit, len(stats.AllKills))
	} else {
		fmt.Fprintf(w, "--- Kills (%d) ---\n\n", len(stats.AllKills))
	}
	report.PrintKillTable(w, stats.AllKills, limit)
}

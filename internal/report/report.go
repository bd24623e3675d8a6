package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/diealivers/enrage-tracker/internal/format"
	"github.com/diealivers/enrage-tracker/internal/model"
	"github.com/diealivers/enrage-tracker/internal/storage"
)

const timestampLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
}

// PrintFeedSummary prints the feed header and whole-feed totals.
func PrintFeedSummary(w io.Writer, meta model.Meta, totalRecords int, ov storage.Overview, loc *time.Location) {
	fmt.Fprintf(w, "\n=== Feed Summary ===\n\n")
	fmt.Fprintf(w, "  Generated at  : %s\n", meta.GeneratedAt)
	fmt.Fprintf(w, "  Records       : %d (meta count %d)\n", totalRecords, meta.Count)
	fmt.Fprintf(w, "  Players seen  : %d\n", ov.UniquePlayers)
	if ov.TotalKills > 0 {
		fmt.Fprintf(w, "  Date range    : %s → %s\n",
			time.Unix(ov.EarliestKill, 0).In(loc).Format(timestampLayout),
			time.Unix(ov.LatestKill, 0).In(loc).Format(timestampLayout))
		fmt.Fprintf(w, "  Top enrage    : %s\n", format.Enrage(ov.MaxEnrage))
		fmt.Fprintf(w, "  Avg kill time : %s\n", format.KillTime(ov.AvgKillTime))
	}
	keys := make([]string, 0, len(meta.Extra))
	for k := range meta.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  meta.%-8s: %s\n", k, string(meta.Extra[k]))
	}
	fmt.Fprintln(w)
}

// PrintPlayerList prints one row per player, in the order given.
func PrintPlayerList(w io.Writer, names []string, players *model.PlayerSet) {
	table := newTable(w)
	table.Header("PLAYER", "KILLS", "BEST", "LAST KILL")
	for _, name := range names {
		p := players.Get(name)
		if p == nil || len(p.Kills) == 0 {
			continue
		}
		best := 0
		for _, k := range p.Kills {
			if k.Enrage > best {
				best = k.Enrage
			}
		}
		// Kills are newest first.
		table.Append(name, strconv.Itoa(len(p.Kills)), format.Enrage(best), p.Kills[0].TimeAgo)
	}
	table.Render()
}

// PrintPlayerOverview prints the headline numbers for one player.
func PrintPlayerOverview(w io.Writer, s *model.PlayerStats) {
	fmt.Fprintf(w, "\nPlayer: %s  |  Kills: %d  |  Highest: %s (%s, %s)  |  Avg kill: %s  |  Last kill: %s\n\n",
		s.Player, s.TotalKills,
		format.Enrage(s.HighestEnrage), s.HighestEnrageKill.FormattedKillTime, s.HighestEnrageKill.FormattedDate,
		s.AvgKillTime, s.TimeSinceLastKill)
}

// PrintBracketTable prints per-bracket kill counts and times.
func PrintBracketTable(w io.Writer, brackets []model.Bracket) {
	table := newTable(w)
	table.Header("BRACKET", "KILLS", "AVG", "FASTEST", "FASTEST_ENRAGE", "FASTEST_DATE", "SAMPLE")
	for _, b := range brackets {
		table.Append(
			b.Range,
			strconv.Itoa(b.Kills),
			b.AvgTime,
			b.FastestTime,
			format.Enrage(b.FastestKill.Enrage),
			b.FastestKill.FormattedDate,
			sampleFlag(b.Kills),
		)
	}
	table.Render()
}

// PrintMilestoneTable prints the milestone timeline oldest first.
func PrintMilestoneTable(w io.Writer, milestones []model.Milestone, loc *time.Location) {
	if len(milestones) == 0 {
		fmt.Fprintln(w, "No milestones reached yet.")
		return
	}
	table := newTable(w)
	table.Header("MILESTONE", "DATE", "KILL TIME")
	for _, m := range milestones {
		table.Append(m.Label, m.Date.In(loc).Format(timestampLayout), m.KillTime)
	}
	table.Render()
}

// PrintBest24h prints the busiest 24h window.
func PrintBest24h(w io.Writer, win model.Window, loc *time.Location) {
	if win.Period == nil {
		fmt.Fprintln(w, "Most kills in 24h: —")
		return
	}
	fmt.Fprintf(w, "Most kills in 24h: %d  (%s → %s)\n", win.Count,
		win.Period.Start.In(loc).Format(timestampLayout),
		win.Period.End.In(loc).Format(timestampLayout))
}

// PrintPredictions prints the trend strings and suggestions.
func PrintPredictions(w io.Writer, p model.Predictions) {
	fmt.Fprintf(w, "\nNext milestone  : %s\n", p.NextMilestone)
	fmt.Fprintf(w, "Improvement rate: %s\n", p.ImprovementRate)
	for _, s := range p.Suggestions {
		fmt.Fprintf(w, "  • %s\n", s)
	}
	fmt.Fprintln(w)
}

// PrintKillTable prints kills in the order given. limit <= 0 prints all of them.
func PrintKillTable(w io.Writer, kills []model.EnrichedKill, limit int) {
	if limit > 0 && len(kills) > limit {
		kills = kills[:limit]
	}
	table := newTable(w)
	table.Header("DATE", "ENRAGE", "KILL TIME", "AGO")
	for _, k := range kills {
		table.Append(k.FormattedDate, format.Enrage(k.Enrage), k.FormattedKillTime, k.TimeAgo)
	}
	table.Render()
}

// PrintLeaderboard prints personal bests, best first.
func PrintLeaderboard(w io.Writer, pbs []model.PersonalBest, loc *time.Location) {
	table := newTable(w)
	table.Header("#", "PLAYER", "ENRAGE", "KILL TIME", "DATE", "KILLS")
	for i, pb := range pbs {
		table.Append(
			strconv.Itoa(i+1),
			pb.Player,
			format.Enrage(pb.Enrage),
			format.KillTime(pb.KillTimeSeconds),
			format.Date(pb.TimeOfKill, loc),
			strconv.Itoa(pb.Kills),
		)
	}
	table.Render()
}

// sampleFlag mirrors the prediction advice: under 5 kills in a bracket is thin.
func sampleFlag(n int) string {
	switch {
	case n >= 20:
		return "OK"
	case n >= 5:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}

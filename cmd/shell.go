package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Load the kill feed once and explore it interactively. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	d, err := loadDashboard(ctx)
	if err != nil {
		return err
	}

	cGreeting.Println("enragetracker shell")
	cMuted.Printf("%d kills from %d players, feed generated %s\n", d.TotalRecords, d.Players.Len(), d.Meta.GeneratedAt)
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("enrage")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		name, args := tokens[0], tokens[1:]

		switch name {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "players":
			printPlayers(d)
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <name>")
				continue
			}
			shellPlayer(d, args)
		case "summary":
			if err := printSummary(d); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "leaderboard":
			limit := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					cError.Fprintln(os.Stderr, "usage: leaderboard [N]")
					continue
				}
				limit = n
			}
			if err := printLeaderboard(d, limit); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "sql":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sql <query>")
				continue
			}
			if err := querySnapshot(os.Stdout, d, strings.Join(args, " ")); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "reload":
			fresh, err := loadDashboard(ctx)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			d = fresh
			cMuted.Printf("reloaded: %d kills from %d players\n", d.TotalRecords, d.Players.Len())
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", name)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"players", "list every player in the feed"},
		{"player <name>", "statistics for one player"},
		{"player <name> --all", "same, listing every kill"},
		{"summary", "feed overview"},
		{"leaderboard [N]", "personal bests, optionally the top N"},
		{"sql <query>", "query the kills table"},
		{"reload", "fetch the feed again"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-26s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellPlayer(d *dashboard, args []string) {
	limit := cfg.Display.RecentKills
	var nameParts []string
	for _, a := range args {
		if a == "--all" {
			limit = 0
			continue
		}
		nameParts = append(nameParts, a)
	}
	name := strings.Join(nameParts, " ")

	stats, err := playerStats(d, name)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cHeader.Fprintf(os.Stdout, "\n=== %s ===\n", stats.Player)
	printPlayerStats(os.Stdout, stats, d.Location, limit)
}

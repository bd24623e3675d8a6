package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/config"
)

var (
	configPath     string
	sourceFlag     string
	sheetURLFlag   string
	sheetNameFlag  string
	sheetCredsFlag string
	tzFlag         string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "enragetracker",
	Short: "Boss kill enrage tracker",
	Long: `Read the boss kill feed and show per-player enrage statistics:
brackets, milestones, the busiest 24 hours and progress predictions.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default "+config.DefaultConfigPath+")")
	pf.StringVar(&sourceFlag, "source", "", "kill feed: path to data.json, an http(s) URL, or \"hiscores\" for the live group hiscores")
	pf.StringVar(&sheetURLFlag, "sheet-url", "", "read kills from this Google Sheet instead of the feed")
	pf.StringVar(&sheetNameFlag, "sheet-name", "", "worksheet name within the sheet")
	pf.StringVar(&sheetCredsFlag, "sheet-credentials", "", "service account credentials JSON for the sheet")
	pf.StringVar(&tzFlag, "tz", "", "timezone for displayed dates (e.g. UTC, Local, Europe/London)")

	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(analyzeCmd)
}

// loadConfig resolves configuration: file, then environment, then flags.
func loadConfig(cmd *cobra.Command, _ []string) error {
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOptional(config.DefaultConfigPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = sourceFlag
	}
	if flags.Changed("sheet-url") {
		cfg.Sheet.URL = sheetURLFlag
	}
	if flags.Changed("sheet-name") {
		cfg.Sheet.Name = sheetNameFlag
	}
	if flags.Changed("sheet-credentials") {
		cfg.Sheet.CredentialsFile = sheetCredsFlag
	}
	if flags.Changed("tz") {
		cfg.Timezone = tzFlag
	}
	return cfg.Validate()
}

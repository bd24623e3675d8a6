package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/diealivers/enrage-tracker/internal/model"
)

const analyzeSystemPrompt = `You are a boss-kill performance coach. You are given structured data
from an enrage tracker and a question from the player.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable. Focus on what the player can actually improve.

Glossary:
- Enrage: the difficulty level a kill was made at. Higher is harder.
- Kill time: fight duration as m:ss.t. Lower is better.
- Bracket: a 10k enrage range (e.g. 20-30k) with kill count, average and fastest time.
- Milestone: the first kill at or past each 5k enrage step.
- Most kills in 24h: the largest number of kills inside any 24-hour window.
- Improvement rate: enrage gained per week, from the first and latest kill.`

// recentKillsForAnalysis bounds how many individual kills go into the prompt.
const recentKillsForAnalysis = 25

var (
	analyzeModel  string
	analyzeAPIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <name> <question>",
	Short: "AI-powered grounded analysis of a player (requires ANTHROPIC_API_KEY)",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	name, question := args[0], args[1]

	d, err := loadDashboard(cmd.Context())
	if err != nil {
		return err
	}
	stats, err := playerStats(d, name)
	if err != nil {
		return err
	}

	contextJSON, err := buildPlayerContext(stats)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	modelID := cfg.Analyze.Model
	if analyzeModel != "" {
		modelID = analyzeModel
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, modelID, contextJSON, question)
}

// buildPlayerContext serialises a player's statistics into compact JSON.
func buildPlayerContext(s *model.PlayerStats) (string, error) {
	type killEntry struct {
		Enrage   int    `json:"enrage"`
		Date     string `json:"date"`
		KillTime string `json:"kill_time"`
	}
	type bracketEntry struct {
		Range   string `json:"range"`
		Kills   int    `json:"kills"`
		AvgTime string `json:"avg_time"`
		Fastest string `json:"fastest"`
	}
	type milestoneEntry struct {
		Label    string `json:"label"`
		Enrage   int    `json:"enrage"`
		Date     string `json:"date"`
		KillTime string `json:"kill_time"`
	}

	brackets := make([]bracketEntry, 0, len(s.Brackets))
	for _, b := range s.Brackets {
		brackets = append(brackets, bracketEntry{Range: b.Range, Kills: b.Kills, AvgTime: b.AvgTime, Fastest: b.FastestTime})
	}
	milestones := make([]milestoneEntry, 0, len(s.Timeline))
	for _, m := range s.Timeline {
		milestones = append(milestones, milestoneEntry{
			Label:    m.Label,
			Enrage:   m.Enrage,
			Date:     m.Date.Format("2006-01-02"),
			KillTime: m.KillTime,
		})
	}
	recent := s.AllKills
	if len(recent) > recentKillsForAnalysis {
		recent = recent[:recentKillsForAnalysis]
	}
	kills := make([]killEntry, 0, len(recent))
	for _, k := range recent {
		kills = append(kills, killEntry{Enrage: k.Enrage, Date: k.FormattedDate, KillTime: k.FormattedKillTime})
	}

	best24h := map[string]interface{}{"count": s.MostKills24h.Count}
	if p := s.MostKills24h.Period; p != nil {
		best24h["start"] = p.Start.Format("2006-01-02 15:04")
		best24h["end"] = p.End.Format("2006-01-02 15:04")
	}

	doc := map[string]interface{}{
		"subject":     "player",
		"player":      s.Player,
		"total_kills": s.TotalKills,
		"overview": map[string]interface{}{
			"highest_enrage":       s.HighestEnrage,
			"highest_enrage_time":  s.HighestEnrageKill.FormattedKillTime,
			"highest_enrage_date":  s.HighestEnrageKill.FormattedDate,
			"avg_kill_time":        s.AvgKillTime,
			"time_since_last_kill": s.TimeSinceLastKill,
		},
		"brackets":   brackets,
		"milestones": milestones,
		"best_24h":   best24h,
		"predictions": map[string]interface{}{
			"next_milestone":   s.Predictions.NextMilestone,
			"improvement_rate": s.Predictions.ImprovementRate,
			"suggestions":      s.Predictions.Suggestions,
		},
		"recent_kills": kills,
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				fmt.Fprint(os.Stdout, delta.Delta.AsTextDelta().Text)
			}
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed: check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}

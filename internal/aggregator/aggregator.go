package aggregator

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/diealivers/enrage-tracker/internal/format"
	"github.com/diealivers/enrage-tracker/internal/model"
)

const (
	secondsPerDay  = 86400
	secondsPerWeek = 7 * secondsPerDay

	milestoneStep = 5000

	// minPredictionKills is the fewest kills Predict will extrapolate from.
	minPredictionKills = 3
	// lowSampleKills flags the current bracket as under-practised.
	lowSampleKills = 5
)

// bracketRanges are the fixed 10k enrage buckets. Bounds are inclusive.
var bracketRanges = []struct {
	min, max int
	label    string
}{
	{0, 9999, "0-10k"},
	{10000, 19999, "10-20k"},
	{20000, 29999, "20-30k"},
	{30000, 39999, "30-40k"},
	{40000, 49999, "40-50k"},
	{50000, 59999, "50-60k"},
	{60000, 69999, "60-70k"},
}

// milestoneThresholds are 5k..50k in 5k steps.
var milestoneThresholds = func() []int {
	var out []int
	for t := milestoneStep; t <= 50000; t += milestoneStep {
		out = append(out, t)
	}
	return out
}()

// PlayerStats computes the full player view from one player's kills.
// Returns nil when there are no kills.
func PlayerStats(kills []model.EnrichedKill, name string, now time.Time) *model.PlayerStats {
	if len(kills) == 0 {
		return nil
	}

	byEnrage := sortedCopy(kills, func(a, b model.EnrichedKill) bool { return a.Enrage > b.Enrage })
	byDate := sortedCopy(kills, func(a, b model.EnrichedKill) bool { return a.TimeOfKill > b.TimeOfKill })

	var sum float64
	for _, k := range kills {
		sum += k.KillTimeSeconds
	}
	avg := sum / float64(len(kills))

	mostRecent := byDate[0]
	return &model.PlayerStats{
		Player:             name,
		TotalKills:         len(kills),
		HighestEnrage:      byEnrage[0].Enrage,
		HighestEnrageKill:  byEnrage[0],
		AvgKillTime:        format.KillTime(avg),
		AvgKillTimeSeconds: avg,
		MostRecentKill:     mostRecent,
		TimeSinceLastKill:  format.TimeAgoDetailed(mostRecent.TimeOfKill, now),
		Brackets:           Brackets(kills),
		Timeline:           Milestones(kills),
		MostKills24h:       MostKillsIn24h(kills),
		Predictions:        Predict(kills),
		AllKills:           byDate,
	}
}

// Brackets buckets kills into the fixed 10k enrage ranges. Empty brackets are
// left out, so every returned bracket has Kills > 0.
func Brackets(kills []model.EnrichedKill) []model.Bracket {
	out := []model.Bracket{}
	for _, r := range bracketRanges {
		var (
			n       int
			sum     float64
			fastest model.EnrichedKill
		)
		for _, k := range kills {
			if k.Enrage < r.min || k.Enrage > r.max {
				continue
			}
			// Strict < keeps the first kill on ties.
			if n == 0 || k.KillTimeSeconds < fastest.KillTimeSeconds {
				fastest = k
			}
			n++
			sum += k.KillTimeSeconds
		}
		if n == 0 {
			continue
		}
		avg := sum / float64(n)
		out = append(out, model.Bracket{
			Range:          r.label,
			Min:            r.min,
			Max:            r.max,
			Kills:          n,
			AvgTime:        format.KillTime(avg),
			AvgTimeSeconds: avg,
			FastestKill:    fastest,
			FastestTime:    format.KillTime(fastest.KillTimeSeconds),
		})
	}
	return out
}

// Milestones walks kills oldest first and records the first kill to reach each
// 5k threshold. A kill advances at most one threshold, so a jump from 4k to
// 16k is recorded as 5k only; later kills pick up 10k and 15k.
func Milestones(kills []model.EnrichedKill) []model.Milestone {
	out := []model.Milestone{}
	if len(kills) == 0 {
		return out
	}

	current := 0
	for _, k := range oldestFirst(kills) {
		next := 0
		for _, t := range milestoneThresholds {
			if t > current && k.Enrage >= t {
				next = t
				break
			}
		}
		if next == 0 {
			continue
		}
		out = append(out, model.Milestone{
			Enrage:    next,
			Date:      k.Date,
			Timestamp: k.TimeOfKill,
			KillTime:  k.FormattedKillTime,
			Label:     format.ThousandsLabel(next),
		})
		current = next
	}
	return out
}

// MostKillsIn24h finds the 24h window, starting at some kill, that holds the
// most kills. The window end is inclusive. The earliest window wins ties.
func MostKillsIn24h(kills []model.EnrichedKill) model.Window {
	if len(kills) == 0 {
		return model.Window{}
	}

	sorted := oldestFirst(kills)
	var best model.Window
	j := 0
	for i := range sorted {
		start := sorted[i].TimeOfKill
		end := start + secondsPerDay
		if j < i {
			j = i
		}
		for j < len(sorted) && sorted[j].TimeOfKill <= end {
			j++
		}
		if n := j - i; n > best.Count {
			best = model.Window{
				Count: n,
				Period: &model.WindowPeriod{
					Start:      time.Unix(start, 0).UTC(),
					End:        time.Unix(end, 0).UTC(),
					StartIndex: i,
					EndIndex:   j - 1,
				},
			}
		}
	}
	return best
}

// Predict extrapolates a straight line from the first kill to the latest one.
// It is a rough guide for the player view, not a forecast.
func Predict(kills []model.EnrichedKill) model.Predictions {
	if len(kills) < minPredictionKills {
		return model.Predictions{
			NextMilestone:   "Need more data",
			ImprovementRate: "Need more data",
			Suggestions:     []string{"Complete more kills to get predictions"},
		}
	}

	sorted := oldestFirst(kills)
	first, last := sorted[0], sorted[len(sorted)-1]

	weeks := float64(last.TimeOfKill-first.TimeOfKill) / secondsPerWeek
	weekly := 0.0
	if weeks > 0 {
		weekly = float64(last.Enrage-first.Enrage) / weeks
	}

	next := int(math.Ceil(float64(last.Enrage)/milestoneStep)) * milestoneStep
	needed := float64(next - last.Enrage)
	weeksToNext := 0.0
	if weekly > 0 {
		weeksToNext = needed / weekly
	}

	nextMilestone := fmt.Sprintf("%s (rate unknown)", format.ThousandsLabel(next))
	if weeksToNext != 0 {
		nextMilestone = fmt.Sprintf("%s in ~%d weeks", format.ThousandsLabel(next), int(math.Ceil(weeksToNext)))
	}

	return model.Predictions{
		NextMilestone:     nextMilestone,
		ImprovementRate:   fmt.Sprintf("%d enrage/week", int(math.Floor(weekly+0.5))),
		WeeklyImprovement: weekly,
		Suggestions:       suggestions(kills),
		Sufficient:        true,
	}
}

func suggestions(kills []model.EnrichedKill) []string {
	out := []string{}
	brackets := Brackets(kills)
	if len(brackets) == 0 {
		return out
	}

	current := brackets[len(brackets)-1]
	if current.Kills < lowSampleKills {
		out = append(out, fmt.Sprintf("Get more experience in %s bracket (%d kills so far)", current.Range, current.Kills))
	}

	slowest := brackets[0]
	for _, b := range brackets[1:] {
		if b.AvgTimeSeconds > slowest.AvgTimeSeconds {
			slowest = b
		}
	}
	out = append(out, fmt.Sprintf("Focus on improving %s bracket times (avg: %s)", slowest.Range, slowest.AvgTime))
	return out
}

func oldestFirst(kills []model.EnrichedKill) []model.EnrichedKill {
	return sortedCopy(kills, func(a, b model.EnrichedKill) bool { return a.TimeOfKill < b.TimeOfKill })
}

// sortedCopy stable-sorts a copy so the caller's slice order is untouched.
func sortedCopy(kills []model.EnrichedKill, less func(a, b model.EnrichedKill) bool) []model.EnrichedKill {
	out := make([]model.EnrichedKill, len(kills))
	copy(out, kills)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

package aggregator

import (
	"testing"
	"time"

	"github.com/diealivers/enrage-tracker/internal/format"
	"github.com/diealivers/enrage-tracker/internal/model"
)

const week = int64(7 * 24 * 3600)

// kill builds an EnrichedKill the way the loader does, minus the relative times.
func kill(enrage int, ts int64, killTime float64) model.EnrichedKill {
	return model.EnrichedKill{
		Enrage:            enrage,
		TimeOfKill:        ts,
		KillTimeSeconds:   killTime,
		Date:              time.Unix(ts, 0).UTC(),
		FormattedKillTime: format.KillTime(killTime),
	}
}

// ---- Brackets ----

func TestBrackets_GroupsAndOmitsEmpty(t *testing.T) {
	kills := []model.EnrichedKill{
		kill(5000, 1, 100),
		kill(9999, 2, 90),
		kill(10000, 3, 80),
		kill(19999, 4, 80), // ties with ts=3 on kill time; the earlier kill wins
		kill(25000, 5, 200),
	}
	got := Brackets(kills)
	if len(got) != 3 {
		t.Fatalf("expected 3 brackets, got %d: %+v", len(got), got)
	}

	want := []struct {
		label   string
		kills   int
		avg     string
		fastest int64
	}{
		{"0-10k", 2, "1:35.0", 2},
		{"10-20k", 2, "1:20.0", 3},
		{"20-30k", 1, "3:20.0", 5},
	}
	for i, w := range want {
		b := got[i]
		if b.Range != w.label || b.Kills != w.kills || b.AvgTime != w.avg {
			t.Errorf("bracket %d = {%s %d %s}, want {%s %d %s}", i, b.Range, b.Kills, b.AvgTime, w.label, w.kills, w.avg)
		}
		if b.FastestKill.TimeOfKill != w.fastest {
			t.Errorf("bracket %s fastest kill ts = %d, want %d", b.Range, b.FastestKill.TimeOfKill, w.fastest)
		}
		if b.FastestTime != b.FastestKill.FormattedKillTime {
			t.Errorf("bracket %s FastestTime %q != %q", b.Range, b.FastestTime, b.FastestKill.FormattedKillTime)
		}
	}
}

func TestBrackets_NeverEmptyAndWithinBounds(t *testing.T) {
	var kills []model.EnrichedKill
	for i, e := range []int{0, 150, 31000, 39999, 40000, 61000, 69999, 12000} {
		kills = append(kills, kill(e, int64(i), float64(60+i)))
	}
	for _, b := range Brackets(kills) {
		if b.Kills == 0 {
			t.Errorf("bracket %s has zero kills", b.Range)
		}
		if b.FastestKill.Enrage < b.Min || b.FastestKill.Enrage > b.Max {
			t.Errorf("bracket %s fastest kill enrage %d outside [%d,%d]", b.Range, b.FastestKill.Enrage, b.Min, b.Max)
		}
	}
	if got := Brackets(nil); len(got) != 0 {
		t.Errorf("expected no brackets for no kills, got %d", len(got))
	}
}

func TestBrackets_IgnoresOutOfRange(t *testing.T) {
	got := Brackets([]model.EnrichedKill{kill(70000, 1, 60), kill(-1, 2, 60)})
	if len(got) != 0 {
		t.Errorf("expected enrage outside 0-69999 to be dropped, got %+v", got)
	}
}

// ---- Milestones ----

func TestMilestones_OnePerKill(t *testing.T) {
	// Passed newest first to check that the calculator orders by time itself.
	kills := []model.EnrichedKill{
		kill(21000, 600, 150),
		kill(9000, 500, 60),
		kill(17000, 400, 140),
		kill(16000, 300, 130),
		kill(16000, 200, 125.3),
		kill(4000, 100, 50),
	}
	got := Milestones(kills)

	want := []struct {
		enrage int
		ts     int64
		label  string
	}{
		{5000, 200, "5k"},
		{10000, 300, "10k"},
		{15000, 400, "15k"},
		{20000, 600, "20k"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d milestones, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Enrage != w.enrage || got[i].Timestamp != w.ts || got[i].Label != w.label {
			t.Errorf("milestone %d = %+v, want %+v", i, got[i], w)
		}
	}
	if got[0].KillTime != "2:05.3" {
		t.Errorf("milestone kill time = %q, want 2:05.3", got[0].KillTime)
	}
	if !got[0].Date.Equal(time.Unix(200, 0)) {
		t.Errorf("milestone date = %v", got[0].Date)
	}
}

func TestMilestones_MonotonicAndUnique(t *testing.T) {
	var kills []model.EnrichedKill
	for i := 0; i < 40; i++ {
		kills = append(kills, kill((i*7919)%60000, int64(i*100), 100))
	}
	seen := map[int]bool{}
	prev := 0
	for _, m := range Milestones(kills) {
		if m.Enrage <= prev {
			t.Errorf("threshold %d not above previous %d", m.Enrage, prev)
		}
		if seen[m.Enrage] {
			t.Errorf("threshold %d emitted twice", m.Enrage)
		}
		if m.Enrage%5000 != 0 || m.Enrage > 50000 {
			t.Errorf("unexpected threshold %d", m.Enrage)
		}
		seen[m.Enrage] = true
		prev = m.Enrage
	}
}

func TestMilestones_BigJumpUnderReports(t *testing.T) {
	got := Milestones([]model.EnrichedKill{kill(50000, 1, 100)})
	if len(got) != 1 || got[0].Enrage != 5000 {
		t.Errorf("single 50k kill should only reach 5k, got %+v", got)
	}
}

func TestMilestones_Empty(t *testing.T) {
	if got := Milestones(nil); len(got) != 0 {
		t.Errorf("expected no milestones, got %+v", got)
	}
}

// ---- 24h window ----

func TestMostKillsIn24h_ExcludesPastWindow(t *testing.T) {
	kills := []model.EnrichedKill{kill(1, 90000, 1), kill(1, 0, 1), kill(1, 3600, 1)}
	got := MostKillsIn24h(kills)
	if got.Count != 2 {
		t.Fatalf("count = %d, want 2", got.Count)
	}
	p := got.Period
	if p == nil {
		t.Fatal("expected a period")
	}
	if p.Start.Unix() != 0 || p.End.Unix() != 86400 {
		t.Errorf("period = %v..%v, want 0..86400", p.Start.Unix(), p.End.Unix())
	}
	if p.StartIndex != 0 || p.EndIndex != 1 {
		t.Errorf("indices = %d..%d, want 0..1", p.StartIndex, p.EndIndex)
	}
}

func TestMostKillsIn24h_EndIsInclusive(t *testing.T) {
	got := MostKillsIn24h([]model.EnrichedKill{kill(1, 0, 1), kill(1, 86400, 1)})
	if got.Count != 2 {
		t.Errorf("kill exactly 24h later should count, got %d", got.Count)
	}
	got = MostKillsIn24h([]model.EnrichedKill{kill(1, 0, 1), kill(1, 86401, 1)})
	if got.Count != 1 {
		t.Errorf("kill 24h+1s later should not count, got %d", got.Count)
	}
}

func TestMostKillsIn24h_FirstWindowWinsTies(t *testing.T) {
	kills := []model.EnrichedKill{
		kill(1, 0, 1), kill(1, 10, 1),
		kill(1, 500000, 1), kill(1, 500010, 1),
	}
	got := MostKillsIn24h(kills)
	if got.Count != 2 || got.Period.StartIndex != 0 {
		t.Errorf("expected first window to win, got %+v / %+v", got, got.Period)
	}
}

func TestMostKillsIn24h_Empty(t *testing.T) {
	got := MostKillsIn24h(nil)
	if got.Count != 0 || got.Period != nil {
		t.Errorf("expected zero window, got %+v", got)
	}
}

// ---- Predictions ----

func TestPredict_NeedsThreeKills(t *testing.T) {
	got := Predict([]model.EnrichedKill{kill(10000, 0, 100), kill(12000, week, 100)})
	if got.Sufficient {
		t.Error("expected insufficient data")
	}
	if got.NextMilestone != "Need more data" || got.ImprovementRate != "Need more data" {
		t.Errorf("unexpected sentinel %+v", got)
	}
	if len(got.Suggestions) != 1 || got.Suggestions[0] != "Complete more kills to get predictions" {
		t.Errorf("unexpected suggestions %v", got.Suggestions)
	}
}

func TestPredict_ZeroSpanReportsZeroRate(t *testing.T) {
	got := Predict([]model.EnrichedKill{kill(10000, 50, 100), kill(11000, 50, 100), kill(12000, 50, 100)})
	if got.WeeklyImprovement != 0 {
		t.Errorf("rate = %v, want 0", got.WeeklyImprovement)
	}
	if got.ImprovementRate != "0 enrage/week" {
		t.Errorf("ImprovementRate = %q", got.ImprovementRate)
	}
	if got.NextMilestone != "15k (rate unknown)" {
		t.Errorf("NextMilestone = %q", got.NextMilestone)
	}
}

func TestPredict_LinearTrend(t *testing.T) {
	kills := []model.EnrichedKill{
		kill(14000, 2*week, 140),
		kill(10000, 0, 120),
		kill(12000, week, 130),
	}
	got := Predict(kills)
	if !got.Sufficient {
		t.Fatal("expected sufficient data")
	}
	if got.ImprovementRate != "2000 enrage/week" {
		t.Errorf("ImprovementRate = %q", got.ImprovementRate)
	}
	if got.NextMilestone != "15k in ~1 weeks" {
		t.Errorf("NextMilestone = %q", got.NextMilestone)
	}
	want := []string{
		"Get more experience in 10-20k bracket (3 kills so far)",
		"Focus on improving 10-20k bracket times (avg: 2:10.0)",
	}
	if len(got.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v", got.Suggestions)
	}
	for i := range want {
		if got.Suggestions[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got.Suggestions[i], want[i])
		}
	}
}

func TestPredict_DecliningRateIsUnknown(t *testing.T) {
	kills := []model.EnrichedKill{kill(22000, 0, 100), kill(21000, week, 100), kill(20000, 2*week, 100)}
	got := Predict(kills)
	if got.ImprovementRate != "-1000 enrage/week" {
		t.Errorf("ImprovementRate = %q", got.ImprovementRate)
	}
	// 20000 is already a multiple of 5000.
	if got.NextMilestone != "20k (rate unknown)" {
		t.Errorf("NextMilestone = %q", got.NextMilestone)
	}
}

func TestPredict_SlowestBracketAndEnoughSamples(t *testing.T) {
	var kills []model.EnrichedKill
	for i := 0; i < 5; i++ {
		kills = append(kills, kill(21000+i, int64(i)*week, 100))
	}
	kills = append(kills, kill(8000, -week, 300))
	got := Predict(kills)
	if len(got.Suggestions) != 1 {
		t.Fatalf("expected only the slowest-bracket suggestion, got %v", got.Suggestions)
	}
	if got.Suggestions[0] != "Focus on improving 0-10k bracket times (avg: 5:00.0)" {
		t.Errorf("suggestion = %q", got.Suggestions[0])
	}
}

// ---- PlayerStats ----

func TestPlayerStats_Empty(t *testing.T) {
	if s := PlayerStats(nil, "Bob", time.Unix(0, 0)); s != nil {
		t.Errorf("expected nil stats, got %+v", s)
	}
}

func TestPlayerStats_Summary(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	kills := []model.EnrichedKill{
		kill(12000, 900_000, 120),
		kill(15000, 800_000, 100),
		kill(15000, 700_000, 110),
		kill(9000, 980_000, 130),
	}
	s := PlayerStats(kills, "Bob", now)
	if s == nil {
		t.Fatal("expected stats")
	}
	if s.Player != "Bob" || s.TotalKills != 4 {
		t.Errorf("player/total = %s/%d", s.Player, s.TotalKills)
	}
	if s.HighestEnrage != 15000 || s.HighestEnrageKill.TimeOfKill != 800_000 {
		t.Errorf("highest = %d at %d, want 15000 at 800000", s.HighestEnrage, s.HighestEnrageKill.TimeOfKill)
	}
	if s.AvgKillTimeSeconds != 115 || s.AvgKillTime != "1:55.0" {
		t.Errorf("avg = %v / %q", s.AvgKillTimeSeconds, s.AvgKillTime)
	}
	if s.MostRecentKill.TimeOfKill != 980_000 {
		t.Errorf("most recent = %d", s.MostRecentKill.TimeOfKill)
	}
	if s.TimeSinceLastKill != "5h 33m ago" {
		t.Errorf("time since last kill = %q", s.TimeSinceLastKill)
	}
	for i := 1; i < len(s.AllKills); i++ {
		if s.AllKills[i-1].TimeOfKill < s.AllKills[i].TimeOfKill {
			t.Errorf("AllKills not newest first at %d", i)
		}
	}
	if len(s.Brackets) != 2 || s.MostKills24h.Count != 2 || !s.Predictions.Sufficient {
		t.Errorf("unexpected derived stats: brackets=%d 24h=%d predictions=%+v",
			len(s.Brackets), s.MostKills24h.Count, s.Predictions)
	}
	// Input order is untouched.
	if kills[0].TimeOfKill != 900_000 {
		t.Error("PlayerStats reordered its input")
	}
}

// Package feed loads the kill feed and groups its records by player.
package feed

import (
	"context"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/diealivers/enrage-tracker/internal/format"
	"github.com/diealivers/enrage-tracker/internal/model"
)

// Status says how a Load ended.
type Status int

const (
	StatusLoaded Status = iota // feed read, at least one record
	StatusEmpty                // feed read, no records
	StatusFailed               // fetch or decode failed; Result is the empty fallback
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "?"
	}
}

// Options controls enrichment. The zero value uses time.Now, UTC and a stderr logger.
type Options struct {
	Now      time.Time
	Location *time.Location
	Logger   *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stderr, "enragetracker: ", log.LstdFlags)
	}
	return o
}

// DiscardLogger is handy for callers and tests that don't want load failures printed.
var DiscardLogger = log.New(io.Discard, "", 0)

// Result is the grouped feed. Err is set only when Status is StatusFailed.
// Records is the raw record list in feed order.
type Result struct {
	Players      *model.PlayerSet
	Records      []model.KillRecord
	Meta         model.Meta
	TotalRecords int
	Status       Status
	Err          error
}

// Load fetches the feed from src and groups it by player. It never returns an
// error: on failure it logs and returns an empty dashboard with StatusFailed.
func Load(ctx context.Context, src Source, opts Options) Result {
	opts = opts.withDefaults()

	f, err := src.Fetch(ctx)
	if err != nil {
		opts.Logger.Printf("Error loading player data from %s: %v", src.Describe(), err)
		return emptyResult(opts.Now, err)
	}
	return Group(f, opts)
}

// Group builds the per-player view of an already decoded feed.
func Group(f *model.Feed, opts Options) Result {
	opts = opts.withDefaults()

	players := model.NewPlayerSet()
	for _, rec := range f.Records {
		p := players.GetOrCreate(rec.Player(), f.Meta.GeneratedAt)
		p.Kills = append(p.Kills, Enrich(rec, opts.Now, opts.Location))
	}

	// Newest first.
	for _, p := range players.Records() {
		sort.SliceStable(p.Kills, func(i, j int) bool {
			return p.Kills[i].TimeOfKill > p.Kills[j].TimeOfKill
		})
	}

	status := StatusLoaded
	if len(f.Records) == 0 {
		status = StatusEmpty
	}
	return Result{
		Players:      players,
		Records:      f.Records,
		Meta:         f.Meta,
		TotalRecords: len(f.Records),
		Status:       status,
	}
}

// Enrich derives the display fields for one record.
func Enrich(rec model.KillRecord, now time.Time, loc *time.Location) model.EnrichedKill {
	if loc == nil {
		loc = time.UTC
	}
	return model.EnrichedKill{
		Enrage:            rec.Enrage,
		TimeOfKill:        rec.TimeOfKill,
		KillTimeSeconds:   rec.KillTimeSeconds,
		Date:              time.Unix(rec.TimeOfKill, 0).In(loc),
		FormattedDate:     format.Date(rec.TimeOfKill, loc),
		FormattedKillTime: format.KillTime(rec.KillTimeSeconds),
		TimeAgo:           format.TimeAgo(rec.TimeOfKill, now),
		TimeAgoDetailed:   format.TimeAgoDetailed(rec.TimeOfKill, now),
	}
}

func emptyResult(now time.Time, err error) Result {
	return Result{
		Players: model.NewPlayerSet(),
		Meta: model.Meta{
			GeneratedAt: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Count:       0,
		},
		TotalRecords: 0,
		Status:       StatusFailed,
		Err:          err,
	}
}

// UniquePlayers lists the players in res in byte order ("Bob" before "alice").
func UniquePlayers(res Result) []string {
	if res.Players == nil {
		return []string{}
	}
	return res.Players.Sorted()
}

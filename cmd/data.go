package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/diealivers/enrage-tracker/internal/feed"
	"github.com/diealivers/enrage-tracker/internal/model"
	"github.com/diealivers/enrage-tracker/internal/sheets"
	"github.com/diealivers/enrage-tracker/internal/storage"
)

// dashboard is one loaded feed plus the clock and zone it was enriched with.
type dashboard struct {
	feed.Result
	Now      time.Time
	Location *time.Location
}

func openSource(ctx context.Context) (feed.Source, error) {
	if cfg.Sheet.URL == "" {
		return feed.NewSource(cfg.Source), nil
	}
	if cfg.Sheet.CredentialsFile == "" {
		return nil, fmt.Errorf("sheet.url is set but no credentials file was given")
	}
	creds, err := os.ReadFile(cfg.Sheet.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheet credentials: %w", err)
	}
	src, err := sheets.NewSource(ctx, creds, cfg.Sheet.URL, cfg.Sheet.Name)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	return src, nil
}

// loadDashboard fetches and groups the feed. A failed fetch is not an error:
// the user gets a warning and an empty dashboard.
func loadDashboard(ctx context.Context) (*dashboard, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	src, err := openSource(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := feed.Load(ctx, src, feed.Options{Now: now, Location: loc})
	if res.Status == feed.StatusFailed {
		cWarn.Fprintf(os.Stderr, "warning: no data could be loaded from %s, showing an empty dashboard\n", src.Describe())
	}
	return &dashboard{Result: res, Now: now, Location: loc}, nil
}

// snapshot loads the dashboard's raw records into an in-memory database.
func (d *dashboard) snapshot() (*storage.DB, error) {
	db, err := storage.Snapshot(d.Records)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// findPlayer looks a player up by exact name, then by a unique
// case-insensitive match.
func findPlayer(players *model.PlayerSet, name string) *model.PlayerRecord {
	if p := players.Get(name); p != nil {
		return p
	}
	var match *model.PlayerRecord
	for _, n := range players.Names() {
		if strings.EqualFold(n, name) {
			if match != nil {
				return nil
			}
			match = players.Get(n)
		}
	}
	return match
}

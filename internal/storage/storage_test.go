package storage

import (
	"testing"

	"github.com/diealivers/enrage-tracker/internal/model"
)

func rec(name string, enrage int, ts int64, killTime float64) model.KillRecord {
	r := model.KillRecord{Enrage: enrage, TimeOfKill: ts, KillTimeSeconds: killTime}
	if name != "" {
		r.Members = []model.Member{{Name: name}}
	}
	return r
}

func openSnapshot(t *testing.T, records []model.KillRecord) *DB {
	t.Helper()
	db, err := Snapshot(records)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSnapshotInsertsEveryRecord(t *testing.T) {
	db := openSnapshot(t, []model.KillRecord{
		rec("Bob", 12000, 100, 120),
		rec("alice", 15000, 200, 130),
		rec("", 9000, 300, 90),
	})

	n, err := db.CountKills()
	if err != nil {
		t.Fatalf("CountKills: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 kills, got %d", n)
	}

	_, rows, err := db.QueryRaw("SELECT player FROM kills WHERE enrage = 9000")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != model.UnknownPlayer {
		t.Errorf("expected memberless record under %q, got %v", model.UnknownPlayer, rows)
	}
}

func TestPersonalBests(t *testing.T) {
	db := openSnapshot(t, []model.KillRecord{
		rec("Bob", 12000, 100, 120),
		rec("Bob", 16000, 200, 140),
		rec("Bob", 16000, 300, 135), // same enrage, faster
		rec("alice", 16000, 150, 150),
		rec("Carol", 9000, 50, 80),
	})

	pbs, err := db.PersonalBests(0)
	if err != nil {
		t.Fatalf("PersonalBests: %v", err)
	}
	if len(pbs) != 3 {
		t.Fatalf("expected 3 players, got %d: %+v", len(pbs), pbs)
	}

	if pbs[0].Player != "Bob" || pbs[0].Enrage != 16000 || pbs[0].TimeOfKill != 300 || pbs[0].Kills != 3 {
		t.Errorf("unexpected first entry %+v", pbs[0])
	}
	if pbs[1].Player != "alice" {
		t.Errorf("expected alice second (slower 16k), got %+v", pbs[1])
	}
	if pbs[2].Player != "Carol" || pbs[2].Kills != 1 {
		t.Errorf("unexpected last entry %+v", pbs[2])
	}

	top, err := db.PersonalBests(1)
	if err != nil {
		t.Fatalf("PersonalBests(1): %v", err)
	}
	if len(top) != 1 || top[0].Player != "Bob" {
		t.Errorf("expected only Bob with limit 1, got %+v", top)
	}
}

func TestSnapshotIsReadOnly(t *testing.T) {
	db := openSnapshot(t, []model.KillRecord{rec("Bob", 12000, 100, 120)})

	for _, q := range []string{
		"DELETE FROM kills",
		"INSERT INTO kills(player, enrage, time_of_kill, kill_time_seconds, member_count) VALUES ('x', 1, 1, 1, 1)",
		"DROP TABLE kills",
	} {
		if _, _, err := db.QueryRaw(q); err == nil {
			t.Errorf("expected %q to be rejected", q)
		}
	}
	if err := db.InsertKills([]model.KillRecord{rec("alice", 1, 1, 1)}); err == nil {
		t.Error("expected InsertKills on a snapshot to fail")
	}

	n, err := db.CountKills()
	if err != nil {
		t.Fatalf("CountKills: %v", err)
	}
	if n != 1 {
		t.Errorf("expected snapshot untouched with 1 kill, got %d", n)
	}
}

func TestGetOverview(t *testing.T) {
	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ov, err := db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview empty: %v", err)
	}
	if ov.TotalKills != 0 || ov.MaxEnrage != 0 {
		t.Errorf("expected zero overview, got %+v", ov)
	}

	if err := db.InsertKills([]model.KillRecord{
		rec("Bob", 12000, 100, 120),
		rec("alice", 15000, 400, 100),
	}); err != nil {
		t.Fatalf("InsertKills: %v", err)
	}
	ov, err = db.GetOverview()
	if err != nil {
		t.Fatalf("GetOverview: %v", err)
	}
	if ov.TotalKills != 2 || ov.UniquePlayers != 2 {
		t.Errorf("counts = %d/%d", ov.TotalKills, ov.UniquePlayers)
	}
	if ov.EarliestKill != 100 || ov.LatestKill != 400 || ov.MaxEnrage != 15000 || ov.AvgKillTime != 110 {
		t.Errorf("unexpected overview %+v", ov)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openSnapshot(t, []model.KillRecord{rec("Bob", 12000, 100, 120.5)})

	cols, rows, err := db.QueryRaw("SELECT player, enrage, kill_time_seconds, NULL AS nothing FROM kills")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 4 || cols[3] != "nothing" {
		t.Errorf("unexpected columns %v", cols)
	}
	want := []string{"Bob", "12000", "120.5", "NULL"}
	for i, w := range want {
		if rows[0][i] != w {
			t.Errorf("col %d = %q, want %q", i, rows[0][i], w)
		}
	}

	if _, _, err := db.QueryRaw("SELECT nope FROM nowhere"); err == nil {
		t.Error("expected error for bad query")
	}
}

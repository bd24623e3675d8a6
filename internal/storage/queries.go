package storage

import (
	"database/sql"
	"fmt"

	"github.com/diealivers/enrage-tracker/internal/model"
)

// InsertKills bulk-inserts kill records in a transaction.
func (db *DB) InsertKills(records []model.KillRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO kills(player, enrage, time_of_kill, kill_time_seconds, member_count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.Player(), r.Enrage, r.TimeOfKill, r.KillTimeSeconds, len(r.Members)); err != nil {
			return fmt.Errorf("insert kill for %s at %d: %w", r.Player(), r.TimeOfKill, err)
		}
	}
	return tx.Commit()
}

// CountKills returns the number of stored kills.
func (db *DB) CountKills() (int, error) {
	var n int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM kills").Scan(&n)
	return n, err
}

// PersonalBests returns each player's highest enrage kill, best first.
// Equal enrage is broken by the faster kill, then the earlier one.
// limit <= 0 returns every player.
func (db *DB) PersonalBests(limit int) ([]model.PersonalBest, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.conn.Query(`
		SELECT player, enrage, kill_time_seconds, time_of_kill, kills
		FROM (
			SELECT player, enrage, kill_time_seconds, time_of_kill,
			       COUNT(*) OVER (PARTITION BY player) AS kills,
			       ROW_NUMBER() OVER (
			           PARTITION BY player
			           ORDER BY enrage DESC, kill_time_seconds ASC, time_of_kill ASC
			       ) AS rn
			FROM kills
		)
		WHERE rn = 1
		ORDER BY enrage DESC, kill_time_seconds ASC, player ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PersonalBest
	for rows.Next() {
		var pb model.PersonalBest
		if err := rows.Scan(&pb.Player, &pb.Enrage, &pb.KillTimeSeconds, &pb.TimeOfKill, &pb.Kills); err != nil {
			return nil, err
		}
		out = append(out, pb)
	}
	return out, rows.Err()
}

// Overview is a whole-feed summary.
type Overview struct {
	TotalKills    int
	UniquePlayers int
	EarliestKill  int64
	LatestKill    int64
	MaxEnrage     int
	AvgKillTime   float64
}

// GetOverview summarises all stored kills. Zero values when empty.
func (db *DB) GetOverview() (Overview, error) {
	var (
		ov               Overview
		earliest, latest sql.NullInt64
		maxEnrage        sql.NullInt64
		avgKillTime      sql.NullFloat64
	)
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COUNT(DISTINCT player),
		       MIN(time_of_kill), MAX(time_of_kill),
		       MAX(enrage), AVG(kill_time_seconds)
		FROM kills`).Scan(&ov.TotalKills, &ov.UniquePlayers, &earliest, &latest, &maxEnrage, &avgKillTime)
	if err != nil {
		return ov, err
	}
	ov.EarliestKill = earliest.Int64
	ov.LatestKill = latest.Int64
	ov.MaxEnrage = int(maxEnrage.Int64)
	ov.AvgKillTime = avgKillTime.Float64
	return ov, nil
}

// QueryRaw runs an arbitrary query and returns column names and rows rendered as strings.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

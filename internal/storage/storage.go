// Package storage loads the kill feed into an in-memory SQLite database so it
// can be queried ad hoc. Nothing is written to disk.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/diealivers/enrage-tracker/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a sql.DB for the kill snapshot.
type DB struct {
	conn *sql.DB
}

// OpenMemory opens an empty in-memory database and applies the schema.
func OpenMemory() (*DB, error) {
	conn, err := sql.Open("sqlite", "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Every pooled connection would get its own private :memory: database.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Snapshot opens an in-memory database holding records. The snapshot is
// read-only once loaded.
func Snapshot(records []model.KillRecord) (*DB, error) {
	db, err := OpenMemory()
	if err != nil {
		return nil, err
	}
	if err := db.InsertKills(records); err != nil {
		db.Close()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if _, err := db.conn.Exec("PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("lock snapshot: %w", err)
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

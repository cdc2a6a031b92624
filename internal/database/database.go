package database

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// defaultChunkSize is the number of rows buffered per insert batch when a
// derived table is replaced.
const defaultChunkSize = 10000

// maxBoundParams is a conservative SQLite per-statement bound parameter cap;
// multi-row inserts are sized to stay under it regardless of the configured
// chunk size.
const maxBoundParams = 999

type Database struct {
	db        *sql.DB
	chunkSize int
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// A single connection avoids SQLITE_BUSY on concurrent writes and keeps
	// in-memory databases on one handle
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	return &Database{db: db, chunkSize: defaultChunkSize}, nil
}

// SetChunkSize overrides the replace batch size. Values below 1 are ignored.
func (d *Database) SetChunkSize(n int) {
	if n > 0 {
		d.chunkSize = n
	}
}

func (d *Database) Close() error {
	return d.db.Close()
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

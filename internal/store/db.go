package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite journal of dropped transport events. It is a
// diagnostics log, not a message store: conversations live in memory only.
type DB struct {
	*sql.DB
	identity string
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
// identity tags every journal row.
func Open(path, identity string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{DB: db, identity: identity}, nil
}

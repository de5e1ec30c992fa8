package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aarambhveda/counselor/pkg/logger"
	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the SQLite database at dbPath with the
// pragmas used by every store in this package
func Open(dbPath string, log *logger.Logger) (*sql.DB, error) {
	log.Named("sqlite").Info("Opening SQLite database", logger.String("path", dbPath))

	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []struct{ stmt, what string }{
		{"PRAGMA journal_mode=WAL", "journal mode"},
		{"PRAGMA synchronous=NORMAL", "synchronous mode"},
		{"PRAGMA busy_timeout=5000", "busy timeout"},
		{"PRAGMA foreign_keys=ON", "foreign keys"},
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p.stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", p.what, err)
		}
	}

	return db, nil
}

package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectDB establishes a connection to the SQLite database
func ConnectDB(dbPath string) (*sql.DB, error) {
	// Expand tilde to home directory if present
	if strings.HasPrefix(dbPath, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dbPath = homeDir + dbPath[1:]
	}

	// Create the directory structure if it doesn't exist
	dbDir := filepath.Dir(dbPath)
	if dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, err
		}
	}

	// SQLite will create the database file if it doesn't exist
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	// one writer; avoids "database is locked" between concurrent tea commands
	db.SetMaxOpenConns(1)
	return db, nil
}

// EnsureSchema creates the database schema if it doesn't exist
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS storage (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// Open connects, ensures the schema and wraps the result in a KV store
func Open(dbPath string) (*KV, error) {
	db, err := ConnectDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewKV(db), nil
}

package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB is a wrapper around sql.DB
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Initialize sets up the database tables
func (db *DB) Initialize() error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL,
		year TEXT,
		album_art TEXT,
		rating INTEGER NOT NULL,
		tags TEXT,
		notes TEXT,
		rated_at TEXT NOT NULL,
		updated_at TEXT
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS unrated (
		id TEXT PRIMARY KEY,
		video_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		album TEXT NOT NULL,
		album_id TEXT,
		year TEXT,
		album_art TEXT,
		skipped_at TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	// single-row settings table; row 1 is the only row
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		rating_min INTEGER NOT NULL,
		rating_max INTEGER NOT NULL,
		shrinkage_c REAL NOT NULL,
		max_recent INTEGER NOT NULL,
		sidebar_mode TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}

	return nil
}

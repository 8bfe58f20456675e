package db

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Filename is the database file created inside the data directory.
const Filename = "library.db"

// Open opens or creates the SQLite database in dataDir.
// An empty dataDir means ~/.local/share/reelcut.
// Parent directories are created if they don't exist.
func Open(dataDir string) (*sql.DB, error) {
	dbPath, err := getDBPath(dataDir)
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens or creates the SQLite database at dbPath and migrates it.
func OpenPath(dbPath string) (*sql.DB, error) {
	// Create parent directories if they don't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Open the database connection
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// getDBPath returns the path to the database file.
func getDBPath(dataDir string) (string, error) {
	if dataDir != "" {
		return filepath.Join(dataDir, Filename), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".local", "share", "reelcut", Filename), nil
}

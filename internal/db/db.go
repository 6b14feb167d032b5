package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/empowerguard/moodjournal/internal/config"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the base directory.
const FileName = "moodjournal.db"

// migrations are applied in order; migration i brings the schema to
// user_version i+1.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS entries (
	  id                   TEXT PRIMARY KEY,
	  title                TEXT NOT NULL DEFAULT '',
	  content              TEXT NOT NULL,
	  content_chars        INTEGER NOT NULL,
	  tags_json            TEXT,
	  entry_date           TEXT NOT NULL,
	  latitude             REAL,
	  longitude            REAL,
	  weather_json         TEXT,
	  media_json           TEXT,
	  tone                 TEXT NOT NULL DEFAULT 'Not provided',
	  recommendations_json TEXT,
	  face_log_json        TEXT,
	  created_at           INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date);`,
}

// CurrentSchemaVersion is the user_version after all migrations ran.
var CurrentSchemaVersion = len(migrations)

// Init opens baseDir/moodjournal.db in WAL mode and brings its schema up to
// date. baseDir and its exports directory are created owner-only.
func Init(baseDir string) (*sql.DB, error) {
	for _, dir := range []string{baseDir, filepath.Join(baseDir, "exports")} {
		if err := privateDir(dir); err != nil {
			return nil, err
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	path := filepath.Join(baseDir, FileName)
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := prepare(db); err != nil {
		db.Close()
		return nil, err
	}
	_ = os.Chmod(path, 0600)
	return db, nil
}

func privateDir(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	_ = os.Chmod(dir, 0700)
	return nil
}

func prepare(db *sql.DB) error {
	var mode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&mode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if mode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", mode)
	}
	return migrate(db)
}

// ConfigurePool applies the db_max_open_conns and db_max_idle_conns settings.
// Zero leaves the database/sql default in place.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate runs every migration newer than the stored user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		if _, err := db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		if err := SetUserVersion(db, i+1); err != nil {
			return err
		}
	}
	return nil
}

// GetUserVersion returns the schema version stored in the user_version pragma.
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion stores version in the user_version pragma.
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

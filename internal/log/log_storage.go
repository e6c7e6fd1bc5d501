// log_storage.go implements SQLite-based persistent audit logging.
//
// Separated from log.go to isolate database concerns. The main log.go
// provides the fluent API for building entries; this file handles
// persistence. SQLite enables structured queries over download history and
// security events that plain text logs cannot provide. The instance field
// uses a hash of the config path to distinguish servers sharing a log
// database while preserving privacy.
//
// Design: Errors during logging are best-effort. A download must succeed
// even if we cannot record it in the audit log.

package log

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite"
)

// Logger writes audit log entries to a SQLite database.
type Logger struct {
	db       *sql.DB
	instance string
}

func (l *Logger) log(e Entry) {
	var detail *string
	if len(e.Detail) > 0 {
		if b, err := json.Marshal(e.Detail); err == nil {
			s := string(b)
			detail = &s
		}
	}

	success := 0
	if e.Success {
		success = 1
	}
	security := 0
	if e.Security {
		security = 1
	}

	_, err := l.db.Exec(`
		INSERT INTO log (start, end, instance, source, action, url, location, path,
		                 resolved_path, download_id, security, success, error, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Start, e.End, l.instance, e.Source, e.Action,
		nilIfEmpty(e.URL), nilIfEmpty(e.Location), nilIfEmpty(e.Path),
		nilIfEmpty(e.ResolvedPath), nilIfEmpty(e.DownloadID),
		security, success, nilIfEmpty(e.Error), detail,
	)
	if err != nil {
		// Best-effort logging: don't break the main operation, but report failure
		_, _ = fmt.Fprintf(os.Stderr, "vgrab: audit log write failed: %v\n", err)
	}
}

// dbPathFunc is the function that returns the database path.
// Tests can override this to use a temp directory.
var dbPathFunc = defaultDBPath

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		// Fall back to the current directory in unusual environments
		// (containers, etc.) rather than silently failing.
		return filepath.Join(".vgrab", "log", "vgrab-log.db")
	}
	return filepath.Join(dir, "vgrab", "log", "vgrab-log.db")
}

// DBPath returns the path to the log database.
func DBPath() string {
	return dbPathFunc()
}

// hash creates an instance identifier from the config path, enabling
// per-server log queries while preserving privacy.
func hash(s string) string {
	h, err := blake2b.New(8, nil) // 64-bit = 16 hex chars
	if err != nil {
		// Should never happen with nil key, but don't silently ignore
		panic("blake2b.New failed: " + err.Error())
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}

// migrate creates the log table if it doesn't exist. Safe for concurrent access.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			start         INTEGER NOT NULL,
			end           INTEGER NOT NULL,
			instance      TEXT NOT NULL,
			source        TEXT NOT NULL,
			action        TEXT NOT NULL,
			url           TEXT,
			location      TEXT,
			path          TEXT,
			resolved_path TEXT,
			download_id   TEXT,
			security      INTEGER NOT NULL DEFAULT 0,
			success       INTEGER NOT NULL,
			error         TEXT,
			detail        TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_log_start ON log(start);
		CREATE INDEX IF NOT EXISTS idx_log_source ON log(source);
		CREATE INDEX IF NOT EXISTS idx_log_security ON log(security);
	`)
	return err
}

// Open initialises the global logger. Safe to call multiple times.
// Errors are returned but callers may choose to ignore them (best-effort logging).
func Open() error {
	mu.Lock()
	defer mu.Unlock()

	if global != nil {
		return nil
	}

	p := dbPath()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", p)
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	global = &Logger{db: db}
	return nil
}

// SetInstance sets the instance identifier for subsequent log entries.
// The value should be the path of the loaded config file.
func SetInstance(configPath string) {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.instance = hash(configPath)
	}
}

// Close closes the global logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if global != nil {
		global.db.Close()
		global = nil
	}
}

func dbPath() string {
	return dbPathFunc()
}

// nilIfEmpty returns nil for empty strings, reducing NULL checks in queries.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

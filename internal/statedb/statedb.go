// Package statedb persists the recent-subjects history in SQLite.
package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// StateDB wraps a SQLite database for subject history persistence.
// Thread-safe for concurrent use from multiple goroutines within one process.
// Multiple OS processes can safely read/write via WAL mode + busy timeout.
type StateDB struct {
	db *sql.DB
}

// SubjectKind classifies how a subject is opened.
type SubjectKind string

const (
	SubjectFile       SubjectKind = "file"
	SubjectCommand    SubjectKind = "command"
	SubjectTranscript SubjectKind = "transcript"
	SubjectWebsocket  SubjectKind = "websocket"
)

// SubjectRow is one recently viewed subject.
type SubjectRow struct {
	// Target is the file path, command line, or URL.
	Target string
	Kind   SubjectKind
	// Follow records whether the user left the viewer pinned to the tail.
	Follow     bool
	LastOpened time.Time
	OpenCount  int
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy
// timeout.
func Open(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: busy timeout: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist and runs any pending migrations.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("statedb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS subjects (
			target      TEXT PRIMARY KEY,
			kind        TEXT NOT NULL,
			follow      INTEGER NOT NULL DEFAULT 1,
			last_opened INTEGER NOT NULL,
			open_count  INTEGER NOT NULL DEFAULT 1
		)
	`); err != nil {
		return fmt.Errorf("statedb: create subjects: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// TouchSubject upserts a subject: first open inserts it, later opens bump
// the open count and timestamp.
func (s *StateDB) TouchSubject(target string, kind SubjectKind) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		INSERT INTO subjects (target, kind, last_opened, open_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(target) DO UPDATE SET
			kind = excluded.kind,
			last_opened = excluded.last_opened,
			open_count = open_count + 1
	`, target, string(kind), now)
	if err != nil {
		return fmt.Errorf("statedb: touch subject: %w", err)
	}
	return s.touchMeta(now)
}

// SetFollow records whether the viewer was left pinned to the tail.
func (s *StateDB) SetFollow(target string, follow bool) error {
	f := 0
	if follow {
		f = 1
	}
	if _, err := s.db.Exec(`UPDATE subjects SET follow = ? WHERE target = ?`, f, target); err != nil {
		return fmt.Errorf("statedb: set follow: %w", err)
	}
	return nil
}

// RecentSubjects returns up to limit subjects, most recently opened first.
func (s *StateDB) RecentSubjects(limit int) ([]SubjectRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT target, kind, follow, last_opened, open_count
		FROM subjects
		ORDER BY last_opened DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: recent subjects: %w", err)
	}
	defer rows.Close()

	var out []SubjectRow
	for rows.Next() {
		var r SubjectRow
		var kind string
		var follow int
		var opened int64
		if err := rows.Scan(&r.Target, &kind, &follow, &opened, &r.OpenCount); err != nil {
			return nil, fmt.Errorf("statedb: scan subject: %w", err)
		}
		r.Kind = SubjectKind(kind)
		r.Follow = follow != 0
		r.LastOpened = time.Unix(opened, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PruneSubjects deletes all but the newest keep subjects.
func (s *StateDB) PruneSubjects(keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM subjects WHERE target NOT IN (
			SELECT target FROM subjects ORDER BY last_opened DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("statedb: prune subjects: %w", err)
	}
	return nil
}

// SetMeta stores a metadata key/value pair.
func (s *StateDB) SetMeta(key, value string) error {
	if _, err := s.db.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)
	`, key, value); err != nil {
		return fmt.Errorf("statedb: set meta: %w", err)
	}
	return nil
}

// GetMeta reads a metadata value. Missing keys return "".
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("statedb: get meta: %w", err)
	}
	return value, nil
}

// LastModified returns the last modification timestamp recorded by writes.
func (s *StateDB) LastModified() (int64, error) {
	v, err := s.GetMeta("last_modified")
	if err != nil || v == "" {
		return 0, err
	}
	var ts int64
	_, _ = fmt.Sscanf(v, "%d", &ts)
	return ts, nil
}

func (s *StateDB) touchMeta(now int64) error {
	return s.SetMeta("last_modified", fmt.Sprintf("%d", now))
}

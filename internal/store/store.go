package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dicelabs/dice-engine/internal/facet"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS facet_evidence (
	thread_id     TEXT NOT NULL,
	facet         TEXT NOT NULL,
	snippets_json TEXT NOT NULL,
	occurrences   INTEGER NOT NULL,
	updated_at    TEXT,
	PRIMARY KEY (thread_id, facet)
);

CREATE TABLE IF NOT EXISTS rotation_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	thread_id     TEXT NOT NULL,
	segment_index INTEGER NOT NULL,
	pass          INTEGER NOT NULL DEFAULT 0,
	mode          TEXT NOT NULL,
	trigger_type  TEXT NOT NULL,
	facet_order   TEXT NOT NULL,
	scores_json   TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rotation_log_thread
ON rotation_log(thread_id, segment_index);
`
// #endregion schema

// #region store-struct
// Store persists thread facet state and the rotation provenance log in
// SQLite. The engine core never touches it; the surrounding pipeline loads
// state before a lecture and saves it after.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region load-thread
// LoadThread reads a thread's facet state. A thread with no rows yet
// returns an empty state, ready for its first lecture.
func (s *Store) LoadThread(threadID string) (*facet.ThreadState, error) {
	rows, err := s.db.Query(
		`SELECT facet, snippets_json, occurrences, updated_at
		 FROM facet_evidence WHERE thread_id = ?`, threadID)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	state := facet.NewThreadState(threadID)
	for rows.Next() {
		var name, snippetsJSON string
		var occurrences int
		var updatedAt sql.NullString
		if err := rows.Scan(&name, &snippetsJSON, &occurrences, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}

		f, err := facet.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("thread %s: %w", threadID, err)
		}

		var snippets []string
		if err := json.Unmarshal([]byte(snippetsJSON), &snippets); err != nil {
			return nil, fmt.Errorf("decode snippets for %s/%s: %w", threadID, name, err)
		}

		ev := facet.Evidence{Snippets: snippets, Occurrences: occurrences}
		if updatedAt.Valid {
			t, err := time.Parse(time.RFC3339Nano, updatedAt.String)
			if err != nil {
				return nil, fmt.Errorf("parse updated_at for %s/%s: %w", threadID, name, err)
			}
			ev.UpdatedAt = t
		}
		state.Evidence[f] = ev
	}
	return state, rows.Err()
}
// #endregion load-thread

// #region save-thread
// SaveThread upserts all six facet rows for a thread in one transaction.
func (s *Store) SaveThread(state *facet.ThreadState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, f := range facet.All() {
		ev := state.Evidence[f]
		snippets := ev.Snippets
		if snippets == nil {
			snippets = []string{}
		}
		snippetsJSON, err := json.Marshal(snippets)
		if err != nil {
			return fmt.Errorf("encode snippets: %w", err)
		}

		var updatedAt interface{}
		if !ev.UpdatedAt.IsZero() {
			updatedAt = ev.UpdatedAt.UTC().Format(time.RFC3339Nano)
		}

		_, err = tx.Exec(
			`INSERT INTO facet_evidence (thread_id, facet, snippets_json, occurrences, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(thread_id, facet) DO UPDATE SET
			   snippets_json = excluded.snippets_json,
			   occurrences   = excluded.occurrences,
			   updated_at    = excluded.updated_at`,
			state.ThreadID, f.String(), string(snippetsJSON), ev.Occurrences, updatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", state.ThreadID, f, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
// #endregion save-thread

// #region list-threads
// ListThreads returns all thread IDs with persisted evidence.
func (s *Store) ListThreads() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT thread_id FROM facet_evidence ORDER BY thread_id`)
	if err != nil {
		return nil, fmt.Errorf("query threads: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan thread id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
// #endregion list-threads

// #region delete-thread
// DeleteThread removes a thread's evidence. The rotation log is kept for
// audit.
func (s *Store) DeleteThread(threadID string) error {
	if _, err := s.db.Exec(`DELETE FROM facet_evidence WHERE thread_id = ?`, threadID); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return nil
}
// #endregion delete-thread

// #region log-rotation
// LogRotation writes one provenance row to the rotation_log table.
func (s *Store) LogRotation(entry RotationEntry) error {
	if entry.RunID == "" {
		entry.RunID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO rotation_log (run_id, thread_id, segment_index, pass, mode, trigger_type, facet_order, scores_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.ThreadID,
		entry.SegmentIndex,
		entry.Pass,
		entry.Mode,
		entry.TriggerType,
		entry.FacetOrder,
		nullIfEmpty(entry.ScoresJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log rotation: %w", err)
	}
	return nil
}
// #endregion log-rotation

// #region recent-rotations
// RecentRotations returns the latest provenance rows for a thread, newest
// first.
func (s *Store) RecentRotations(threadID string, limit int) ([]RotationEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, thread_id, segment_index, pass, mode, trigger_type, facet_order, COALESCE(scores_json, ''), created_at
		 FROM rotation_log WHERE thread_id = ?
		 ORDER BY id DESC LIMIT ?`, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("query rotations: %w", err)
	}
	defer rows.Close()

	var entries []RotationEntry
	for rows.Next() {
		var e RotationEntry
		var createdAt string
		if err := rows.Scan(&e.RunID, &e.ThreadID, &e.SegmentIndex, &e.Pass, &e.Mode,
			&e.TriggerType, &e.FacetOrder, &e.ScoresJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan rotation: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion recent-rotations

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers

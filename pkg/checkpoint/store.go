// Package checkpoint implements the append-only per-run state log that
// makes every orchestrator step replayable and auditable. It never
// deletes or updates a row; each node transition appends a new snapshot.
package checkpoint

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one row of checkpoint metadata, used for List reporting.
type Record struct {
	Step      int
	NodeName  string
	CreatedAt string
}

// Store is the append-only checkpoint contract the orchestrator depends on.
type Store interface {
	Save(runID string, step int, nodeName string, state any) error
	LoadLatest(runID string) (json.RawMessage, bool, error)
	List(runID string) ([]Record, error)
	Close() error
}

// SQLiteStore is the embedded durable implementation, backed by the
// pure-Go modernc.org/sqlite driver. This store is write-heavy and only
// read for post-mortem inspection; it has no transactional coupling to
// the memo store.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates (or reuses) a sqlite-backed checkpoint store at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("checkpoint: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS graph_checkpoints (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			step INTEGER NOT NULL,
			node_name TEXT NOT NULL,
			state_json TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS ix_graph_checkpoints_run_step
		ON graph_checkpoints(run_id, step);
	`)
	if err != nil {
		return fmt.Errorf("checkpoint: init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Save(runID string, step int, nodeName string, state any) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("checkpoint: marshal state: %w", err)
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.Exec(`
		INSERT INTO graph_checkpoints (run_id, step, node_name, state_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, step, nodeName, string(stateJSON), createdAt)
	if err != nil {
		return fmt.Errorf("checkpoint: save %s step=%d node=%s: %w", runID, step, nodeName, err)
	}
	return nil
}

func (s *SQLiteStore) LoadLatest(runID string) (json.RawMessage, bool, error) {
	row := s.db.QueryRow(`
		SELECT state_json FROM graph_checkpoints
		WHERE run_id = ?
		ORDER BY step DESC, id DESC
		LIMIT 1
	`, runID)

	var stateJSON string
	switch err := row.Scan(&stateJSON); err {
	case sql.ErrNoRows:
		return nil, false, nil
	case nil:
		return json.RawMessage(stateJSON), true, nil
	default:
		return nil, false, fmt.Errorf("checkpoint: load latest %s: %w", runID, err)
	}
}

func (s *SQLiteStore) List(runID string) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT step, node_name, created_at FROM graph_checkpoints
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list %s: %w", runID, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Step, &r.NodeName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("checkpoint: scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

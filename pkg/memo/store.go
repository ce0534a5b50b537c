// Package memo implements the durable key→value store used for
// run-scoped memoization and the cross-run content-addressed cache.
// Both regions live in the same table, distinguished by namespace:
// "run" for per-run memoization, "cache" for the shared cross-run cache
// keyed under run_id "shared".
package memo

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one row of memo metadata, used for ListEntries reporting.
type Entry struct {
	Key        string
	ValueHash  string
	SourceTool string
	Step       int
	CreatedAt  string
}

// PutResult mirrors the metadata returned after writing a memo entry.
type PutResult struct {
	Inserted  bool
	RunID     string
	Key       string
	Namespace string
	ValueHash string
}

// LookupResult is returned by Get/GetLatest.
type LookupResult struct {
	Found     bool
	RunID     string
	Key       string
	Namespace string
	Value     any
	ValueHash string
}

// Store is the durable memo store contract the orchestrator depends on.
type Store interface {
	Put(runID, key string, value any, namespace, sourceTool string, step int) (PutResult, error)
	Get(runID, key, namespace string) (LookupResult, error)
	GetLatest(key, namespace string) (LookupResult, error)
	ListEntries(runID, namespace string) ([]Entry, error)
	Close() error
}

// SQLiteStore is the embedded, single-process durable implementation,
// backed by the pure-Go modernc.org/sqlite driver.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// DefaultNamespace is the run-scoped memoization namespace.
const DefaultNamespace = "run"

// CacheNamespace is the cross-run content-addressed cache namespace.
const CacheNamespace = "cache"

// SharedRunID is the run_id under which cross-run cache entries live.
const SharedRunID = "shared"

// Open creates (or reuses) a sqlite-backed memo store at dbPath, creating
// parent directories as needed.
func Open(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("memo: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("memo: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, logger: slog.With("component", "memo_store")}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS memo_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value_json TEXT NOT NULL,
			value_hash TEXT NOT NULL,
			source_tool TEXT NOT NULL,
			step INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS uq_memo_entries_run_key
		ON memo_entries(run_id, namespace, key);
	`)
	if err != nil {
		return fmt.Errorf("memo: init schema: %w", err)
	}
	return nil
}

// CanonicalJSON serializes value with sorted keys so identical content
// always hashes the same way. encoding/json already sorts map[string]any
// keys. When json cannot marshal value (e.g. it holds a channel, a func or
// a NaN float), the whole value is stringified with %v and that string is
// marshaled instead.
func CanonicalJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err == nil {
		return data, nil
	}
	return json.Marshal(fmt.Sprintf("%v", value))
}

// HashJSON returns the hex SHA-256 of the canonical JSON of value.
func HashJSON(value any) (string, error) {
	data, err := CanonicalJSON(value)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

func (s *SQLiteStore) Put(runID, key string, value any, namespace, sourceTool string, step int) (PutResult, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	valueJSON, err := CanonicalJSON(value)
	if err != nil {
		return PutResult{}, fmt.Errorf("memo: canonicalize value: %w", err)
	}
	valueHash, err := HashJSON(value)
	if err != nil {
		return PutResult{}, fmt.Errorf("memo: hash value: %w", err)
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.Exec(`
		INSERT INTO memo_entries (run_id, namespace, key, value_json, value_hash, source_tool, step, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, namespace, key) DO UPDATE SET
			value_json=excluded.value_json,
			value_hash=excluded.value_hash,
			source_tool=excluded.source_tool,
			step=excluded.step,
			created_at=excluded.created_at
	`, runID, namespace, key, string(valueJSON), valueHash, sourceTool, step, createdAt)
	if err != nil {
		return PutResult{}, fmt.Errorf("memo: put %s/%s/%s: %w", runID, namespace, key, err)
	}

	s.logger.Info("memo put", "run_id", runID, "namespace", namespace, "key", key, "value_hash", valueHash, "source_tool", sourceTool, "step", step)
	return PutResult{Inserted: true, RunID: runID, Key: key, Namespace: namespace, ValueHash: valueHash}, nil
}

func (s *SQLiteStore) Get(runID, key, namespace string) (LookupResult, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	row := s.db.QueryRow(`
		SELECT value_json, value_hash FROM memo_entries
		WHERE run_id = ? AND namespace = ? AND key = ?
	`, runID, namespace, key)

	var valueJSON, valueHash string
	switch err := row.Scan(&valueJSON, &valueHash); err {
	case sql.ErrNoRows:
		s.logger.Info("memo get miss", "run_id", runID, "namespace", namespace, "key", key)
		return LookupResult{Found: false, RunID: runID, Key: key, Namespace: namespace}, nil
	case nil:
		var value any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return LookupResult{}, fmt.Errorf("memo: decode value for %s/%s/%s: %w", runID, namespace, key, err)
		}
		s.logger.Info("memo get hit", "run_id", runID, "namespace", namespace, "key", key)
		return LookupResult{Found: true, RunID: runID, Key: key, Namespace: namespace, Value: value, ValueHash: valueHash}, nil
	default:
		return LookupResult{}, fmt.Errorf("memo: get %s/%s/%s: %w", runID, namespace, key, err)
	}
}

func (s *SQLiteStore) GetLatest(key, namespace string) (LookupResult, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	row := s.db.QueryRow(`
		SELECT run_id, value_json, value_hash FROM memo_entries
		WHERE namespace = ? AND key = ?
		ORDER BY id DESC LIMIT 1
	`, namespace, key)

	var runID, valueJSON, valueHash string
	switch err := row.Scan(&runID, &valueJSON, &valueHash); err {
	case sql.ErrNoRows:
		s.logger.Info("memo get latest miss", "namespace", namespace, "key", key)
		return LookupResult{Found: false, Key: key, Namespace: namespace}, nil
	case nil:
		var value any
		if err := json.Unmarshal([]byte(valueJSON), &value); err != nil {
			return LookupResult{}, fmt.Errorf("memo: decode latest value for %s/%s: %w", namespace, key, err)
		}
		s.logger.Info("memo get latest hit", "run_id", runID, "namespace", namespace, "key", key)
		return LookupResult{Found: true, RunID: runID, Key: key, Namespace: namespace, Value: value, ValueHash: valueHash}, nil
	default:
		return LookupResult{}, fmt.Errorf("memo: get latest %s/%s: %w", namespace, key, err)
	}
}

func (s *SQLiteStore) ListEntries(runID, namespace string) ([]Entry, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	rows, err := s.db.Query(`
		SELECT key, value_hash, source_tool, step, created_at FROM memo_entries
		WHERE run_id = ? AND namespace = ?
		ORDER BY step ASC, id ASC
	`, runID, namespace)
	if err != nil {
		return nil, fmt.Errorf("memo: list entries %s/%s: %w", runID, namespace, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.ValueHash, &e.SourceTool, &e.Step, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("memo: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	s.logger.Info("memo list", "run_id", runID, "namespace", namespace, "count", len(entries))
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

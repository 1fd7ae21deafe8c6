package storage

import (
	"candreg/candidate"
	"candreg/config"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink stores candidate documents as JSON text in a local SQLite file.
// The collection name is used as the table name.
type SQLiteSink struct {
	path    string
	table   string
	timeout time.Duration
}

func NewSQLiteSink(cfg config.SinkConfig) *SQLiteSink {
	return &SQLiteSink{path: cfg.URI, table: cfg.Collection, timeout: cfg.Timeout}
}

func (s *SQLiteSink) Open(ctx context.Context) (Session, error) {
	store, err := OpenSQLite(ctx, s.path, s.table, s.timeout)
	if err != nil {
		return nil, err
	}
	return store, nil
}

type SQLiteStore struct {
	db    *sql.DB
	table string
}

func OpenSQLite(ctx context.Context, path, table string, busyTimeout time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection per session so the busy timeout pragma applies to every statement.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if busyTimeout > 0 {
		pragma := fmt.Sprintf(`PRAGMA busy_timeout = %d;`, busyTimeout.Milliseconds())
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	store := &SQLiteStore{db: db, table: table}
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	// No uniqueness constraint: writing the same candidates twice stores them twice.
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %q (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document TEXT NOT NULL,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`, s.table)
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// InsertOne stores one candidate document and returns its row ID.
func (s *SQLiteStore) InsertOne(ctx context.Context, record candidate.Record) (string, error) {
	document, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode candidate document: %w", err)
	}

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %q (document) VALUES (?);`, s.table), string(document))
	if err != nil {
		return "", fmt.Errorf("insert candidate: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("read inserted row id: %w", err)
	}
	if id <= 0 {
		return "", fmt.Errorf("invalid inserted row id %d", id)
	}
	return strconv.FormatInt(id, 10), nil
}

// ListCandidates returns all stored documents in insertion order, keyed by row ID.
func (s *SQLiteStore) ListCandidates(ctx context.Context) ([]StoredCandidate, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT id, document FROM %q ORDER BY id;`, s.table))
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	stored := make([]StoredCandidate, 0, 64)
	for rows.Next() {
		var (
			id       int64
			document string
			entry    StoredCandidate
		)
		if err := rows.Scan(&id, &document); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if err := json.Unmarshal([]byte(document), &entry.Record); err != nil {
			return nil, fmt.Errorf("decode candidate %d: %w", id, err)
		}
		entry.ID = strconv.FormatInt(id, 10)
		stored = append(stored, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return stored, nil
}

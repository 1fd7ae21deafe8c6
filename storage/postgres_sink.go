package storage

import (
	"candreg/candidate"
	"candreg/config"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// PostgresSink stores candidate documents in a JSONB column. Document ids are
// generated by the database.
type PostgresSink struct {
	uri     string
	table   string
	timeout time.Duration
}

func NewPostgresSink(cfg config.SinkConfig) *PostgresSink {
	return &PostgresSink{uri: cfg.URI, table: cfg.Collection, timeout: cfg.Timeout}
}

func (s *PostgresSink) Open(ctx context.Context) (Session, error) {
	connectCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	conn, err := pgx.Connect(connectCtx, s.uri)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	session := &postgresSession{conn: conn, table: pgx.Identifier{s.table}.Sanitize()}
	if err := session.ensureSchema(connectCtx); err != nil {
		_ = conn.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return session, nil
}

type postgresSession struct {
	conn  *pgx.Conn
	table string
}

func (s *postgresSession) ensureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	document JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`, s.table)
	if _, err := s.conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *postgresSession) InsertOne(ctx context.Context, record candidate.Record) (string, error) {
	document, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("encode candidate document: %w", err)
	}

	var id string
	insert := fmt.Sprintf(`INSERT INTO %s (document) VALUES ($1) RETURNING id::text;`, s.table)
	if err := s.conn.QueryRow(ctx, insert, document).Scan(&id); err != nil {
		return "", fmt.Errorf("insert candidate: %w", err)
	}
	return id, nil
}

// ListCandidates returns all stored documents ordered by creation time.
func (s *postgresSession) ListCandidates(ctx context.Context) ([]StoredCandidate, error) {
	rows, err := s.conn.Query(ctx, fmt.Sprintf(`SELECT id::text, document FROM %s ORDER BY created_at, id;`, s.table))
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var stored []StoredCandidate
	for rows.Next() {
		var (
			entry    StoredCandidate
			document []byte
		)
		if err := rows.Scan(&entry.ID, &document); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		if err := json.Unmarshal(document, &entry.Record); err != nil {
			return nil, fmt.Errorf("decode candidate %s: %w", entry.ID, err)
		}
		stored = append(stored, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return stored, nil
}

func (s *postgresSession) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

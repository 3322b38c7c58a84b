package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/manthysbr/scribe/internal/core/domain"
	"github.com/manthysbr/scribe/internal/core/ports"
	_ "github.com/marcboeker/go-duckdb"
)

var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS job_events_seq START 1`,
	`CREATE TABLE IF NOT EXISTS job_events (
		seq         BIGINT DEFAULT nextval('job_events_seq') PRIMARY KEY,
		kind        VARCHAR NOT NULL,
		job_id      VARCHAR,
		outcome     VARCHAR NOT NULL,
		detail      VARCHAR,
		recorded_at TIMESTAMP NOT NULL
	)`,
}

// Journal is an append-only DuckDB log of dispatches and callbacks.
type Journal struct {
	db *sql.DB
}

var _ ports.Journal = (*Journal)(nil)

// NewJournal opens (or creates) the journal at path. An empty path is an in-memory database.
func NewJournal(path string) (*Journal, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate journal: %w", err)
		}
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(ctx context.Context, e domain.JournalEntry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO job_events (kind, job_id, outcome, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(e.Kind),
		string(e.JobID),
		e.Outcome,
		e.Detail,
		e.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job event: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
		SELECT kind, job_id, outcome, detail, recorded_at
		FROM job_events
		ORDER BY seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query job events: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			e             domain.JournalEntry
			kind          string
			jobID, detail sql.NullString
		)
		if err := rows.Scan(&kind, &jobID, &e.Outcome, &detail, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan job event: %w", err)
		}
		e.Kind = domain.EventKind(kind)
		e.JobID = domain.JobID(jobID.String)
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

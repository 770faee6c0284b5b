// Package postgres persists the roster and document tables to a hosted
// PostgreSQL instance. SelectAll, Insert and DeleteWhere issue independent
// statements with no transaction spanning them, matching the remote table
// service they stand in for; only ReplaceAll runs inside one transaction,
// which is the documented atomicity decision for bulk replace.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"auditcore/pkg/domain"
)

// Compile-time contract assertions.
var (
	_ domain.RosterStore   = (*Store)(nil)
	_ domain.DocumentStore = (*Store)(nil)
)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/auditcore?sslmode=disable"
)

// Store holds the shared connection pool.
type Store struct {
	db *sql.DB
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back
// to defaultDSN), pings it, and ensures both tables exist.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, domain.PersistenceError{Op: "ping postgres", Err: err}
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS roster (
			position BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			late_count INTEGER NOT NULL DEFAULT 0,
			absence_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL,
			title TEXT NOT NULL,
			revision TEXT NOT NULL DEFAULT '0',
			issue_date DATE,
			next_review DATE,
			area TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return domain.PersistenceError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the pool for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// List returns the roster table ordered by position.
func (s *Store) List(ctx context.Context) ([]domain.PersonRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, department, late_count, absence_count FROM roster ORDER BY position`)
	if err != nil {
		return nil, domain.PersistenceError{Op: "select roster", Err: err}
	}
	defer func() { _ = rows.Close() }()
	var out []domain.PersonRecord
	for rows.Next() {
		var r domain.PersonRecord
		if err := rows.Scan(&r.Name, &r.Department, &r.LateCount, &r.AbsenceCount); err != nil {
			return nil, domain.PersistenceError{Op: "scan roster", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError{Op: "iterate roster", Err: err}
	}
	return out, nil
}

// Replace overwrites the whole roster table in one transaction.
func (s *Store) Replace(ctx context.Context, records []domain.PersonRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PersistenceError{Op: "begin roster replace", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM roster`); err != nil {
		return domain.PersistenceError{Op: "clear roster", Err: err}
	}
	for i, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO roster(position, name, department, late_count, absence_count) VALUES($1,$2,$3,$4,$5)`,
			i, r.Name, r.Department, r.LateCount, r.AbsenceCount); err != nil {
			return domain.PersistenceError{Op: "insert roster", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit roster replace", Err: err}
	}
	return nil
}

type docRow struct {
	id     int64
	record domain.DocumentRecord
}

func (s *Store) selectDocs(ctx context.Context) ([]docRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, title, revision, issue_date, next_review, area, status, document_type, link, owner
		 FROM documents ORDER BY id`)
	if err != nil {
		return nil, domain.PersistenceError{Op: "select documents", Err: err}
	}
	defer func() { _ = rows.Close() }()
	var out []docRow
	for rows.Next() {
		var (
			row                   docRow
			issueDate, nextReview sql.NullTime
			status                string
		)
		if err := rows.Scan(&row.id, &row.record.Code, &row.record.Title, &row.record.Revision,
			&issueDate, &nextReview, &row.record.Area, &status,
			&row.record.DocumentType, &row.record.Link, &row.record.Owner); err != nil {
			return nil, domain.PersistenceError{Op: "scan documents", Err: err}
		}
		row.record.Status = domain.DocumentStatus(status)
		row.record.IssueDate = nullableTime(issueDate)
		row.record.NextReview = nullableTime(nextReview)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError{Op: "iterate documents", Err: err}
	}
	return out, nil
}

// SelectAll returns the document table in insertion order.
func (s *Store) SelectAll(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.selectDocs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DocumentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record)
	}
	return out, nil
}

// Insert appends rows to the document table as one independent call.
func (s *Store) Insert(ctx context.Context, insert []domain.DocumentRecord) error {
	return s.insertDocuments(ctx, s.db, insert)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertDocuments(ctx context.Context, db execer, rows []domain.DocumentRecord) error {
	for _, r := range rows {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO documents(code, title, revision, issue_date, next_review, area, status, document_type, link, owner)
			 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			r.Code, r.Title, r.Revision, timeValue(r.IssueDate), timeValue(r.NextReview),
			r.Area, string(r.Status), r.DocumentType, r.Link, r.Owner); err != nil {
			return domain.PersistenceError{Op: "insert documents", Err: err}
		}
	}
	return nil
}

// DeleteWhere removes every row matching the predicate. The predicate runs
// client-side over a fresh select, then matched ids are deleted.
func (s *Store) DeleteWhere(ctx context.Context, match func(domain.DocumentRecord) bool) (int, error) {
	rows, err := s.selectDocs(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, row := range rows {
		if !match(row.record) {
			continue
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, row.id)
		if err != nil {
			return removed, domain.PersistenceError{Op: "delete documents", Err: err}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			removed++
		}
	}
	return removed, nil
}

// ReplaceAll swaps the whole document table inside one transaction.
func (s *Store) ReplaceAll(ctx context.Context, rows []domain.DocumentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PersistenceError{Op: "begin replace", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return domain.PersistenceError{Op: "clear documents", Err: err}
	}
	if err := s.insertDocuments(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit replace", Err: err}
	}
	return nil
}

func timeValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

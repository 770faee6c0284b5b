// Package sqlite persists the roster and document tables to an embedded
// sqlite database using the pure-Go driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"auditcore/pkg/domain"
)

// Compile-time contract assertions.
var (
	_ domain.RosterStore   = (*Store)(nil)
	_ domain.DocumentStore = (*Store)(nil)
)

// Store keeps both tables as rows; roster order is preserved through an
// explicit position column rewritten on every whole-table replace.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "auditcore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS roster (
			position INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			department TEXT NOT NULL DEFAULT '',
			late_count INTEGER NOT NULL DEFAULT 0,
			absence_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			title TEXT NOT NULL,
			revision TEXT NOT NULL DEFAULT '0',
			issue_date TEXT,
			next_review TEXT,
			area TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			owner TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return domain.PersistenceError{Op: "ensure schema", Err: err}
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for integration testing hooks.
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
			`INSERT INTO roster(position, name, department, late_count, absence_count) VALUES(?,?,?,?,?)`,
			i, r.Name, r.Department, r.LateCount, r.AbsenceCount); err != nil {
			return domain.PersistenceError{Op: "insert roster", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit roster replace", Err: err}
	}
	return nil
}

const documentColumns = `code, title, revision, issue_date, next_review, area, status, document_type, link, owner`

// SelectAll returns the document table in insertion order.
func (s *Store) SelectAll(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, `+documentColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return nil, domain.PersistenceError{Op: "select documents", Err: err}
	}
	defer func() { _ = rows.Close() }()
	out, err := scanDocuments(rows)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanDocuments(rows *sql.Rows) ([]domain.DocumentRecord, error) {
	var out []domain.DocumentRecord
	for rows.Next() {
		var (
			id                    int64
			r                     domain.DocumentRecord
			issueDate, nextReview sql.NullString
			status                string
		)
		if err := rows.Scan(&id, &r.Code, &r.Title, &r.Revision, &issueDate, &nextReview,
			&r.Area, &status, &r.DocumentType, &r.Link, &r.Owner); err != nil {
			return nil, domain.PersistenceError{Op: "scan documents", Err: err}
		}
		r.Status = domain.DocumentStatus(status)
		r.IssueDate = parseStoredDate(issueDate)
		r.NextReview = parseStoredDate(nextReview)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.PersistenceError{Op: "iterate documents", Err: err}
	}
	return out, nil
}

// Insert appends rows to the document table.
func (s *Store) Insert(ctx context.Context, insert []domain.DocumentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PersistenceError{Op: "begin insert", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	if err := insertDocuments(ctx, tx, insert); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit insert", Err: err}
	}
	return nil
}

func insertDocuments(ctx context.Context, tx *sql.Tx, rows []domain.DocumentRecord) error {
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents(`+documentColumns+`) VALUES(?,?,?,?,?,?,?,?,?,?)`,
			r.Code, r.Title, r.Revision,
			storedDate(r.IssueDate), storedDate(r.NextReview),
			r.Area, string(r.Status), r.DocumentType, r.Link, r.Owner); err != nil {
			return domain.PersistenceError{Op: "insert documents", Err: err}
		}
	}
	return nil
}

// DeleteWhere removes every document row matching the predicate. The
// predicate runs client-side: matching ids are collected from a select and
// deleted by id, mirroring a hosted table service's delete-matching call.
func (s *Store) DeleteWhere(ctx context.Context, match func(domain.DocumentRecord) bool) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, `+documentColumns+` FROM documents ORDER BY id`)
	if err != nil {
		return 0, domain.PersistenceError{Op: "select documents", Err: err}
	}
	var ids []int64
	func() {
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var (
				id                    int64
				r                     domain.DocumentRecord
				issueDate, nextReview sql.NullString
				status                string
			)
			if err = rows.Scan(&id, &r.Code, &r.Title, &r.Revision, &issueDate, &nextReview,
				&r.Area, &status, &r.DocumentType, &r.Link, &r.Owner); err != nil {
				return
			}
			r.Status = domain.DocumentStatus(status)
			r.IssueDate = parseStoredDate(issueDate)
			r.NextReview = parseStoredDate(nextReview)
			if match(r) {
				ids = append(ids, id)
			}
		}
		err = rows.Err()
	}()
	if err != nil {
		return 0, domain.PersistenceError{Op: "scan documents", Err: err}
	}
	removed := 0
	for _, id := range ids {
		res, derr := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if derr != nil {
			return removed, domain.PersistenceError{Op: "delete documents", Err: derr}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			removed++
		}
	}
	return removed, nil
}

// ReplaceAll swaps the whole document table inside one transaction, so a
// failed insert rolls the delete back instead of leaving a half-empty table.
func (s *Store) ReplaceAll(ctx context.Context, rows []domain.DocumentRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.PersistenceError{Op: "begin replace", Err: err}
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
		return domain.PersistenceError{Op: "clear documents", Err: err}
	}
	if err := insertDocuments(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.PersistenceError{Op: "commit replace", Err: err}
	}
	return nil
}

const storedDateLayout = "2006-01-02"

func storedDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(storedDateLayout)
}

func parseStoredDate(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	t, err := time.Parse(storedDateLayout, v.String)
	if err != nil {
		return nil
	}
	return &t
}

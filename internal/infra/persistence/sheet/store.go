// Package sheet persists the roster and document tables to a spreadsheet
// workbook. There is no partial-row API: every read loads the whole workbook
// and every write rewrites it, swapped into place atomically via rename.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"auditcore/pkg/domain"
)

// Compile-time contract assertions.
var (
	_ domain.RosterStore   = (*Store)(nil)
	_ domain.DocumentStore = (*Store)(nil)
)

const (
	rosterSheet   = "Roster"
	documentSheet = "Documents"
	dateLayout    = "2006-01-02"
)

var rosterHeader = []string{"name", "department", "late_count", "absence_count"}

var documentHeader = []string{
	domain.ColumnCode, domain.ColumnTitle, domain.ColumnRevision,
	domain.ColumnIssueDate, domain.ColumnNextReview, domain.ColumnArea,
	domain.ColumnStatus, domain.ColumnDocumentType, domain.ColumnLink,
	domain.ColumnOwner,
}

// Store reads and writes one workbook file. A sibling .lock sentinel guards
// the write: a second writer holding the sentinel surfaces as ConflictError
// so the operator can retry instead of corrupting the workbook.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore opens (or prepares to create) the workbook at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "auditcore.xlsx"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	return &Store{path: path}, nil
}

type tables struct {
	roster    []domain.PersonRecord
	documents []domain.DocumentRecord
}

func (s *Store) load() (tables, error) {
	var t tables
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return t, domain.PersistenceError{Op: "open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(rosterSheet)
	if err == nil {
		t.roster = parseRoster(rows)
	}
	rows, err = f.GetRows(documentSheet)
	if err == nil {
		t.documents = parseDocuments(rows)
	}
	return t, nil
}

func parseRoster(rows [][]string) []domain.PersonRecord {
	var out []domain.PersonRecord
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		rec := domain.PersonRecord{Name: cell(row, 0), Department: cell(row, 1)}
		rec.LateCount, _ = strconv.Atoi(cell(row, 2))
		rec.AbsenceCount, _ = strconv.Atoi(cell(row, 3))
		if strings.TrimSpace(rec.Name) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func parseDocuments(rows [][]string) []domain.DocumentRecord {
	var out []domain.DocumentRecord
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		rec := domain.DocumentRecord{
			Code:         cell(row, 0),
			Title:        cell(row, 1),
			Revision:     cell(row, 2),
			IssueDate:    parseDate(cell(row, 3)),
			NextReview:   parseDate(cell(row, 4)),
			Area:         cell(row, 5),
			Status:       domain.DocumentStatus(cell(row, 6)),
			DocumentType: cell(row, 7),
			Link:         cell(row, 8),
			Owner:        cell(row, 9),
		}
		if strings.TrimSpace(rec.Code) == "" && strings.TrimSpace(rec.Title) == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseDate(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func (s *Store) save(t tables) error {
	lock := s.path + ".lock"
	lf, err := os.OpenFile(lock, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return domain.ConflictError{Entity: "workbook", Reason: "locked by another writer"}
		}
		return domain.PersistenceError{Op: "lock workbook", Err: err}
	}
	_ = lf.Close()
	defer func() { _ = os.Remove(lock) }()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := writeSheet(f, rosterSheet, rosterHeader, rosterRows(t.roster)); err != nil {
		return err
	}
	if err := writeSheet(f, documentSheet, documentHeader, documentRows(t.documents)); err != nil {
		return err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return domain.PersistenceError{Op: "prune default sheet", Err: err}
	}

	// excelize.SaveAs rejects paths whose extension is not a workbook
	// format, so the temp file must keep an .xlsx suffix.
	tmp := s.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return domain.PersistenceError{Op: "write workbook", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return domain.PersistenceError{Op: "swap workbook", Err: err}
	}
	return nil
}

func rosterRows(records []domain.PersonRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{r.Name, r.Department, r.LateCount, r.AbsenceCount})
	}
	return rows
}

func documentRows(records []domain.DocumentRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		rows = append(rows, []any{
			r.Code, r.Title, r.Revision,
			formatDate(r.IssueDate), formatDate(r.NextReview),
			r.Area, string(r.Status), r.DocumentType, r.Link, r.Owner,
		})
	}
	return rows
}

func writeSheet(f *excelize.File, name string, header []string, rows [][]any) error {
	if _, err := f.NewSheet(name); err != nil {
		return domain.PersistenceError{Op: "create sheet", Err: err}
	}
	for col, h := range header {
		cellRef, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return domain.PersistenceError{Op: "address cell", Err: err}
		}
		if err := f.SetCellValue(name, cellRef, h); err != nil {
			return domain.PersistenceError{Op: "write header", Err: err}
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cellRef, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return domain.PersistenceError{Op: "address cell", Err: err}
			}
			if err := f.SetCellValue(name, cellRef, v); err != nil {
				return domain.PersistenceError{Op: "write row", Err: err}
			}
		}
	}
	return nil
}

// List returns the roster table in stored order.
func (s *Store) List(_ context.Context) ([]domain.PersonRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return nil, err
	}
	return t.roster, nil
}

// Replace overwrites the whole roster table, keeping documents intact.
func (s *Store) Replace(_ context.Context, records []domain.PersonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return err
	}
	t.roster = records
	return s.save(t)
}

// SelectAll returns the document table in stored order.
func (s *Store) SelectAll(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return nil, err
	}
	return t.documents, nil
}

// Insert appends rows to the document table.
func (s *Store) Insert(_ context.Context, rows []domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return err
	}
	t.documents = append(t.documents, rows...)
	return s.save(t)
}

// DeleteWhere removes every document row matching the predicate.
func (s *Store) DeleteWhere(_ context.Context, match func(domain.DocumentRecord) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return 0, err
	}
	kept := make([]domain.DocumentRecord, 0, len(t.documents))
	removed := 0
	for _, row := range t.documents {
		if match(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	t.documents = kept
	if err := s.save(t); err != nil {
		return 0, err
	}
	return removed, nil
}

// ReplaceAll swaps the whole document table. The swap is a single workbook
// rewrite, so it either lands completely or leaves the prior file in place.
func (s *Store) ReplaceAll(_ context.Context, rows []domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, err := s.load()
	if err != nil {
		return err
	}
	t.documents = rows
	return s.save(t)
}

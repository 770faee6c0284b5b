package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"auditcore/pkg/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRosterReplacePreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []domain.PersonRecord{
		{Name: "Zoe Ortiz", Department: "Sistemas", LateCount: 1},
		{Name: "Ana Flores", Department: "Calidad", AbsenceCount: 2},
		{Name: "Luis Vega", Department: "Producción"},
	}
	if err := store.Replace(ctx, records); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	// insertion order, not alphabetical
	for i, want := range []string{"Zoe Ortiz", "Ana Flores", "Luis Vega"} {
		if got[i].Name != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].Name)
		}
	}
	if got[1].AbsenceCount != 2 {
		t.Fatalf("counters did not round trip: %+v", got[1])
	}

	// replace overwrites, never merges
	if err := store.Replace(ctx, records[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, _ = store.List(ctx)
	if len(got) != 1 || got[0].Name != "Zoe Ortiz" {
		t.Fatalf("replace merged instead of overwriting: %+v", got)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	issue := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	rows := []domain.DocumentRecord{
		{
			Code: "SGC-001", Title: "Manual de Calidad", Revision: "2",
			IssueDate: &issue, Area: "Calidad",
			Status: domain.DocumentCurrent, DocumentType: "Manual",
			Owner: "Gerente de Calidad",
		},
		{Code: "SGC-002", Title: "Procedimiento", Revision: "0", Status: domain.DocumentObsolete},
	}
	if err := store.Insert(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.SelectAll(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 || got[0].Code != "SGC-001" {
		t.Fatalf("unexpected rows %+v", got)
	}
	if got[0].IssueDate == nil || !got[0].IssueDate.Equal(issue) {
		t.Fatalf("date did not round trip: %v", got[0].IssueDate)
	}
	if got[0].NextReview != nil {
		t.Fatalf("missing date should be nil, got %v", got[0].NextReview)
	}

	removed, err := store.DeleteWhere(ctx, func(d domain.DocumentRecord) bool {
		return d.Status == domain.DocumentObsolete
	})
	if err != nil || removed != 1 {
		t.Fatalf("delete: removed=%d err=%v", removed, err)
	}
	got, _ = store.SelectAll(ctx)
	if len(got) != 1 || got[0].Code != "SGC-001" {
		t.Fatalf("delete removed wrong rows: %+v", got)
	}

	if err := store.ReplaceAll(ctx, []domain.DocumentRecord{{Code: "SGC-009", Title: "Formato", Revision: "0"}}); err != nil {
		t.Fatalf("replace all: %v", err)
	}
	got, _ = store.SelectAll(ctx)
	if len(got) != 1 || got[0].Code != "SGC-009" {
		t.Fatalf("replace all did not overwrite: %+v", got)
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if err := store.Replace(ctx, []domain.PersonRecord{{Name: "Ana Flores"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	got, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ana Flores" {
		t.Fatalf("data lost across reopen: %+v", got)
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"auditcore/pkg/domain"
)

func TestRosterReplaceAndList(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	records := []domain.PersonRecord{
		{Name: "Ana Flores", Department: "Calidad", LateCount: 2},
		{Name: "Luis Vega", Department: "Producción", AbsenceCount: 1},
	}
	if err := store.Replace(ctx, records); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Ana Flores" || got[1].Name != "Luis Vega" {
		t.Fatalf("unexpected roster %+v", got)
	}

	// mutating the returned slice must not affect stored state
	got[0].Name = "mutated"
	again, err := store.List(ctx)
	if err != nil {
		t.Fatalf("second list: %v", err)
	}
	if again[0].Name != "Ana Flores" {
		t.Fatalf("stored state mutated through returned slice")
	}
}

func TestDocumentInsertDeleteReplace(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	issue := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)

	rows := []domain.DocumentRecord{
		{Code: "SGC-001", Title: "Manual", Revision: "1", IssueDate: &issue, Status: domain.DocumentCurrent},
		{Code: "SGC-002", Title: "Procedimiento", Revision: "0", Status: domain.DocumentObsolete},
	}
	if err := store.Insert(ctx, rows); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.SelectAll(ctx)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// date pointers are deep-copied
	*got[0].IssueDate = got[0].IssueDate.AddDate(1, 0, 0)
	again, _ := store.SelectAll(ctx)
	if !again[0].IssueDate.Equal(issue) {
		t.Fatalf("stored date mutated through returned pointer")
	}

	removed, err := store.DeleteWhere(ctx, func(d domain.DocumentRecord) bool {
		return d.Status == domain.DocumentObsolete
	})
	if err != nil || removed != 1 {
		t.Fatalf("delete: removed=%d err=%v", removed, err)
	}

	if err := store.ReplaceAll(ctx, []domain.DocumentRecord{{Code: "SGC-009", Title: "Formato"}}); err != nil {
		t.Fatalf("replace all: %v", err)
	}
	final, _ := store.SelectAll(ctx)
	if len(final) != 1 || final[0].Code != "SGC-009" {
		t.Fatalf("replace all did not overwrite: %+v", final)
	}
}

func TestSeed(t *testing.T) {
	store := NewStore()
	store.Seed(
		[]domain.PersonRecord{{Name: "Ana Flores"}},
		[]domain.DocumentRecord{{Code: "SGC-001", Title: "Manual"}},
	)
	roster, _ := store.List(context.Background())
	docs, _ := store.SelectAll(context.Background())
	if len(roster) != 1 || len(docs) != 1 {
		t.Fatalf("seed failed: %d roster, %d docs", len(roster), len(docs))
	}
}

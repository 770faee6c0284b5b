package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"auditcore/internal/blob"
	"auditcore/internal/infra/persistence/memory"
	"auditcore/pkg/domain"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store, store, blob.NewMemory(),
		WithClock(func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }))
	return svc, store
}

func TestServiceUpsertPersonReturnsStoredRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record, outcome, err := svc.UpsertPerson(ctx, "Ana", PersonFields{Department: "Sales", LateCount: 4})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if outcome != OutcomeCreated || record.Name != "Ana" || record.LateCount != 4 {
		t.Fatalf("unexpected result %s %+v", outcome, record)
	}

	record, outcome, err = svc.UpsertPerson(ctx, "Ana", PersonFields{Department: "Sales", LateCount: 5})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if outcome != OutcomeUpdated || record.LateCount != 5 {
		t.Fatalf("unexpected result %s %+v", outcome, record)
	}

	entries, metrics, err := svc.Roster(ctx, "", "")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(entries) != 1 || metrics.Total != 1 || metrics.Flagged != 1 {
		t.Fatalf("unexpected roster %+v %+v", entries, metrics)
	}
	if entries[0].Status != StatusAudit {
		t.Fatalf("4 lates should be flagged, got %s", entries[0].Status)
	}
}

func TestServiceRosterFilters(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]PersonRecord{
		{Name: "Ana López", Department: "Sales", LateCount: 4},
		{Name: "Luis", Department: "IT"},
		{Name: "Marta", Department: "Sales"},
	}, nil)
	ctx := context.Background()

	entries, metrics, err := svc.Roster(ctx, "sales", "")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 sales entries, got %+v", entries)
	}
	// metrics always cover the full table, not the filtered view
	if metrics.Total != 3 || metrics.Flagged != 1 {
		t.Fatalf("unexpected metrics %+v", metrics)
	}

	entries, _, err = svc.Roster(ctx, "", StatusAudit)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "Ana López" {
		t.Fatalf("expected only the flagged entry, got %+v", entries)
	}
}

func TestServiceDeletePersonAt(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]PersonRecord{{Name: "Ana"}, {Name: "Luis"}}, nil)
	ctx := context.Background()

	if err := svc.DeletePersonAt(ctx, 0, "Ana"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries, _, err := svc.Roster(ctx, "", "")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	for _, e := range entries {
		if e.Name == "Ana" {
			t.Fatalf("deleted record still present: %+v", entries)
		}
	}

	var conflict domain.ConflictError
	if err := svc.DeletePersonAt(ctx, 0, "Ana"); !errors.As(err, &conflict) {
		t.Fatalf("stale delete should conflict, got %v", err)
	}
}

func TestServiceImportRoster(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed([]PersonRecord{{Name: "Ana", LateCount: 1}}, nil)
	ctx := context.Background()

	created, updated, skipped, err := svc.ImportRoster(ctx, []PersonRecord{
		{Name: "Ana", LateCount: 2},
		{Name: "Luis"},
		{Name: "   "},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if created != 1 || updated != 1 || skipped != 1 {
		t.Fatalf("unexpected counts created=%d updated=%d skipped=%d", created, updated, skipped)
	}
}

type failingRoster struct {
	memory.Store
	failReplace bool
}

func (f *failingRoster) Replace(ctx context.Context, records []PersonRecord) error {
	if f.failReplace {
		return domain.PersistenceError{Op: "replace roster", Err: errors.New("backing store unreachable")}
	}
	return f.Store.Replace(ctx, records)
}

func TestServiceUpsertSurfacesWriteFailure(t *testing.T) {
	store := &failingRoster{failReplace: true}
	svc := NewService(store, &store.Store, blob.NewMemory())
	ctx := context.Background()

	var persistence domain.PersistenceError
	if _, _, err := svc.UpsertPerson(ctx, "Ana", PersonFields{}); !errors.As(err, &persistence) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	// nothing was silently kept: the table is still empty
	entries, _, err := svc.Roster(ctx, "", "")
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed write must not mutate the view: %+v", entries)
	}
}

func TestServiceUploadDocument(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	record, outcome, err := svc.UploadDocument(ctx, DocumentRecord{
		Code:   "SGC-001",
		Title:  "Quality Manual",
		Status: domain.DocumentCurrent,
	}, "manual.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if outcome != OutcomeCreated {
		t.Fatalf("expected created, got %s", outcome)
	}
	if want := "memory://SGC-001_20250314_093000.pdf"; record.Link != want {
		t.Fatalf("link %q, want %q", record.Link, want)
	}

	docs, _, err := svc.Documents(ctx, "", "")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 1 || docs[0].Link != record.Link {
		t.Fatalf("uploaded record not persisted: %+v", docs)
	}
}

func TestServiceBulkReplaceIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed(nil, []DocumentRecord{{Code: "OLD", Title: "stale"}})
	ctx := context.Background()

	rows := []DocumentRecord{
		{Code: "A", Title: "a", Status: domain.DocumentCurrent, Revision: "0"},
		{Code: "B", Title: "b", Status: domain.DocumentObsolete, Revision: "1"},
	}
	n, err := svc.BulkReplaceDocuments(ctx, rows)
	if err != nil {
		t.Fatalf("bulk replace: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	docs, _, err := svc.Documents(ctx, "", "")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 2 || docs[0].Code != "A" {
		t.Fatalf("replace must overwrite, not merge: %+v", docs)
	}

	// applying the same input again yields the same table
	if _, err := svc.BulkReplaceDocuments(ctx, rows); err != nil {
		t.Fatalf("second bulk replace: %v", err)
	}
	again, _, err := svc.Documents(ctx, "", "")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(again) != len(docs) {
		t.Fatalf("bulk replace is not idempotent: %+v vs %+v", docs, again)
	}
}

func TestServiceDocumentFilters(t *testing.T) {
	svc, store := newTestService(t)
	store.Seed(nil, []DocumentRecord{
		{Code: "SGC-001", Title: "Quality Manual", Status: domain.DocumentCurrent},
		{Code: "SGC-002", Title: "Safety Procedure", Status: domain.DocumentObsolete},
		{Code: "SGC-003", Title: "Quality Records", Status: domain.DocumentCurrent},
	})
	ctx := context.Background()

	docs, health, err := svc.Documents(ctx, "quality", "")
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 quality docs, got %+v", docs)
	}
	if health.Total != 3 || health.Score != 67 {
		t.Fatalf("health covers the full table: %+v", health)
	}

	docs, _, err = svc.Documents(ctx, "", domain.DocumentObsolete)
	if err != nil {
		t.Fatalf("documents: %v", err)
	}
	if len(docs) != 1 || docs[0].Code != "SGC-002" {
		t.Fatalf("unexpected status filter result: %+v", docs)
	}
}

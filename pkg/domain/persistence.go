package domain

import "context"

// RosterStore is the whole-table contract backing the personnel roster.
// Implementations expose no partial-row API: callers read the full ordered
// table, reconcile in memory, and write the full table back. After any write
// callers must re-read rather than trust their pre-write copy.
type RosterStore interface {
	// List returns the current table in stored order.
	List(ctx context.Context) ([]PersonRecord, error)
	// Replace overwrites the whole table. The write is atomic per driver:
	// either the stored table equals records afterwards, or the prior table
	// is intact and an error is returned.
	Replace(ctx context.Context, records []PersonRecord) error
}

// DocumentStore mirrors a hosted table service: select-all, insert-rows and
// delete-matching are independent operations with no transaction spanning
// them. ReplaceAll is the one composite operation and each driver must make
// it atomic (single SQL transaction, whole-file swap, or two-phase with
// restore of the prior rows on insert failure).
type DocumentStore interface {
	SelectAll(ctx context.Context) ([]DocumentRecord, error)
	Insert(ctx context.Context, rows []DocumentRecord) error
	// DeleteWhere removes every row matching the predicate and reports how
	// many were removed.
	DeleteWhere(ctx context.Context, match func(DocumentRecord) bool) (int, error)
	// ReplaceAll performs the full delete-then-insert table swap.
	ReplaceAll(ctx context.Context, rows []DocumentRecord) error
}

// Package memory provides in-memory roster and document tables used for
// tests and ephemeral environments.
package memory

import (
	"context"
	"sync"

	"auditcore/pkg/domain"
)

// Compile-time contract assertions.
var (
	_ domain.RosterStore   = (*Store)(nil)
	_ domain.DocumentStore = (*Store)(nil)
)

// Store holds both ordered tables behind one mutex.
type Store struct {
	mu        sync.RWMutex
	roster    []domain.PersonRecord
	documents []domain.DocumentRecord
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Seed installs initial tables, replacing any prior contents.
func (s *Store) Seed(roster []domain.PersonRecord, documents []domain.DocumentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = clonePersons(roster)
	s.documents = cloneDocuments(documents)
}

// List returns the roster table in stored order.
func (s *Store) List(_ context.Context) ([]domain.PersonRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePersons(s.roster), nil
}

// Replace overwrites the whole roster table.
func (s *Store) Replace(_ context.Context, records []domain.PersonRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster = clonePersons(records)
	return nil
}

// SelectAll returns the document table in stored order.
func (s *Store) SelectAll(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDocuments(s.documents), nil
}

// Insert appends rows to the document table.
func (s *Store) Insert(_ context.Context, rows []domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, cloneDocuments(rows)...)
	return nil
}

// DeleteWhere removes every document row matching the predicate.
func (s *Store) DeleteWhere(_ context.Context, match func(domain.DocumentRecord) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.documents[:0]
	removed := 0
	for _, row := range s.documents {
		if match(row) {
			removed++
			continue
		}
		kept = append(kept, row)
	}
	s.documents = kept
	return removed, nil
}

// ReplaceAll swaps the whole document table in one step.
func (s *Store) ReplaceAll(_ context.Context, rows []domain.DocumentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = cloneDocuments(rows)
	return nil
}

func clonePersons(in []domain.PersonRecord) []domain.PersonRecord {
	out := make([]domain.PersonRecord, len(in))
	copy(out, in)
	return out
}

func cloneDocuments(in []domain.DocumentRecord) []domain.DocumentRecord {
	out := make([]domain.DocumentRecord, len(in))
	for i, d := range in {
		if d.IssueDate != nil {
			t := *d.IssueDate
			d.IssueDate = &t
		}
		if d.NextReview != nil {
			t := *d.NextReview
			d.NextReview = &t
		}
		out[i] = d
	}
	return out
}

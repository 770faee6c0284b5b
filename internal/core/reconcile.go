package core

import (
	"strings"

	"auditcore/pkg/domain"
)

// PersonFields carries the mutable roster fields applied by an upsert.
type PersonFields struct {
	Department   string
	LateCount    int
	AbsenceCount int
}

// UpsertPerson reconciles one roster record against the table: the first row
// whose trimmed name equals the trimmed key is replaced in place, preserving
// its position; otherwise a new row is appended. Exactly one of
// created/updated is reported and the table grows by at most one row.
func UpsertPerson(table []PersonRecord, key string, fields PersonFields) ([]PersonRecord, Outcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, "", domain.ValidationError{Field: "name", Reason: "empty after trimming"}
	}
	if fields.LateCount < 0 || fields.AbsenceCount < 0 {
		return nil, "", domain.ValidationError{Field: "counters", Reason: "must be non-negative"}
	}
	next := make([]PersonRecord, len(table))
	copy(next, table)
	for i := range next {
		if next[i].Key() == key {
			next[i] = PersonRecord{
				Name:         key,
				Department:   fields.Department,
				LateCount:    fields.LateCount,
				AbsenceCount: fields.AbsenceCount,
			}
			return next, OutcomeUpdated, nil
		}
	}
	next = append(next, PersonRecord{
		Name:         key,
		Department:   fields.Department,
		LateCount:    fields.LateCount,
		AbsenceCount: fields.AbsenceCount,
	})
	return next, OutcomeCreated, nil
}

// DeletePersonAt removes the record at position. The position was captured
// when the deletion candidate list was last rendered, so the caller must also
// pass the name it displayed there; if the live table has shifted and another
// record now sits at that position the delete is refused with a conflict
// instead of removing the wrong row.
func DeletePersonAt(table []PersonRecord, position int, expectName string) ([]PersonRecord, error) {
	if position < 0 || position >= len(table) {
		return nil, domain.NotFoundError{Entity: domain.EntityPerson, Key: strings.TrimSpace(expectName)}
	}
	if want := strings.TrimSpace(expectName); want != "" && table[position].Key() != want {
		return nil, domain.ConflictError{
			Entity: domain.EntityPerson,
			Reason: "record at position " + table[position].Key() + " no longer matches " + want,
		}
	}
	next := make([]PersonRecord, 0, len(table)-1)
	next = append(next, table[:position]...)
	next = append(next, table[position+1:]...)
	return next, nil
}

// UpsertDocument reconciles one register record. Identity in the single-item
// flow is the code/title pairing; bulk replace bypasses identity entirely.
func UpsertDocument(table []DocumentRecord, record DocumentRecord) ([]DocumentRecord, Outcome, error) {
	record.Code = strings.TrimSpace(record.Code)
	record.Title = strings.TrimSpace(record.Title)
	if record.Code == "" {
		return nil, "", domain.ValidationError{Field: "code", Reason: "empty after trimming"}
	}
	if record.Title == "" {
		return nil, "", domain.ValidationError{Field: "title", Reason: "empty after trimming"}
	}
	next := make([]DocumentRecord, len(table))
	copy(next, table)
	for i := range next {
		if strings.TrimSpace(next[i].Code) == record.Code && strings.TrimSpace(next[i].Title) == record.Title {
			next[i] = record
			return next, OutcomeUpdated, nil
		}
	}
	next = append(next, record)
	return next, OutcomeCreated, nil
}

// Package domain defines the core persistent entities, value types, and
// classification primitives used by auditcore.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in persistence buckets.
const (
	// EntityPerson identifies a roster (personnel) record.
	EntityPerson EntityType = "person"
	// EntityDocument identifies a controlled-document record.
	EntityDocument EntityType = "document"
)

// AuditStatus is the derived classification of a roster record. It is never
// persisted: it is re-derived from the counters every time the roster is read.
type AuditStatus string

const (
	// StatusOK marks a record below every audit threshold.
	StatusOK AuditStatus = "OK"
	// StatusAudit marks a record exceeding an audit threshold.
	StatusAudit AuditStatus = "AUDIT"
)

// DocumentStatus enumerates the controlled-document states. Unlike AuditStatus
// it is stored as entered by the operator; the two lifecycles are distinct.
type DocumentStatus string

const (
	DocumentCurrent     DocumentStatus = "Current"
	DocumentUnderReview DocumentStatus = "Under Review"
	DocumentObsolete    DocumentStatus = "Obsolete"
)

// PersonRecord is one row of the personnel roster. Name is the identity key,
// compared exact and case-sensitive after trimming.
type PersonRecord struct {
	Name         string `json:"name"`
	Department   string `json:"department"`
	LateCount    int    `json:"late_count"`
	AbsenceCount int    `json:"absence_count"`
}

// Key returns the trimmed identity key for the record.
func (p PersonRecord) Key() string { return strings.TrimSpace(p.Name) }

// DocumentRecord is one row of the controlled-document register. IssueDate and
// NextReview are nil when the source value was missing or unparsable.
type DocumentRecord struct {
	Code         string         `json:"code"`
	Title        string         `json:"title"`
	Revision     string         `json:"revision"`
	IssueDate    *time.Time     `json:"issue_date"`
	NextReview   *time.Time     `json:"next_review"`
	Area         string         `json:"area"`
	Status       DocumentStatus `json:"status"`
	DocumentType string         `json:"document_type"`
	Link         string         `json:"link"`
	Owner        string         `json:"owner"`
}

// Canonical column names for bulk document ingestion. The rename map in the
// ingest package translates the ten recognized source headers onto these.
const (
	ColumnCode         = "code"
	ColumnTitle        = "title"
	ColumnRevision     = "revision"
	ColumnIssueDate    = "issue_date"
	ColumnNextReview   = "next_review"
	ColumnArea         = "area"
	ColumnStatus       = "status"
	ColumnDocumentType = "document_type"
	ColumnLink         = "link"
	ColumnOwner        = "owner"
)

// Outcome reports which branch an upsert took.
type Outcome string

const (
	// OutcomeCreated means the key was unseen and a row was appended.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing row was replaced in place.
	OutcomeUpdated Outcome = "updated"
)

package core

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"auditcore/internal/blob"
	"auditcore/pkg/domain"

	"go.uber.org/zap"
)

// Service exposes the dashboard operations over the configured stores. Every
// mutating call re-reads the affected table after the write completes, so the
// caller always observes the stored table rather than its pre-write copy.
type Service struct {
	roster    RosterStore
	documents DocumentStore
	blobs     blob.Store
	log       *zap.Logger
	metrics   MetricsRecorder
	now       func() time.Time
}

// Option mutates service construction.
type Option func(*Service)

// WithLogger installs a structured logger. Defaults to zap.NewNop.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithMetrics installs a metrics recorder. Defaults to NoopMetricsRecorder.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithClock overrides the time source used for blob key generation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs a service backed by the supplied stores.
func NewService(roster RosterStore, documents DocumentStore, blobs blob.Store, opts ...Option) *Service {
	s := &Service{
		roster:    roster,
		documents: documents,
		blobs:     blobs,
		log:       zap.NewNop(),
		metrics:   NoopMetricsRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RosterEntry pairs a stored roster record with its derived status.
type RosterEntry struct {
	PersonRecord
	Status AuditStatus `json:"status"`
}

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.log.Warn("operation failed", zap.String("operation", op), zap.Error(err))
	}
}

// Roster returns the roster entries matching the optional filters along with
// aggregate metrics over the full (unfiltered) table.
func (s *Service) Roster(ctx context.Context, search string, status AuditStatus) ([]RosterEntry, RosterMetrics, error) {
	start := time.Now()
	records, err := s.roster.List(ctx)
	s.observe(ctx, "roster_list", start, err)
	if err != nil {
		return nil, RosterMetrics{}, err
	}
	metrics := domain.ComputeRosterMetrics(records)
	s.metrics.SetComplianceRate(metrics.ComplianceRate)

	entries := make([]RosterEntry, 0, len(records))
	search = strings.ToLower(strings.TrimSpace(search))
	for _, r := range records {
		derived := r.Classify()
		if status != "" && derived != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.Department), search) {
			continue
		}
		entries = append(entries, RosterEntry{PersonRecord: r, Status: derived})
	}
	return entries, metrics, nil
}

// UpsertPerson applies a single-record upsert keyed by trimmed name and
// returns the stored record as re-read after the write.
func (s *Service) UpsertPerson(ctx context.Context, key string, fields PersonFields) (PersonRecord, Outcome, error) {
	start := time.Now()
	record, outcome, err := s.upsertPerson(ctx, key, fields)
	s.observe(ctx, "roster_upsert", start, err)
	return record, outcome, err
}

func (s *Service) upsertPerson(ctx context.Context, key string, fields PersonFields) (PersonRecord, Outcome, error) {
	table, err := s.roster.List(ctx)
	if err != nil {
		return PersonRecord{}, "", err
	}
	next, outcome, err := UpsertPerson(table, key, fields)
	if err != nil {
		return PersonRecord{}, "", err
	}
	if err := s.roster.Replace(ctx, next); err != nil {
		return PersonRecord{}, "", err
	}
	stored, err := s.roster.List(ctx)
	if err != nil {
		return PersonRecord{}, "", err
	}
	key = strings.TrimSpace(key)
	for _, r := range stored {
		if r.Key() == key {
			s.log.Info("roster record reconciled",
				zap.String("name", key), zap.String("outcome", string(outcome)))
			return r, outcome, nil
		}
	}
	return PersonRecord{}, "", domain.PersistenceError{Op: "roster re-read", Err: fmt.Errorf("record %s missing after write", key)}
}

// DeletePersonAt removes the roster record at position, re-validating that it
// still carries the name the operator saw when the list was rendered.
func (s *Service) DeletePersonAt(ctx context.Context, position int, expectName string) error {
	start := time.Now()
	err := s.deletePersonAt(ctx, position, expectName)
	s.observe(ctx, "roster_delete", start, err)
	return err
}

func (s *Service) deletePersonAt(ctx context.Context, position int, expectName string) error {
	table, err := s.roster.List(ctx)
	if err != nil {
		return err
	}
	next, err := DeletePersonAt(table, position, expectName)
	if err != nil {
		return err
	}
	if err := s.roster.Replace(ctx, next); err != nil {
		return err
	}
	s.log.Info("roster record deleted", zap.Int("position", position), zap.String("name", expectName))
	return nil
}

// ImportRoster upserts every supplied record by name, reporting how many were
// created versus updated. Rows with empty names are skipped, not fatal.
func (s *Service) ImportRoster(ctx context.Context, records []PersonRecord) (created, updated, skipped int, err error) {
	start := time.Now()
	defer func() { s.observe(ctx, "roster_import", start, err) }()

	table, err := s.roster.List(ctx)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, r := range records {
		next, outcome, uerr := UpsertPerson(table, r.Name, PersonFields{
			Department:   r.Department,
			LateCount:    r.LateCount,
			AbsenceCount: r.AbsenceCount,
		})
		if uerr != nil {
			skipped++
			continue
		}
		table = next
		if outcome == OutcomeCreated {
			created++
		} else {
			updated++
		}
	}
	if err = s.roster.Replace(ctx, table); err != nil {
		return 0, 0, 0, err
	}
	s.log.Info("roster imported",
		zap.Int("created", created), zap.Int("updated", updated), zap.Int("skipped", skipped))
	return created, updated, skipped, nil
}

// Documents returns the register entries matching the optional filters along
// with health aggregates over the full table.
func (s *Service) Documents(ctx context.Context, search string, status DocumentStatus) ([]DocumentRecord, DocumentHealth, error) {
	start := time.Now()
	records, err := s.documents.SelectAll(ctx)
	s.observe(ctx, "document_list", start, err)
	if err != nil {
		return nil, DocumentHealth{}, err
	}
	health := domain.ComputeDocumentHealth(records)
	s.metrics.SetHealthScore(health.Score)

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]DocumentRecord, 0, len(records))
	for _, r := range records {
		if status != "" && r.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(r.Title), search) &&
			!strings.Contains(strings.ToLower(r.Code), search) {
			continue
		}
		out = append(out, r)
	}
	return out, health, nil
}

// UpsertDocument applies a single-record upsert keyed by the code/title pair.
func (s *Service) UpsertDocument(ctx context.Context, record DocumentRecord) (Outcome, error) {
	start := time.Now()
	outcome, err := s.upsertDocument(ctx, record)
	s.observe(ctx, "document_upsert", start, err)
	return outcome, err
}

func (s *Service) upsertDocument(ctx context.Context, record DocumentRecord) (Outcome, error) {
	table, err := s.documents.SelectAll(ctx)
	if err != nil {
		return "", err
	}
	next, outcome, err := UpsertDocument(table, record)
	if err != nil {
		return "", err
	}
	if err := s.documents.ReplaceAll(ctx, next); err != nil {
		return "", err
	}
	s.log.Info("document reconciled",
		zap.String("code", record.Code), zap.String("outcome", string(outcome)))
	return outcome, nil
}

// UploadDocument stores the file bytes under a generated key, resolves the
// public URL and upserts the register record pointing at it.
func (s *Service) UploadDocument(ctx context.Context, record DocumentRecord, filename, contentType string, content io.Reader) (DocumentRecord, Outcome, error) {
	start := time.Now()
	record, outcome, err := s.uploadDocument(ctx, record, filename, contentType, content)
	s.observe(ctx, "document_upload", start, err)
	return record, outcome, err
}

func (s *Service) uploadDocument(ctx context.Context, record DocumentRecord, filename, contentType string, content io.Reader) (DocumentRecord, Outcome, error) {
	code := strings.TrimSpace(record.Code)
	if code == "" {
		return DocumentRecord{}, "", domain.ValidationError{Field: "code", Reason: "empty after trimming"}
	}
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	key := blob.ObjectKey(code, s.now().UTC(), ext)
	info, err := s.blobs.Put(ctx, key, content, blob.PutOptions{ContentType: contentType})
	if err != nil {
		return DocumentRecord{}, "", domain.PersistenceError{Op: "blob put", Err: err}
	}
	url, err := s.blobs.PublicURL(ctx, info.Key)
	if err != nil {
		return DocumentRecord{}, "", domain.PersistenceError{Op: "blob url", Err: err}
	}
	record.Link = url
	outcome, err := s.upsertDocument(ctx, record)
	if err != nil {
		return DocumentRecord{}, "", err
	}
	s.log.Info("document file stored", zap.String("key", info.Key), zap.Int64("size", info.Size))
	return record, outcome, nil
}

// BulkReplaceDocuments overwrites the whole register with the cleaned rows.
// Atomicity is delegated to the store driver (see DocumentStore.ReplaceAll).
// Returns the row count as re-read after the swap.
func (s *Service) BulkReplaceDocuments(ctx context.Context, rows []DocumentRecord) (int, error) {
	start := time.Now()
	n, err := s.bulkReplaceDocuments(ctx, rows)
	s.observe(ctx, "document_bulk_replace", start, err)
	return n, err
}

func (s *Service) bulkReplaceDocuments(ctx context.Context, rows []DocumentRecord) (int, error) {
	if err := s.documents.ReplaceAll(ctx, rows); err != nil {
		return 0, err
	}
	stored, err := s.documents.SelectAll(ctx)
	if err != nil {
		return 0, err
	}
	s.log.Info("document register replaced", zap.Int("rows", len(stored)))
	return len(stored), nil
}

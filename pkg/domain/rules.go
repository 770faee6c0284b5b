package domain

import "math"

// Audit thresholds for the roster classifier. A record is flagged when either
// threshold is met; absences flag immediately, lateness tolerates two strikes.
const (
	AuditLateThreshold    = 3
	AuditAbsenceThreshold = 1
)

// ClassifyAttendance maps roster counters to an audit status. The rule is a
// single predicate: AUDIT when lateCount >= 3 or absenceCount >= 1. For
// non-negative integers "absenceCount >= 1" and "absenceCount > 0" are the
// same condition, so there is exactly one rule, not two variants.
func ClassifyAttendance(lateCount, absenceCount int) AuditStatus {
	if lateCount >= AuditLateThreshold || absenceCount >= AuditAbsenceThreshold {
		return StatusAudit
	}
	return StatusOK
}

// Classify returns the derived status for a roster record.
func (p PersonRecord) Classify() AuditStatus {
	return ClassifyAttendance(p.LateCount, p.AbsenceCount)
}

// RosterMetrics aggregates classifier outcomes across a roster.
type RosterMetrics struct {
	Total          int     `json:"total"`
	Flagged        int     `json:"flagged"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// ComputeRosterMetrics derives the roster summary. The compliance rate is
// 100*(total-flagged)/total and defined as 0 for an empty roster.
func ComputeRosterMetrics(records []PersonRecord) RosterMetrics {
	m := RosterMetrics{Total: len(records)}
	for _, r := range records {
		if r.Classify() == StatusAudit {
			m.Flagged++
		}
	}
	if m.Total == 0 {
		return m
	}
	m.ComplianceRate = 100 * float64(m.Total-m.Flagged) / float64(m.Total)
	return m
}

// DocumentHealth aggregates status-field outcomes across the document
// register. Score counts the presence of the Current status, which is a
// different rule from the roster threshold metric and must stay separate.
type DocumentHealth struct {
	Total   int `json:"total"`
	Current int `json:"current"`
	Pending int `json:"pending"`
	Areas   int `json:"areas"`
	Score   int `json:"score"`
}

// ComputeDocumentHealth derives the register summary. Score is
// round(100*current/total), 0 for an empty register.
func ComputeDocumentHealth(records []DocumentRecord) DocumentHealth {
	h := DocumentHealth{Total: len(records)}
	areas := make(map[string]struct{})
	for _, r := range records {
		if r.Status == DocumentCurrent {
			h.Current++
		} else {
			h.Pending++
		}
		if r.Area != "" {
			areas[r.Area] = struct{}{}
		}
	}
	h.Areas = len(areas)
	if h.Total == 0 {
		return h
	}
	h.Score = int(math.Round(100 * float64(h.Current) / float64(h.Total)))
	return h
}

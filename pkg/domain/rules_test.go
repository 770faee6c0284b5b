package domain

import (
	"math"
	"testing"
)

func TestClassifyAttendance(t *testing.T) {
	cases := []struct {
		late, absent int
		want         AuditStatus
	}{
		{0, 0, StatusOK},
		{2, 0, StatusOK},
		{3, 0, StatusAudit},
		{4, 0, StatusAudit},
		{0, 1, StatusAudit},
		{2, 1, StatusAudit},
		{5, 3, StatusAudit},
	}
	for _, c := range cases {
		if got := ClassifyAttendance(c.late, c.absent); got != c.want {
			t.Fatalf("classify(%d,%d)=%s want %s", c.late, c.absent, got, c.want)
		}
	}
}

// The monitor flow historically phrased the absence clause as ">0" while the
// roster flow used ">=1". Over integers these are one rule; pin that here so
// any future divergence shows up as a regression.
func TestClassifyAbsenceVariantsAgree(t *testing.T) {
	for late := 0; late <= 6; late++ {
		for absent := 0; absent <= 6; absent++ {
			strict := late >= 3 || absent >= 1
			monitor := absent > 0 || late >= 3
			if strict != monitor {
				t.Fatalf("variant divergence at late=%d absent=%d", late, absent)
			}
			want := StatusOK
			if strict {
				want = StatusAudit
			}
			if got := ClassifyAttendance(late, absent); got != want {
				t.Fatalf("classify(%d,%d)=%s want %s", late, absent, got, want)
			}
		}
	}
}

func TestComputeRosterMetrics(t *testing.T) {
	if m := ComputeRosterMetrics(nil); m.Total != 0 || m.Flagged != 0 || m.ComplianceRate != 0 {
		t.Fatalf("empty roster should produce zeroed metrics, got %+v", m)
	}

	records := []PersonRecord{
		{Name: "a", LateCount: 0, AbsenceCount: 0},
		{Name: "b", LateCount: 3, AbsenceCount: 0},
		{Name: "c", LateCount: 1, AbsenceCount: 1},
		{Name: "d", LateCount: 2, AbsenceCount: 0},
		{Name: "e", LateCount: 5, AbsenceCount: 0},
		{Name: "f"}, {Name: "g"}, {Name: "h"}, {Name: "i"}, {Name: "j"},
	}
	m := ComputeRosterMetrics(records)
	if m.Total != 10 || m.Flagged != 3 {
		t.Fatalf("unexpected counts %+v", m)
	}
	if math.Abs(m.ComplianceRate-70.0) > 1e-9 {
		t.Fatalf("expected 70.0 compliance, got %v", m.ComplianceRate)
	}

	allFlagged := []PersonRecord{{Name: "x", AbsenceCount: 2}, {Name: "y", LateCount: 9}}
	if m := ComputeRosterMetrics(allFlagged); m.ComplianceRate != 0 {
		t.Fatalf("fully flagged roster should score 0, got %v", m.ComplianceRate)
	}
	clean := []PersonRecord{{Name: "x"}, {Name: "y", LateCount: 2}}
	if m := ComputeRosterMetrics(clean); m.ComplianceRate != 100 {
		t.Fatalf("clean roster should score 100, got %v", m.ComplianceRate)
	}
}

func TestComputeDocumentHealth(t *testing.T) {
	if h := ComputeDocumentHealth(nil); h.Score != 0 || h.Total != 0 {
		t.Fatalf("empty register should score 0, got %+v", h)
	}

	docs := make([]DocumentRecord, 0, 10)
	for i := 0; i < 8; i++ {
		docs = append(docs, DocumentRecord{Code: "D", Status: DocumentCurrent, Area: "Quality"})
	}
	docs = append(docs,
		DocumentRecord{Code: "E", Status: DocumentObsolete, Area: "HR"},
		DocumentRecord{Code: "F", Status: DocumentUnderReview, Area: "HR"},
	)
	h := ComputeDocumentHealth(docs)
	if h.Total != 10 || h.Current != 8 || h.Pending != 2 {
		t.Fatalf("unexpected counts %+v", h)
	}
	if h.Score != 80 {
		t.Fatalf("expected score 80, got %d", h.Score)
	}
	if h.Areas != 2 {
		t.Fatalf("expected 2 areas, got %d", h.Areas)
	}
}

func TestDocumentScoreRounds(t *testing.T) {
	docs := []DocumentRecord{
		{Status: DocumentCurrent},
		{Status: DocumentCurrent},
		{Status: DocumentObsolete},
	}
	// 2/3 = 66.66… rounds to 67.
	if h := ComputeDocumentHealth(docs); h.Score != 67 {
		t.Fatalf("expected rounded score 67, got %d", h.Score)
	}
}

func TestPersonKeyTrims(t *testing.T) {
	p := PersonRecord{Name: "  Ana  "}
	if p.Key() != "Ana" {
		t.Fatalf("expected trimmed key, got %q", p.Key())
	}
}

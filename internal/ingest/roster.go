package ingest

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"auditcore/pkg/domain"
)

// Roster header vocabulary: source-language headers plus the canonical names
// written by the sheet store, so exports re-import cleanly.
var rosterHeaderAliases = map[string]string{
	"Nombre":        "name",
	"Departamento":  "department",
	"Retardos":      "late_count",
	"Faltas":        "absence_count",
	"name":          "name",
	"department":    "department",
	"late_count":    "late_count",
	"absence_count": "absence_count",
}

// ReadRosterWorkbook parses the first sheet of an xlsx workbook into roster
// records. Counter cells that fail to parse count as zero rather than
// aborting the batch; rows without a name are skipped.
func ReadRosterWorkbook(r io.Reader) ([]domain.PersonRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.SchemaError{Reason: "open workbook: " + err.Error()}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.SchemaError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.SchemaError{Reason: fmt.Sprintf("read sheet %s: %v", sheets[0], err)}
	}
	if len(rows) == 0 {
		return nil, domain.SchemaError{Reason: "empty sheet"}
	}

	indexes := make(map[string]int)
	for i, h := range rows[0] {
		if canonical, ok := rosterHeaderAliases[strings.TrimSpace(h)]; ok {
			if _, dup := indexes[canonical]; !dup {
				indexes[canonical] = i
			}
		}
	}
	if _, ok := indexes["name"]; !ok {
		return nil, domain.SchemaError{Reason: "no recognized roster columns in header"}
	}

	field := func(row []string, canonical string) string {
		i, ok := indexes[canonical]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []domain.PersonRecord
	for _, row := range rows[1:] {
		name := field(row, "name")
		if name == "" {
			continue
		}
		rec := domain.PersonRecord{Name: name, Department: field(row, "department")}
		rec.LateCount, _ = strconv.Atoi(field(row, "late_count"))
		rec.AbsenceCount, _ = strconv.Atoi(field(row, "absence_count"))
		if rec.LateCount < 0 {
			rec.LateCount = 0
		}
		if rec.AbsenceCount < 0 {
			rec.AbsenceCount = 0
		}
		out = append(out, rec)
	}
	return out, nil
}

// Package ingest cleans raw bulk uploads into domain records: column
// renaming against the recognized header vocabulary, day-first date parsing
// with an explicit missing marker, and default values for blank fields.
package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"auditcore/pkg/domain"
)

// RenameMap translates the ten recognized source-language headers onto
// canonical column names. Columns outside the map are silently dropped.
var RenameMap = map[string]string{
	"Código del Documento":           domain.ColumnCode,
	"Título del Documento":           domain.ColumnTitle,
	"Versión Actual":                 domain.ColumnRevision,
	"Fecha de Emisión":               domain.ColumnIssueDate,
	"Próxima Revisión":               domain.ColumnNextReview,
	"Área Aplicable":                 domain.ColumnArea,
	"Estado":                         domain.ColumnStatus,
	"Tipo de Documento":              domain.ColumnDocumentType,
	"Enlace al Documento Controlado": domain.ColumnLink,
	"Puesto Responsable":             domain.ColumnOwner,
}

// statusAliases maps source-language status values onto the canonical enum.
// Unknown values pass through unchanged.
var statusAliases = map[string]domain.DocumentStatus{
	"Vigente":      domain.DocumentCurrent,
	"En Revisión":  domain.DocumentUnderReview,
	"Obsoleto":     domain.DocumentObsolete,
	"Current":      domain.DocumentCurrent,
	"Under Review": domain.DocumentUnderReview,
	"Obsolete":     domain.DocumentObsolete,
}

// ReadCSV decodes delimited text into a header row and data rows. Rows with
// a deviating field count are tolerated (the csv reader is configured lax)
// because exported spreadsheets routinely carry ragged trailing columns.
func ReadCSV(r io.Reader) (header []string, rows [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, domain.SchemaError{Reason: "malformed delimited input: " + err.Error()}
	}
	if len(all) == 0 {
		return nil, nil, domain.SchemaError{Reason: "empty input"}
	}
	return all[0], all[1:], nil
}

// Clean maps raw rows through RenameMap into document records.
// Behavior, in order: drop unrecognized columns, rename the rest, parse the
// two date columns day-first (unparsable -> nil), default a missing revision
// to "0". Fails with SchemaError when zero recognized columns are present.
func Clean(header []string, rows [][]string) ([]domain.DocumentRecord, error) {
	// canonical column name -> source column index
	indexes := make(map[string]int)
	for i, h := range header {
		if canonical, ok := RenameMap[strings.TrimSpace(h)]; ok {
			if _, dup := indexes[canonical]; !dup {
				indexes[canonical] = i
			}
		}
	}
	if len(indexes) == 0 {
		return nil, domain.SchemaError{Reason: "no recognized columns in header"}
	}

	field := func(row []string, canonical string) string {
		i, ok := indexes[canonical]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]domain.DocumentRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		rec := domain.DocumentRecord{
			Code:         field(row, domain.ColumnCode),
			Title:        field(row, domain.ColumnTitle),
			Revision:     field(row, domain.ColumnRevision),
			IssueDate:    ParseDayFirst(field(row, domain.ColumnIssueDate)),
			NextReview:   ParseDayFirst(field(row, domain.ColumnNextReview)),
			Area:         field(row, domain.ColumnArea),
			Status:       normalizeStatus(field(row, domain.ColumnStatus)),
			DocumentType: field(row, domain.ColumnDocumentType),
			Link:         field(row, domain.ColumnLink),
			Owner:        field(row, domain.ColumnOwner),
		}
		if rec.Revision == "" {
			rec.Revision = "0"
		}
		if rec.Code == "" && rec.Title == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func normalizeStatus(value string) domain.DocumentStatus {
	if canonical, ok := statusAliases[value]; ok {
		return canonical
	}
	return domain.DocumentStatus(value)
}

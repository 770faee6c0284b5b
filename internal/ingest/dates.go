package ingest

import (
	"strings"
	"time"
)

// Day-first layouts accepted in bulk uploads, tried in order. ISO dates are
// accepted last so re-ingesting exported data round-trips.
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
}

// ParseDayFirst parses a day-first date string. Unparsable or empty input
// yields nil, the explicit missing marker: a bad date never aborts a batch.
func ParseDayFirst(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

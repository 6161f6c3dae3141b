package normaliser

import (
	"strconv"
	"strings"
	"time"
)

// acceptedDateLayouts lists every textual date format §4.1 requires, tried
// in turn. The same "attempt each known layout in order" idiom the
// payroll backend uses for its wire-format Date type, adapted here for the
// workbook's ISO and slash-delimited forms instead of JSON/RFC3339.
var acceptedDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
}

// excelEpoch is the day spreadsheet serial date 0 represents under the
// (near-universal) 1900 date system, already adjusted for the Lotus 1-2-3
// leap-year bug that Excel deliberately preserved.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate accepts ISO (YYYY-MM-DD), slash-delimited, and spreadsheet
// serial numeric date forms. It returns ok=false when none apply, in which
// case the caller (the sheet reader) drops the row and emits a warning, per
// §4.1 — ParseDate itself never panics or errors.
func ParseDate(raw string) (t time.Time, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return parseSerialDate(serial)
	}

	for _, layout := range acceptedDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// parseSerialDate converts a spreadsheet serial day number (as produced by
// Excel's numeric date storage) into a calendar date.
func parseSerialDate(serial float64) (time.Time, bool) {
	if serial <= 0 {
		return time.Time{}, false
	}
	days := int(serial)
	return excelEpoch.AddDate(0, 0, days), true
}

// YearMonth formats t as the "YYYY-MM" tag used throughout the store.
func YearMonth(t time.Time) string {
	return t.Format("2006-01")
}

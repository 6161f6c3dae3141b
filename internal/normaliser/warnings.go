package normaliser

import "fmt"

// Warning is one row-level defect the normaliser tolerated instead of
// failing the whole workbook. §4.1 requires unknown status text and
// unparsable dates to "emit a warning event" but never fail the row (or, for
// dates, to drop just that row); this is the event.
type Warning struct {
	Sheet  string `json:"sheet"`
	Row    int    `json:"row"` // 1-based, including the header row
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Sheet, w.Row, w.Reason)
}

// warningSink collects warnings during a single normalisation pass.
type warningSink struct {
	warnings []Warning
}

func (s *warningSink) add(sheet string, row int, reason string) {
	s.warnings = append(s.warnings, Warning{Sheet: sheet, Row: row, Reason: reason})
}

package normaliser

import (
	"testing"
	"time"
)

func TestParseDate_ISOAndSlashForms(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Time
	}{
		{"2025-08-01", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"2025/08/01", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-8-1", time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.raw)
		if !ok {
			t.Fatalf("ParseDate(%q) failed to parse", c.raw)
		}
		if !got.Equal(c.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", c.raw, got, c.want)
		}
	}
}

func TestParseDate_SpreadsheetSerial(t *testing.T) {
	// Serial 45870 is 2025-08-01 under the 1900 date system.
	got, ok := ParseDate("45870")
	if !ok {
		t.Fatal("ParseDate on a serial number failed to parse")
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate(45870) = %v, want %v", got, want)
	}
}

func TestParseDate_UnparsableDropsRow(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a date", "13/45/2025"} {
		if _, ok := ParseDate(raw); ok {
			t.Errorf("ParseDate(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestYearMonth_FormatsTag(t *testing.T) {
	got := YearMonth(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))
	if got != "2025-08" {
		t.Errorf("YearMonth = %q, want 2025-08", got)
	}
}

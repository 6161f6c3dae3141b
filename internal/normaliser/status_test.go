package normaliser

import (
	"testing"

	"tama/internal/models"
)

func TestParseStatus_LiteralLookup(t *testing.T) {
	cases := map[string]models.AttendanceStatus{
		"上班":    models.StatusWork,
		"公休日上班": models.StatusWeekendWork,
		"周末加班":  models.StatusWeekendWork,
		"出差":    models.StatusTravel,
		"请假":    models.StatusLeave,
		"年假":    models.StatusLeave,
		"病假":    models.StatusLeave,
		"事假":    models.StatusLeave,
	}
	for raw, want := range cases {
		got, ok := ParseStatus(raw)
		if !ok {
			t.Errorf("ParseStatus(%q) reported not found", raw)
		}
		if got != want {
			t.Errorf("ParseStatus(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParseStatus_UnknownTextBecomesUnknown(t *testing.T) {
	got, ok := ParseStatus("出国旅游")
	if ok {
		t.Error("expected ok=false for unrecognised status text")
	}
	if got != models.StatusUnknown {
		t.Errorf("got %v, want StatusUnknown", got)
	}
}

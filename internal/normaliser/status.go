package normaliser

import (
	"strings"

	"tama/internal/models"
)

// statusLookup is the literal mapping from source status text to the
// normalised enum, copied verbatim from the glossary. Anything not present
// here becomes StatusUnknown (a warning, never a failure).
var statusLookup = map[string]models.AttendanceStatus{
	"上班":   models.StatusWork,
	"公休日上班": models.StatusWeekendWork,
	"周末加班":  models.StatusWeekendWork,
	"出差":   models.StatusTravel,
	"请假":   models.StatusLeave,
	"年假":   models.StatusLeave,
	"病假":   models.StatusLeave,
	"事假":   models.StatusLeave,
}

// ParseStatus maps raw status text onto the attendance status enum. The
// caller is responsible for emitting the warning event when ok is false;
// ParseStatus itself only classifies.
func ParseStatus(raw string) (status models.AttendanceStatus, ok bool) {
	key := strings.TrimSpace(raw)
	if s, found := statusLookup[key]; found {
		return s, true
	}
	return models.StatusUnknown, false
}

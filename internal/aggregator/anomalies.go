package aggregator

import (
	"time"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// AnomalyListing is one AnomalyRow projected for the /anomalies endpoint.
type AnomalyListing struct {
	Date             time.Time             `json:"date"`
	EmployeeName     string                `json:"employee_name"`
	DepartmentPath   []string              `json:"department_path"`
	Kind             models.AnomalyKind     `json:"kind"`
	AttendanceStatus *models.AttendanceStatus `json:"attendance_status,omitempty"`
	Detail           string                `json:"detail"`
}

// ListAnomalies returns every AnomalyRow in months, in the snapshot's
// deterministic order. The core performs no pagination (§4.5); the HTTP
// layer may slice the result itself.
func (a *Aggregator) ListAnomalies(months []string) ([]AnomalyListing, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	out := make([]AnomalyListing, 0, len(snap.anomalies))
	for _, row := range snap.anomalies {
		out = append(out, AnomalyListing{
			Date:             row.Date,
			EmployeeName:     row.EmployeeName,
			DepartmentPath:   row.DepartmentPath,
			Kind:             row.Kind,
			AttendanceStatus: row.AttendanceStatus,
			Detail:           row.Detail,
		})
	}
	return out, nil
}

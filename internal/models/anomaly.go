package models

import "time"

// AnomalyKind enumerates the two cross-sheet inconsistencies the validator
// detects. See internal/validator for the rules that produce each kind.
type AnomalyKind string

const (
	AnomalyConflictWorkHasTravel       AnomalyKind = "CONFLICT_WORK_HAS_TRAVEL"
	AnomalyMissingTravelForTripStatus  AnomalyKind = "MISSING_TRAVEL_FOR_TRIP_STATUS"
)

// AnomalyRow is one detected inconsistency between the attendance and
// travel streams of a single month.
//
// Invariant: produced deterministically from the (AttendanceRow, TravelRow)
// sets of one source_month; see internal/validator for the ordering and
// collapsing rules that make this reproducible.
type AnomalyRow struct {
	BaseModel

	Date             time.Time        `gorm:"index;not null" json:"date"`
	EmployeeName     string           `gorm:"index;not null" json:"employee_name"`
	DepartmentPath   DepartmentPath   `gorm:"type:text;serializer:json" json:"department_path"`
	Kind             AnomalyKind      `gorm:"index;not null" json:"kind"`
	Detail           string           `json:"detail"`
	AttendanceStatus *AttendanceStatus `json:"attendance_status,omitempty"`
	SourceMonth      string           `gorm:"index;not null" json:"source_month"`
}

func (AnomalyRow) TableName() string { return "anomaly_rows" }

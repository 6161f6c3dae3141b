package models

import "time"

// AttendanceStatus is the normalised status enum for one attendance row.
// Source text is mapped onto this set by the normaliser's status lookup
// table (see internal/normaliser/status.go); anything unrecognised becomes
// StatusUnknown rather than failing the row.
type AttendanceStatus string

const (
	StatusWork        AttendanceStatus = "WORK"
	StatusWeekendWork AttendanceStatus = "WEEKEND_WORK"
	StatusTravel      AttendanceStatus = "TRAVEL"
	StatusLeave       AttendanceStatus = "LEAVE"
	StatusUnknown     AttendanceStatus = "UNKNOWN"
)

// AttendanceRow is one (employee, date) person-day record parsed from the
// attendance sheet of a monthly workbook.
//
// Invariant: (employee_name, date) is unique within source_month. The store
// enforces this at replace_month time rather than with a DB-level unique
// index, since GORM's composite-unique-index support across SQLite/MySQL
// dialects is inconsistent and the invariant only needs to hold within a
// single atomic replace.
type AttendanceRow struct {
	BaseModel

	Date            time.Time        `gorm:"index;not null" json:"date"`
	EmployeeName    string           `gorm:"index;not null" json:"employee_name"`
	DepartmentPath  DepartmentPath   `gorm:"type:text;serializer:json" json:"department_path"`
	Status          AttendanceStatus `gorm:"index;not null" json:"status"`
	WorkHours       float64          `json:"work_hours"`
	CheckoutTime    *string          `json:"checkout_time,omitempty"` // "HH:MM", nil when absent
	SourceMonth     string           `gorm:"index;not null" json:"source_month"`
}

func (AttendanceRow) TableName() string { return "attendance_rows" }

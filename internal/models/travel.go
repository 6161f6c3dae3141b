package models

import "time"

// TravelKind tags which of the three booking sheets a TravelRow came from.
// The three travel sheets (flight/hotel/train) share this single tagged
// variant rather than three separate structs: per-kind behaviour is a
// switch on Kind, not polymorphism.
type TravelKind string

const (
	KindFlight TravelKind = "FLIGHT"
	KindHotel  TravelKind = "HOTEL"
	KindTrain  TravelKind = "TRAIN"
)

// UnknownProjectCode is the synthetic project_code bucket a TravelRow with
// no project code collapses into, per §9's open-question decision: the
// front end renders it as "未知编号/未知项目", so a systems-language port
// must keep the same key.
const UnknownProjectCode = "nan"

// TravelRow is one booking line from a flight, hotel, or train order sheet.
//
// Invariant: ID is unique across the entire store (not just within a month);
// SourceMonth always equals the year-month of EventDate.
type TravelRow struct {
	BaseModel

	Kind               TravelKind     `gorm:"index;not null" json:"kind"`
	EventDate          time.Time      `gorm:"index;not null" json:"event_date"`
	BookerName         string         `gorm:"index" json:"booker_name"`
	TravellerName      string         `gorm:"index;not null" json:"traveller_name"`
	DepartmentPath     DepartmentPath `gorm:"type:text;serializer:json" json:"department_path"`
	Amount             float64        `gorm:"not null" json:"amount"`
	ProjectCode        *string        `gorm:"index" json:"project_code,omitempty"`
	ProjectName        *string        `json:"project_name,omitempty"`
	AdvanceDays        *int           `json:"advance_days,omitempty"`
	IsOverStandard     bool           `gorm:"index" json:"is_over_standard"`
	OverStandardReason string         `json:"over_standard_reason"`
	SourceMonth        string         `gorm:"index;not null" json:"source_month"`
}

func (TravelRow) TableName() string { return "travel_rows" }

// ProjectCodeOrSynthetic returns the project code, or UnknownProjectCode
// when a row carries no project code.
func (t TravelRow) ProjectCodeOrSynthetic() string {
	if t.ProjectCode == nil || *t.ProjectCode == "" {
		return UnknownProjectCode
	}
	return *t.ProjectCode
}

package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tama/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dept() models.DepartmentPath {
	return models.NewDepartmentPath("行政部")
}

// Scenario 1 (§8): WORK attendance plus a same-day flight booking yields
// exactly one CONFLICT_WORK_HAS_TRAVEL anomaly.
func TestValidate_ConflictWorkHasTravel(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 1), EmployeeName: "张三", DepartmentPath: dept(), Status: models.StatusWork, WorkHours: 8},
	}
	travel := []models.TravelRow{
		{Kind: models.KindFlight, EventDate: date(2025, 8, 1), TravellerName: "张三", Amount: 2000},
	}

	result := Validate(attendance, travel)

	require.Len(t, result.Anomalies, 1)
	a := result.Anomalies[0]
	assert.Equal(t, models.AnomalyConflictWorkHasTravel, a.Kind)
	assert.Equal(t, "张三", a.EmployeeName)
	assert.True(t, a.Date.Equal(date(2025, 8, 1)))
}

// Scenario 2 (§8): TRAVEL attendance with a hotel booking two days later is
// within the +/-3 day tolerance and produces zero anomalies.
func TestValidate_MissingTravelWithinTolerance(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 10), EmployeeName: "李四", DepartmentPath: dept(), Status: models.StatusTravel},
	}
	travel := []models.TravelRow{
		{Kind: models.KindHotel, EventDate: date(2025, 8, 12), TravellerName: "李四", Amount: 800},
	}

	result := Validate(attendance, travel)

	assert.Empty(t, result.Anomalies)
}

// Scenario 3 (§8): the same setup but the hotel booking is 4 days out
// breaches the tolerance and produces one MISSING_TRAVEL_FOR_TRIP_STATUS.
func TestValidate_MissingTravelBreachesTolerance(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 10), EmployeeName: "李四", DepartmentPath: dept(), Status: models.StatusTravel},
	}
	travel := []models.TravelRow{
		{Kind: models.KindHotel, EventDate: date(2025, 8, 14), TravellerName: "李四", Amount: 800},
	}

	result := Validate(attendance, travel)

	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, models.AnomalyMissingTravelForTripStatus, result.Anomalies[0].Kind)
}

func TestValidate_NoTravelAtAllAlsoBreaches(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 10), EmployeeName: "王五", DepartmentPath: dept(), Status: models.StatusTravel},
	}

	result := Validate(attendance, nil)

	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, models.AnomalyMissingTravelForTripStatus, result.Anomalies[0].Kind)
}

func TestValidate_PlainWorkDayWithoutTravelIsClean(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 1), EmployeeName: "赵六", DepartmentPath: dept(), Status: models.StatusWork, WorkHours: 8},
	}
	result := Validate(attendance, nil)
	assert.Empty(t, result.Anomalies)
}

func TestValidate_SameDayBookingsYieldOneRowCitingEachKind(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 1), EmployeeName: "张三", DepartmentPath: dept(), Status: models.StatusWork, WorkHours: 8},
	}
	travel := []models.TravelRow{
		{Kind: models.KindFlight, EventDate: date(2025, 8, 1), TravellerName: "张三", Amount: 1000},
		{Kind: models.KindHotel, EventDate: date(2025, 8, 1), TravellerName: "张三", Amount: 500},
	}

	result := Validate(attendance, travel)

	require.Len(t, result.Anomalies, 1, "both bookings on the same day collapse into one anomaly row")
	assert.Contains(t, result.Anomalies[0].Detail, "FLIGHT")
	assert.Contains(t, result.Anomalies[0].Detail, "HOTEL")
}

// §4.4's determinism contract: enumeration order of the two row sets must
// not affect the result.
func TestValidate_OrderIndependent(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 1), EmployeeName: "张三", DepartmentPath: dept(), Status: models.StatusWork, WorkHours: 8},
		{Date: date(2025, 8, 5), EmployeeName: "李四", DepartmentPath: dept(), Status: models.StatusTravel},
	}
	travel := []models.TravelRow{
		{Kind: models.KindFlight, EventDate: date(2025, 8, 1), TravellerName: "张三", Amount: 1000},
	}

	forward := Validate(attendance, travel)

	reversedAttendance := []models.AttendanceRow{attendance[1], attendance[0]}
	reversed := Validate(reversedAttendance, travel)

	require.Equal(t, len(forward.Anomalies), len(reversed.Anomalies))
	for i := range forward.Anomalies {
		assert.Equal(t, forward.Anomalies[i].Kind, reversed.Anomalies[i].Kind)
		assert.Equal(t, forward.Anomalies[i].EmployeeName, reversed.Anomalies[i].EmployeeName)
	}
}

func TestValidate_SkipsRowsWithEmptyEmployeeName(t *testing.T) {
	attendance := []models.AttendanceRow{
		{Date: date(2025, 8, 1), EmployeeName: "", DepartmentPath: dept(), Status: models.StatusWork, WorkHours: 8},
	}
	result := Validate(attendance, nil)
	assert.Empty(t, result.Anomalies)
	assert.Len(t, result.Warnings, 1)
}

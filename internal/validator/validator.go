/*
Package validator derives anomaly rows by joining one month's attendance and
travel streams under the two rules §4.4 defines. It never fails: a
malformed row that survived the normaliser is skipped and counted in a
warning, not propagated as an error.
*/
package validator

import (
	"fmt"
	"sort"
	"time"

	"tama/internal/models"
)

// Warning records one row the validator itself had to skip (an attendance
// row with an empty employee name). Unlike the normaliser's warning it
// carries only a reason, no sheet or row number.
type Warning struct {
	Reason string
}

// Result is the output of one Validate call: the anomaly rows, in the
// stable order §4.4 specifies, plus any warnings.
type Result struct {
	Anomalies []models.AnomalyRow
	Warnings  []Warning
}

// anomalyCandidate pairs an anomaly row with the rule number that produced
// it, so the tie-break sort can prefer rule 1 over rule 2 at equal dates.
type anomalyCandidate struct {
	row  models.AnomalyRow
	rule int
}

// Validate derives anomaly rows for a single month from that month's
// attendance and travel row sets. It is a pure function of its two
// arguments: callers may pass them in any order and the result is
// identical, per §4.4's determinism contract.
func Validate(attendance []models.AttendanceRow, travel []models.TravelRow) Result {
	var warnings []Warning

	travelByTraveller := make(map[string][]models.TravelRow)
	for _, t := range travel {
		name := t.TravellerName
		travelByTraveller[name] = append(travelByTraveller[name], t)
	}

	var candidates []anomalyCandidate

	for _, a := range attendance {
		if a.EmployeeName == "" {
			warnings = append(warnings, Warning{Reason: "attendance row with empty employee name skipped"})
			continue
		}

		switch a.Status {
		case models.StatusWork, models.StatusWeekendWork:
			kinds := travelKindsOnDate(travelByTraveller[a.EmployeeName], a.Date)
			if len(kinds) > 0 {
				status := a.Status
				candidates = append(candidates, anomalyCandidate{
					rule: 1,
					row: models.AnomalyRow{
						Date:             a.Date,
						EmployeeName:     a.EmployeeName,
						DepartmentPath:   a.DepartmentPath,
						Kind:             models.AnomalyConflictWorkHasTravel,
						Detail:           fmt.Sprintf("attendance marked %s but travel booked: %s", a.Status, joinKinds(kinds)),
						AttendanceStatus: &status,
						SourceMonth:      a.SourceMonth,
					},
				})
			}

		case models.StatusTravel:
			if !hasNearbyTravel(travelByTraveller[a.EmployeeName], a.Date, 3) {
				status := a.Status
				candidates = append(candidates, anomalyCandidate{
					rule: 2,
					row: models.AnomalyRow{
						Date:             a.Date,
						EmployeeName:     a.EmployeeName,
						DepartmentPath:   a.DepartmentPath,
						Kind:             models.AnomalyMissingTravelForTripStatus,
						Detail:           "attendance marked TRAVEL but no matching booking within 3 days",
						AttendanceStatus: &status,
						SourceMonth:      a.SourceMonth,
					},
				})
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if !ci.row.Date.Equal(cj.row.Date) {
			return ci.row.Date.Before(cj.row.Date)
		}
		if ci.row.EmployeeName != cj.row.EmployeeName {
			return ci.row.EmployeeName < cj.row.EmployeeName
		}
		return ci.rule < cj.rule
	})

	anomalies := collapse(candidates)

	return Result{Anomalies: anomalies, Warnings: warnings}
}

// travelKindsOnDate returns the distinct travel kinds booked for this
// traveller on exactly this calendar day.
func travelKindsOnDate(rows []models.TravelRow, day time.Time) []models.TravelKind {
	seen := make(map[models.TravelKind]bool)
	var kinds []models.TravelKind
	for _, t := range rows {
		if sameDay(t.EventDate, day) && !seen[t.Kind] {
			seen[t.Kind] = true
			kinds = append(kinds, t.Kind)
		}
	}
	return kinds
}

// hasNearbyTravel reports whether any row is within toleranceDays calendar
// days of day (inclusive), per Rule 2's ±3 day tolerance.
func hasNearbyTravel(rows []models.TravelRow, day time.Time, toleranceDays int) bool {
	for _, t := range rows {
		diff := daysBetween(t.EventDate, day)
		if diff < 0 {
			diff = -diff
		}
		if diff <= toleranceDays {
			return true
		}
	}
	return false
}

// sameDay compares two timestamps at calendar-day granularity with no
// timezone conversion, per §4.4's numeric semantics.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// daysBetween returns the whole number of calendar days between two dates.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(au.Sub(bu).Hours() / 24)
}

func joinKinds(kinds []models.TravelKind) string {
	s := ""
	for i, k := range kinds {
		if i > 0 {
			s += ", "
		}
		s += string(k)
	}
	return s
}

// collapse merges candidates sharing (date, employee, kind) into a single
// row, per §4.4's collapsing rule; the detail string notes the count when
// more than one candidate collapses together.
func collapse(candidates []anomalyCandidate) []models.AnomalyRow {
	type groupKey struct {
		day      string
		employee string
		kind     models.AnomalyKind
	}
	order := make([]groupKey, 0, len(candidates))
	groups := make(map[groupKey][]models.AnomalyRow)

	for _, c := range candidates {
		gk := groupKey{day: c.row.Date.Format("2006-01-02"), employee: c.row.EmployeeName, kind: c.row.Kind}
		if _, seen := groups[gk]; !seen {
			order = append(order, gk)
		}
		groups[gk] = append(groups[gk], c.row)
	}

	out := make([]models.AnomalyRow, 0, len(order))
	for _, gk := range order {
		rows := groups[gk]
		row := rows[0]
		if len(rows) > 1 {
			row.Detail = fmt.Sprintf("%s (collapsed from %d matching rows)", row.Detail, len(rows))
		}
		out = append(out, row)
	}
	return out
}

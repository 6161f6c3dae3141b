package aggregator

import (
	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// OrderBreakdown splits a count or cost by travel kind.
type OrderBreakdown struct {
	Flight int `json:"flight"`
	Hotel  int `json:"hotel"`
	Train  int `json:"train"`
	Total  int `json:"total"`
}

// Summary is the top-level dashboard bundle for a set of months (§4.5).
type Summary struct {
	TotalCost              float64         `json:"total_cost"`
	AvgWorkHours           float64         `json:"avg_work_hours"`
	HolidayAvgWorkHours    float64         `json:"holiday_avg_work_hours"`
	AnomalyCount           int             `json:"anomaly_count"`
	TotalOrders            int             `json:"total_orders"`
	OrderBreakdown         OrderBreakdown  `json:"order_breakdown"`
	OverStandardCount      int             `json:"over_standard_count"`
	OverStandardBreakdown  OrderBreakdown  `json:"over_standard_breakdown"`
	FlightOverTypeBreakdown map[string]int `json:"flight_over_type_breakdown"`
	TotalProjectCount      int             `json:"total_project_count"`
}

// Summary computes the dashboard bundle over the given months.
func (a *Aggregator) Summary(months []string) (Summary, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return Summary{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	var s Summary
	s.FlightOverTypeBreakdown = make(map[string]int)

	var workHoursSum, workHoursCount float64
	var holidayHoursSum, holidayHoursCount float64

	for _, row := range snap.attendance {
		switch row.Status {
		case models.StatusWork:
			if row.WorkHours > 0 {
				workHoursSum += row.WorkHours
				workHoursCount++
			}
		case models.StatusWeekendWork:
			if row.WorkHours > 0 {
				holidayHoursSum += row.WorkHours
				holidayHoursCount++
			}
		}
	}
	if workHoursCount > 0 {
		s.AvgWorkHours = workHoursSum / workHoursCount
	}
	if holidayHoursCount > 0 {
		s.HolidayAvgWorkHours = holidayHoursSum / holidayHoursCount
	}

	s.AnomalyCount = len(snap.anomalies)

	projectCodes := make(map[string]struct{})
	for _, row := range snap.travel {
		s.TotalCost += row.Amount
		s.TotalOrders++
		bumpKind(&s.OrderBreakdown, row.Kind, 1)

		if row.IsOverStandard {
			s.OverStandardCount++
			bumpKind(&s.OverStandardBreakdown, row.Kind, 1)
			if row.Kind == models.KindFlight {
				s.FlightOverTypeBreakdown[row.OverStandardReason]++
			}
		}

		projectCodes[row.ProjectCodeOrSynthetic()] = struct{}{}
	}
	s.TotalProjectCount = len(projectCodes)

	return s, nil
}

func bumpKind(b *OrderBreakdown, kind models.TravelKind, n int) {
	switch kind {
	case models.KindFlight:
		b.Flight += n
	case models.KindHotel:
		b.Hotel += n
	case models.KindTrain:
		b.Train += n
	}
	b.Total += n
}

package aggregator

import (
	"sort"

	apperrors "tama/internal/errors"
)

// TrendPoint is one month's value for a single metric.
type TrendPoint struct {
	Month string  `json:"month"`
	Value float64 `json:"value"`
}

// trendMetrics maps a metric name to the Summary field it reads. Trends is
// not in the distilled spec; it's the one operation SPEC_FULL.md adds to
// the Aggregator, modeled on the teacher's PrenominaMetric rollups — a
// named metric evaluated per period and returned as a time series instead
// of a single cross-period total.
var trendMetrics = map[string]func(Summary) float64{
	"total_cost":           func(s Summary) float64 { return s.TotalCost },
	"avg_work_hours":       func(s Summary) float64 { return s.AvgWorkHours },
	"anomaly_count":        func(s Summary) float64 { return float64(s.AnomalyCount) },
	"total_orders":         func(s Summary) float64 { return float64(s.TotalOrders) },
	"over_standard_count":  func(s Summary) float64 { return float64(s.OverStandardCount) },
}

// Trends evaluates metric independently for each month in months and
// returns the series in ascending month order. Unlike every other
// Aggregator operation, this one does NOT sum/average across the supplied
// months — it reports one point per month, since that's the only shape a
// month-over-month chart can use.
func (a *Aggregator) Trends(months []string, metric string) ([]TrendPoint, error) {
	extract, ok := trendMetrics[metric]
	if !ok {
		return nil, apperrors.ErrInternal.WithMessage("unknown trend metric: " + metric)
	}

	sorted := append([]string{}, months...)
	sort.Strings(sorted)

	out := make([]TrendPoint, 0, len(sorted))
	for _, month := range sorted {
		s, err := a.Summary([]string{month})
		if err != nil {
			return nil, err
		}
		out = append(out, TrendPoint{Month: month, Value: extract(s)})
	}
	return out, nil
}

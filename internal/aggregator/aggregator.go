/*
Package aggregator is the read-only query surface over the store: summary,
department drill-downs at three levels, project roll-ups, anomaly listings,
and month-over-month trends. Every operation takes a non-empty months set
and is a pure function of the rows in those months (§4.5's purity
invariant) — it never fails with SOURCE_INVALID or ROW_DEFECT, only
INTERNAL, per §7's propagation policy.
*/
package aggregator

import (
	"sort"

	apperrors "tama/internal/errors"
	"tama/internal/models"
	"tama/internal/store"
)

// Aggregator answers every read query over an arbitrary set of months.
type Aggregator struct {
	store *store.Store
}

// New constructs an Aggregator over the given store.
func New(st *store.Store) *Aggregator {
	return &Aggregator{store: st}
}

// snapshot is the consistent, in-memory view of one query's row sets,
// pre-sorted into the ascending (source_month, event_date/date, id) order
// §4.5 specifies so floating-point summation is bitwise reproducible.
type snapshot struct {
	attendance []models.AttendanceRow
	travel     []models.TravelRow
	anomalies  []models.AnomalyRow
}

// loadSnapshot takes a consistent read of the store for months, sorted
// deterministically. Queries never suspend mid-result once this returns
// (§5): everything downstream is pure in-memory computation.
func (a *Aggregator) loadSnapshot(months []string) (snapshot, error) {
	if len(months) == 0 {
		return snapshot{}, nil
	}

	set, err := a.store.ReadRows(months, []store.RowKind{store.KindAttendance, store.KindTravel, store.KindAnomaly})
	if err != nil {
		return snapshot{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}
	attendance, travel, anomalies := set.Attendance, set.Travel, set.Anomalies

	sort.Slice(attendance, func(i, j int) bool {
		if attendance[i].SourceMonth != attendance[j].SourceMonth {
			return attendance[i].SourceMonth < attendance[j].SourceMonth
		}
		if !attendance[i].Date.Equal(attendance[j].Date) {
			return attendance[i].Date.Before(attendance[j].Date)
		}
		return attendance[i].ID.String() < attendance[j].ID.String()
	})
	sort.Slice(travel, func(i, j int) bool {
		if travel[i].SourceMonth != travel[j].SourceMonth {
			return travel[i].SourceMonth < travel[j].SourceMonth
		}
		if !travel[i].EventDate.Equal(travel[j].EventDate) {
			return travel[i].EventDate.Before(travel[j].EventDate)
		}
		return travel[i].ID.String() < travel[j].ID.String()
	})
	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].SourceMonth != anomalies[j].SourceMonth {
			return anomalies[i].SourceMonth < anomalies[j].SourceMonth
		}
		if !anomalies[i].Date.Equal(anomalies[j].Date) {
			return anomalies[i].Date.Before(anomalies[j].Date)
		}
		return anomalies[i].ID.String() < anomalies[j].ID.String()
	})

	return snapshot{attendance: attendance, travel: travel, anomalies: anomalies}, nil
}

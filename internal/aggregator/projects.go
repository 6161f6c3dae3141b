package aggregator

import (
	"sort"
	"time"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// unknownProjectLabel is the display name for the synthetic
// models.UnknownProjectCode bucket — never computed via mostCommonName
// since, by construction, no row in that bucket carries a project name.
const unknownProjectLabel = "未知编号/未知项目"

// DateRange is the min/max event date observed for a project.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ProjectSummary is one project's cost and booking roll-up (§4.5 Projects).
type ProjectSummary struct {
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	TotalCost        float64   `json:"total_cost"`
	FlightCost       float64   `json:"flight_cost"`
	HotelCost        float64   `json:"hotel_cost"`
	TrainCost        float64   `json:"train_cost"`
	RecordCount      int       `json:"record_count"`
	FlightCount      int       `json:"flight_count"`
	HotelCount       int       `json:"hotel_count"`
	TrainCount       int       `json:"train_count"`
	PersonCount      int       `json:"person_count"`
	PersonList       []string  `json:"person_list"`
	DepartmentList   []string  `json:"department_list"`
	DateRange        DateRange `json:"date_range"`
	OverStandardCount int      `json:"over_standard_count"`
}

// projectAccumulator tracks in-progress aggregation state for one code.
type projectAccumulator struct {
	summary       ProjectSummary
	persons       map[string]struct{}
	departments   map[string]struct{}
	nameCounts    map[string]int
	firstNameSeen map[string]int // name -> first occurrence index, for tie-break
	nextNameIdx   int
	hasRange      bool
}

// ListProjects computes one ProjectSummary per distinct project_code
// present in months (§4.5). project_code is bucketed via
// TravelRow.ProjectCodeOrSynthetic, so rows with no code collapse into the
// single synthetic "nan" bucket.
func (a *Aggregator) ListProjects(months []string) ([]ProjectSummary, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	acc := make(map[string]*projectAccumulator)
	order := make([]string, 0)

	for _, row := range snap.travel {
		code := row.ProjectCodeOrSynthetic()
		a, ok := acc[code]
		if !ok {
			a = &projectAccumulator{
				summary:       ProjectSummary{Code: code},
				persons:       make(map[string]struct{}),
				departments:   make(map[string]struct{}),
				nameCounts:    make(map[string]int),
				firstNameSeen: make(map[string]int),
			}
			acc[code] = a
			order = append(order, code)
		}

		a.summary.TotalCost += row.Amount
		a.summary.RecordCount++
		a.persons[row.TravellerName] = struct{}{}
		if dept := row.DepartmentPath.Level3(); dept != "" {
			a.departments[dept] = struct{}{}
		}
		if row.IsOverStandard {
			a.summary.OverStandardCount++
		}

		if row.ProjectName != nil && *row.ProjectName != "" {
			if _, seen := a.firstNameSeen[*row.ProjectName]; !seen {
				a.firstNameSeen[*row.ProjectName] = a.nextNameIdx
				a.nextNameIdx++
			}
			a.nameCounts[*row.ProjectName]++
		}

		switch row.Kind {
		case models.KindFlight:
			a.summary.FlightCost += row.Amount
			a.summary.FlightCount++
		case models.KindHotel:
			a.summary.HotelCost += row.Amount
			a.summary.HotelCount++
		case models.KindTrain:
			a.summary.TrainCost += row.Amount
			a.summary.TrainCount++
		}

		if !a.hasRange {
			a.summary.DateRange = DateRange{Start: row.EventDate, End: row.EventDate}
			a.hasRange = true
		} else {
			if row.EventDate.Before(a.summary.DateRange.Start) {
				a.summary.DateRange.Start = row.EventDate
			}
			if row.EventDate.After(a.summary.DateRange.End) {
				a.summary.DateRange.End = row.EventDate
			}
		}
	}

	out := make([]ProjectSummary, 0, len(order))
	for _, code := range order {
		acc := acc[code]
		if code == models.UnknownProjectCode {
			acc.summary.Name = unknownProjectLabel
		} else {
			acc.summary.Name = mostCommonName(acc)
		}
		acc.summary.PersonCount = len(acc.persons)
		acc.summary.PersonList = sortedSet(acc.persons)
		acc.summary.DepartmentList = sortedSet(acc.departments)
		out = append(out, acc.summary)
	}
	return out, nil
}

// mostCommonName returns the most frequent non-null project name for this
// project, ties broken by first occurrence — §4.5's naming rule.
func mostCommonName(a *projectAccumulator) string {
	best := ""
	bestCount := -1
	bestIdx := -1
	for name, count := range a.nameCounts {
		idx := a.firstNameSeen[name]
		if count > bestCount || (count == bestCount && idx < bestIdx) {
			best, bestCount, bestIdx = name, count, idx
		}
	}
	return best
}

func sortedSet(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ProjectTopN restricts ListProjects to the top n codes by total_cost,
// descending. A synthetic "其他" row aggregating the tail is appended when
// there are more than n projects, per §4.5's optional tail-aggregation note.
func (a *Aggregator) ProjectTopN(months []string, n int) ([]ProjectSummary, error) {
	if n <= 0 {
		n = 20
	}
	all, err := a.ListProjects(months)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].TotalCost > all[j].TotalCost
	})

	if len(all) <= n {
		return all, nil
	}

	top := all[:n]
	tail := all[n:]

	other := ProjectSummary{Code: "其他", Name: "其他"}
	for _, p := range tail {
		other.TotalCost += p.TotalCost
		other.FlightCost += p.FlightCost
		other.HotelCost += p.HotelCost
		other.TrainCost += p.TrainCost
		other.RecordCount += p.RecordCount
		other.FlightCount += p.FlightCount
		other.HotelCount += p.HotelCount
		other.TrainCount += p.TrainCount
		other.OverStandardCount += p.OverStandardCount
		other.PersonCount += p.PersonCount
	}

	return append(append([]ProjectSummary{}, top...), other), nil
}

// ProjectOrder is one TravelRow projected for the project-orders endpoint.
type ProjectOrder struct {
	ID                 string         `json:"id"`
	ProjectCode        string         `json:"project_code"`
	ProjectName        string         `json:"project_name"`
	TravellerName      string         `json:"traveller_name"`
	DepartmentPath     []string       `json:"department_path"`
	Kind               models.TravelKind `json:"kind"`
	Amount             float64        `json:"amount"`
	EventDate          time.Time      `json:"event_date"`
	IsOverStandard     bool           `json:"is_over_standard"`
	OverStandardReason string         `json:"over_standard_reason"`
	AdvanceDays        *int           `json:"advance_days,omitempty"`
}

// ProjectOrders returns every TravelRow booked under code, in months.
func (a *Aggregator) ProjectOrders(months []string, code string) ([]ProjectOrder, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	var out []ProjectOrder
	for _, row := range snap.travel {
		if row.ProjectCodeOrSynthetic() != code {
			continue
		}
		name := ""
		if row.ProjectName != nil {
			name = *row.ProjectName
		}
		out = append(out, ProjectOrder{
			ID:                 row.ID.String(),
			ProjectCode:        code,
			ProjectName:        name,
			TravellerName:      row.TravellerName,
			DepartmentPath:     row.DepartmentPath,
			Kind:               row.Kind,
			Amount:             row.Amount,
			EventDate:          row.EventDate,
			IsOverStandard:     row.IsOverStandard,
			OverStandardReason: row.OverStandardReason,
			AdvanceDays:        row.AdvanceDays,
		})
	}
	return out, nil
}

package aggregator

import (
	"sort"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// DepartmentHierarchy is the three-level forest shape §4.5 specifies.
// Per §9's design note, there are no parent pointers on the nodes
// themselves: level2 and level3 are plain indexes from a parent key to its
// children, built fresh from the queried rows every call.
type DepartmentHierarchy struct {
	Level1 []string            `json:"level1"`
	Level2 map[string][]string `json:"level2"` // level1 name -> level2 names
	Level3 map[string][]string `json:"level3"` // level2 name -> level3 names
}

// DepartmentHierarchy builds the three-level forest from every department
// path observed (across both attendance and travel rows) in months.
func (a *Aggregator) DepartmentHierarchy(months []string) (DepartmentHierarchy, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return DepartmentHierarchy{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	l1Set := make(map[string]struct{})
	l2ByL1 := make(map[string]map[string]struct{})
	l3ByL2 := make(map[string]map[string]struct{})

	visit := func(p models.DepartmentPath) {
		l1 := p.Level1()
		if l1 == "" {
			return
		}
		l1Set[l1] = struct{}{}

		if l2 := p.Level2(); l2 != "" {
			if _, ok := l2ByL1[l1]; !ok {
				l2ByL1[l1] = make(map[string]struct{})
			}
			l2ByL1[l1][l2] = struct{}{}

			if l3 := p.Level3(); l3 != "" {
				if _, ok := l3ByL2[l2]; !ok {
					l3ByL2[l2] = make(map[string]struct{})
				}
				l3ByL2[l2][l3] = struct{}{}
			}
		}
	}

	for _, row := range snap.attendance {
		visit(row.DepartmentPath)
	}
	for _, row := range snap.travel {
		visit(row.DepartmentPath)
	}

	h := DepartmentHierarchy{
		Level1: sortedSet(l1Set),
		Level2: make(map[string][]string, len(l2ByL1)),
		Level3: make(map[string][]string, len(l3ByL2)),
	}
	for l1, children := range l2ByL1 {
		h.Level2[l1] = sortedSet(children)
	}
	for l2, children := range l3ByL2 {
		h.Level3[l2] = sortedSet(children)
	}
	return h, nil
}

// DepartmentStats is one row of department_list's result.
type DepartmentStats struct {
	Name                string  `json:"name"`
	Level               int     `json:"level"`
	Parent              string  `json:"parent,omitempty"`
	PersonCount         int     `json:"person_count"`
	TotalCost           float64 `json:"total_cost"`
	AvgWorkHours        float64 `json:"avg_work_hours"`
	HolidayAvgWorkHours float64 `json:"holiday_avg_work_hours"`
}

// DepartmentList returns one DepartmentStats per distinct department at
// level, optionally restricted to those under parent (parent is the
// department's key at level-1, i.e. the same keying department_hierarchy
// uses to index children).
func (a *Aggregator) DepartmentList(months []string, level int, parent string) ([]DepartmentStats, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	names := make(map[string]struct{})
	for _, row := range snap.attendance {
		if name := matchingName(row.DepartmentPath, level, parent); name != "" {
			names[name] = struct{}{}
		}
	}
	for _, row := range snap.travel {
		if name := matchingName(row.DepartmentPath, level, parent); name != "" {
			names[name] = struct{}{}
		}
	}

	out := make([]DepartmentStats, 0, len(names))
	for _, name := range sortedSet(names) {
		out = append(out, a.oneDepartmentStats(snap, name, level, parent))
	}
	return out, nil
}

// matchingName returns p's key at level if it exists and, when parent is
// non-empty, is actually nested under parent.
func matchingName(p models.DepartmentPath, level int, parent string) string {
	name := p.AtLevel(level)
	if name == "" {
		return ""
	}
	if parent == "" {
		return name
	}
	if level == 1 {
		return ""
	}
	if p.AtLevel(level-1) != parent {
		return ""
	}
	return name
}

func (a *Aggregator) oneDepartmentStats(snap snapshot, name string, level int, parent string) DepartmentStats {
	people := make(map[string]struct{})
	var cost float64
	var workSum, workCount float64
	var holidaySum, holidayCount float64

	for _, row := range snap.travel {
		if row.DepartmentPath.AtLevel(level) == name {
			cost += row.Amount
			people[row.TravellerName] = struct{}{}
		}
	}
	for _, row := range snap.attendance {
		if row.DepartmentPath.AtLevel(level) != name {
			continue
		}
		people[row.EmployeeName] = struct{}{}
		if row.WorkHours <= 0 {
			continue
		}
		switch row.Status {
		case models.StatusWork:
			workSum += row.WorkHours
			workCount++
		case models.StatusWeekendWork:
			holidaySum += row.WorkHours
			holidayCount++
		}
	}

	stats := DepartmentStats{Name: name, Level: level, Parent: parent, TotalCost: cost, PersonCount: len(people)}
	if workCount > 0 {
		stats.AvgWorkHours = workSum / workCount
	}
	if holidayCount > 0 {
		stats.HolidayAvgWorkHours = holidaySum / holidayCount
	}
	return stats
}

// RankedEntry is one row of a top-10 ranking table.
type RankedEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DepartmentDetails is the one-department dossier §4.5 describes.
type DepartmentDetails struct {
	Name                     string         `json:"name"`
	Level                    int            `json:"level"`
	StatusDayCounts          map[string]int `json:"status_day_counts"` // person-days per AttendanceStatus
	WeekendWorkDays          int            `json:"weekend_work_days"`
	WorkdayAttendanceDays    int            `json:"workday_attendance_days"`
	TravelDays               int            `json:"travel_days"`
	LeaveDays                int            `json:"leave_days"`
	AnomalyDays              int            `json:"anomaly_days"`
	LateAfter1930Count       int            `json:"late_after_1930_count"`
	WeekendAttendanceCount   int            `json:"weekend_attendance_count"`
	TravelRanking            []RankedEntry  `json:"travel_ranking"`
	AnomalyRanking           []RankedEntry  `json:"anomaly_ranking"`
	LatestCheckoutRanking    []RankedEntry  `json:"latest_checkout_ranking"`
	LongestHoursRanking      []RankedEntry  `json:"longest_hours_ranking"`
}

// DepartmentDetails computes the dossier for one department name at level.
func (a *Aggregator) DepartmentDetails(months []string, name string, level int) (DepartmentDetails, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return DepartmentDetails{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	d := DepartmentDetails{
		Name:            name,
		Level:           level,
		StatusDayCounts: make(map[string]int),
	}

	travelPersonDays := make(map[string]int)  // employee -> count, for travel_ranking
	anomalyPersonDays := make(map[string]int) // employee -> count, for anomaly_ranking
	latestCheckout := make(map[string]string) // employee -> max "HH:MM"
	workHoursSum := make(map[string]float64)
	workHoursCount := make(map[string]int)

	for _, row := range snap.attendance {
		if row.DepartmentPath.AtLevel(level) != name {
			continue
		}
		d.StatusDayCounts[string(row.Status)]++

		switch row.Status {
		case models.StatusWeekendWork:
			d.WeekendWorkDays++
			d.WeekendAttendanceCount++
		case models.StatusWork:
			d.WorkdayAttendanceDays++
		case models.StatusTravel:
			d.TravelDays++
			travelPersonDays[row.EmployeeName]++
		case models.StatusLeave:
			d.LeaveDays++
		}

		if row.CheckoutTime != nil && *row.CheckoutTime > "19:30" {
			d.LateAfter1930Count++
			if cur, ok := latestCheckout[row.EmployeeName]; !ok || *row.CheckoutTime > cur {
				latestCheckout[row.EmployeeName] = *row.CheckoutTime
			}
		}

		if row.Status == models.StatusWork && row.WorkHours > 0 {
			workHoursSum[row.EmployeeName] += row.WorkHours
			workHoursCount[row.EmployeeName]++
		}
	}

	for _, row := range snap.anomalies {
		if row.DepartmentPath.AtLevel(level) != name {
			continue
		}
		d.AnomalyDays++
		anomalyPersonDays[row.EmployeeName]++
	}

	d.TravelRanking = topN(mapToRanked(travelPersonDays), 10)
	d.AnomalyRanking = topN(mapToRanked(anomalyPersonDays), 10)

	var checkoutRanking []RankedEntry
	for name, t := range latestCheckout {
		checkoutRanking = append(checkoutRanking, RankedEntry{Name: name, Value: timeOfDayToMinutes(t)})
	}
	d.LatestCheckoutRanking = topN(checkoutRanking, 10)

	var hoursRanking []RankedEntry
	for name, sum := range workHoursSum {
		if workHoursCount[name] > 0 {
			hoursRanking = append(hoursRanking, RankedEntry{Name: name, Value: sum / float64(workHoursCount[name])})
		}
	}
	d.LongestHoursRanking = topN(hoursRanking, 10)

	return d, nil
}

func mapToRanked(m map[string]int) []RankedEntry {
	out := make([]RankedEntry, 0, len(m))
	for name, count := range m {
		out = append(out, RankedEntry{Name: name, Value: float64(count)})
	}
	return out
}

func topN(entries []RankedEntry, n int) []RankedEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// timeOfDayToMinutes converts a "HH:MM" string into minutes since midnight
// for numeric ranking; malformed input sorts as 0.
func timeOfDayToMinutes(hhmm string) float64 {
	if len(hhmm) < 5 {
		return 0
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	return float64(h*60 + m)
}

// LevelStatistics is the result of level1_statistics/level2_statistics: the
// parent's own aggregate plus a nested table of per-child statistics.
type LevelStatistics struct {
	Parent   DepartmentStats   `json:"parent"`
	Children []DepartmentStats `json:"children"`
}

// Level1Statistics reports l1Name's own stats plus its level-2 children.
func (a *Aggregator) Level1Statistics(months []string, l1Name string) (LevelStatistics, error) {
	return a.levelStatistics(months, l1Name, 1, 2)
}

// Level2Statistics reports l2Name's own stats plus its level-3 children.
func (a *Aggregator) Level2Statistics(months []string, l2Name string) (LevelStatistics, error) {
	return a.levelStatistics(months, l2Name, 2, 3)
}

func (a *Aggregator) levelStatistics(months []string, name string, level, childLevel int) (LevelStatistics, error) {
	snap, err := a.loadSnapshot(months)
	if err != nil {
		return LevelStatistics{}, apperrors.Wrap(err, apperrors.ErrInternal)
	}

	parent := a.oneDepartmentStats(snap, name, level, "")

	children, err := a.DepartmentList(months, childLevel, name)
	if err != nil {
		return LevelStatistics{}, err
	}

	return LevelStatistics{Parent: parent, Children: children}, nil
}

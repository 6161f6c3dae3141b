/*
Package normaliser parses a single monthly workbook into typed frames.

It is deliberately pure: given a file path it returns rows plus warnings, and
never touches the store. §4.1 requires it to be deterministic and to
succeed on partial workbooks — only a missing required sheet is fatal.
*/
package normaliser

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	apperrors "tama/internal/errors"
	"tama/internal/models"
)

// Result is everything the normaliser produces from one workbook.
type Result struct {
	Attendance    []models.AttendanceRow
	Travel        []models.TravelRow
	MonthsCovered models.MonthSet
	Warnings      []Warning
}

// Normalise opens the workbook at path and parses its four contract sheets.
// It fails with ErrSourceInvalid only if the file can't be opened, a sheet
// can't be read, or one of the four required sheets is missing; every
// per-row defect becomes a warning. A row with an unparsable date is
// dropped; an unknown status is kept as UNKNOWN and an unparsable checkout
// time is left blank.
func Normalise(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSourceInvalid.WithMessage("could not open workbook"))
	}
	defer f.Close()

	present := make(map[string]bool)
	for _, name := range f.GetSheetList() {
		present[name] = true
	}
	for _, required := range requiredSheets {
		if !present[required] {
			return nil, apperrors.ErrSourceInvalid.WithMessage(
				fmt.Sprintf("workbook is missing required sheet %q", required))
		}
	}

	sink := &warningSink{}
	months := make(map[string]struct{})

	attendance, err := parseAttendanceSheet(f, sink)
	if err != nil {
		return nil, err
	}
	for _, row := range attendance {
		months[YearMonth(row.Date)] = struct{}{}
	}

	var travel []models.TravelRow
	for _, sheet := range []struct {
		kind models.TravelKind
		name string
	}{
		{models.KindFlight, sheetFlight},
		{models.KindHotel, sheetHotel},
		{models.KindTrain, sheetTrain},
	} {
		rows, err := parseTravelSheet(f, sheet.name, sheet.kind, sink)
		if err != nil {
			return nil, err
		}
		travel = append(travel, rows...)
	}
	for _, row := range travel {
		months[YearMonth(row.EventDate)] = struct{}{}
	}

	monthSet := make(models.MonthSet, 0, len(months))
	for m := range months {
		monthSet = append(monthSet, m)
	}

	return &Result{
		Attendance:    attendance,
		Travel:        travel,
		MonthsCovered: models.MonthSet{}.Union(monthSet),
		Warnings:      sink.warnings,
	}, nil
}

func parseAttendanceSheet(f *excelize.File, sink *warningSink) ([]models.AttendanceRow, error) {
	rows, err := f.GetRows(sheetAttendance)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSourceInvalid.WithMessage("could not read attendance sheet"))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := newSheetColumns(rows[0])
	dateIdx := cols.find(headersDate...)
	empIdx := cols.find(headersEmployee...)
	deptIdx := cols.find(headersDepartment...)
	statusIdx := cols.find(headersStatus...)
	hoursIdx := cols.find(headersWorkHours...)
	checkoutIdx := cols.find(headersCheckoutTime...)

	var out []models.AttendanceRow
	for i, row := range rows[1:] {
		rowNum := i + 2 // +1 for 0-index, +1 for the header row

		date, ok := ParseDate(cell(row, dateIdx))
		if !ok {
			sink.add("考勤", rowNum, "unparsable date; row dropped")
			continue
		}

		status, ok := ParseStatus(cell(row, statusIdx))
		if !ok {
			sink.add("考勤", rowNum, fmt.Sprintf("unrecognised status %q; recorded as UNKNOWN", cell(row, statusIdx)))
		}

		var checkout *string
		if raw := cell(row, checkoutIdx); raw != "" {
			if canon, ok := ParseCheckoutTime(raw); ok {
				checkout = &canon
			} else {
				sink.add(sheetAttendance, rowNum, fmt.Sprintf("unparsable checkout time %q; left blank", raw))
			}
		}

		out = append(out, models.AttendanceRow{
			Date:           date,
			EmployeeName:   cell(row, empIdx),
			DepartmentPath: models.NewDepartmentPath(cell(row, deptIdx)),
			Status:         status,
			WorkHours:      parseHours(cell(row, hoursIdx)),
			CheckoutTime:   checkout,
			SourceMonth:    YearMonth(date),
		})
	}
	return out, nil
}

func parseTravelSheet(f *excelize.File, sheetName string, kind models.TravelKind, sink *warningSink) ([]models.TravelRow, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrSourceInvalid.WithMessage("could not read "+sheetName+" sheet"))
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := newSheetColumns(rows[0])
	dateIdx := cols.find(headersDate...)
	bookerIdx := cols.find(headersBooker...)
	travellerIdx := cols.find(headersTraveller...)
	deptIdx := cols.find(headersDepartment...)
	amountIdx := cols.find(headersAmount...)
	projectIdx := cols.find(headersProject...)
	advanceIdx := cols.find(headersAdvanceDays...)
	overStdIdx := cols.find(headersOverStandard...)
	overReasonIdx := cols.find(headersOverStdReason...)

	var out []models.TravelRow
	for i, row := range rows[1:] {
		rowNum := i + 2

		date, ok := ParseDate(cell(row, dateIdx))
		if !ok {
			sink.add(sheetName, rowNum, "unparsable date; row dropped")
			continue
		}

		traveller := cell(row, travellerIdx)
		booker := cell(row, bookerIdx)
		if traveller == "" {
			traveller = booker
		}

		code, name := ParseProjectField(cell(row, projectIdx))

		var advance *int
		if raw := cell(row, advanceIdx); raw != "" {
			if n, ok := parseSignedInt(raw); ok {
				advance = &n
			}
		}

		out = append(out, models.TravelRow{
			Kind:               kind,
			EventDate:          date,
			BookerName:         booker,
			TravellerName:      traveller,
			DepartmentPath:     models.NewDepartmentPath(cell(row, deptIdx)),
			Amount:             ParseMoney(cell(row, amountIdx)),
			ProjectCode:        code,
			ProjectName:        name,
			AdvanceDays:        advance,
			IsOverStandard:     parseBool(cell(row, overStdIdx)),
			OverStandardReason: cell(row, overReasonIdx),
			SourceMonth:        YearMonth(date),
		})
	}
	return out, nil
}

/*
Package report derives metrics from the schedule. Nothing here is stored:
every figure is recomputed from employees, shifts, entries and holidays.

MONTHLY STATS (per employee, per day of the month):

	Target:  HoursPerDay on Monday-Friday unless the day is a holiday in the
	         employee's region
	Actual:  VACATION  -> +HoursPerDay, +1 vacation day
	         SICK      -> +HoursPerDay, +1 sick day
	         shift     -> override, else shift hours, else 0 (deleted shift)
	         override  -> the override
	Variance = Actual - Target

WEEKEND ROLLUP:
  For each Saturday and Sunday of the month, the hours of every entry on
  that date (override, else shift hours, else 0) summed across employees.

POLICY:
  Absence days count as exactly HoursPerDay regardless of the shift the
  employee would have worked.

SEE ALSO:
  - balance.go: Yearly vacation balance
  - schedule/entry.go: Hours resolution for a single entry
*/
package report

import (
	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

// HoursPerDay is the target of a working day and the credit of an absence day.
var HoursPerDay = decimal.NewFromInt(8)

// EmployeeStats are one employee's figures for one month.
type EmployeeStats struct {
	TargetHours  decimal.Decimal `json:"target_hours"`
	ActualHours  decimal.Decimal `json:"actual_hours"`
	VacationDays int             `json:"vacation_days"`
	SickDays     int             `json:"sick_days"`
}

// Variance is actual minus target hours.
func (s EmployeeStats) Variance() decimal.Decimal {
	return s.ActualHours.Sub(s.TargetHours)
}

// ComputeMonthlyStats returns the stats of every employee over monthDays.
// Missing data contributes zero; it never fails.
func ComputeMonthlyStats(
	employees []schedule.Employee,
	shifts []schedule.Shift,
	entries []schedule.Entry,
	holidaysByEmployee map[schedule.EmployeeID]calendar.HolidaySet,
	monthDays []calendar.Date,
) map[schedule.EmployeeID]EmployeeStats {
	shiftIdx := schedule.ShiftIndex(shifts)
	entryIdx := make(map[schedule.EntryKey]schedule.Entry, len(entries))
	for _, e := range entries {
		entryIdx[e.Key()] = e
	}

	stats := make(map[schedule.EmployeeID]EmployeeStats, len(employees))
	for _, emp := range employees {
		holidays := holidaysByEmployee[emp.ID]
		s := EmployeeStats{TargetHours: decimal.Zero, ActualHours: decimal.Zero}

		for _, day := range monthDays {
			if !day.IsWeekend() && !holidays.Contains(day) {
				s.TargetHours = s.TargetHours.Add(HoursPerDay)
			}

			e, ok := entryIdx[schedule.EntryKey{EmployeeID: emp.ID, Date: day}]
			if !ok {
				continue
			}
			switch {
			case e.IsVacation():
				s.VacationDays++
				s.ActualHours = s.ActualHours.Add(HoursPerDay)
			case e.IsSick():
				s.SickDays++
				s.ActualHours = s.ActualHours.Add(HoursPerDay)
			default:
				s.ActualHours = s.ActualHours.Add(schedule.Hours(e, shiftIdx))
			}
		}
		stats[emp.ID] = s
	}
	return stats
}

// HolidaysByEmployee builds each employee's holiday set for the years the
// given days touch.
func HolidaysByEmployee(cal *calendar.Calendar, employees []schedule.Employee, days []calendar.Date) map[schedule.EmployeeID]calendar.HolidaySet {
	years := map[int]bool{}
	for _, d := range days {
		years[d.Year()] = true
	}

	byRegion := map[calendar.Region]calendar.HolidaySet{}
	out := make(map[schedule.EmployeeID]calendar.HolidaySet, len(employees))
	for _, emp := range employees {
		set, ok := byRegion[emp.Region]
		if !ok {
			set = calendar.HolidaySet{}
			for y := range years {
				for d, h := range cal.HolidaySet(y, emp.Region) {
					set[d] = h
				}
			}
			byRegion[emp.Region] = set
		}
		out[emp.ID] = set
	}
	return out
}

// =============================================================================
// WEEKEND ROLLUP
// =============================================================================

// WeekendLoad is the hours worked by all employees on one weekend day.
type WeekendLoad struct {
	Date  calendar.Date   `json:"date"`
	Hours decimal.Decimal `json:"hours"`
}

// WeekendRollup returns one WeekendLoad per Saturday and Sunday in monthDays,
// in order, including days nobody worked.
func WeekendRollup(shifts []schedule.Shift, entries []schedule.Entry, monthDays []calendar.Date) []WeekendLoad {
	shiftIdx := schedule.ShiftIndex(shifts)
	byDate := map[calendar.Date]decimal.Decimal{}
	for _, e := range entries {
		if !e.Date.IsWeekend() {
			continue
		}
		byDate[e.Date] = byDate[e.Date].Add(schedule.Hours(e, shiftIdx))
	}

	var out []WeekendLoad
	for _, d := range monthDays {
		if !d.IsWeekend() {
			continue
		}
		h, ok := byDate[d]
		if !ok {
			h = decimal.Zero
		}
		out = append(out, WeekendLoad{Date: d, Hours: h})
	}
	return out
}

// TotalWeekendHours sums a rollup.
func TotalWeekendHours(loads []WeekendLoad) decimal.Decimal {
	total := decimal.Zero
	for _, l := range loads {
		total = total.Add(l.Hours)
	}
	return total
}

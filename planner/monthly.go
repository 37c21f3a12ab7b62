package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/report"
	"github.com/shahabsali127/shiftplan/schedule"
)

// MonthlyReport is everything needed to render one month of the plan.
type MonthlyReport struct {
	Year         int                  `json:"year"`
	Month        time.Month           `json:"month"`
	Days         []DayHeader          `json:"days"`
	Rows         []EmployeeRow        `json:"rows"`
	Weekend      []report.WeekendLoad `json:"weekend"`
	WeekendTotal decimal.Decimal      `json:"weekend_total"`
}

// DayHeader describes one column. Holidays maps employee ids to the name of
// the holiday they have off that day.
type DayHeader struct {
	Date     calendar.Date                  `json:"date"`
	Weekday  time.Weekday                   `json:"weekday"`
	Weekend  bool                           `json:"weekend"`
	Holidays map[schedule.EmployeeID]string `json:"holidays,omitempty"`
}

// EmployeeRow is one employee's entries and stats for the month.
type EmployeeRow struct {
	Employee schedule.Employee    `json:"employee"`
	Entries  []schedule.Entry     `json:"entries"`
	Stats    report.EmployeeStats `json:"stats"`
	Variance decimal.Decimal      `json:"variance"`
}

// MonthlyReport recomputes the month from the current plan.
func (p *Planner) MonthlyReport(year int, month time.Month) MonthlyReport {
	snap := p.store.Snapshot()
	days := calendar.MonthDays(year, month)
	first, last := days[0], days[len(days)-1]
	var entries []schedule.Entry
	for _, e := range snap.Entries {
		if e.Date.AfterOrEqual(first) && e.Date.BeforeOrEqual(last) {
			entries = append(entries, e)
		}
	}
	holidays := report.HolidaysByEmployee(p.cal, snap.Employees, days)

	stats := report.ComputeMonthlyStats(snap.Employees, snap.Shifts, entries, holidays, days)
	weekend := report.WeekendRollup(snap.Shifts, entries, days)

	out := MonthlyReport{
		Year:         year,
		Month:        month,
		Days:         make([]DayHeader, 0, len(days)),
		Rows:         make([]EmployeeRow, 0, len(snap.Employees)),
		Weekend:      weekend,
		WeekendTotal: report.TotalWeekendHours(weekend),
	}

	for _, d := range days {
		h := DayHeader{Date: d, Weekday: d.Weekday(), Weekend: d.IsWeekend()}
		for _, emp := range snap.Employees {
			if hol, ok := holidays[emp.ID].Lookup(d); ok {
				if h.Holidays == nil {
					h.Holidays = map[schedule.EmployeeID]string{}
				}
				h.Holidays[emp.ID] = hol.Name
			}
		}
		out.Days = append(out.Days, h)
	}

	byEmployee := map[schedule.EmployeeID][]schedule.Entry{}
	for _, e := range entries {
		byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
	}
	for _, emp := range snap.Employees {
		s := stats[emp.ID]
		rowEntries := byEmployee[emp.ID]
		if rowEntries == nil {
			rowEntries = []schedule.Entry{}
		}
		out.Rows = append(out.Rows, EmployeeRow{
			Employee: emp,
			Entries:  rowEntries,
			Stats:    s,
			Variance: s.Variance(),
		})
	}
	return out
}

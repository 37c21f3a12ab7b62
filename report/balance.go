package report

import (
	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/schedule"
)

// VacationBalance compares an employee's vacation days in a year with the
// yearly entitlement. Remaining may go negative; the cap is not enforced here.
type VacationBalance struct {
	EmployeeID  schedule.EmployeeID `json:"employee_id"`
	Year        int                 `json:"year"`
	Entitlement decimal.Decimal     `json:"entitlement"`
	Used        decimal.Decimal     `json:"used"`
	Remaining   decimal.Decimal     `json:"remaining"`
	SickDays    int                 `json:"sick_days"`
}

// Overdrawn reports whether more days were taken than granted.
func (b VacationBalance) Overdrawn() bool { return b.Remaining.IsNegative() }

// ComputeVacationBalance counts the employee's VACATION entries dated in
// year. Each entry is one full day.
func ComputeVacationBalance(emp schedule.Employee, entries []schedule.Entry, year int) VacationBalance {
	used := 0
	sick := 0
	for _, e := range entries {
		if e.EmployeeID != emp.ID || e.Date.Year() != year {
			continue
		}
		switch {
		case e.IsVacation():
			used++
		case e.IsSick():
			sick++
		}
	}

	usedDays := decimal.NewFromInt(int64(used))
	return VacationBalance{
		EmployeeID:  emp.ID,
		Year:        year,
		Entitlement: emp.YearlyVacationEntitlement,
		Used:        usedDays,
		Remaining:   emp.YearlyVacationEntitlement.Sub(usedDays),
		SickDays:    sick,
	}
}

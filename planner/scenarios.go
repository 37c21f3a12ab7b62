/*
scenarios.go - Built-in plans for first start and demos

PURPOSE:

	Provides pre-built plans. "default" is loaded when storage is empty;
	the others populate January 2026 so reports and rules have something
	to show.

AVAILABLE SCENARIOS:

	default:       Two shifts, five employees across five states, no entries
	full-month:    Default plus a rotating early/late roster for January 2026
	vacation-peak: Default plus two employees on vacation on the same days

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' with ID, name, description and a build function
 2. Build on DefaultSnapshot() so ids stay stable

NOTE:

	Loading a scenario replaces the whole plan.
*/
package planner

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

// Scenario is a named built-in plan.
type Scenario struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	build func() schedule.Snapshot
}

// Snapshot builds a fresh copy of the scenario's plan.
func (s Scenario) Snapshot() schedule.Snapshot { return s.build() }

const DefaultScenarioID = "default"

var scenarios = []Scenario{
	{
		ID:          DefaultScenarioID,
		Name:        "Default",
		Description: "Early and late shift, five employees, empty calendar",
		build:       DefaultSnapshot,
	},
	{
		ID:          "full-month",
		Name:        "Full Month",
		Description: "Rotating early/late roster on every working day of January 2026",
		build:       fullMonthSnapshot,
	},
	{
		ID:          "vacation-peak",
		Name:        "Vacation Peak",
		Description: "Two employees on vacation 12-16 January 2026; a third is refused",
		build:       vacationPeakSnapshot,
	},
}

// Scenarios lists the built-in scenarios.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// FindScenario returns the scenario with id.
func FindScenario(id string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// DefaultSnapshot is the plan a new installation starts with.
func DefaultSnapshot() schedule.Snapshot {
	eight := decimal.NewFromInt(8)
	thirty := decimal.NewFromInt(30)
	return schedule.Snapshot{
		Employees: []schedule.Employee{
			{ID: "1", Name: "Max Mustermann", Region: calendar.BadenWuerttemberg, YearlyVacationEntitlement: thirty},
			{ID: "2", Name: "Erika Musterfrau", Region: calendar.Bavaria, YearlyVacationEntitlement: thirty},
			{ID: "3", Name: "John Doe", Region: calendar.Berlin, YearlyVacationEntitlement: thirty},
			{ID: "4", Name: "Jane Smith", Region: calendar.NorthRhineWestphalia, YearlyVacationEntitlement: thirty},
			{ID: "5", Name: "Hans Müller", Region: calendar.Hesse, YearlyVacationEntitlement: thirty},
		},
		Shifts: []schedule.Shift{
			{ID: "early", Name: "Frühschicht", StartTime: "07:30", EndTime: "16:30", Color: "#3b82f6", Hours: eight},
			{ID: "late", Name: "Spätschicht", StartTime: "11:00", EndTime: "20:00", Color: "#8b5cf6", Hours: eight},
		},
		Entries: []schedule.Entry{},
	}
}

func fullMonthSnapshot() schedule.Snapshot {
	snap := DefaultSnapshot()
	cal := calendar.New()
	for _, day := range calendar.MonthDays(2026, time.January) {
		if day.IsWeekend() {
			continue
		}
		for i, emp := range snap.Employees {
			if cal.IsHoliday(emp.Region, day) {
				continue
			}
			shift := schedule.ShiftID("early")
			if (i+day.Day())%2 == 1 {
				shift = "late"
			}
			snap.Entries = append(snap.Entries, schedule.Entry{EmployeeID: emp.ID, Date: day, ShiftID: shift})
		}
	}
	return snap
}

func vacationPeakSnapshot() schedule.Snapshot {
	snap := DefaultSnapshot()
	start := calendar.NewDate(2026, time.January, 12)
	for i := 0; i < 5; i++ {
		day := start.AddDays(i)
		for _, id := range []schedule.EmployeeID{"1", "2"} {
			snap.Entries = append(snap.Entries, schedule.Entry{EmployeeID: id, Date: day, Absence: schedule.AbsenceVacation})
		}
	}
	return snap
}

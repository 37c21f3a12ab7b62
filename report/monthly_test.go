package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/report"
	"github.com/shahabsali127/shiftplan/schedule"
)

func hours(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

var (
	early  = schedule.Shift{ID: "early", Name: "Früh", StartTime: "07:30", EndTime: "16:30", Hours: hours("8")}
	late   = schedule.Shift{ID: "late", Name: "Spät", StartTime: "11:00", EndTime: "20:00", Hours: hours("8")}
	saxon  = schedule.Employee{ID: "sn", Name: "Sophie", Region: calendar.Saxony, YearlyVacationEntitlement: hours("30")}
	berlin = schedule.Employee{ID: "be", Name: "Ben", Region: calendar.Berlin, YearlyVacationEntitlement: hours("30")}
)

func monthStats(t *testing.T, year int, month time.Month, employees []schedule.Employee, shifts []schedule.Shift, entries []schedule.Entry) map[schedule.EmployeeID]report.EmployeeStats {
	t.Helper()
	days := calendar.MonthDays(year, month)
	holidays := report.HolidaysByEmployee(calendar.New(), employees, days)
	return report.ComputeMonthlyStats(employees, shifts, entries, holidays, days)
}

// =============================================================================
// TARGET HOURS
// =============================================================================

func TestComputeMonthlyStats_TargetSkipsWeekendsAndRegionalHoliday(t *testing.T) {
	// GIVEN: November 2023 has 30 days, 8 weekend days and the Saxon Day of
	// Repentance on Wednesday the 22nd
	employees := []schedule.Employee{saxon, berlin}

	// WHEN: Stats are computed with no entries
	stats := monthStats(t, 2023, time.November, employees, nil, nil)

	// THEN: Saxony loses the holiday, Berlin does not
	assert.Equal(t, "168", stats["sn"].TargetHours.String()) // (30 - 8 - 1) * 8
	assert.Equal(t, "176", stats["be"].TargetHours.String()) // (30 - 8) * 8
	assert.True(t, stats["sn"].ActualHours.IsZero())
	assert.Equal(t, "-168", stats["sn"].Variance().String())
}

// =============================================================================
// ACTUAL HOURS
// =============================================================================

func TestComputeMonthlyStats_ActualHours(t *testing.T) {
	// GIVEN: One of every kind of entry in March 2026
	d := calendar.MustParseDate
	entries := []schedule.Entry{
		{EmployeeID: "be", Date: d("2026-03-02"), ShiftID: "early"},                                 // 8
		{EmployeeID: "be", Date: d("2026-03-03"), ShiftID: "late", ActualHours: ptr(hours("6.5"))},  // 6.5
		{EmployeeID: "be", Date: d("2026-03-04"), Absence: schedule.AbsenceVacation},                // 8
		{EmployeeID: "be", Date: d("2026-03-05"), Absence: schedule.AbsenceSick, ShiftID: "late"},   // 8
		{EmployeeID: "be", Date: d("2026-03-06"), ShiftID: "deleted"},                               // 0
		{EmployeeID: "be", Date: d("2026-03-09"), ShiftID: "deleted", ActualHours: ptr(hours("3"))}, // 3
		{EmployeeID: "be", Date: d("2026-03-10"), ActualHours: ptr(hours("2.25"))},                  // 2.25
		{EmployeeID: "be", Date: d("2026-04-01"), ShiftID: "early"},                                 // other month
	}

	// WHEN
	stats := monthStats(t, 2026, time.March, []schedule.Employee{berlin}, []schedule.Shift{early, late}, entries)

	// THEN
	got := stats["be"]
	assert.Equal(t, "35.75", got.ActualHours.String())
	assert.Equal(t, 1, got.VacationDays)
	assert.Equal(t, 1, got.SickDays)
	assert.Equal(t, "176", got.TargetHours.String()) // 22 weekdays, no Berlin holiday in March 2026
}

func TestComputeMonthlyStats_Idempotent(t *testing.T) {
	entries := []schedule.Entry{{EmployeeID: "sn", Date: calendar.MustParseDate("2023-11-06"), ShiftID: "early"}}
	employees := []schedule.Employee{saxon}

	a := monthStats(t, 2023, time.November, employees, []schedule.Shift{early}, entries)
	b := monthStats(t, 2023, time.November, employees, []schedule.Shift{early}, entries)

	assert.Equal(t, a, b)
}

// =============================================================================
// WEEKEND ROLLUP
// =============================================================================

func TestWeekendRollup(t *testing.T) {
	// GIVEN: Saturday 7 March 2026 with three entries and a weekday entry
	sat := calendar.MustParseDate("2026-03-07")
	entries := []schedule.Entry{
		{EmployeeID: "a", Date: sat, ShiftID: "early"},
		{EmployeeID: "b", Date: sat, ActualHours: ptr(hours("4.5"))},
		{EmployeeID: "c", Date: sat, Absence: schedule.AbsenceVacation},
		{EmployeeID: "a", Date: calendar.MustParseDate("2026-03-09"), ShiftID: "early"},
	}

	// WHEN
	loads := report.WeekendRollup([]schedule.Shift{early}, entries, calendar.MonthDays(2026, time.March))

	// THEN: Every weekend day is listed, only the 7th carries hours
	require.Len(t, loads, 9)
	for _, l := range loads {
		assert.True(t, l.Date.IsWeekend())
		if l.Date == sat {
			assert.Equal(t, "12.5", l.Hours.String())
		} else {
			assert.True(t, l.Hours.IsZero(), l.Date.String())
		}
	}
	assert.Equal(t, "12.5", report.TotalWeekendHours(loads).String())
}

func TestWeekendRollup_DeletedEmployeeNoLongerCounted(t *testing.T) {
	// GIVEN: Two employees working the same Sunday
	sun := calendar.MustParseDate("2026-03-08")
	m := schedule.NewMemory()
	m.SaveShift(early)
	m.SaveEmployee(saxon)
	m.SaveEmployee(berlin)
	m.UpsertEntry("sn", sun, schedule.AssignShift("early"))
	m.UpsertEntry("be", sun, schedule.ManualHours(hours("5")))

	days := calendar.MonthDays(2026, time.March)
	before := report.TotalWeekendHours(report.WeekendRollup(m.Shifts(), m.Entries(), days))
	require.Equal(t, "13", before.String())

	// WHEN: One of them is deleted
	m.DeleteEmployee("sn")

	// THEN: Their entry is gone and the rollup drops their hours
	_, ok := m.FindEntry("sn", sun)
	assert.False(t, ok)
	after := report.TotalWeekendHours(report.WeekendRollup(m.Shifts(), m.Entries(), days))
	assert.Equal(t, "5", after.String())
}

// =============================================================================
// VACATION BALANCE
// =============================================================================

func TestComputeVacationBalance(t *testing.T) {
	d := calendar.MustParseDate
	entries := []schedule.Entry{
		{EmployeeID: "be", Date: d("2026-01-05"), Absence: schedule.AbsenceVacation},
		{EmployeeID: "be", Date: d("2026-07-20"), Absence: schedule.AbsenceVacation},
		{EmployeeID: "be", Date: d("2026-07-21"), Absence: schedule.AbsenceSick},
		{EmployeeID: "be", Date: d("2025-12-31"), Absence: schedule.AbsenceVacation}, // previous year
		{EmployeeID: "sn", Date: d("2026-07-20"), Absence: schedule.AbsenceVacation}, // someone else
	}

	b := report.ComputeVacationBalance(berlin, entries, 2026)

	assert.Equal(t, "2", b.Used.String())
	assert.Equal(t, "28", b.Remaining.String())
	assert.Equal(t, 1, b.SickDays)
	assert.False(t, b.Overdrawn())
}

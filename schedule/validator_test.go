package schedule_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

func vacation(id schedule.EmployeeID, d calendar.Date) schedule.Entry {
	return schedule.Entry{EmployeeID: id, Date: d, Absence: schedule.AbsenceVacation}
}

func TestCanApplyVacation_ThirdEmployeeRejected(t *testing.T) {
	// GIVEN: Two employees on vacation on day1
	entries := []schedule.Entry{vacation("a", day1), vacation("b", day1)}

	// THEN: A third is refused on day1 but allowed on day2
	assert.False(t, schedule.CanApplyVacation("c", day1, entries))
	assert.True(t, schedule.CanApplyVacation("c", day2, entries))
}

func TestCanApplyVacation_IgnoresOwnEntryAndOtherAbsences(t *testing.T) {
	entries := []schedule.Entry{
		vacation("a", day1),
		vacation("c", day1),
		{EmployeeID: "b", Date: day1, Absence: schedule.AbsenceSick},
		{EmployeeID: "d", Date: day1, ShiftID: "early"},
	}

	// c already holds one of the two vacation slots
	assert.True(t, schedule.CanApplyVacation("c", day1, entries))
	assert.False(t, schedule.CanApplyVacation("e", day1, entries))
}

func TestRuleValidator_Check(t *testing.T) {
	v := schedule.NewRuleValidator(0)
	require.Equal(t, schedule.DefaultMaxConcurrentVacations, v.MaxConcurrentVacations)

	entries := []schedule.Entry{vacation("a", day1), vacation("b", day1)}

	t.Run("vacation over the cap", func(t *testing.T) {
		err := v.Check("c", day1, schedule.MarkAbsent(schedule.AbsenceVacation), entries)
		require.Error(t, err)
		assert.True(t, errors.Is(err, schedule.ErrVacationCapExceeded))
		assert.True(t, schedule.IsRuleViolation(err))

		var capErr *schedule.VacationCapError
		require.ErrorAs(t, err, &capErr)
		assert.ElementsMatch(t, []schedule.EmployeeID{"a", "b"}, capErr.OnVacation)
		assert.Equal(t, 2, capErr.Limit)
	})

	t.Run("non-vacation patches always pass", func(t *testing.T) {
		assert.NoError(t, v.Check("c", day1, schedule.MarkAbsent(schedule.AbsenceSick), entries))
		assert.NoError(t, v.Check("c", day1, schedule.AssignShift("early"), entries))
		assert.NoError(t, v.Check("c", day1, schedule.ManualHours(decimal.NewFromInt(4)), entries))
	})

	t.Run("configured limit", func(t *testing.T) {
		strict := schedule.NewRuleValidator(1)
		assert.Error(t, strict.Check("c", day1, schedule.MarkAbsent(schedule.AbsenceVacation), entries[:1]))
		assert.NoError(t, strict.Check("c", day2, schedule.MarkAbsent(schedule.AbsenceVacation), entries[:1]))
	})
}

func TestMerge_Pure(t *testing.T) {
	base := schedule.Entry{EmployeeID: "a", Date: day1, ShiftID: "early"}

	merged := schedule.Merge(base, schedule.EntryPatch{Absence: ptr(schedule.AbsenceVacation)})

	assert.Equal(t, schedule.ShiftID("early"), merged.ShiftID)
	assert.Equal(t, schedule.AbsenceVacation, merged.Absence)
	assert.Empty(t, base.Absence, "base must not be modified")
}

func TestIsEffectivelyEmpty(t *testing.T) {
	assert.True(t, schedule.IsEffectivelyEmpty(schedule.Entry{}))
	assert.True(t, schedule.IsEffectivelyEmpty(schedule.Entry{Absence: schedule.AbsenceNone}))
	assert.False(t, schedule.IsEffectivelyEmpty(schedule.Entry{ShiftID: "x"}))
	assert.False(t, schedule.IsEffectivelyEmpty(schedule.Entry{Absence: schedule.AbsenceSick}))
	assert.False(t, schedule.IsEffectivelyEmpty(schedule.Entry{ActualHours: ptr(decimal.Zero)}))
}

func TestEntryPatch_Validate(t *testing.T) {
	assert.NoError(t, schedule.AssignShift("early").Validate())

	err := schedule.EntryPatch{Absence: ptr(schedule.Absence("HOLIDAY"))}.Validate()
	assert.ErrorIs(t, err, schedule.ErrInvalidEntry)

	err = schedule.EntryPatch{ActualHours: ptr(decimal.NewFromInt(-1))}.Validate()
	assert.ErrorIs(t, err, schedule.ErrInvalidEntry)
}

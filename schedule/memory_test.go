package schedule_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

var (
	day1 = calendar.MustParseDate("2026-03-02")
	day2 = calendar.MustParseDate("2026-03-03")
)

func newStore(t *testing.T) *schedule.Memory {
	t.Helper()
	m := schedule.NewMemory()
	m.SaveShift(schedule.Shift{ID: "early", Name: "Frühdienst", StartTime: "07:30", EndTime: "16:30", Hours: decimal.NewFromInt(8)})
	m.SaveEmployee(schedule.Employee{ID: "alice", Name: "Alice", Region: calendar.Bavaria, YearlyVacationEntitlement: decimal.NewFromInt(30)})
	m.SaveEmployee(schedule.Employee{ID: "bob", Name: "Bob", Region: calendar.Berlin, YearlyVacationEntitlement: decimal.NewFromInt(30)})
	return m
}

func ptr[T any](v T) *T { return &v }

// =============================================================================
// UPSERT / MERGE
// =============================================================================

func TestUpsertEntry_MergesIntoSingleEntry(t *testing.T) {
	// GIVEN: A store with a shift assigned
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.EntryPatch{ShiftID: ptr(schedule.ShiftID("early"))})

	// WHEN: A vacation is set on the same day
	m.UpsertEntry("alice", day1, schedule.EntryPatch{Absence: ptr(schedule.AbsenceVacation)})

	// THEN: One entry holds both fields
	entries := m.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, schedule.ShiftID("early"), entries[0].ShiftID)
	assert.Equal(t, schedule.AbsenceVacation, entries[0].Absence)
}

func TestUpsertEntry_CollapsesWhenEmpty(t *testing.T) {
	// GIVEN: An entry with shift, absence and hours override
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.EntryPatch{
		ShiftID:     ptr(schedule.ShiftID("early")),
		Absence:     ptr(schedule.AbsenceSick),
		ActualHours: ptr(decimal.NewFromInt(6)),
	})
	_, ok := m.FindEntry("alice", day1)
	require.True(t, ok)

	// WHEN: Every field is cleared
	_, stored := m.UpsertEntry("alice", day1, schedule.ClearDay())

	// THEN: The entry is gone
	assert.False(t, stored)
	_, ok = m.FindEntry("alice", day1)
	assert.False(t, ok)
	assert.Empty(t, m.Entries())
}

func TestUpsertEntry_EmptyPatchOnMissingEntryStoresNothing(t *testing.T) {
	m := newStore(t)

	_, stored := m.UpsertEntry("alice", day1, schedule.EntryPatch{Absence: ptr(schedule.AbsenceNone)})

	assert.False(t, stored)
	assert.Empty(t, m.Entries())
}

func TestUpsertEntry_ZeroHoursOverrideIsKept(t *testing.T) {
	m := newStore(t)

	_, stored := m.UpsertEntry("alice", day1, schedule.ManualHours(decimal.Zero))

	assert.True(t, stored)
	e, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	require.NotNil(t, e.ActualHours)
	assert.True(t, e.ActualHours.IsZero())
}

func TestUpsertEntry_PartialPatchKeepsOtherFields(t *testing.T) {
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))

	m.UpsertEntry("alice", day1, schedule.EntryPatch{ActualHours: ptr(decimal.RequireFromString("7.5"))})

	e, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	assert.Equal(t, schedule.ShiftID("early"), e.ShiftID)
	assert.Equal(t, "7.5", e.ActualHours.String())

	// clearing the shift alone keeps the override, so the entry survives
	m.UpsertEntry("alice", day1, schedule.EntryPatch{ShiftID: ptr(schedule.ShiftID(""))})
	e, ok = m.FindEntry("alice", day1)
	require.True(t, ok)
	assert.False(t, e.HasShift())
}

func TestClearEntry(t *testing.T) {
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))

	assert.True(t, m.ClearEntry("alice", day1))
	assert.False(t, m.ClearEntry("alice", day1))
	_, ok := m.FindEntry("alice", day1)
	assert.False(t, ok)
}

// =============================================================================
// CASCADE / WEAK REFERENCES
// =============================================================================

func TestDeleteEmployee_CascadesEntries(t *testing.T) {
	// GIVEN: Entries for two employees
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))
	m.UpsertEntry("alice", day2, schedule.MarkAbsent(schedule.AbsenceVacation))
	m.UpsertEntry("bob", day1, schedule.AssignShift("early"))

	// WHEN: Alice is deleted
	assert.True(t, m.DeleteEmployee("alice"))

	// THEN: None of her entries remain, Bob's are untouched
	_, ok := m.FindEntry("alice", day1)
	assert.False(t, ok)
	_, ok = m.FindEntry("alice", day2)
	assert.False(t, ok)
	_, ok = m.FindEntry("bob", day1)
	assert.True(t, ok)

	_, ok = m.Employee("alice")
	assert.False(t, ok)
	require.Len(t, m.Employees(), 1)
	assert.Equal(t, schedule.EmployeeID("bob"), m.Employees()[0].ID)

	// unknown id is a no-op
	assert.False(t, m.DeleteEmployee("nobody"))
}

func TestDeleteShift_KeepsReferencingEntries(t *testing.T) {
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))

	assert.True(t, m.DeleteShift("early"))

	e, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	assert.Equal(t, schedule.ShiftID("early"), e.ShiftID)
	assert.True(t, schedule.Hours(e, schedule.ShiftIndex(m.Shifts())).IsZero())
}

func TestEntriesBetween_OrderedByDateThenEmployee(t *testing.T) {
	m := newStore(t)
	m.UpsertEntry("bob", day2, schedule.AssignShift("early"))
	m.UpsertEntry("bob", day1, schedule.AssignShift("early"))
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))

	got := m.EntriesBetween(day1, day2)
	require.Len(t, got, 3)
	assert.Equal(t, schedule.EntryKey{EmployeeID: "alice", Date: day1}, got[0].Key())
	assert.Equal(t, schedule.EntryKey{EmployeeID: "bob", Date: day1}, got[1].Key())
	assert.Equal(t, schedule.EntryKey{EmployeeID: "bob", Date: day2}, got[2].Key())

	assert.Len(t, m.EntriesOn(day1), 2)
}

// =============================================================================
// SNAPSHOT / TRANSACTIONS
// =============================================================================

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	// GIVEN: A populated store
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))
	m.UpsertEntry("bob", day1, schedule.ManualHours(decimal.RequireFromString("4.5")))
	before := m.Snapshot()

	// WHEN: The snapshot goes through JSON into a fresh store
	raw, err := json.Marshal(before)
	require.NoError(t, err)
	var decoded schedule.Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := schedule.NewMemory()
	require.NoError(t, restored.Restore(decoded))

	// THEN: The serialized form is unchanged
	again, err := json.Marshal(restored.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestRestore_RejectsMalformedSnapshot(t *testing.T) {
	m := newStore(t)
	before := m.Snapshot()

	bad := schedule.Snapshot{
		Employees: []schedule.Employee{{ID: "x", Region: "XX"}},
		Entries: []schedule.Entry{
			{EmployeeID: "ghost", Date: day1, ShiftID: "early"},
		},
	}
	err := m.Restore(bad)

	require.Error(t, err)
	assert.True(t, errors.Is(err, schedule.ErrInvalidSnapshot))
	assert.True(t, schedule.IsClientError(err))
	var snapErr *schedule.SnapshotError
	require.ErrorAs(t, err, &snapErr)
	assert.Len(t, snapErr.Problems, 2)

	// store untouched
	assert.Equal(t, before, m.Snapshot())
}

func TestRestore_DoesNotShareHoursWithCaller(t *testing.T) {
	// GIVEN: A snapshot carrying an hours override
	m := newStore(t)
	snap := m.Snapshot()
	snap.Entries = []schedule.Entry{
		{EmployeeID: "alice", Date: day1, ActualHours: ptr(decimal.NewFromInt(4))},
	}
	require.NoError(t, m.Restore(snap))

	// WHEN: The caller changes its copy afterwards
	*snap.Entries[0].ActualHours = decimal.NewFromInt(99)

	// THEN: The stored entry keeps its own value
	got, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	require.NotNil(t, got.ActualHours)
	assert.True(t, got.ActualHours.Equal(decimal.NewFromInt(4)), "stored hours: %s", got.ActualHours)
}

func TestFindEntry_ReturnsDetachedHours(t *testing.T) {
	// GIVEN: A stored hours override
	m := newStore(t)
	written, stored := m.UpsertEntry("alice", day1, schedule.ManualHours(decimal.NewFromInt(6)))
	require.True(t, stored)

	// WHEN: Callers write through the pointers they were handed
	*written.ActualHours = decimal.NewFromInt(1)
	found, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	*found.ActualHours = decimal.NewFromInt(2)
	for _, e := range m.EntriesBetween(day1, day1) {
		*e.ActualHours = decimal.NewFromInt(3)
	}

	// THEN: The store still holds the original value
	got, ok := m.FindEntry("alice", day1)
	require.True(t, ok)
	assert.True(t, got.ActualHours.Equal(decimal.NewFromInt(6)), "stored hours: %s", got.ActualHours)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A store with one entry
	m := newStore(t)
	m.UpsertEntry("alice", day1, schedule.AssignShift("early"))
	before := m.Snapshot()

	// WHEN: A transaction writes and then fails
	boom := errors.New("disk full")
	err := m.WithTx(func(tx *schedule.Memory) error {
		tx.UpsertEntry("bob", day1, schedule.MarkAbsent(schedule.AbsenceSick))
		tx.DeleteEmployee("alice")
		return boom
	})

	// THEN: Every change is undone
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, m.Snapshot())
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	m := newStore(t)

	err := m.WithTx(func(tx *schedule.Memory) error {
		tx.UpsertEntry("bob", day1, schedule.MarkAbsent(schedule.AbsenceSick))
		return nil
	})

	require.NoError(t, err)
	_, ok := m.FindEntry("bob", day1)
	assert.True(t, ok)
}

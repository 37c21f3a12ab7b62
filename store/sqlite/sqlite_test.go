package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePlan() schedule.Snapshot {
	eight := decimal.NewFromInt(8)
	override := decimal.RequireFromString("6.5")
	zero := decimal.Zero
	return schedule.Snapshot{
		Employees: []schedule.Employee{
			{ID: "e2", Name: "Zoe", Region: calendar.Hesse, YearlyVacationEntitlement: decimal.NewFromInt(28)},
			{ID: "e1", Name: "Adam", Region: calendar.Bavaria, YearlyVacationEntitlement: decimal.RequireFromString("30.5")},
		},
		Shifts: []schedule.Shift{
			{ID: "late", Name: "Spätdienst", StartTime: "11:00", EndTime: "20:00", Color: "#8b5cf6", Hours: eight},
			{ID: "early", Name: "Frühdienst", StartTime: "07:30", EndTime: "16:30", Color: "#3b82f6", Hours: eight},
		},
		Entries: []schedule.Entry{
			{EmployeeID: "e1", Date: calendar.MustParseDate("2026-02-02"), ShiftID: "early"},
			{EmployeeID: "e2", Date: calendar.MustParseDate("2026-02-02"), ShiftID: "gone", ActualHours: &override},
			{EmployeeID: "e1", Date: calendar.MustParseDate("2026-02-03"), Absence: schedule.AbsenceVacation},
			{EmployeeID: "e2", Date: calendar.MustParseDate("2026-02-04"), ActualHours: &zero},
		},
	}
}

func TestLoad_NothingSaved(t *testing.T) {
	store := newTestStore(t)

	_, found, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	// GIVEN: A plan with ordering, overrides and a dangling shift reference
	store := newTestStore(t)
	ctx := context.Background()
	plan := samplePlan()

	// WHEN: It is saved and loaded back
	require.NoError(t, store.Save(ctx, plan))
	got, found, err := store.Load(ctx)

	// THEN: The structure is unchanged
	require.NoError(t, err)
	require.True(t, found)

	require.Len(t, got.Employees, 2)
	assert.Equal(t, schedule.EmployeeID("e2"), got.Employees[0].ID, "insertion order kept")
	assert.Equal(t, "30.5", got.Employees[1].YearlyVacationEntitlement.String())
	assert.Equal(t, plan.Shifts[0].Name, got.Shifts[0].Name)

	require.Len(t, got.Entries, 4)
	for i := range plan.Entries {
		want, have := plan.Entries[i], got.Entries[i]
		assert.Equal(t, want.Key(), have.Key())
		assert.Equal(t, want.ShiftID, have.ShiftID)
		assert.Equal(t, want.Absence, have.Absence)
		if want.ActualHours == nil {
			assert.Nil(t, have.ActualHours)
		} else {
			require.NotNil(t, have.ActualHours)
			assert.True(t, want.ActualHours.Equal(*have.ActualHours))
		}
	}

	// and the memory store accepts it unchanged
	m := schedule.NewMemory()
	require.NoError(t, m.Restore(got))
	assert.Len(t, m.Entries(), 4)
}

func TestSave_ReplacesPreviousPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, samplePlan()))

	smaller := samplePlan()
	smaller.Employees = smaller.Employees[:1] // only e2
	smaller.Entries = []schedule.Entry{smaller.Entries[1]}
	require.NoError(t, store.Save(ctx, smaller))

	got, _, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Employees, 1)
	assert.Len(t, got.Entries, 1)
}

func TestSave_FailureKeepsPreviousPlan(t *testing.T) {
	// GIVEN: A saved plan
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, samplePlan()))

	// WHEN: A save references an employee that is not in the plan
	broken := samplePlan()
	broken.Entries = append(broken.Entries, schedule.Entry{
		EmployeeID: "ghost", Date: calendar.MustParseDate("2026-02-05"), ShiftID: "early",
	})
	err := store.Save(ctx, broken)

	// THEN: The foreign key rejects it and the old plan survives
	require.Error(t, err)
	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, got.Entries, 4)
}

func TestSave_EmptyPlanIsFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, schedule.Snapshot{}))
	got, found, err := store.Load(ctx)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, got.Employees)

	_, ok, err := store.SavedAt(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Reset(ctx))
	_, found, err = store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNew_FileDatabaseSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.db")
	ctx := context.Background()

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, samplePlan()))
	require.NoError(t, store.Close())

	// migrations are re-run on open and must be idempotent
	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got.Entries, 4)
}

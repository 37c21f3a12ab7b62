package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/planner"
	"github.com/shahabsali127/shiftplan/schedule"
	"github.com/shahabsali127/shiftplan/store/sqlite"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestHolidaysCommand(t *testing.T) {
	out, err := execute(t, "holidays", "--year", "2025", "--region", "Bayern")

	require.NoError(t, err)
	assert.Contains(t, out, "Bayern (BY)")
	assert.Contains(t, out, "2025-01-06")
	assert.Contains(t, out, "Heilige Drei Könige")
}

func TestHolidaysCommand_UnknownRegion(t *testing.T) {
	_, err := execute(t, "holidays", "--year", "2025", "--region", "Atlantis")

	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	// GIVEN: a stored plan with one early shift on a January Saturday
	dbPath := filepath.Join(t.TempDir(), "plan.db")
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	p, err := planner.Open(context.Background(), planner.Options{Persister: store})
	require.NoError(t, err)
	_, _, err = p.UpdateEntry(context.Background(), "1", calendar.MustParseDate("2026-01-10"), schedule.AssignShift("early"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// WHEN: the report command reads it
	out, err := execute(t, "report", "--year", "2026", "--month", "1", "--db", dbPath)

	// THEN: the weekend hours appear
	require.NoError(t, err)
	assert.Contains(t, out, "Max Mustermann")
	assert.Contains(t, out, "8.00")
}

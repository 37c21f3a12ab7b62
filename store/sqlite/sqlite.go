/*
Package sqlite persists the plan snapshot in SQLite.

PURPOSE:
  The planner keeps the live plan in schedule.Memory and hands every
  committed snapshot to Save. On start it calls Load to restore the plan.
  This package never applies business rules; it stores what it is given.

KEY TABLES:
  employees: One row per employee, position keeps the listing order
  shifts:    One row per shift definition, position keeps the listing order
  entries:   Sparse (employee_id, date) rows, cascade-deleted with the employee
  plan_meta: saved_at marker distinguishing "never saved" from "saved empty"

WEAK REFERENCES:
  entries.shift_id has no foreign key. Deleting a shift must leave the
  entries that reference it intact.

SAVE SEMANTICS:
  Save replaces the stored plan in a single transaction. A failed Save
  leaves the previous plan in place.

WAL MODE:
  File databases are opened with WAL and foreign keys on. ":memory:" is
  pinned to one connection, since each connection would otherwise see its
  own empty database.

MIGRATION:
  Schema is migrated on New() from the embedded files in migrations/sql.

USAGE:
  store, err := sqlite.New("./shiftplan.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap, found, err := store.Load(ctx)

SEE ALSO:
  - schedule/memory.go: Live in-memory plan
  - planner/planner.go: Calls Save after every mutation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/schedule"
	"github.com/shahabsali127/shiftplan/store/sqlite/migrations"
)

const memoryPath = ":memory:"

// Store persists plan snapshots.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == memoryPath {
		dsn = dbPath + "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := migrations.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SNAPSHOT PERSISTENCE
// =============================================================================

// Save replaces the stored plan with snap.
func (s *Store) Save(ctx context.Context, snap schedule.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// entries go with their employees via ON DELETE CASCADE
		for _, table := range []string{"entries", "employees", "shifts"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		for i, e := range snap.Employees {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO employees (id, position, name, region, vacation_entitlement)
				VALUES (?, ?, ?, ?, ?)`,
				string(e.ID), i, e.Name, string(e.Region), e.YearlyVacationEntitlement.String(),
			)
			if err != nil {
				return fmt.Errorf("insert employee %s: %w", e.ID, err)
			}
		}

		for i, sh := range snap.Shifts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO shifts (id, position, name, start_time, end_time, color, hours)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				string(sh.ID), i, sh.Name, sh.StartTime, sh.EndTime, sh.Color, sh.Hours.String(),
			)
			if err != nil {
				return fmt.Errorf("insert shift %s: %w", sh.ID, err)
			}
		}

		for _, e := range snap.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO entries (employee_id, date, shift_id, absence, actual_hours)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(employee_id, date) DO UPDATE SET
					shift_id = excluded.shift_id,
					absence = excluded.absence,
					actual_hours = excluded.actual_hours`,
				string(e.EmployeeID), e.Date.String(), string(e.ShiftID), string(e.Absence), nullDecimal(e.ActualHours),
			)
			if err != nil {
				return fmt.Errorf("insert entry %s/%s: %w", e.EmployeeID, e.Date, err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_meta (key, value) VALUES ('saved_at', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			time.Now().UTC().Format(time.RFC3339),
		)
		return err
	})
}

// Load returns the stored plan. found is false when nothing was ever saved.
func (s *Store) Load(ctx context.Context) (snap schedule.Snapshot, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var savedAt string
	err = s.db.QueryRowContext(ctx, "SELECT value FROM plan_meta WHERE key = 'saved_at'").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return schedule.Snapshot{}, false, nil
	}
	if err != nil {
		return schedule.Snapshot{}, false, err
	}

	if snap.Employees, err = s.loadEmployees(ctx); err != nil {
		return schedule.Snapshot{}, false, err
	}
	if snap.Shifts, err = s.loadShifts(ctx); err != nil {
		return schedule.Snapshot{}, false, err
	}
	if snap.Entries, err = s.loadEntries(ctx); err != nil {
		return schedule.Snapshot{}, false, err
	}
	return snap, true, nil
}

// SavedAt returns when the plan was last saved.
func (s *Store) SavedAt(ctx context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM plan_meta WHERE key = 'saved_at'").Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, value)
	return t, err == nil, err
}

func (s *Store) loadEmployees(ctx context.Context) ([]schedule.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, region, vacation_entitlement FROM employees ORDER BY position",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []schedule.Employee{}
	for rows.Next() {
		var e schedule.Employee
		var id, region, entitlement string
		if err := rows.Scan(&id, &e.Name, &region, &entitlement); err != nil {
			return nil, err
		}
		e.ID = schedule.EmployeeID(id)
		e.Region = calendar.Region(region)
		if e.YearlyVacationEntitlement, err = decimal.NewFromString(entitlement); err != nil {
			return nil, fmt.Errorf("employee %s: entitlement: %w", id, err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) loadShifts(ctx context.Context) ([]schedule.Shift, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, start_time, end_time, color, hours FROM shifts ORDER BY position",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := []schedule.Shift{}
	for rows.Next() {
		var sh schedule.Shift
		var id, hours string
		if err := rows.Scan(&id, &sh.Name, &sh.StartTime, &sh.EndTime, &sh.Color, &hours); err != nil {
			return nil, err
		}
		sh.ID = schedule.ShiftID(id)
		if sh.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, fmt.Errorf("shift %s: hours: %w", id, err)
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func (s *Store) loadEntries(ctx context.Context) ([]schedule.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT employee_id, date, shift_id, absence, actual_hours FROM entries ORDER BY date, employee_id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []schedule.Entry{}
	for rows.Next() {
		var employeeID, date, shiftID, absence string
		var actual sql.NullString
		if err := rows.Scan(&employeeID, &date, &shiftID, &absence, &actual); err != nil {
			return nil, err
		}
		d, err := calendar.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", employeeID, err)
		}
		e := schedule.Entry{
			EmployeeID: schedule.EmployeeID(employeeID),
			Date:       d,
			ShiftID:    schedule.ShiftID(shiftID),
			Absence:    schedule.Absence(absence),
		}
		if actual.Valid {
			h, err := decimal.NewFromString(actual.String)
			if err != nil {
				return nil, fmt.Errorf("entry %s/%s: actual hours: %w", employeeID, date, err)
			}
			e.ActualHours = &h
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data, including the saved marker.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"entries", "employees", "shifts", "plan_meta"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		return nil
	})
}

// withTx executes fn within a database transaction. Callers hold s.mu.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(sqlTx); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func nullDecimal(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

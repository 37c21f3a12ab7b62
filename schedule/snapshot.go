package schedule

import (
	"fmt"
	"sort"
)

// Validate checks the structural invariants of a snapshot and reports every
// problem found. A nil error means Restore will accept it.
func (s Snapshot) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	employees := make(map[EmployeeID]bool, len(s.Employees))
	for i, e := range s.Employees {
		switch {
		case e.ID == "":
			add("employees[%d]: missing id", i)
		case employees[e.ID]:
			add("employees[%d]: duplicate id %q", i, e.ID)
		}
		employees[e.ID] = true
		if !e.Region.Valid() {
			add("employees[%d]: unknown region %q", i, e.Region)
		}
		if e.YearlyVacationEntitlement.IsNegative() {
			add("employees[%d]: negative vacation entitlement", i)
		}
	}

	shifts := make(map[ShiftID]bool, len(s.Shifts))
	for i, sh := range s.Shifts {
		switch {
		case sh.ID == "":
			add("shifts[%d]: missing id", i)
		case shifts[sh.ID]:
			add("shifts[%d]: duplicate id %q", i, sh.ID)
		}
		shifts[sh.ID] = true
		if sh.Hours.IsNegative() {
			add("shifts[%d]: negative hours", i)
		}
		if sh.StartTime != "" && !ValidClock(sh.StartTime) {
			add("shifts[%d]: bad start time %q", i, sh.StartTime)
		}
		if sh.EndTime != "" && !ValidClock(sh.EndTime) {
			add("shifts[%d]: bad end time %q", i, sh.EndTime)
		}
	}

	keys := make(map[EntryKey]bool, len(s.Entries))
	for i, e := range s.Entries {
		if !employees[e.EmployeeID] {
			add("entries[%d]: unknown employee %q", i, e.EmployeeID)
		}
		if e.Date.IsZero() {
			add("entries[%d]: missing date", i)
		}
		if keys[e.Key()] {
			add("entries[%d]: duplicate entry for %s on %s", i, e.EmployeeID, e.Date)
		}
		keys[e.Key()] = true
		if !e.Absence.Valid() {
			add("entries[%d]: unknown absence %q", i, e.Absence)
		}
		if e.ActualHours != nil && e.ActualHours.IsNegative() {
			add("entries[%d]: negative actual hours", i)
		}
		// Dangling shift ids are allowed: shifts are weak references.
	}

	if len(problems) > 0 {
		return &SnapshotError{Problems: problems}
	}
	return nil
}

// sortEntries orders entries by (date, employee id).
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].EmployeeID < entries[j].EmployeeID
	})
}

/*
Package schedule holds the shift plan: employees, shift definitions and the
sparse set of calendar entries that record what an employee does on a day.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: a person with a home region and a yearly vacation entitlement
  - Shift: a named shift definition with nominal hours
  - Entry: shift, absence and/or overridden hours for one (employee, date)
  - EntryPatch: a partial update merged onto an Entry

INVARIANTS:
  1. At most one Entry per (EmployeeID, Date)
  2. An Entry for which IsEffectivelyEmpty holds is never stored
  3. Entries reference shifts by id only. Deleting a shift leaves the id
     dangling; readers resolve it lazily and treat a miss as zero hours.

PRECISION:
  Hours and entitlements use decimal.Decimal so monthly sums stay exact.

SEE ALSO:
  - entry.go: Merge and IsEffectivelyEmpty
  - memory.go: In-memory Store
  - validator.go: Concurrent-vacation rule
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ShiftID string

// =============================================================================
// ABSENCE
// =============================================================================

type Absence string

const (
	AbsenceNone     Absence = "NONE"
	AbsenceVacation Absence = "VACATION"
	AbsenceSick     Absence = "SICK"
)

// IsSet reports whether the absence carries information. The empty value
// and AbsenceNone both mean "not absent".
func (a Absence) IsSet() bool { return a != "" && a != AbsenceNone }

func (a Absence) Valid() bool {
	switch a {
	case "", AbsenceNone, AbsenceVacation, AbsenceSick:
		return true
	}
	return false
}

// =============================================================================
// EMPLOYEE / SHIFT
// =============================================================================

type Employee struct {
	ID                        EmployeeID      `json:"id"`
	Name                      string          `json:"name"`
	Region                    calendar.Region `json:"region"`
	YearlyVacationEntitlement decimal.Decimal `json:"yearly_vacation_entitlement"`
}

// Shift is a shift definition. Color is display-only.
type Shift struct {
	ID        ShiftID         `json:"id"`
	Name      string          `json:"name"`
	StartTime string          `json:"start_time"` // "HH:MM"
	EndTime   string          `json:"end_time"`   // "HH:MM"
	Color     string          `json:"color"`
	Hours     decimal.Decimal `json:"hours"`
}

const clockLayout = "15:04"

// ValidClock reports whether s is a 24h "HH:MM" time of day.
func ValidClock(s string) bool {
	_, err := time.Parse(clockLayout, s)
	return err == nil
}

// =============================================================================
// ENTRY
// =============================================================================

type Entry struct {
	EmployeeID  EmployeeID       `json:"employee_id"`
	Date        calendar.Date    `json:"date"`
	ShiftID     ShiftID          `json:"shift_id,omitempty"`
	Absence     Absence          `json:"absence,omitempty"`
	ActualHours *decimal.Decimal `json:"actual_hours,omitempty"`
}

func (e Entry) Key() EntryKey { return EntryKey{EmployeeID: e.EmployeeID, Date: e.Date} }

func (e Entry) HasShift() bool       { return e.ShiftID != "" }
func (e Entry) HasActualHours() bool { return e.ActualHours != nil }
func (e Entry) IsVacation() bool     { return e.Absence == AbsenceVacation }
func (e Entry) IsSick() bool         { return e.Absence == AbsenceSick }

// EntryKey is the composite key of an entry.
type EntryKey struct {
	EmployeeID EmployeeID
	Date       calendar.Date
}

// EntryPatch is a partial update. A nil field leaves the stored value alone.
//
//	ShiftID:     pointer to "" clears the shift
//	Absence:     pointer to AbsenceNone clears the absence
//	ActualHours: set to override; ClearActualHours removes the override
type EntryPatch struct {
	ShiftID          *ShiftID
	Absence          *Absence
	ActualHours      *decimal.Decimal
	ClearActualHours bool
}

// Patch helpers mirroring the actions a planner takes on a single day.

// AssignShift sets the shift and clears any absence.
func AssignShift(id ShiftID) EntryPatch {
	none := AbsenceNone
	return EntryPatch{ShiftID: &id, Absence: &none}
}

// MarkAbsent sets the absence and clears the shift.
func MarkAbsent(a Absence) EntryPatch {
	noShift := ShiftID("")
	return EntryPatch{ShiftID: &noShift, Absence: &a}
}

// ManualHours records worked hours without a shift.
func ManualHours(hours decimal.Decimal) EntryPatch {
	noShift := ShiftID("")
	none := AbsenceNone
	return EntryPatch{ShiftID: &noShift, Absence: &none, ActualHours: &hours}
}

// ClearDay clears every field, which collapses the entry.
func ClearDay() EntryPatch {
	noShift := ShiftID("")
	none := AbsenceNone
	return EntryPatch{ShiftID: &noShift, Absence: &none, ClearActualHours: true}
}

// SetsVacation reports whether applying the patch marks the day as vacation.
func (p EntryPatch) SetsVacation() bool {
	return p.Absence != nil && *p.Absence == AbsenceVacation
}

// =============================================================================
// SNAPSHOT - Serializable plan state
// =============================================================================

// Snapshot is the full plan. It has the same shape on every read so that a
// save/load round trip preserves structural equality.
type Snapshot struct {
	Employees []Employee `json:"employees"`
	Shifts    []Shift    `json:"shifts"`
	Entries   []Entry    `json:"entries"`
}

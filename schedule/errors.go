/*
errors.go - Error types for the schedule

PURPOSE:
  All schedule errors in one place. Callers classify them with errors.Is
  or the helpers at the bottom of this file; the API maps the classes to
  HTTP status codes.

ERROR CATEGORIES:
  1. Rule errors - A business rule rejected the mutation (vacation cap)
  2. Lookup errors - Unknown employee or shift
  3. Input errors - Malformed entries or snapshots

USAGE:

    if errors.Is(err, schedule.ErrVacationCapExceeded) {
        var capErr *schedule.VacationCapError
        errors.As(err, &capErr)
        ...
    }
*/
package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shahabsali127/shiftplan/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrVacationCapExceeded is returned when too many other employees are
	// already on vacation for the requested date.
	ErrVacationCapExceeded = errors.New("vacation cap exceeded")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrShiftNotFound is returned when a referenced shift doesn't exist.
	ErrShiftNotFound = errors.New("shift not found")

	// ErrInvalidSnapshot is returned when a snapshot fails structural validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrInvalidEntry is returned for malformed employees, shifts or patches.
	ErrInvalidEntry = errors.New("invalid entry")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// VacationCapError provides details about a rejected vacation.
type VacationCapError struct {
	EmployeeID EmployeeID
	Date       calendar.Date
	OnVacation []EmployeeID // other employees already on vacation that day
	Limit      int
}

func (e *VacationCapError) Error() string {
	return fmt.Sprintf("vacation cap exceeded: %d other employees already on vacation on %s (limit %d)",
		len(e.OnVacation), e.Date, e.Limit)
}

func (e *VacationCapError) Unwrap() error {
	return ErrVacationCapExceeded
}

// SnapshotError lists every structural problem found in a snapshot.
type SnapshotError struct {
	Problems []string
}

func (e *SnapshotError) Error() string {
	return "invalid snapshot: " + strings.Join(e.Problems, "; ")
}

func (e *SnapshotError) Unwrap() error {
	return ErrInvalidSnapshot
}

func invalidEntry(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, fmt.Sprintf(format, args...))
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrShiftNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidSnapshot) ||
		errors.Is(err, ErrInvalidEntry)
}

// IsRuleViolation returns true if a business rule rejected the mutation.
func IsRuleViolation(err error) bool {
	return errors.Is(err, ErrVacationCapExceeded)
}

package schedule

import "github.com/shahabsali127/shiftplan/calendar"

// DefaultMaxConcurrentVacations is how many employees may be on vacation on
// the same date.
const DefaultMaxConcurrentVacations = 2

// CanApplyVacation reports whether employeeID may be marked on vacation on
// date: fewer than two other employees hold a VACATION entry that day.
func CanApplyVacation(employeeID EmployeeID, date calendar.Date, entries []Entry) bool {
	return len(othersOnVacation(employeeID, date, entries)) < DefaultMaxConcurrentVacations
}

// RuleValidator checks cross-entry business rules before a store write.
type RuleValidator struct {
	MaxConcurrentVacations int
}

func NewRuleValidator(maxConcurrentVacations int) RuleValidator {
	if maxConcurrentVacations <= 0 {
		maxConcurrentVacations = DefaultMaxConcurrentVacations
	}
	return RuleValidator{MaxConcurrentVacations: maxConcurrentVacations}
}

// Check validates applying patch to (employeeID, date) given the current
// entries. Patches that do not set VACATION always pass.
func (v RuleValidator) Check(employeeID EmployeeID, date calendar.Date, patch EntryPatch, entries []Entry) error {
	if !patch.SetsVacation() {
		return nil
	}
	limit := v.MaxConcurrentVacations
	if limit <= 0 {
		limit = DefaultMaxConcurrentVacations
	}

	others := othersOnVacation(employeeID, date, entries)
	if len(others) >= limit {
		return &VacationCapError{
			EmployeeID: employeeID,
			Date:       date,
			OnVacation: others,
			Limit:      limit,
		}
	}
	return nil
}

func othersOnVacation(employeeID EmployeeID, date calendar.Date, entries []Entry) []EmployeeID {
	var others []EmployeeID
	for _, e := range entries {
		if e.EmployeeID != employeeID && e.Date.Equal(date) && e.IsVacation() {
			others = append(others, e.EmployeeID)
		}
	}
	return others
}

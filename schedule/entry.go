package schedule

import "github.com/shopspring/decimal"

// Merge applies p onto base. Fields absent from the patch keep their value.
// Merge never collapses; callers check IsEffectivelyEmpty on the result.
func Merge(base Entry, p EntryPatch) Entry {
	out := base
	if p.ShiftID != nil {
		out.ShiftID = *p.ShiftID
	}
	if p.Absence != nil {
		out.Absence = *p.Absence
	}
	switch {
	case p.ActualHours != nil:
		h := *p.ActualHours
		out.ActualHours = &h
	case p.ClearActualHours:
		out.ActualHours = nil
	}
	if out.Absence == AbsenceNone {
		out.Absence = ""
	}
	return out
}

// IsEffectivelyEmpty reports whether e carries no information: no shift, no
// absence and no hours override. Such an entry is equivalent to no entry.
// An explicit override of zero hours still counts as information.
func IsEffectivelyEmpty(e Entry) bool {
	return e.ShiftID == "" && !e.Absence.IsSet() && e.ActualHours == nil
}

// Validate checks the patch fields for values the model cannot hold.
func (p EntryPatch) Validate() error {
	if p.Absence != nil && !p.Absence.Valid() {
		return invalidEntry("unknown absence %q", *p.Absence)
	}
	if p.ActualHours != nil && p.ActualHours.IsNegative() {
		return invalidEntry("actual hours must not be negative")
	}
	if p.ActualHours != nil && p.ClearActualHours {
		return invalidEntry("actual hours set and cleared in the same patch")
	}
	return nil
}

// Hours returns the hours an entry contributes when worked: the override
// if present, else the nominal hours of its shift, else zero. Absences are
// not considered here.
func Hours(e Entry, shifts map[ShiftID]Shift) decimal.Decimal {
	if e.ActualHours != nil {
		return *e.ActualHours
	}
	if e.ShiftID != "" {
		if s, ok := shifts[e.ShiftID]; ok {
			return s.Hours
		}
	}
	return decimal.Zero
}

// ShiftIndex keys shifts by id for lazy resolution of entry references.
func ShiftIndex(shifts []Shift) map[ShiftID]Shift {
	idx := make(map[ShiftID]Shift, len(shifts))
	for _, s := range shifts {
		idx[s.ID] = s
	}
	return idx
}

package schedule

import (
	"sync"

	"github.com/shahabsali127/shiftplan/calendar"
)

// =============================================================================
// STORE - Read/write surface of the schedule
// =============================================================================

// Store is the schedule's collection of employees, shifts and entries.
// Implementations enforce structural invariants only (key uniqueness,
// collapse on empty); business rules are checked by RuleValidator first.
type Store interface {
	UpsertEntry(employeeID EmployeeID, date calendar.Date, patch EntryPatch) (Entry, bool)
	ClearEntry(employeeID EmployeeID, date calendar.Date) bool
	FindEntry(employeeID EmployeeID, date calendar.Date) (Entry, bool)
	EntriesOn(date calendar.Date) []Entry
	EntriesBetween(from, to calendar.Date) []Entry

	SaveEmployee(e Employee)
	Employee(id EmployeeID) (Employee, bool)
	Employees() []Employee
	DeleteEmployee(id EmployeeID) bool

	SaveShift(s Shift)
	Shift(id ShiftID) (Shift, bool)
	Shifts() []Shift
	DeleteShift(id ShiftID) bool

	Snapshot() Snapshot
	Restore(s Snapshot) error
}

// =============================================================================
// MEMORY STORE - In-memory implementation
// =============================================================================

// Memory is the in-memory Store. Safe for concurrent use; WithTx groups
// several writes into one all-or-nothing unit.
type Memory struct {
	txMu sync.Mutex // serializes WithTx

	mu            sync.RWMutex
	employees     map[EmployeeID]Employee
	employeeOrder []EmployeeID
	shifts        map[ShiftID]Shift
	shiftOrder    []ShiftID
	entries       map[EntryKey]Entry
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[EmployeeID]Employee),
		shifts:    make(map[ShiftID]Shift),
		entries:   make(map[EntryKey]Entry),
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

// UpsertEntry merges patch onto the stored entry for (employeeID, date), or
// onto an empty entry if none exists. When the merged entry is effectively
// empty it is removed instead of written. It returns the merged entry and
// whether it is stored.
func (m *Memory) UpsertEntry(employeeID EmployeeID, date calendar.Date, patch EntryPatch) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := EntryKey{EmployeeID: employeeID, Date: date}
	base, ok := m.entries[k]
	if !ok {
		base = Entry{EmployeeID: employeeID, Date: date}
	}

	merged := Merge(base, patch)
	if IsEffectivelyEmpty(merged) {
		delete(m.entries, k)
		return merged, false
	}
	m.entries[k] = merged
	return detach(merged), true
}

// ClearEntry removes the entry for (employeeID, date). Returns false when
// there was nothing to remove.
func (m *Memory) ClearEntry(employeeID EmployeeID, date calendar.Date) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := EntryKey{EmployeeID: employeeID, Date: date}
	_, ok := m.entries[k]
	delete(m.entries, k)
	return ok
}

func (m *Memory) FindEntry(employeeID EmployeeID, date calendar.Date) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[EntryKey{EmployeeID: employeeID, Date: date}]
	return detach(e), ok
}

// EntriesOn returns every entry on date, ordered by employee id.
func (m *Memory) EntriesOn(date calendar.Date) []Entry {
	return m.EntriesBetween(date, date)
}

// EntriesBetween returns the entries in [from, to], ordered by (date, employee id).
func (m *Memory) EntriesBetween(from, to calendar.Date) []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Entry
	for _, e := range m.entries {
		if e.Date.AfterOrEqual(from) && e.Date.BeforeOrEqual(to) {
			out = append(out, detach(e))
		}
	}
	sortEntries(out)
	return out
}

// Entries returns all entries, ordered by (date, employee id).
func (m *Memory) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entriesLocked()
}

func (m *Memory) entriesLocked() []Entry {
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, detach(e))
	}
	sortEntries(out)
	return out
}

// detach copies the hours override so no caller shares it with the store.
func detach(e Entry) Entry {
	if e.ActualHours != nil {
		h := *e.ActualHours
		e.ActualHours = &h
	}
	return e
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or replaces an employee. New employees are appended
// to the listing order.
func (m *Memory) SaveEmployee(e Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[e.ID]; !ok {
		m.employeeOrder = append(m.employeeOrder, e.ID)
	}
	m.employees[e.ID] = e
}

func (m *Memory) Employee(id EmployeeID) (Employee, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.employees[id]
	return e, ok
}

func (m *Memory) Employees() []Employee {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Employee, 0, len(m.employeeOrder))
	for _, id := range m.employeeOrder {
		out = append(out, m.employees[id])
	}
	return out
}

// DeleteEmployee removes the employee and every entry keyed to it.
func (m *Memory) DeleteEmployee(id EmployeeID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.employees[id]
	delete(m.employees, id)
	m.employeeOrder = without(m.employeeOrder, id)

	// Cascade even when the employee itself is unknown, so no orphan survives.
	for k := range m.entries {
		if k.EmployeeID == id {
			delete(m.entries, k)
		}
	}
	return ok
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) SaveShift(s Shift) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[s.ID]; !ok {
		m.shiftOrder = append(m.shiftOrder, s.ID)
	}
	m.shifts[s.ID] = s
}

func (m *Memory) Shift(id ShiftID) (Shift, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	return s, ok
}

func (m *Memory) Shifts() []Shift {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Shift, 0, len(m.shiftOrder))
	for _, id := range m.shiftOrder {
		out = append(out, m.shifts[id])
	}
	return out
}

// DeleteShift removes the shift definition. Entries referencing it are kept
// and resolve to zero hours from then on.
func (m *Memory) DeleteShift(id ShiftID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.shifts[id]
	delete(m.shifts, id)
	m.shiftOrder = without(m.shiftOrder, id)
	return ok
}

// =============================================================================
// SNAPSHOT / RESTORE
// =============================================================================

// Snapshot returns a deep copy of the whole plan.
func (m *Memory) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Memory) snapshotLocked() Snapshot {
	s := Snapshot{
		Employees: make([]Employee, 0, len(m.employeeOrder)),
		Shifts:    make([]Shift, 0, len(m.shiftOrder)),
		Entries:   m.entriesLocked(),
	}
	for _, id := range m.employeeOrder {
		s.Employees = append(s.Employees, m.employees[id])
	}
	for _, id := range m.shiftOrder {
		s.Shifts = append(s.Shifts, m.shifts[id])
	}
	return s
}

// Restore replaces the whole plan with s. The snapshot is validated first;
// on error the store is left untouched. Entries that are effectively empty
// are dropped.
func (m *Memory) Restore(s Snapshot) error {
	if err := s.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreLocked(s)
	return nil
}

func (m *Memory) restoreLocked(s Snapshot) {
	m.employees = make(map[EmployeeID]Employee, len(s.Employees))
	m.employeeOrder = make([]EmployeeID, 0, len(s.Employees))
	for _, e := range s.Employees {
		m.employees[e.ID] = e
		m.employeeOrder = append(m.employeeOrder, e.ID)
	}

	m.shifts = make(map[ShiftID]Shift, len(s.Shifts))
	m.shiftOrder = make([]ShiftID, 0, len(s.Shifts))
	for _, sh := range s.Shifts {
		m.shifts[sh.ID] = sh
		m.shiftOrder = append(m.shiftOrder, sh.ID)
	}

	m.entries = make(map[EntryKey]Entry, len(s.Entries))
	for _, e := range s.Entries {
		e = Merge(e, EntryPatch{})
		if IsEffectivelyEmpty(e) {
			continue
		}
		m.entries[e.Key()] = detach(e)
	}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn as one unit. Every change fn makes through m is rolled
// back when fn returns an error. Transactions are serialized with each other;
// writes made outside WithTx are not isolated from a running transaction.
func (m *Memory) WithTx(fn func(tx *Memory) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	before := m.Snapshot()
	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restoreLocked(before)
		m.mu.Unlock()
		return err
	}
	return nil
}

func without[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

/*
Package planner is the host service around the schedule core.

FLOW OF A MUTATION:

	caller -> Planner (lock) -> RuleValidator.Check against current entries
	       -> Memory.WithTx { write -> Persister.Save }
	       -> unlock

	A rule rejection happens before any write. A failed Save rolls the
	in-memory change back, so memory and storage never diverge.

READS:
  Reads go straight to the memory store, which guards itself. Reports are
  recomputed on every call.

ADVISOR:
  Ask snapshots the plan and releases the lock before calling out, so a
  slow advisory service never blocks edits.

SEE ALSO:
  - schedule/memory.go: Live plan and WithTx
  - store/sqlite/sqlite.go: Persister implementation
  - report/monthly.go: Stats and weekend rollup
*/
package planner

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shahabsali127/shiftplan/advisor"
	"github.com/shahabsali127/shiftplan/calendar"
	"github.com/shahabsali127/shiftplan/logger"
	"github.com/shahabsali127/shiftplan/metrics"
	"github.com/shahabsali127/shiftplan/report"
	"github.com/shahabsali127/shiftplan/schedule"
)

// Persister stores committed snapshots.
type Persister interface {
	Load(ctx context.Context) (schedule.Snapshot, bool, error)
	Save(ctx context.Context, snap schedule.Snapshot) error
}

// Options configure a Planner. Zero values are usable.
type Options struct {
	Persister              Persister // nil keeps the plan in memory only
	Advisor                *advisor.Advisor
	Calendar               *calendar.Calendar
	MaxConcurrentVacations int
	Logger                 logger.Logger
	Metrics                *metrics.Recorder
}

// Planner serializes every mutation of the plan.
type Planner struct {
	mu      sync.Mutex
	store   *schedule.Memory
	rules   schedule.RuleValidator
	cal     *calendar.Calendar
	persist Persister
	advisor *advisor.Advisor
	log     logger.Logger
	metrics *metrics.Recorder
}

// Open restores the persisted plan, or seeds and saves DefaultSnapshot when
// nothing was stored yet.
func Open(ctx context.Context, opts Options) (*Planner, error) {
	p := &Planner{
		store:   schedule.NewMemory(),
		rules:   schedule.NewRuleValidator(opts.MaxConcurrentVacations),
		cal:     opts.Calendar,
		persist: opts.Persister,
		advisor: opts.Advisor,
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	if p.cal == nil {
		p.cal = calendar.New()
	}
	if p.log == nil {
		p.log = logger.NopLogger{}
	}
	if p.advisor == nil {
		p.advisor = advisor.New(nil, 0, p.log, p.metrics)
	}

	if p.persist != nil {
		snap, found, err := p.persist.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		if found {
			if err := p.store.Restore(snap); err != nil {
				return nil, fmt.Errorf("stored plan: %w", err)
			}
			p.log.Infof("restored plan: %d employees, %d shifts, %d entries",
				len(snap.Employees), len(snap.Shifts), len(snap.Entries))
			p.publishSize()
			return p, nil
		}
	}

	if err := p.Import(ctx, DefaultSnapshot()); err != nil {
		return nil, fmt.Errorf("seed plan: %w", err)
	}
	p.log.Infof("seeded default plan")
	return p, nil
}

// =============================================================================
// MUTATION PLUMBING
// =============================================================================

// mutate runs fn and the save inside one memory transaction under the lock.
func (p *Planner) mutate(ctx context.Context, op string, fn func(m *schedule.Memory) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.store.WithTx(func(tx *schedule.Memory) error {
		if err := fn(tx); err != nil {
			return err
		}
		if p.persist == nil {
			return nil
		}
		if err := p.persist.Save(ctx, tx.Snapshot()); err != nil {
			p.metrics.RecordPersistFailure()
			return fmt.Errorf("persist plan: %w", err)
		}
		return nil
	})

	p.metrics.RecordMutation(op, outcome(err))
	if err != nil {
		if schedule.IsRuleViolation(err) || schedule.IsNotFound(err) || schedule.IsClientError(err) {
			p.log.Debugf("%s refused: %v", op, err)
		} else {
			p.log.Errorf("%s failed: %v", op, err)
		}
		return err
	}
	p.publishSize()
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case schedule.IsRuleViolation(err):
		return "rejected"
	case schedule.IsNotFound(err):
		return "not_found"
	case schedule.IsClientError(err):
		return "invalid"
	default:
		return "error"
	}
}

func (p *Planner) publishSize() {
	if p.metrics == nil {
		return
	}
	snap := p.store.Snapshot()
	p.metrics.SetPlanSize(len(snap.Employees), len(snap.Shifts), len(snap.Entries))
}

// =============================================================================
// ENTRIES
// =============================================================================

// UpdateEntry merges patch onto the entry of (employeeID, date). It returns
// the resulting entry and whether it is stored; a patch that empties the
// entry removes it.
func (p *Planner) UpdateEntry(ctx context.Context, employeeID schedule.EmployeeID, date calendar.Date, patch schedule.EntryPatch) (schedule.Entry, bool, error) {
	if err := patch.Validate(); err != nil {
		return schedule.Entry{}, false, err
	}

	var entry schedule.Entry
	var stored bool
	err := p.mutate(ctx, "update_entry", func(m *schedule.Memory) error {
		if _, ok := m.Employee(employeeID); !ok {
			return fmt.Errorf("%w: %s", schedule.ErrEmployeeNotFound, employeeID)
		}
		if patch.ShiftID != nil && *patch.ShiftID != "" {
			if _, ok := m.Shift(*patch.ShiftID); !ok {
				return fmt.Errorf("%w: %s", schedule.ErrShiftNotFound, *patch.ShiftID)
			}
		}
		if err := p.rules.Check(employeeID, date, patch, m.EntriesOn(date)); err != nil {
			return err
		}
		entry, stored = m.UpsertEntry(employeeID, date, patch)
		return nil
	})
	if err != nil {
		return schedule.Entry{}, false, err
	}
	return entry, stored, nil
}

// ClearEntry removes the entry of (employeeID, date). Returns false when
// there was none.
func (p *Planner) ClearEntry(ctx context.Context, employeeID schedule.EmployeeID, date calendar.Date) (bool, error) {
	var removed bool
	err := p.mutate(ctx, "clear_entry", func(m *schedule.Memory) error {
		if _, ok := m.Employee(employeeID); !ok {
			return fmt.Errorf("%w: %s", schedule.ErrEmployeeNotFound, employeeID)
		}
		removed = m.ClearEntry(employeeID, date)
		return nil
	})
	return removed, err
}

func (p *Planner) FindEntry(employeeID schedule.EmployeeID, date calendar.Date) (schedule.Entry, bool) {
	return p.store.FindEntry(employeeID, date)
}

// CanApplyVacation reports whether a vacation for (employeeID, date) would
// pass the configured cap right now.
func (p *Planner) CanApplyVacation(employeeID schedule.EmployeeID, date calendar.Date) bool {
	return p.rules.Check(employeeID, date, schedule.MarkAbsent(schedule.AbsenceVacation), p.store.EntriesOn(date)) == nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeInput holds the editable employee fields.
type EmployeeInput struct {
	Name                      string
	Region                    calendar.Region
	YearlyVacationEntitlement decimal.Decimal
}

func (in EmployeeInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: employee name is required", schedule.ErrInvalidEntry)
	case !in.Region.Valid():
		return fmt.Errorf("%w: unknown region %q", schedule.ErrInvalidEntry, in.Region)
	case in.YearlyVacationEntitlement.IsNegative():
		return fmt.Errorf("%w: vacation entitlement must not be negative", schedule.ErrInvalidEntry)
	}
	return nil
}

func (p *Planner) CreateEmployee(ctx context.Context, in EmployeeInput) (schedule.Employee, error) {
	if err := in.validate(); err != nil {
		return schedule.Employee{}, err
	}
	emp := schedule.Employee{
		ID:                        schedule.EmployeeID(uuid.NewString()),
		Name:                      strings.TrimSpace(in.Name),
		Region:                    in.Region,
		YearlyVacationEntitlement: in.YearlyVacationEntitlement,
	}
	err := p.mutate(ctx, "create_employee", func(m *schedule.Memory) error {
		m.SaveEmployee(emp)
		return nil
	})
	return emp, err
}

func (p *Planner) UpdateEmployee(ctx context.Context, id schedule.EmployeeID, in EmployeeInput) (schedule.Employee, error) {
	if err := in.validate(); err != nil {
		return schedule.Employee{}, err
	}
	emp := schedule.Employee{
		ID:                        id,
		Name:                      strings.TrimSpace(in.Name),
		Region:                    in.Region,
		YearlyVacationEntitlement: in.YearlyVacationEntitlement,
	}
	err := p.mutate(ctx, "update_employee", func(m *schedule.Memory) error {
		if _, ok := m.Employee(id); !ok {
			return fmt.Errorf("%w: %s", schedule.ErrEmployeeNotFound, id)
		}
		m.SaveEmployee(emp)
		return nil
	})
	return emp, err
}

// DeleteEmployee removes the employee together with all their entries.
func (p *Planner) DeleteEmployee(ctx context.Context, id schedule.EmployeeID) error {
	return p.mutate(ctx, "delete_employee", func(m *schedule.Memory) error {
		if !m.DeleteEmployee(id) {
			return fmt.Errorf("%w: %s", schedule.ErrEmployeeNotFound, id)
		}
		return nil
	})
}

func (p *Planner) Employee(id schedule.EmployeeID) (schedule.Employee, bool) {
	return p.store.Employee(id)
}

func (p *Planner) Employees() []schedule.Employee {
	return p.store.Employees()
}

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftInput holds the editable shift fields.
type ShiftInput struct {
	Name      string
	StartTime string
	EndTime   string
	Color     string
	Hours     decimal.Decimal
}

func (in ShiftInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: shift name is required", schedule.ErrInvalidEntry)
	case !schedule.ValidClock(in.StartTime):
		return fmt.Errorf("%w: bad start time %q", schedule.ErrInvalidEntry, in.StartTime)
	case !schedule.ValidClock(in.EndTime):
		return fmt.Errorf("%w: bad end time %q", schedule.ErrInvalidEntry, in.EndTime)
	case in.Hours.IsNegative():
		return fmt.Errorf("%w: shift hours must not be negative", schedule.ErrInvalidEntry)
	}
	return nil
}

func (in ShiftInput) shift(id schedule.ShiftID) schedule.Shift {
	return schedule.Shift{
		ID:        id,
		Name:      strings.TrimSpace(in.Name),
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Color:     in.Color,
		Hours:     in.Hours,
	}
}

func (p *Planner) CreateShift(ctx context.Context, in ShiftInput) (schedule.Shift, error) {
	if err := in.validate(); err != nil {
		return schedule.Shift{}, err
	}
	sh := in.shift(schedule.ShiftID(uuid.NewString()))
	err := p.mutate(ctx, "create_shift", func(m *schedule.Memory) error {
		m.SaveShift(sh)
		return nil
	})
	return sh, err
}

func (p *Planner) UpdateShift(ctx context.Context, id schedule.ShiftID, in ShiftInput) (schedule.Shift, error) {
	if err := in.validate(); err != nil {
		return schedule.Shift{}, err
	}
	sh := in.shift(id)
	err := p.mutate(ctx, "update_shift", func(m *schedule.Memory) error {
		if _, ok := m.Shift(id); !ok {
			return fmt.Errorf("%w: %s", schedule.ErrShiftNotFound, id)
		}
		m.SaveShift(sh)
		return nil
	})
	return sh, err
}

// DeleteShift removes a shift definition. Entries referencing it are kept
// and count zero hours unless they carry an override.
func (p *Planner) DeleteShift(ctx context.Context, id schedule.ShiftID) error {
	return p.mutate(ctx, "delete_shift", func(m *schedule.Memory) error {
		if !m.DeleteShift(id) {
			return fmt.Errorf("%w: %s", schedule.ErrShiftNotFound, id)
		}
		return nil
	})
}

func (p *Planner) Shifts() []schedule.Shift {
	return p.store.Shifts()
}

// =============================================================================
// WHOLE PLAN
// =============================================================================

func (p *Planner) Snapshot() schedule.Snapshot {
	return p.store.Snapshot()
}

// Import replaces the whole plan. Malformed snapshots are rejected before
// anything changes.
func (p *Planner) Import(ctx context.Context, snap schedule.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	return p.mutate(ctx, "import", func(m *schedule.Memory) error {
		return m.Restore(snap)
	})
}

// LoadScenario replaces the plan with a built-in scenario.
func (p *Planner) LoadScenario(ctx context.Context, id string) error {
	sc, ok := FindScenario(id)
	if !ok {
		return fmt.Errorf("%w: unknown scenario %q", schedule.ErrInvalidEntry, id)
	}
	p.log.Infof("loading scenario %s", sc.ID)
	return p.Import(ctx, sc.Snapshot())
}

// Reset restores the default plan.
func (p *Planner) Reset(ctx context.Context) error {
	return p.LoadScenario(ctx, DefaultScenarioID)
}

// =============================================================================
// QUERIES
// =============================================================================

func (p *Planner) Holidays(year int, region calendar.Region) []calendar.Holiday {
	return p.cal.Holidays(year, region)
}

// VacationBalance returns the employee's vacation usage in year.
func (p *Planner) VacationBalance(id schedule.EmployeeID, year int) (report.VacationBalance, error) {
	emp, ok := p.store.Employee(id)
	if !ok {
		return report.VacationBalance{}, fmt.Errorf("%w: %s", schedule.ErrEmployeeNotFound, id)
	}
	from := calendar.NewDate(year, 1, 1)
	to := calendar.NewDate(year, 12, 31)
	return report.ComputeVacationBalance(emp, p.store.EntriesBetween(from, to), year), nil
}

// =============================================================================
// ADVISOR
// =============================================================================

// Ask sends the current plan and query to the advisory service.
func (p *Planner) Ask(ctx context.Context, query string) (string, error) {
	return p.advisor.Analyze(ctx, p.store.Snapshot(), query)
}

// ResearchHolidays asks the advisory service for the holidays of region.
func (p *Planner) ResearchHolidays(ctx context.Context, year int, region calendar.Region) (string, error) {
	return p.advisor.ResearchHolidays(ctx, year, region)
}

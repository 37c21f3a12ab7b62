package calendar

import (
	"sync"

	"github.com/rickar/cal/v2"
)

// =============================================================================
// HOLIDAY CALENDAR - Region-aware holiday lookup
// =============================================================================

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	// IsHoliday checks if a date is a public holiday in the region.
	IsHoliday(region Region, date Date) bool

	// Holidays returns all holidays of the region in a given year.
	Holidays(year int, region Region) []Holiday
}

// HolidaySet is a set of holiday dates keyed by civil date.
type HolidaySet map[Date]Holiday

// NewHolidaySet indexes holidays by date. When two fall on the same date the
// first one wins.
func NewHolidaySet(holidays ...Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		if _, ok := set[h.Date]; !ok {
			set[h.Date] = h
		}
	}
	return set
}

func (s HolidaySet) Contains(d Date) bool { _, ok := s[d]; return ok }

// Lookup returns the holiday on d, if any.
func (s HolidaySet) Lookup(d Date) (Holiday, bool) {
	h, ok := s[d]
	return h, ok
}

// Calendar answers date lookups from one cal.BusinessCalendar per region
// and memoizes whole-year holiday sets. Safe for concurrent use; the
// business calendars are never modified after New.
type Calendar struct {
	business   map[Region]*cal.BusinessCalendar
	nationwide *cal.BusinessCalendar

	mu    sync.RWMutex
	cache map[cacheKey]HolidaySet
}

type cacheKey struct {
	year   int
	region Region
}

func New() *Calendar {
	c := &Calendar{
		business:   make(map[Region]*cal.BusinessCalendar, len(Regions())),
		nationwide: businessCalendar(""),
		cache:      make(map[cacheKey]HolidaySet),
	}
	for _, r := range Regions() {
		c.business[r] = businessCalendar(r)
	}
	return c
}

// businessCalendar holds the rules observed in region, in table order.
func businessCalendar(region Region) *cal.BusinessCalendar {
	bc := cal.NewBusinessCalendar()
	for _, r := range rules {
		if r.observedIn(region) {
			bc.AddHoliday(r.holiday)
		}
	}
	return bc
}

// Compile-time check that Calendar implements HolidayCalendar
var _ HolidayCalendar = (*Calendar)(nil)

func (c *Calendar) IsHoliday(region Region, date Date) bool {
	_, ok := c.Holiday(region, date)
	return ok
}

// Holiday returns the holiday on date in region, if any. Unknown regions
// see the nationwide holidays only.
func (c *Calendar) Holiday(region Region, date Date) (Holiday, bool) {
	bc, ok := c.business[region]
	if !ok {
		bc = c.nationwide
	}
	actual, _, h := bc.IsHoliday(date.Time())
	if !actual || h == nil {
		return Holiday{}, false
	}
	return Holiday{Key: ruleKeys[h], Date: date, Name: h.Name}, true
}

func (c *Calendar) Holidays(year int, region Region) []Holiday {
	return ComputeHolidays(year, region)
}

// HolidaySet returns the memoized holiday set of region in year. Callers
// must not modify it.
func (c *Calendar) HolidaySet(year int, region Region) HolidaySet {
	k := cacheKey{year: year, region: region}

	c.mu.RLock()
	s, ok := c.cache[k]
	c.mu.RUnlock()
	if ok {
		return s
	}

	s = NewHolidaySet(ComputeHolidays(year, region)...)
	c.mu.Lock()
	c.cache[k] = s
	c.mu.Unlock()
	return s
}

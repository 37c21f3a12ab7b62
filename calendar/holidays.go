/*
holidays.go - Public holiday rules for the German federal states

PURPOSE:
  Computes the statutory public holidays of one region for one year.
  Holidays are recomputed on every call; nothing here is persisted.

RULE TABLE:
  Each rule is static data: a key, the regions observing it (nil =
  nationwide) and a *cal.Holiday whose HolidayFn yields the date. Three
  date kinds exist side by side:
    fixed(month, day)              e.g. New Year, Reformation Day
    easterOffset(n)                e.g. Good Friday (-2), Whit Monday (+50)
    weekdayBefore(month, day, wd)  e.g. Day of Repentance and Prayer

  Adding a holiday means adding one row. There are no per-region types.

SEE ALSO:
  - easter.go: Easter Sunday anchor
  - calendar.go: cal.BusinessCalendar per region
*/
package calendar

import (
	"sort"
	"time"

	"github.com/rickar/cal/v2"
)

// Holiday is a public holiday on a civil date.
type Holiday struct {
	Key  string `json:"key"`
	Date Date   `json:"date"`
	Name string `json:"name"`
}

// dateFunc computes the rule's date in year, given that year's Easter Sunday.
type dateFunc func(year int, easter Date) Date

type rule struct {
	key     string
	regions map[Region]bool // nil = every region
	holiday *cal.Holiday
}

func newRule(key, name string, date dateFunc, rs map[Region]bool) rule {
	return rule{
		key:     key,
		regions: rs,
		holiday: &cal.Holiday{
			Name: name,
			Type: cal.ObservancePublic,
			Func: func(_ *cal.Holiday, year int) time.Time {
				return date(year, EasterSunday(year)).Time()
			},
		},
	}
}

func (r rule) observedIn(region Region) bool {
	return r.regions == nil || r.regions[region]
}

func fixed(month time.Month, day int) dateFunc {
	return func(year int, _ Date) Date { return NewDate(year, month, day) }
}

func easterOffset(days int) dateFunc {
	return func(_ int, easter Date) Date { return easter.AddDays(days) }
}

// weekdayBefore yields the last weekday strictly before month/day. When
// month/day itself falls on weekday, the result is one week earlier.
func weekdayBefore(month time.Month, day int, weekday time.Weekday) dateFunc {
	return func(year int, _ Date) Date {
		anchor := NewDate(year, month, day)
		back := (int(anchor.Weekday()) - int(weekday) + 7) % 7
		if back == 0 {
			back = 7
		}
		return anchor.AddDays(-back)
	}
}

func regions(rs ...Region) map[Region]bool {
	set := make(map[Region]bool, len(rs))
	for _, r := range rs {
		set[r] = true
	}
	return set
}

var rules = []rule{
	// Nationwide
	newRule("new_year", "Neujahr", fixed(time.January, 1), nil),
	newRule("good_friday", "Karfreitag", easterOffset(-2), nil),
	newRule("easter_monday", "Ostermontag", easterOffset(1), nil),
	newRule("labour_day", "Tag der Arbeit", fixed(time.May, 1), nil),
	newRule("ascension_day", "Christi Himmelfahrt", easterOffset(39), nil),
	newRule("whit_monday", "Pfingstmontag", easterOffset(50), nil),
	newRule("german_unity_day", "Tag der Deutschen Einheit", fixed(time.October, 3), nil),
	newRule("christmas_day", "1. Weihnachtstag", fixed(time.December, 25), nil),
	newRule("boxing_day", "2. Weihnachtstag", fixed(time.December, 26), nil),

	// Regional
	newRule("epiphany", "Heilige Drei Könige", fixed(time.January, 6),
		regions(BadenWuerttemberg, Bavaria, SaxonyAnhalt)),
	newRule("corpus_christi", "Fronleichnam", easterOffset(60),
		regions(BadenWuerttemberg, Bavaria, Hesse, NorthRhineWestphalia, RhinelandPalatinate, Saarland)),
	newRule("assumption_day", "Mariä Himmelfahrt", fixed(time.August, 15),
		regions(Bavaria, Saarland)),
	newRule("reformation_day", "Reformationstag", fixed(time.October, 31),
		regions(Brandenburg, MecklenburgVorpommern, Saxony, SaxonyAnhalt, Thuringia,
			LowerSaxony, SchleswigHolstein, Hamburg, Bremen)),
	newRule("all_saints_day", "Allerheiligen", fixed(time.November, 1),
		regions(BadenWuerttemberg, Bavaria, NorthRhineWestphalia, RhinelandPalatinate, Saarland)),
	newRule("repentance_day", "Buß- und Bettag", weekdayBefore(time.November, 23, time.Wednesday),
		regions(Saxony)),
}

// ruleKeys maps each rule's holiday back to its key.
var ruleKeys = func() map[*cal.Holiday]string {
	keys := make(map[*cal.Holiday]string, len(rules))
	for _, r := range rules {
		keys[r.holiday] = r.key
	}
	return keys
}()

// ComputeHolidays returns the holidays observed in region during year,
// ordered by date. It is pure and never fails; unknown regions get the
// nationwide holidays only.
func ComputeHolidays(year int, region Region) []Holiday {
	holidays := make([]Holiday, 0, len(rules))
	for _, r := range rules {
		if !r.observedIn(region) {
			continue
		}
		actual, _ := r.holiday.Calc(year)
		holidays = append(holidays, Holiday{Key: r.key, Date: DateOf(actual), Name: r.holiday.Name})
	}

	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
	return holidays
}

// ObservingRegions returns the regions that observe the holiday with key,
// or nil when no rule has that key.
func ObservingRegions(key string) []Region {
	for _, r := range rules {
		if r.key != key {
			continue
		}
		var out []Region
		for _, region := range Regions() {
			if r.observedIn(region) {
				out = append(out, region)
			}
		}
		return out
	}
	return nil
}

package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahabsali127/shiftplan/calendar"
)

func TestDate_IgnoresTimeOfDay(t *testing.T) {
	morning := calendar.DateOf(time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC))
	evening := calendar.DateOf(time.Date(2026, 3, 10, 23, 59, 0, 0, time.FixedZone("CET", 3600)))

	assert.Equal(t, morning, evening)
	assert.True(t, morning == evening, "dates must be comparable with ==")

	set := map[calendar.Date]bool{morning: true}
	assert.True(t, set[evening])
}

func TestDate_ParseAndFormat(t *testing.T) {
	d, err := calendar.ParseDate("2026-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", d.String())
	assert.Equal(t, "2026-03-01", d.AddDays(1).String())

	_, err = calendar.ParseDate("28.02.2026")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Day calendar.Date `json:"day"`
	}
	b, err := json.Marshal(wrapper{Day: calendar.NewDate(2026, time.January, 6)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2026-01-06"}`, string(b))

	var out wrapper
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, calendar.NewDate(2026, time.January, 6), out.Day)

	assert.Error(t, json.Unmarshal([]byte(`{"day":"tomorrow"}`), &out))
}

func TestMonthDays(t *testing.T) {
	assert.Len(t, calendar.MonthDays(2026, time.February), 28)
	assert.Len(t, calendar.MonthDays(2028, time.February), 29)
	assert.Len(t, calendar.MonthDays(2026, time.November), 30)

	days := calendar.MonthDays(2026, time.December)
	require.Len(t, days, 31)
	assert.Equal(t, "2026-12-01", days[0].String())
	assert.Equal(t, "2026-12-31", days[30].String())
}

func TestDate_IsWeekend(t *testing.T) {
	assert.True(t, calendar.MustParseDate("2026-01-03").IsWeekend())  // Saturday
	assert.True(t, calendar.MustParseDate("2026-01-04").IsWeekend())  // Sunday
	assert.False(t, calendar.MustParseDate("2026-01-05").IsWeekend()) // Monday
}

func TestParseRegion(t *testing.T) {
	r, err := calendar.ParseRegion("by")
	require.NoError(t, err)
	assert.Equal(t, calendar.Bavaria, r)

	r, err = calendar.ParseRegion("Baden-Württemberg")
	require.NoError(t, err)
	assert.Equal(t, calendar.BadenWuerttemberg, r)

	_, err = calendar.ParseRegion("Texas")
	assert.Error(t, err)

	assert.Len(t, calendar.Regions(), 16)
	for _, region := range calendar.Regions() {
		assert.True(t, region.Valid())
	}
}

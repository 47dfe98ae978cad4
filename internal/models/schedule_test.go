package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, raw string) TimeOfDay {
	t.Helper()
	parsed, err := ParseTimeOfDay(raw)
	require.NoError(t, err)
	return parsed
}

func TestParseTimeOfDay(t *testing.T) {
	parsed, err := ParseTimeOfDay("08:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(480), parsed)
	assert.Equal(t, "08:00", parsed.String())

	withSeconds, err := ParseTimeOfDay("13:45:00")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(13*60+45), withSeconds)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("nope")
	assert.Error(t, err)
}

func TestTimeOfDayAdd(t *testing.T) {
	start := mustTime(t, "08:00")
	assert.Equal(t, "08:45", start.Add(45).String())
	assert.Equal(t, "09:00", start.Add(60).String())
}

func TestTimeOfDayScan(t *testing.T) {
	var tod TimeOfDay
	require.NoError(t, tod.Scan(time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, "10:30", tod.String())

	require.NoError(t, tod.Scan([]byte("07:15:00")))
	assert.Equal(t, "07:15", tod.String())

	require.NoError(t, tod.Scan("14:00"))
	assert.Equal(t, "14:00", tod.String())

	assert.Error(t, tod.Scan(42))
}

func TestTimeSlotOverlaps(t *testing.T) {
	base := TimeSlot{Day: Monday, Start: mustTime(t, "08:00"), End: mustTime(t, "08:45")}

	overlapping := TimeSlot{Day: Monday, Start: mustTime(t, "08:30"), End: mustTime(t, "09:15")}
	assert.True(t, base.Overlaps(overlapping))
	assert.True(t, overlapping.Overlaps(base), "overlap is symmetric")

	contained := TimeSlot{Day: Monday, Start: mustTime(t, "08:10"), End: mustTime(t, "08:20")}
	assert.True(t, base.Overlaps(contained))
	assert.True(t, contained.Overlaps(base))
}

func TestTimeSlotBoundaryDoesNotOverlap(t *testing.T) {
	first := TimeSlot{Day: Monday, Start: mustTime(t, "08:00"), End: mustTime(t, "08:45")}
	adjacent := TimeSlot{Day: Monday, Start: mustTime(t, "08:45"), End: mustTime(t, "09:30")}

	assert.False(t, first.Overlaps(adjacent), "slot ending when another begins must not collide")
	assert.False(t, adjacent.Overlaps(first))
}

func TestTimeSlotDifferentDaysNeverOverlap(t *testing.T) {
	monday := TimeSlot{Day: Monday, Start: mustTime(t, "08:00"), End: mustTime(t, "08:45")}
	tuesday := TimeSlot{Day: Tuesday, Start: mustTime(t, "08:00"), End: mustTime(t, "08:45")}
	assert.False(t, monday.Overlaps(tuesday))
}

func TestSchoolWeekOrder(t *testing.T) {
	require.Len(t, SchoolWeek, 5)
	assert.Equal(t, Monday, SchoolWeek[0])
	assert.Equal(t, Friday, SchoolWeek[4])
	for i := 1; i < len(SchoolWeek); i++ {
		assert.Greater(t, SchoolWeek[i].Ordinal(), SchoolWeek[i-1].Ordinal())
	}
}

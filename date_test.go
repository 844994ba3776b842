package calremind_test

import (
	"testing"
	"time"

	"github.com/guilherme-santos/calremind"

	"github.com/stretchr/testify/assert"
)

func TestNextDayWindow(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, time.January, 1, 15, 0, 0, 0, loc)
	from, to := calremind.NextDayWindow(now)

	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, time.January, 2, 23, 59, 59, 0, loc), to)
}

func TestNextDayWindow_TimeOfDayIrrelevant(t *testing.T) {
	for _, hour := range []int{0, 11, 23} {
		now := time.Date(2024, time.March, 10, hour, 30, 0, 0, time.UTC)
		from, to := calremind.NextDayWindow(now)

		assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2024, time.March, 11, 23, 59, 59, 0, time.UTC), to)
	}
}

func TestNextDayWindow_DSTTransitions(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}

	// 2026-03-29 is a 23-hour day (clocks jump 02:00 -> 03:00); the window
	// must still end at 23:59:59 of that day, not spill into the 30th.
	now := time.Date(2026, time.March, 28, 12, 0, 0, 0, loc)
	from, to := calremind.NextDayWindow(now)
	assert.Equal(t, time.Date(2026, time.March, 29, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, time.March, 29, 23, 59, 59, 0, loc), to)

	// 2026-10-25 is a 25-hour day (clocks fall back 03:00 -> 02:00); the
	// last hour of the day must stay inside the window.
	now = time.Date(2026, time.October, 24, 12, 0, 0, 0, loc)
	from, to = calremind.NextDayWindow(now)
	assert.Equal(t, time.Date(2026, time.October, 25, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2026, time.October, 25, 23, 59, 59, 0, loc), to)
}

func TestNextDayWindow_MonthBoundary(t *testing.T) {
	now := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	from, _ := calremind.NextDayWindow(now)

	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), from)
}

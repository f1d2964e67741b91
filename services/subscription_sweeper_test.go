package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReminderWindow(t *testing.T) {
	// 2025-06-10 15:42 UTC; the 7-day window must be the full UTC calendar
	// day of June 17 regardless of the time of day the sweep runs.
	now := time.Date(2025, 6, 10, 15, 42, 7, 0, time.UTC)

	tests := []struct {
		name      string
		daysAhead int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"seven day", 7, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)},
		{"three day", 3, time.Date(2025, 6, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"one day", 1, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ReminderWindow(now, tt.daysAhead)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestReminderWindowNormalizesZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2025, 6, 11, 2, 0, 0, 0, ist) // still June 10 in UTC

	start, _ := ReminderWindow(local, 1)
	assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), start)
}

func TestReminderWindowsDoNotOverlap(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	oneStart, oneEnd := ReminderWindow(now, 1)
	threeStart, threeEnd := ReminderWindow(now, 3)
	sevenStart, _ := ReminderWindow(now, 7)

	assert.True(t, oneEnd.Before(threeStart) || oneEnd.Equal(threeStart))
	assert.True(t, threeEnd.Before(sevenStart) || threeEnd.Equal(sevenStart))
	assert.True(t, oneStart.Before(oneEnd))
}

func TestReminderTierFlags(t *testing.T) {
	// The flag field names must match the remindersSent BSON keys the
	// repository filters on.
	want := map[int]string{7: "sevenDay", 3: "threeDay", 1: "oneDay"}
	assert.Len(t, reminderTiers, len(want))
	for _, tier := range reminderTiers {
		assert.Equal(t, want[tier.Days], tier.FlagField)
	}
}

package booking

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableDates(t *testing.T) {
	// Friday; the following Sunday is 2026-09-06.
	now := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)

	dates := AvailableDates(now, 14)
	require.Len(t, dates, 14)

	assert.Equal(t, "2026-09-05", dates[0], "first offered date is tomorrow")
	assert.NotContains(t, dates, "2026-09-06", "Sundays are skipped")
	assert.NotContains(t, dates, "2026-09-13")
	assert.Equal(t, "2026-09-07", dates[1], "Monday follows the skipped Sunday")

	for _, d := range dates {
		parsed, err := time.Parse("2006-01-02", d)
		require.NoError(t, err)
		assert.NotEqual(t, time.Sunday, parsed.Weekday())
	}
}

func TestIsBookableDate(t *testing.T) {
	now := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		date string
		want bool
	}{
		{"2026-09-05", true},  // tomorrow
		{"2026-09-07", true},  // future Monday
		{"2026-09-06", false}, // Sunday
		{"2026-09-04", false}, // today
		{"2026-08-28", false}, // past
		{"09/07/2026", false}, // wrong format
		{"", false},
		{"2026-02-30", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBookableDate(tt.date, now), "date %q", tt.date)
	}
}

func TestTimeSlots(t *testing.T) {
	require.Len(t, TimeSlots, 4)

	for _, slot := range TimeSlots {
		assert.True(t, ValidTimeSlot(slot.Value))
		assert.Equal(t, slot.Label, TimeSlotLabel(slot.Value))
	}

	assert.False(t, ValidTimeSlot("9-12"))
	assert.False(t, ValidTimeSlot(""))
	assert.Equal(t, "9-12", TimeSlotLabel("9-12"), "unknown values pass through")
}

func TestFormatDateForDisplay(t *testing.T) {
	assert.Equal(t, "Monday, September 7, 2026", FormatDateForDisplay("2026-09-07"))
	assert.Equal(t, "not-a-date", FormatDateForDisplay("not-a-date"))
}

func TestNewBookingNumber(t *testing.T) {
	now := time.Date(2026, 9, 4, 10, 0, 0, 0, time.UTC)

	num := NewBookingNumber("FN", now)
	assert.True(t, strings.HasPrefix(num, "FN"))
	assert.Regexp(t, regexp.MustCompile(`^FN\d{9}$`), num)

	// Millis suffix is stable for a fixed clock.
	millis := num[2:8]
	again := NewBookingNumber("FN", now)
	assert.Equal(t, millis, again[2:8])
}

func TestNewBookingNumberCustomPrefix(t *testing.T) {
	now := time.Now()
	num := NewBookingNumber("CLEAN", now)
	assert.Regexp(t, regexp.MustCompile(`^CLEAN\d{9}$`), num)
}

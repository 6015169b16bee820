package booking

import (
	"fmt"
	"math/rand"
	"time"
)

// TimeSlot is one bookable window of the service day.
type TimeSlot struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TimeSlots are the fixed three-hour windows offered for every date.
var TimeSlots = []TimeSlot{
	{Value: "8-11", Label: "8:00 AM - 11:00 AM"},
	{Value: "11-2", Label: "11:00 AM - 2:00 PM"},
	{Value: "2-5", Label: "2:00 PM - 5:00 PM"},
	{Value: "5-8", Label: "5:00 PM - 8:00 PM"},
}

const dateLayout = "2006-01-02"

// AvailableDates returns the next count bookable dates starting tomorrow.
// Sundays are skipped; crews don't work Sundays.
func AvailableDates(now time.Time, count int) []string {
	dates := make([]string, 0, count)
	day := now.AddDate(0, 0, 1)
	for len(dates) < count {
		if day.Weekday() != time.Sunday {
			dates = append(dates, day.Format(dateLayout))
		}
		day = day.AddDate(0, 0, 1)
	}
	return dates
}

// IsBookableDate reports whether a YYYY-MM-DD date is valid, after today,
// and not a Sunday.
func IsBookableDate(date string, now time.Time) bool {
	d, err := time.ParseInLocation(dateLayout, date, now.Location())
	if err != nil {
		return false
	}
	if d.Weekday() == time.Sunday {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return d.After(today)
}

// ValidTimeSlot reports whether v names one of the offered slots.
func ValidTimeSlot(v string) bool {
	for _, slot := range TimeSlots {
		if slot.Value == v {
			return true
		}
	}
	return false
}

// TimeSlotLabel resolves a slot value to its display label, or returns the
// value unchanged when unknown.
func TimeSlotLabel(v string) string {
	for _, slot := range TimeSlots {
		if slot.Value == v {
			return slot.Label
		}
	}
	return v
}

// FormatDateForDisplay renders a YYYY-MM-DD date for customer-facing copy.
// Invalid input is returned unchanged.
func FormatDateForDisplay(date string) string {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Monday, January 2, 2006")
}

// NewBookingNumber builds a short human-readable booking reference:
// prefix + the last six digits of unix-millis + three random digits.
func NewBookingNumber(prefix string, now time.Time) string {
	millis := fmt.Sprintf("%d", now.UnixMilli())
	if len(millis) > 6 {
		millis = millis[len(millis)-6:]
	}
	return fmt.Sprintf("%s%s%03d", prefix, millis, rand.Intn(1000))
}

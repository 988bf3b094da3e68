package gym

import (
	"math"
	"time"
)

const (
	// DateLayout is the accepted layout for calendar dates.
	DateLayout = "2006-01-02"
)

// dateTimeLayouts lists the accepted booking datetime layouts, most specific
// last. The first entry matches what HTML datetime-local inputs submit.
var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseDate parses a calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// ParseDateTime parses a booking datetime in any accepted layout.
func ParseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// BMI returns weight / (height in metres)^2 rounded to two decimals. ok is
// false when either measure is missing or not positive.
func BMI(weightKg, heightCm *float64) (bmi float64, ok bool) {
	if weightKg == nil || heightCm == nil || *weightKg <= 0 || *heightCm <= 0 {
		return 0, false
	}
	metres := *heightCm / 100
	return math.Round(*weightKg/(metres*metres)*100) / 100, true
}

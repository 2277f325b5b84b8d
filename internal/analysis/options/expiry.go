package options

import (
	"fmt"
	"time"
)

// Expiry cycles
const (
	CycleJanuary = "january"
	CycleMonthly = "monthly"
)

// ThirdFriday returns the standard monthly expiration date
func ThirdFriday(year int, month time.Month) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+14)
}

// NextExpiry returns the first standard expiry in cycle dated on or after asOf plus horizonDays
func NextExpiry(asOf time.Time, horizonDays int, cycle string) (time.Time, error) {
	target := dateOf(asOf).AddDate(0, 0, horizonDays)

	year, month := target.Year(), target.Month()
	for i := 0; i < 24; i++ {
		if cycle == CycleMonthly || month == time.January {
			if exp := ThirdFriday(year, month); !exp.Before(target) {
				return exp, nil
			}
		}
		if month == time.December {
			year, month = year+1, time.January
		} else {
			month++
		}
	}
	return time.Time{}, fmt.Errorf("no %s expiry found after %s", cycle, target.Format(time.DateOnly))
}

// dateOf drops the clock so expiries compare by calendar date
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

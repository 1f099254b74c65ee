package utils

import (
	"fmt"
	"time"
)

// PeriodRange maps a lookback period such as "1y" to a [from, to] range ending at now.
func PeriodRange(period string, now time.Time) (time.Time, time.Time, error) {
	switch period {
	case "1mo":
		return now.AddDate(0, -1, 0), now, nil
	case "3mo":
		return now.AddDate(0, -3, 0), now, nil
	case "6mo":
		return now.AddDate(0, -6, 0), now, nil
	case "1y":
		return now.AddDate(-1, 0, 0), now, nil
	case "2y":
		return now.AddDate(-2, 0, 0), now, nil
	case "5y":
		return now.AddDate(-5, 0, 0), now, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q", period)
	}
}

func PrettyDate(date time.Time) string {
	return date.Format("02 Jan 2006")
}

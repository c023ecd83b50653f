package utils

import (
	"fmt"
	"time"
)

const dateTimeLayout = "02.01.2006 15:04"
const timeLayout = "15:04"

// FormatTimeRange форматирует интервал как "02.01.2006 10:00 - 11:30".
func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format(dateTimeLayout), end.Format(timeLayout))
}

func FormatDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// FormatTimeUntil возвращает "через 1 ч. 20 мин." / "через 15 мин." до момента t.
func FormatTimeUntil(t, now time.Time) string {
	until := t.Sub(now)
	if until < 0 {
		until = 0
	}
	hours := int(until.Hours())
	minutes := int(until.Minutes()) % 60

	if hours > 0 {
		return fmt.Sprintf("через %d ч. %d мин.", hours, minutes)
	}
	return fmt.Sprintf("через %d мин.", minutes)
}

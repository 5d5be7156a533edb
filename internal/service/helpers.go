package service

import (
	"strings"
	"time"
)

func normalizeEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// dateOnly truncates an instant to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

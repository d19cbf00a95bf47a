package services

import "time"

// Clock supplies the current time to the circulation services
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now in UTC
func SystemClock() Clock {
	return systemClock{}
}

// FixedClock always returns the same instant. Used by the CLI fine quote and tests.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At.UTC() }

// startOfDay truncates t to midnight UTC
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b (negative when b is earlier)
func daysBetween(a, b time.Time) int64 {
	return int64(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

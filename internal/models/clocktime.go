package models

import (
	"fmt"
	"strings"
	"time"
)

// ClockTime is a wall time with no date attached. It marshals to
// "HH:MM:SS"; the upstream provider sends bare "HH:MM".
type ClockTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseClockTime accepts "HH:MM" and "HH:MM:SS".
func ParseClockTime(s string) (ClockTime, error) {
	var c ClockTime
	var err error
	switch strings.Count(s, ":") {
	case 1:
		_, err = fmt.Sscanf(s, "%d:%d", &c.Hour, &c.Minute)
	case 2:
		_, err = fmt.Sscanf(s, "%d:%d:%d", &c.Hour, &c.Minute, &c.Second)
	default:
		err = fmt.Errorf("expected HH:MM or HH:MM:SS")
	}
	if err != nil {
		return ClockTime{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 || c.Second < 0 || c.Second > 59 {
		return ClockTime{}, fmt.Errorf("parse time %q: out of range", s)
	}
	return c, nil
}

// ClockOf extracts the wall time of a moment, read in the moment's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (c ClockTime) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// Before reports whether c is strictly earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool {
	return c.seconds() < other.seconds()
}

// After reports whether c is strictly later in the day than other.
func (c ClockTime) After(other ClockTime) bool {
	return c.seconds() > other.seconds()
}

// Sub returns the signed duration from other to c.
func (c ClockTime) Sub(other ClockTime) time.Duration {
	return time.Duration(c.seconds()-other.seconds()) * time.Second
}

// String renders "HH:MM:SS".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

// MarshalJSON renders the time as a quoted "HH:MM:SS" string.
func (c ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON accepts quoted "HH:MM" and "HH:MM:SS" strings.
func (c *ClockTime) UnmarshalJSON(data []byte) error {
	parsed, err := ParseClockTime(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

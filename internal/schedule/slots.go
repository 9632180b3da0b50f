// Package schedule derives bookable appointment times from a doctor's daily
// availability window.
package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jwalitptl/clinic-admin/pkg/validator"
)

// SlotInterval is the spacing between two bookable start times.
const SlotInterval = 30 * time.Minute

const minutesPerDay = 24 * 60

// Clock is a time of day expressed in minutes since midnight.
type Clock int

// ParseClock parses a zero-padded HH:mm string.
func ParseClock(s string) (Clock, error) {
	if !validator.IsClock(s) {
		return 0, fmt.Errorf("invalid time of day %q: want HH:mm", s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return Clock(h*60 + m), nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Slots returns the start times of every SlotInterval-long slot that fits
// in [from, to). A window shorter than one interval yields no slots.
func Slots(from, to string) ([]string, error) {
	start, err := ParseClock(from)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(to)
	if err != nil {
		return nil, err
	}
	return slotsBetween(start, end), nil
}

func slotsBetween(start, end Clock) []string {
	step := Clock(SlotInterval / time.Minute)
	times := []string{}
	for c := start; c+step <= end; c += step {
		times = append(times, c.String())
	}
	return times
}

// Contains reports whether at is one of the slots of the [from, to) window.
func Contains(from, to, at string) (bool, error) {
	slots, err := Slots(from, to)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s == at {
			return true, nil
		}
	}
	return false, nil
}

// Combine places the HH:mm time on the calendar day of date, in loc, with
// seconds and sub-seconds zeroed.
func Combine(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc), nil
}

// CombineDate parses a YYYY-MM-DD date and combines it with clock.
func CombineDate(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(validator.DateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return Combine(day, clock, loc)
}

// WeekdayInRange reports whether day falls in the inclusive week-day range
// [from, to], wrapping past Saturday when from > to.
func WeekdayInRange(day time.Weekday, from, to int) bool {
	d := int(day)
	if from <= to {
		return d >= from && d <= to
	}
	return d >= from || d <= to
}

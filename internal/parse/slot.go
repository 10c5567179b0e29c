package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of booking dates.
const DateLayout = "2006-01-02"

var slotRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})$`)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// Before reports whether c is strictly earlier than o.
func (c Clock) Before(o Clock) bool {
	if c.Hour != o.Hour {
		return c.Hour < o.Hour
	}
	return c.Minute < o.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ClockOf returns the time of day of t in t's own location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// TimeSlot is a parsed "HH:MM - HH:MM" window.
type TimeSlot struct {
	Start Clock
	End   Clock
}

// ParseTimeSlot parses a slot label such as "09:00 - 10:00".
func ParseTimeSlot(raw string) (TimeSlot, error) {
	s := strings.TrimSpace(raw)
	m := slotRe.FindStringSubmatch(s)
	if m == nil {
		return TimeSlot{}, fmt.Errorf("unable to parse time slot: %q", raw)
	}

	var nums [4]int
	for i := range nums {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return TimeSlot{}, fmt.Errorf("unable to parse time slot %q: %w", raw, err)
		}
		nums[i] = n
	}

	slot := TimeSlot{
		Start: Clock{Hour: nums[0], Minute: nums[1]},
		End:   Clock{Hour: nums[2], Minute: nums[3]},
	}
	if !validClock(slot.Start) || !validClock(slot.End) {
		return TimeSlot{}, fmt.Errorf("time slot %q is out of range", raw)
	}
	if !slot.Start.Before(slot.End) {
		return TimeSlot{}, fmt.Errorf("time slot %q ends before it starts", raw)
	}
	return slot, nil
}

func validClock(c Clock) bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return d, nil
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Today returns midnight of now's calendar day, in now's location.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

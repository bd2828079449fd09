package access

import (
	"fmt"
	"time"
)

// Clock supplies the current instant in the canonical offset. Every expiry and
// day boundary calculation goes through it.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type offsetClock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock reporting wall time at the given offset from UTC
func NewClock(offsetHours int) Clock {
	return NewClockFunc(offsetHours, time.Now)
}

// NewClockFunc returns a Clock at the given offset that reads the instant from now
func NewClockFunc(offsetHours int, now func() time.Time) Clock {
	name := fmt.Sprintf("UTC%+03d:00", offsetHours)
	return offsetClock{
		loc: time.FixedZone(name, offsetHours*int(time.Hour/time.Second)),
		now: now,
	}
}

func (c offsetClock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c offsetClock) Location() *time.Location {
	return c.loc
}

// StartOfDay returns midnight of t's calendar day in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

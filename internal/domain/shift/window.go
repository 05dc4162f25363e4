package shift

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is minutes since midnight. It marshals as "HH:MM".
type TimeOfDay int

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, ErrInvalidTimeOfDay
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, ErrInvalidTimeOfDay
	}
	return TimeOfDay(hour*60 + minute), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window is a daily time-of-day range. End at or before Start means the
// window runs into the next calendar day.
type Window struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Resolve places the window onto a concrete date, returning an absolute
// interval. A window with Start == End resolves to an empty interval.
func (w Window) Resolve(date time.Time) Interval {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	start := day.Add(time.Duration(w.Start) * time.Minute)
	end := day.Add(time.Duration(w.End) * time.Minute)
	if !end.After(start) && w.Start != w.End {
		end = end.Add(24 * time.Hour)
	}
	if w.Start == w.End {
		end = start
	}
	return Interval{Start: start, End: end}
}

// Interval is an absolute half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Hours() float64 {
	if !i.End.After(i.Start) {
		return 0
	}
	return i.End.Sub(i.Start).Hours()
}

// Intersect returns the overlapping part of two intervals; an empty
// interval when they are disjoint.
func (i Interval) Intersect(other Interval) Interval {
	start := i.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := i.End
	if other.End.Before(end) {
		end = other.End
	}
	if !end.After(start) {
		return Interval{Start: start, End: start}
	}
	return Interval{Start: start, End: end}
}

// Overlap returns the overlapping duration in hours.
func (i Interval) Overlap(other Interval) float64 {
	return i.Intersect(other).Hours()
}

// Shift moves the interval by d.
func (i Interval) Shift(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(d), End: i.End.Add(d)}
}

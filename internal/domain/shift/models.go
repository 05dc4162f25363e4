package shift

import "time"

const (
	TypeNonShift = "non_shift"
	TypeShiftA   = "shift_a"
	TypeShiftB   = "shift_b"
)

var Types = []string{TypeNonShift, TypeShiftA, TypeShiftB}

// Schedule is a department-owned set of daily time windows. The main window
// is mandatory; lunch and the two overtime windows are optional. Any window
// whose end is not after its start is treated as wrapping past midnight.
type Schedule struct {
	ID              string    `json:"id"`
	DepartmentID    string    `json:"departmentId"`
	Name            string    `json:"name"`
	ShiftType       string    `json:"shiftType"`
	Main            Window    `json:"main"`
	Lunch           *Window   `json:"lunch,omitempty"`
	RegularOvertime *Window   `json:"regularOvertime,omitempty"`
	WeeklyOvertime  *Window   `json:"weeklyOvertime,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate rejects obviously malformed schedules: a degenerate main window
// or an overtime window overlapping the main window. Lunch must sit inside
// the main window to make sense as a break.
func (s Schedule) Validate() error {
	if s.Main.Start == s.Main.End {
		return ErrDegenerateMainWindow
	}
	refDate := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	main := s.Main.Resolve(refDate)
	for _, overtime := range []*Window{s.RegularOvertime, s.WeeklyOvertime} {
		if overtime == nil || overtime.Start == overtime.End {
			continue
		}
		resolved := overtime.Resolve(refDate)
		// Compare against the main window on both the same day and the next,
		// otherwise a wrap on either side hides a real overlap.
		if main.Overlap(resolved) > 0 || main.Overlap(resolved.Shift(-24*time.Hour)) > 0 || main.Overlap(resolved.Shift(24*time.Hour)) > 0 {
			return ErrOvertimeOverlapsMain
		}
	}
	return nil
}

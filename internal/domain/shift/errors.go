package shift

import "errors"

var (
	ErrScheduleNotFound     = errors.New("shift schedule not found")
	ErrDegenerateMainWindow = errors.New("main work window must have a non-zero duration")
	ErrOvertimeOverlapsMain = errors.New("overtime window overlaps the main work window")
	ErrInvalidTimeOfDay     = errors.New("time of day must be in HH:MM 24-hour format")
)

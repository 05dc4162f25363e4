package attendance

import "errors"

var (
	ErrInvalidAttendanceWindow = errors.New("check-out must be after check-in")
	ErrAlreadyCheckedIn        = errors.New("attendance already recorded for this day")
	ErrNotCheckedIn            = errors.New("no open attendance record to check out")
	ErrRecordNotFound          = errors.New("attendance record not found")
	ErrNoScheduleAssigned      = errors.New("employee has no shift schedule assigned")
)

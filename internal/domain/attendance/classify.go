package attendance

import (
	"math"
	"time"

	"workforce/internal/domain/shift"
)

// HourBuckets splits a worked interval into the compensated categories plus
// whatever fell outside every schedule window. Uncovered time is reported,
// not dropped, so callers can flag it for manual correction.
type HourBuckets struct {
	Main            float64 `json:"mainHours"`
	RegularOvertime float64 `json:"regularOvertimeHours"`
	WeeklyOvertime  float64 `json:"weeklyOvertimeHours"`
	Uncovered       float64 `json:"uncoveredHours"`
}

// ClassifyWorkHours intersects [checkIn, checkOut] with the schedule windows
// resolved onto attendanceDate. The main window anchors on the attendance
// date (wrapping onto the next day when it crosses midnight); lunch and
// overtime windows are resolved onto whichever day overlaps the worked
// interval most, so windows belonging to the tail of an overnight shift land
// on the right side of midnight. All buckets are rounded to two decimals,
// half up.
func ClassifyWorkHours(checkIn, checkOut time.Time, attendanceDate time.Time, schedule shift.Schedule) (HourBuckets, error) {
	if !checkOut.After(checkIn) {
		return HourBuckets{}, ErrInvalidAttendanceWindow
	}

	worked := shift.Interval{Start: checkIn, End: checkOut}
	main := schedule.Main.Resolve(attendanceDate)

	workedMain := worked.Intersect(main)
	mainHours := workedMain.Hours()
	if schedule.Lunch != nil {
		lunch := resolveNear(*schedule.Lunch, attendanceDate, worked)
		mainHours -= workedMain.Overlap(lunch)
	}

	var regularHours, weeklyHours float64
	if schedule.RegularOvertime != nil {
		regularHours = worked.Overlap(resolveNear(*schedule.RegularOvertime, attendanceDate, worked))
	}
	if schedule.WeeklyOvertime != nil {
		weeklyHours = worked.Overlap(resolveNear(*schedule.WeeklyOvertime, attendanceDate, worked))
	}

	uncovered := worked.Hours() - mainHours - regularHours - weeklyHours
	if uncovered < 0 {
		uncovered = 0
	}

	return HourBuckets{
		Main:            round2(mainHours),
		RegularOvertime: round2(regularHours),
		WeeklyOvertime:  round2(weeklyHours),
		Uncovered:       round2(uncovered),
	}, nil
}

// resolveNear places a secondary window on the attendance date or the day
// after, whichever gives it more contact with the worked interval.
func resolveNear(w shift.Window, date time.Time, worked shift.Interval) shift.Interval {
	resolved := w.Resolve(date)
	next := resolved.Shift(24 * time.Hour)
	if worked.Overlap(next) > worked.Overlap(resolved) {
		return next
	}
	return resolved
}

func round2(value float64) float64 {
	return math.Floor(value*100+0.5) / 100
}

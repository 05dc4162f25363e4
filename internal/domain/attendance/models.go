package attendance

import "time"

const (
	StatusCheckedIn = "checked_in"
	StatusPresent   = "present"
	StatusAbsent    = "absent"
	StatusExcused   = "excused"
)

// Record is one employee-day. Hour buckets are derived at check-out (or
// administrative correction) and frozen afterwards.
type Record struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	AttendanceDate       time.Time  `json:"attendanceDate"`
	CheckInTime          time.Time  `json:"checkInTime"`
	CheckOutTime         *time.Time `json:"checkOutTime,omitempty"`
	MainHours            float64    `json:"mainHours"`
	RegularOvertimeHours float64    `json:"regularOvertimeHours"`
	WeeklyOvertimeHours  float64    `json:"weeklyOvertimeHours"`
	UncoveredHours       float64    `json:"uncoveredHours"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

type Filter struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Status     string
	Limit      int
	Offset     int
}

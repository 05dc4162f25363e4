package leave

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusCanceled = "canceled"
)

// Type is an administrator-managed leave category. Categories live in the
// database and are read per request; there is no in-process cache to go
// stale.
type Type struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsPaid    bool      `json:"isPaid"`
	CreatedAt time.Time `json:"createdAt"`
}

type Request struct {
	ID          string     `json:"id"`
	EmployeeID  string     `json:"employeeId"`
	LeaveTypeID string     `json:"leaveTypeId"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Days        float64    `json:"days"`
	Reason      string     `json:"reason"`
	Status      string     `json:"status"`
	DecidedBy   string     `json:"decidedBy,omitempty"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

package core

import "time"

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"

	ContractTypePermanent = "permanent"
	ContractTypeContract  = "contract"
	ContractTypeIntern    = "intern"
)

var ContractTypes = []string{ContractTypePermanent, ContractTypeContract, ContractTypeIntern}

type Employee struct {
	ID              string     `json:"id"`
	EmployeeNumber  string     `json:"employeeNumber"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	DepartmentID    string     `json:"departmentId"`
	ContractType    string     `json:"contractType"`
	ShiftScheduleID string     `json:"shiftScheduleId"`
	StartDate       *time.Time `json:"startDate,omitempty"`
	EndDate         *time.Time `json:"endDate,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parentId"`
	CreatedAt time.Time `json:"createdAt"`
}

// PayrollInfo is the slice of an employee the salary engine needs: which
// rate table row applies and which shift schedule classified their hours.
type PayrollInfo struct {
	EmployeeID      string
	DepartmentID    string
	ContractType    string
	ShiftScheduleID string
	FirstName       string
	LastName        string
}

package salary

import "time"

// Rate is the hourly rate table row for one (department, contract type)
// pair. The pair is unique; exactly one active rate applies to an employee.
type Rate struct {
	ID                  string    `json:"id"`
	DepartmentID        string    `json:"departmentId"`
	ContractType        string    `json:"contractType"`
	MainRate            float64   `json:"mainWorkHourRate"`
	RegularOvertimeRate float64   `json:"regularOvertimeRate"`
	WeeklyOvertimeRate  float64   `json:"weeklyOvertimeRate"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// HourTotals are summed per-day buckets over a period.
type HourTotals struct {
	Main            float64 `json:"mainHours"`
	RegularOvertime float64 `json:"regularOvertimeHours"`
	WeeklyOvertime  float64 `json:"weeklyOvertimeHours"`
}

// Line is one employee's aggregated period before persistence.
type Line struct {
	EmployeeID  string     `json:"employeeId"`
	PeriodStart time.Time  `json:"periodStart"`
	PeriodEnd   time.Time  `json:"periodEnd"`
	Hours       HourTotals `json:"hours"`
	Rate        Rate       `json:"rate"`
	Total       float64    `json:"totalSalary"`
}

// Salary is the persisted period result; one row per (employee, period).
type Salary struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employeeId"`
	PeriodStart          time.Time  `json:"periodStart"`
	PeriodEnd            time.Time  `json:"periodEnd"`
	MainHours            float64    `json:"mainHours"`
	RegularOvertimeHours float64    `json:"regularOvertimeHours"`
	WeeklyOvertimeHours  float64    `json:"weeklyOvertimeHours"`
	TotalSalary          float64    `json:"totalSalary"`
	PaymentStatus        string     `json:"paymentStatus"`
	PaymentDate          *time.Time `json:"paymentDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// SkippedEmployee is one employee the payroll run could not settle. The run
// reports them instead of aborting.
type SkippedEmployee struct {
	EmployeeID string `json:"employeeId"`
	Code       string `json:"code"`
	Reason     string `json:"reason"`
}

type RunResult struct {
	PeriodStart time.Time         `json:"periodStart"`
	PeriodEnd   time.Time         `json:"periodEnd"`
	Generated   []Salary          `json:"generated"`
	Skipped     []SkippedEmployee `json:"skipped"`
}

type ListFilter struct {
	EmployeeID    string
	DepartmentID  string
	ContractType  string
	PaymentStatus string
	From          time.Time
	To            time.Time
	Limit         int
	Offset        int
}

// RegisterRow is one line of the salary export register.
type RegisterRow struct {
	EmployeeID           string
	EmployeeNumber       string
	FirstName            string
	LastName             string
	DepartmentName       string
	ContractType         string
	PeriodStart          time.Time
	PeriodEnd            time.Time
	MainHours            float64
	RegularOvertimeHours float64
	WeeklyOvertimeHours  float64
	TotalSalary          float64
	PaymentStatus        string
}

// PayslipData is everything the PDF rendering needs for one salary row.
type PayslipData struct {
	Salary         Salary
	FirstName      string
	LastName       string
	EmployeeNumber string
	DepartmentName string
	ContractType   string
}

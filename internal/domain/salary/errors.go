package salary

import "errors"

var (
	ErrRateNotFound       = errors.New("no salary rate for department and contract type")
	ErrDuplicateRate      = errors.New("salary rate already exists for department and contract type")
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrSalaryNotFound     = errors.New("salary not found")
	ErrPaidSalaryConflict = errors.New("salary is already paid and cannot be overwritten")
	ErrInvalidPeriod      = errors.New("period end must not be before period start")
)

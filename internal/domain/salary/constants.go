package salary

const (
	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"

	SkipCodeRateNotFound     = "rate_not_found"
	SkipCodeEmployeeNotFound = "employee_not_found"
	SkipCodePaidConflict     = "paid_conflict"
)

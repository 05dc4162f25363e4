package leave

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("end date before start date")

// CalculateDays returns the inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, ErrInvalidRange
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

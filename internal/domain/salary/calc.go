package salary

import (
	"math"
	"time"
)

// ComputeTotal prices summed hour buckets with the resolved rate triple.
func ComputeTotal(hours HourTotals, rate Rate) float64 {
	total := hours.Main*rate.MainRate +
		hours.RegularOvertime*rate.RegularOvertimeRate +
		hours.WeeklyOvertime*rate.WeeklyOvertimeRate
	return round2(total)
}

// MonthPeriod returns the inclusive first and last day of a month.
func MonthPeriod(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, -1)
	return start, end
}

func round2(value float64) float64 {
	return math.Floor(value*100+0.5) / 100
}

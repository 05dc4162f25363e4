package salary

import (
	"testing"
	"time"
)

func TestComputeTotal(t *testing.T) {
	hours := HourTotals{Main: 160, RegularOvertime: 12.5, WeeklyOvertime: 8}
	rate := Rate{MainRate: 20000, RegularOvertimeRate: 30000, WeeklyOvertimeRate: 40000}

	got := ComputeTotal(hours, rate)
	want := 160*20000.0 + 12.5*30000 + 8*40000
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestComputeTotalRoundsHalfUp(t *testing.T) {
	cases := []struct {
		hours HourTotals
		rate  Rate
		want  float64
	}{
		{HourTotals{Main: 1}, Rate{MainRate: 10.018}, 10.02},
		{HourTotals{Main: 1}, Rate{MainRate: 10.014}, 10.01},
		{HourTotals{Main: 3}, Rate{MainRate: 33.333}, 100},
	}
	for _, tc := range cases {
		if got := ComputeTotal(tc.hours, tc.rate); got != tc.want {
			t.Errorf("ComputeTotal(%+v, %+v) = %v, want %v", tc.hours, tc.rate, got, tc.want)
		}
	}
}

func TestComputeTotalZeroHours(t *testing.T) {
	rate := Rate{MainRate: 20000, RegularOvertimeRate: 30000, WeeklyOvertimeRate: 40000}
	if got := ComputeTotal(HourTotals{}, rate); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestMonthPeriod(t *testing.T) {
	start, end := MonthPeriod(2024, time.February, time.UTC)
	if !start.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end %v", end)
	}

	start, end = MonthPeriod(2025, time.December, time.UTC)
	if start.Month() != time.December || end.Day() != 31 {
		t.Fatalf("unexpected period %v - %v", start, end)
	}
}

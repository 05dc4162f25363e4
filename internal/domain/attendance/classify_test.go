package attendance

import (
	"testing"
	"time"

	"workforce/internal/domain/shift"
)

func dayShift() shift.Schedule {
	lunch := shift.Window{Start: 720, End: 780}       // 12:00-13:00
	regularOT := shift.Window{Start: 960, End: 1080}  // 16:00-18:00
	weeklyOT := shift.Window{Start: 1080, End: 1200}  // 18:00-20:00
	return shift.Schedule{
		Main:            shift.Window{Start: 480, End: 960}, // 08:00-16:00
		Lunch:           &lunch,
		RegularOvertime: &regularOT,
		WeeklyOvertime:  &weeklyOT,
	}
}

func TestClassifyFullDayWithOvertime(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := date.Add(8 * time.Hour)
	checkOut := date.Add(17 * time.Hour)

	buckets, err := ClassifyWorkHours(checkIn, checkOut, date, dayShift())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Worked 08:00-17:00 through lunch: 7h main, 1h regular overtime, and
	// the lunch hour worked through lands in uncovered.
	if buckets.Main != 7 {
		t.Errorf("main: got %v, want 7", buckets.Main)
	}
	if buckets.RegularOvertime != 1 {
		t.Errorf("regular overtime: got %v, want 1", buckets.RegularOvertime)
	}
	if buckets.WeeklyOvertime != 0 {
		t.Errorf("weekly overtime: got %v, want 0", buckets.WeeklyOvertime)
	}
	if buckets.Uncovered != 1 {
		t.Errorf("uncovered: got %v, want 1", buckets.Uncovered)
	}
}

func TestClassifyBucketIdentity(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	schedule := dayShift()

	spans := []struct{ in, out float64 }{
		{8, 16},
		{7.5, 19.25},
		{6, 21},
		{9.75, 14.5},
		{8, 16.01},
	}
	for _, span := range spans {
		checkIn := date.Add(time.Duration(span.in * float64(time.Hour)))
		checkOut := date.Add(time.Duration(span.out * float64(time.Hour)))

		buckets, err := ClassifyWorkHours(checkIn, checkOut, date, schedule)
		if err != nil {
			t.Fatalf("span %v-%v: unexpected error: %v", span.in, span.out, err)
		}

		sum := buckets.Main + buckets.RegularOvertime + buckets.WeeklyOvertime + buckets.Uncovered
		worked := span.out - span.in
		if diff := sum - worked; diff > 0.011 || diff < -0.011 {
			t.Errorf("span %v-%v: buckets sum to %v, worked %v", span.in, span.out, sum, worked)
		}
	}
}

func TestClassifyEarlyCheckout(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := date.Add(8 * time.Hour)
	checkOut := date.Add(11 * time.Hour)

	buckets, err := ClassifyWorkHours(checkIn, checkOut, date, dayShift())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buckets.Main != 3 || buckets.RegularOvertime != 0 || buckets.Uncovered != 0 {
		t.Fatalf("unexpected buckets: %+v", buckets)
	}
}

func TestClassifyCheckoutBeforeCheckin(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := ClassifyWorkHours(date.Add(16*time.Hour), date.Add(8*time.Hour), date, dayShift())
	if err != ErrInvalidAttendanceWindow {
		t.Fatalf("expected ErrInvalidAttendanceWindow, got %v", err)
	}
}

func TestClassifyOvernightShift(t *testing.T) {
	regularOT := shift.Window{Start: 360, End: 480} // 06:00-08:00 next morning
	schedule := shift.Schedule{
		Main:            shift.Window{Start: 1320, End: 360}, // 22:00-06:00
		RegularOvertime: &regularOT,
	}

	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := date.Add(22 * time.Hour)
	checkOut := date.Add(31 * time.Hour) // 07:00 next day

	buckets, err := ClassifyWorkHours(checkIn, checkOut, date, schedule)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buckets.Main != 8 {
		t.Errorf("main: got %v, want 8", buckets.Main)
	}
	// The overtime window belongs to the tail of the shift, so it resolves
	// onto the following morning.
	if buckets.RegularOvertime != 1 {
		t.Errorf("regular overtime: got %v, want 1", buckets.RegularOvertime)
	}
	if buckets.Uncovered != 0 {
		t.Errorf("uncovered: got %v, want 0", buckets.Uncovered)
	}
}

func TestClassifyUncoveredOutsideAllWindows(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	checkIn := date.Add(5 * time.Hour) // 3h before main opens
	checkOut := date.Add(16 * time.Hour)

	buckets, err := ClassifyWorkHours(checkIn, checkOut, date, dayShift())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buckets.Main != 7 {
		t.Errorf("main: got %v, want 7", buckets.Main)
	}
	// 05:00-08:00 plus the worked lunch hour.
	if buckets.Uncovered != 4 {
		t.Errorf("uncovered: got %v, want 4", buckets.Uncovered)
	}
}

package shift

import (
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"08:00", 480, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"garbage", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestTimeOfDayString(t *testing.T) {
	if got := TimeOfDay(480).String(); got != "08:00" {
		t.Fatalf("expected 08:00, got %s", got)
	}
	if got := TimeOfDay(1425).String(); got != "23:45" {
		t.Fatalf("expected 23:45, got %s", got)
	}
}

func TestWindowResolveSameDay(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := Window{Start: 480, End: 960} // 08:00-16:00

	interval := w.Resolve(date)
	if interval.Hours() != 8 {
		t.Fatalf("expected 8 hours, got %v", interval.Hours())
	}
	if interval.Start.Hour() != 8 || interval.End.Hour() != 16 {
		t.Fatalf("unexpected bounds: %v - %v", interval.Start, interval.End)
	}
}

func TestWindowResolveWrapsMidnight(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := Window{Start: 1320, End: 360} // 22:00-06:00

	interval := w.Resolve(date)
	if interval.Hours() != 8 {
		t.Fatalf("expected 8 hours, got %v", interval.Hours())
	}
	if interval.End.Day() != 11 {
		t.Fatalf("expected end on the next day, got %v", interval.End)
	}
}

func TestWindowResolveDegenerate(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := Window{Start: 480, End: 480}

	if got := w.Resolve(date).Hours(); got != 0 {
		t.Fatalf("expected empty interval, got %v hours", got)
	}
}

func TestIntervalIntersect(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	a := Interval{Start: at(8), End: at(16)}
	b := Interval{Start: at(12), End: at(18)}
	if got := a.Overlap(b); got != 4 {
		t.Fatalf("expected 4 hours overlap, got %v", got)
	}

	c := Interval{Start: at(18), End: at(20)}
	if got := a.Overlap(c); got != 0 {
		t.Fatalf("expected no overlap, got %v", got)
	}
}

func TestScheduleValidate(t *testing.T) {
	ot := Window{Start: 960, End: 1080} // 16:00-18:00
	valid := Schedule{
		Main:            Window{Start: 480, End: 960},
		Lunch:           &Window{Start: 720, End: 780},
		RegularOvertime: &ot,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}

	degenerate := Schedule{Main: Window{Start: 480, End: 480}}
	if err := degenerate.Validate(); err != ErrDegenerateMainWindow {
		t.Fatalf("expected ErrDegenerateMainWindow, got %v", err)
	}

	overlapping := Window{Start: 900, End: 1020} // 15:00-17:00 overlaps main
	bad := Schedule{
		Main:            Window{Start: 480, End: 960},
		RegularOvertime: &overlapping,
	}
	if err := bad.Validate(); err != ErrOvertimeOverlapsMain {
		t.Fatalf("expected ErrOvertimeOverlapsMain, got %v", err)
	}
}

func TestScheduleValidateOvernightOverlap(t *testing.T) {
	// Main wraps midnight; overtime on the morning side still collides.
	overlapping := Window{Start: 300, End: 420} // 05:00-07:00
	bad := Schedule{
		Main:            Window{Start: 1320, End: 360}, // 22:00-06:00
		RegularOvertime: &overlapping,
	}
	if err := bad.Validate(); err != ErrOvertimeOverlapsMain {
		t.Fatalf("expected ErrOvertimeOverlapsMain, got %v", err)
	}

	clean := Window{Start: 360, End: 480} // 06:00-08:00, right after the wrap
	good := Schedule{
		Main:            Window{Start: 1320, End: 360},
		RegularOvertime: &clean,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
}

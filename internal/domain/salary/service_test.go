package salary

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"workforce/internal/domain/core"
)

type fakeDirectory struct {
	employees []core.PayrollInfo
}

func (d *fakeDirectory) PayrollInfo(_ context.Context, employeeID string) (core.PayrollInfo, error) {
	for _, e := range d.employees {
		if e.EmployeeID == employeeID {
			return e, nil
		}
	}
	return core.PayrollInfo{}, core.ErrEmployeeNotFound
}

func (d *fakeDirectory) ListActiveEmployees(_ context.Context, departmentID string) ([]core.PayrollInfo, error) {
	if departmentID == "" {
		return d.employees, nil
	}
	var out []core.PayrollInfo
	for _, e := range d.employees {
		if e.DepartmentID == departmentID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStore struct {
	rates    map[string]Rate
	totals   map[string]HourTotals
	salaries map[string]Salary
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rates:    map[string]Rate{},
		totals:   map[string]HourTotals{},
		salaries: map[string]Salary{},
	}
}

func rateKey(departmentID, contractType string) string {
	return departmentID + "|" + contractType
}

func salaryKey(employeeID string, periodStart time.Time) string {
	return employeeID + "|" + periodStart.Format("2006-01-02")
}

func (s *fakeStore) ListRates(context.Context, string) ([]Rate, error) { return nil, nil }

func (s *fakeStore) CreateRate(_ context.Context, rate Rate) (string, error) {
	key := rateKey(rate.DepartmentID, rate.ContractType)
	if _, ok := s.rates[key]; ok {
		return "", ErrDuplicateRate
	}
	s.rates[key] = rate
	return key, nil
}

func (s *fakeStore) UpdateRate(_ context.Context, rate Rate) error {
	s.rates[rateKey(rate.DepartmentID, rate.ContractType)] = rate
	return nil
}

func (s *fakeStore) FindRate(_ context.Context, departmentID, contractType string) (Rate, error) {
	rate, ok := s.rates[rateKey(departmentID, contractType)]
	if !ok {
		return Rate{}, ErrRateNotFound
	}
	return rate, nil
}

func (s *fakeStore) HourTotalsForPeriod(_ context.Context, employeeID string, _, _ time.Time) (HourTotals, error) {
	return s.totals[employeeID], nil
}

func (s *fakeStore) UpsertUnpaidSalary(_ context.Context, line Line) (Salary, error) {
	key := salaryKey(line.EmployeeID, line.PeriodStart)
	if existing, ok := s.salaries[key]; ok && existing.PaymentStatus == PaymentStatusPaid {
		return Salary{}, ErrPaidSalaryConflict
	}
	s.nextID++
	row := Salary{
		ID:                   fmt.Sprintf("sal-%d", s.nextID),
		EmployeeID:           line.EmployeeID,
		PeriodStart:          line.PeriodStart,
		PeriodEnd:            line.PeriodEnd,
		MainHours:            line.Hours.Main,
		RegularOvertimeHours: line.Hours.RegularOvertime,
		WeeklyOvertimeHours:  line.Hours.WeeklyOvertime,
		TotalSalary:          line.Total,
		PaymentStatus:        PaymentStatusUnpaid,
	}
	if existing, ok := s.salaries[key]; ok {
		row.ID = existing.ID
	}
	s.salaries[key] = row
	return row, nil
}

func (s *fakeStore) GetSalary(_ context.Context, salaryID string) (Salary, error) {
	for _, row := range s.salaries {
		if row.ID == salaryID {
			return row, nil
		}
	}
	return Salary{}, ErrSalaryNotFound
}

func (s *fakeStore) ListSalaries(context.Context, ListFilter) ([]Salary, error) { return nil, nil }

func (s *fakeStore) MarkPaid(_ context.Context, salaryIDs []string, paymentDate time.Time) (int64, error) {
	var count int64
	for key, row := range s.salaries {
		for _, id := range salaryIDs {
			if row.ID == id && row.PaymentStatus == PaymentStatusUnpaid {
				row.PaymentStatus = PaymentStatusPaid
				row.PaymentDate = &paymentDate
				s.salaries[key] = row
				count++
			}
		}
	}
	return count, nil
}

func (s *fakeStore) SetPaid(_ context.Context, salaryID string, paymentDate time.Time) (bool, error) {
	n, err := s.MarkPaid(context.Background(), []string{salaryID}, paymentDate)
	return n == 1, err
}

func (s *fakeStore) SetUnpaid(_ context.Context, salaryID string) (bool, error) {
	for key, row := range s.salaries {
		if row.ID == salaryID && row.PaymentStatus == PaymentStatusPaid {
			row.PaymentStatus = PaymentStatusUnpaid
			row.PaymentDate = nil
			s.salaries[key] = row
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) RegisterRows(context.Context, ListFilter) ([]RegisterRow, error) { return nil, nil }

func (s *fakeStore) PayslipData(context.Context, string) (PayslipData, error) {
	return PayslipData{}, ErrSalaryNotFound
}

func testPeriod() (time.Time, time.Time) {
	return MonthPeriod(2025, time.January, time.UTC)
}

func testService(store *fakeStore, directory *fakeDirectory) *Service {
	return NewService(store, directory, nil, "", time.UTC)
}

func TestGenerateForPeriodSkipsMissingRate(t *testing.T) {
	store := newFakeStore()
	store.rates[rateKey("dept-a", "permanent")] = Rate{DepartmentID: "dept-a", ContractType: "permanent", MainRate: 100}
	store.totals["emp-1"] = HourTotals{Main: 160}
	store.totals["emp-2"] = HourTotals{Main: 150}

	directory := &fakeDirectory{employees: []core.PayrollInfo{
		{EmployeeID: "emp-1", DepartmentID: "dept-a", ContractType: "permanent"},
		{EmployeeID: "emp-2", DepartmentID: "dept-b", ContractType: "permanent"},
	}}

	start, end := testPeriod()
	result, err := testService(store, directory).GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Generated) != 1 {
		t.Fatalf("expected 1 generated, got %d", len(result.Generated))
	}
	if result.Generated[0].TotalSalary != 16000 {
		t.Errorf("expected total 16000, got %v", result.Generated[0].TotalSalary)
	}
	if len(result.Skipped) != 1 {
		t.Fatalf("expected 1 skipped, got %d", len(result.Skipped))
	}
	if result.Skipped[0].EmployeeID != "emp-2" || result.Skipped[0].Code != SkipCodeRateNotFound {
		t.Errorf("unexpected skip: %+v", result.Skipped[0])
	}
}

func TestGenerateForPeriodIdempotent(t *testing.T) {
	store := newFakeStore()
	store.rates[rateKey("dept-a", "permanent")] = Rate{DepartmentID: "dept-a", ContractType: "permanent", MainRate: 100}
	store.totals["emp-1"] = HourTotals{Main: 160}

	directory := &fakeDirectory{employees: []core.PayrollInfo{
		{EmployeeID: "emp-1", DepartmentID: "dept-a", ContractType: "permanent"},
	}}
	svc := testService(store, directory)

	start, end := testPeriod()
	first, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	// A corrected attendance record changes the totals; regeneration must
	// replace the unpaid row in place.
	store.totals["emp-1"] = HourTotals{Main: 168}
	second, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(store.salaries) != 1 {
		t.Fatalf("expected a single row per employee and period, got %d", len(store.salaries))
	}
	if second.Generated[0].ID != first.Generated[0].ID {
		t.Errorf("regeneration created a new row: %s vs %s", second.Generated[0].ID, first.Generated[0].ID)
	}
	if second.Generated[0].TotalSalary != 16800 {
		t.Errorf("expected recomputed total 16800, got %v", second.Generated[0].TotalSalary)
	}
}

func TestGenerateForPeriodSkipsPaidRows(t *testing.T) {
	store := newFakeStore()
	store.rates[rateKey("dept-a", "permanent")] = Rate{DepartmentID: "dept-a", ContractType: "permanent", MainRate: 100}
	store.totals["emp-1"] = HourTotals{Main: 160}

	directory := &fakeDirectory{employees: []core.PayrollInfo{
		{EmployeeID: "emp-1", DepartmentID: "dept-a", ContractType: "permanent"},
	}}
	svc := testService(store, directory)

	start, end := testPeriod()
	first, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := svc.MarkPaid(context.Background(), []string{first.Generated[0].ID}, time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	second, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Generated) != 0 {
		t.Fatalf("paid row was regenerated: %+v", second.Generated)
	}
	if len(second.Skipped) != 1 || second.Skipped[0].Code != SkipCodePaidConflict {
		t.Fatalf("expected paid_conflict skip, got %+v", second.Skipped)
	}

	stored, err := store.GetSalary(context.Background(), first.Generated[0].ID)
	if err != nil {
		t.Fatalf("get salary: %v", err)
	}
	if stored.PaymentStatus != PaymentStatusPaid || stored.TotalSalary != 16000 {
		t.Errorf("paid row was modified: %+v", stored)
	}
}

func TestGenerateForPeriodRejectsInvertedPeriod(t *testing.T) {
	svc := testService(newFakeStore(), &fakeDirectory{})
	start, end := testPeriod()

	_, err := svc.GenerateForPeriod(context.Background(), end, start, "")
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestAggregateUnknownEmployee(t *testing.T) {
	svc := testService(newFakeStore(), &fakeDirectory{})
	start, end := testPeriod()

	_, err := svc.Aggregate(context.Background(), "ghost", start, end)
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestMarkPaidCountsOnlyTransitions(t *testing.T) {
	store := newFakeStore()
	store.rates[rateKey("dept-a", "permanent")] = Rate{DepartmentID: "dept-a", ContractType: "permanent", MainRate: 100}
	store.totals["emp-1"] = HourTotals{Main: 10}
	store.totals["emp-2"] = HourTotals{Main: 20}

	directory := &fakeDirectory{employees: []core.PayrollInfo{
		{EmployeeID: "emp-1", DepartmentID: "dept-a", ContractType: "permanent"},
		{EmployeeID: "emp-2", DepartmentID: "dept-a", ContractType: "permanent"},
	}}
	svc := testService(store, directory)

	start, end := testPeriod()
	run, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	ids := []string{run.Generated[0].ID, run.Generated[1].ID}

	if _, err := svc.MarkPaid(context.Background(), ids[:1], time.Now()); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	count, err := svc.MarkPaid(context.Background(), ids, time.Now())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 transition, got %d", count)
	}
}

func TestSetPaymentStatus(t *testing.T) {
	store := newFakeStore()
	store.rates[rateKey("dept-a", "permanent")] = Rate{DepartmentID: "dept-a", ContractType: "permanent", MainRate: 100}
	store.totals["emp-1"] = HourTotals{Main: 10}

	directory := &fakeDirectory{employees: []core.PayrollInfo{
		{EmployeeID: "emp-1", DepartmentID: "dept-a", ContractType: "permanent"},
	}}
	svc := testService(store, directory)

	start, end := testPeriod()
	run, err := svc.GenerateForPeriod(context.Background(), start, end, "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	id := run.Generated[0].ID

	// Setting the current status again is a no-op.
	row, err := svc.SetPaymentStatus(context.Background(), id, PaymentStatusUnpaid, time.Time{})
	if err != nil {
		t.Fatalf("noop transition: %v", err)
	}
	if row.PaymentStatus != PaymentStatusUnpaid {
		t.Fatalf("unexpected status %s", row.PaymentStatus)
	}

	row, err = svc.SetPaymentStatus(context.Background(), id, PaymentStatusPaid, time.Now())
	if err != nil {
		t.Fatalf("pay transition: %v", err)
	}
	if row.PaymentStatus != PaymentStatusPaid || row.PaymentDate == nil {
		t.Fatalf("expected paid row with date, got %+v", row)
	}

	row, err = svc.SetPaymentStatus(context.Background(), id, PaymentStatusUnpaid, time.Time{})
	if err != nil {
		t.Fatalf("unpay transition: %v", err)
	}
	if row.PaymentStatus != PaymentStatusUnpaid || row.PaymentDate != nil {
		t.Fatalf("expected unpaid row without date, got %+v", row)
	}

	if _, err := svc.SetPaymentStatus(context.Background(), id, "settled", time.Time{}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

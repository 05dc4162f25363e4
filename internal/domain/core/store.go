package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDepartmentNotFound = errors.New("department not found")
	ErrDuplicateEmail     = errors.New("employee email already in use")
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, name, COALESCE(parent_id::text, ''), created_at
    FROM departments
    ORDER BY name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var department Department
		if err := rows.Scan(&department.ID, &department.Name, &department.ParentID, &department.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	return departments, nil
}

func (s *Store) CreateDepartment(ctx context.Context, name, parentID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO departments (name, parent_id)
    VALUES ($1, $2)
    RETURNING id
  `, name, nullIfEmpty(parentID)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) DepartmentExists(ctx context.Context, departmentID string) (bool, error) {
	var count int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM departments WHERE id = $1", departmentID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListEmployees(ctx context.Context, departmentID string, limit, offset int) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_number, first_name, last_name, email, COALESCE(phone, ''),
           department_id, contract_type, COALESCE(shift_schedule_id::text, ''),
           start_date, end_date, status, created_at, updated_at
    FROM employees
    WHERE ($1 = '' OR department_id::text = $1)
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3
  `, departmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var employee Employee
		if err := rows.Scan(
			&employee.ID, &employee.EmployeeNumber, &employee.FirstName, &employee.LastName,
			&employee.Email, &employee.Phone, &employee.DepartmentID, &employee.ContractType,
			&employee.ShiftScheduleID, &employee.StartDate, &employee.EndDate, &employee.Status,
			&employee.CreatedAt, &employee.UpdatedAt,
		); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, nil
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var employee Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_number, first_name, last_name, email, COALESCE(phone, ''),
           department_id, contract_type, COALESCE(shift_schedule_id::text, ''),
           start_date, end_date, status, created_at, updated_at
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(
		&employee.ID, &employee.EmployeeNumber, &employee.FirstName, &employee.LastName,
		&employee.Email, &employee.Phone, &employee.DepartmentID, &employee.ContractType,
		&employee.ShiftScheduleID, &employee.StartDate, &employee.EndDate, &employee.Status,
		&employee.CreatedAt, &employee.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return employee, err
}

func (s *Store) CreateEmployee(ctx context.Context, employee Employee) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (employee_number, first_name, last_name, email, phone,
                           department_id, contract_type, shift_schedule_id, start_date, status)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, employee.EmployeeNumber, employee.FirstName, employee.LastName, employee.Email,
		employee.Phone, employee.DepartmentID, employee.ContractType,
		nullIfEmpty(employee.ShiftScheduleID), employee.StartDate, employee.Status).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateEmployee(ctx context.Context, employee Employee) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees
    SET first_name = $2, last_name = $3, phone = $4, department_id = $5,
        contract_type = $6, shift_schedule_id = $7, end_date = $8, status = $9,
        updated_at = now()
    WHERE id = $1
  `, employee.ID, employee.FirstName, employee.LastName, employee.Phone,
		employee.DepartmentID, employee.ContractType, nullIfEmpty(employee.ShiftScheduleID),
		employee.EndDate, employee.Status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// PayrollInfo resolves the employee attributes the salary engine keys on.
func (s *Store) PayrollInfo(ctx context.Context, employeeID string) (PayrollInfo, error) {
	var info PayrollInfo
	err := s.DB.QueryRow(ctx, `
    SELECT id, department_id, contract_type, COALESCE(shift_schedule_id::text, ''), first_name, last_name
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&info.EmployeeID, &info.DepartmentID, &info.ContractType,
		&info.ShiftScheduleID, &info.FirstName, &info.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayrollInfo{}, ErrEmployeeNotFound
	}
	return info, err
}

func (s *Store) ListActiveEmployees(ctx context.Context, departmentID string) ([]PayrollInfo, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, department_id, contract_type, COALESCE(shift_schedule_id::text, ''), first_name, last_name
    FROM employees
    WHERE status = $1 AND ($2 = '' OR department_id::text = $2)
    ORDER BY last_name, first_name
  `, EmployeeStatusActive, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PayrollInfo
	for rows.Next() {
		var info PayrollInfo
		if err := rows.Scan(&info.EmployeeID, &info.DepartmentID, &info.ContractType,
			&info.ShiftScheduleID, &info.FirstName, &info.LastName); err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func isUniqueViolation(err error) bool {
	// 23505 is the Postgres unique_violation code.
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

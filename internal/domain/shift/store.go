package shift

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const scheduleColumns = `
    id, department_id, name, shift_type,
    main_start, main_end, lunch_start, lunch_end,
    regular_ot_start, regular_ot_end, weekly_ot_start, weekly_ot_end,
    created_at, updated_at`

func (s *Store) ListSchedules(ctx context.Context, departmentID string) ([]Schedule, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+scheduleColumns+`
    FROM shift_schedules
    WHERE ($1 = '' OR department_id::text = $1)
    ORDER BY name
  `, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}

func (s *Store) GetSchedule(ctx context.Context, scheduleID string) (Schedule, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+scheduleColumns+`
    FROM shift_schedules
    WHERE id = $1
  `, scheduleID)
	schedule, err := scanSchedule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Schedule{}, ErrScheduleNotFound
	}
	return schedule, err
}

func (s *Store) CreateSchedule(ctx context.Context, schedule Schedule) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO shift_schedules (department_id, name, shift_type,
                                 main_start, main_end, lunch_start, lunch_end,
                                 regular_ot_start, regular_ot_end, weekly_ot_start, weekly_ot_end)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    RETURNING id
  `, schedule.DepartmentID, schedule.Name, schedule.ShiftType,
		int(schedule.Main.Start), int(schedule.Main.End),
		windowStart(schedule.Lunch), windowEnd(schedule.Lunch),
		windowStart(schedule.RegularOvertime), windowEnd(schedule.RegularOvertime),
		windowStart(schedule.WeeklyOvertime), windowEnd(schedule.WeeklyOvertime)).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, schedule Schedule) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE shift_schedules
    SET name = $2, shift_type = $3,
        main_start = $4, main_end = $5, lunch_start = $6, lunch_end = $7,
        regular_ot_start = $8, regular_ot_end = $9, weekly_ot_start = $10, weekly_ot_end = $11,
        updated_at = now()
    WHERE id = $1
  `, schedule.ID, schedule.Name, schedule.ShiftType,
		int(schedule.Main.Start), int(schedule.Main.End),
		windowStart(schedule.Lunch), windowEnd(schedule.Lunch),
		windowStart(schedule.RegularOvertime), windowEnd(schedule.RegularOvertime),
		windowStart(schedule.WeeklyOvertime), windowEnd(schedule.WeeklyOvertime))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func scanSchedule(row pgx.Row) (Schedule, error) {
	var schedule Schedule
	var mainStart, mainEnd int
	var lunchStart, lunchEnd, regStart, regEnd, weeklyStart, weeklyEnd *int
	if err := row.Scan(
		&schedule.ID, &schedule.DepartmentID, &schedule.Name, &schedule.ShiftType,
		&mainStart, &mainEnd, &lunchStart, &lunchEnd,
		&regStart, &regEnd, &weeklyStart, &weeklyEnd,
		&schedule.CreatedAt, &schedule.UpdatedAt,
	); err != nil {
		return Schedule{}, err
	}
	schedule.Main = Window{Start: TimeOfDay(mainStart), End: TimeOfDay(mainEnd)}
	schedule.Lunch = windowFrom(lunchStart, lunchEnd)
	schedule.RegularOvertime = windowFrom(regStart, regEnd)
	schedule.WeeklyOvertime = windowFrom(weeklyStart, weeklyEnd)
	return schedule, nil
}

func windowFrom(start, end *int) *Window {
	if start == nil || end == nil {
		return nil
	}
	return &Window{Start: TimeOfDay(*start), End: TimeOfDay(*end)}
}

func windowStart(w *Window) any {
	if w == nil {
		return nil
	}
	return int(w.Start)
}

func windowEnd(w *Window) any {
	if w == nil {
		return nil
	}
	return int(w.End)
}

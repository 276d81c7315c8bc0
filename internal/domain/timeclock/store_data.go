package timeclock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

var _ StoreAPI = (*Store)(nil)

const tsColumns = "id, tenant_id, employee_id, clock_in, clock_out, total_hours, work_date::text, notes, edit_reason, edited_by, edited_at, created_at, updated_at"

func scanTimesheet(row pgx.Row) (Timesheet, error) {
	var t Timesheet
	err := row.Scan(&t.ID, &t.TenantID, &t.EmployeeID, &t.ClockIn, &t.ClockOut, &t.TotalHours,
		&t.WorkDate, &t.Notes, &t.EditReason, &t.EditedBy, &t.EditedAt, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *Store) FindActiveEmployeeByPIN(ctx context.Context, tenantID, pin string) (EmployeeRef, error) {
	var e EmployeeRef
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name
    FROM employees
    WHERE tenant_id = $1 AND pin = $2 AND is_active = TRUE
  `, tenantID, pin).Scan(&e.ID, &e.FirstName, &e.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeRef{}, ErrInvalidPIN
	}
	return e, err
}

func (s *Store) StartShift(ctx context.Context, tenantID string, employeeID int64, now time.Time, workDate string) (Timesheet, *Timesheet, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Timesheet{}, nil, err
	}
	defer tx.Rollback(ctx)

	var autoClosed *Timesheet
	open, err := scanTimesheet(tx.QueryRow(ctx, `
    SELECT `+tsColumns+`
    FROM timesheets
    WHERE tenant_id = $1 AND employee_id = $2 AND clock_out IS NULL
    FOR UPDATE
  `, tenantID, employeeID))
	switch {
	case err == nil:
		hours := TotalHours(open.ClockIn, now)
		closed, cerr := scanTimesheet(tx.QueryRow(ctx, `
      UPDATE timesheets
      SET clock_out = $3, total_hours = $4, updated_at = now()
      WHERE tenant_id = $1 AND id = $2
      RETURNING `+tsColumns,
			tenantID, open.ID, now, hours))
		if cerr != nil {
			return Timesheet{}, nil, cerr
		}
		autoClosed = &closed
	case errors.Is(err, pgx.ErrNoRows):
		// nothing to close
	default:
		return Timesheet{}, nil, err
	}

	started, err := scanTimesheet(tx.QueryRow(ctx, `
    INSERT INTO timesheets (tenant_id, employee_id, clock_in, work_date)
    VALUES ($1, $2, $3, $4::date)
    RETURNING `+tsColumns,
		tenantID, employeeID, now, workDate))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Timesheet{}, nil, ErrAlreadyClockedIn
		}
		return Timesheet{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Timesheet{}, nil, err
	}
	return started, autoClosed, nil
}

func (s *Store) FinishShift(ctx context.Context, tenantID string, employeeID int64, now time.Time) (Timesheet, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Timesheet{}, err
	}
	defer tx.Rollback(ctx)

	open, err := scanTimesheet(tx.QueryRow(ctx, `
    SELECT `+tsColumns+`
    FROM timesheets
    WHERE tenant_id = $1 AND employee_id = $2 AND clock_out IS NULL
    FOR UPDATE
  `, tenantID, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrNoOpenShift
	}
	if err != nil {
		return Timesheet{}, err
	}

	hours := TotalHours(open.ClockIn, now)
	closed, err := scanTimesheet(tx.QueryRow(ctx, `
    UPDATE timesheets
    SET clock_out = $3, total_hours = $4, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
    RETURNING `+tsColumns,
		tenantID, open.ID, now, hours))
	if err != nil {
		return Timesheet{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Timesheet{}, err
	}
	return closed, nil
}

func (s *Store) ActiveShifts(ctx context.Context, tenantID string) ([]ActiveShift, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.employee_id, e.first_name || ' ' || e.last_name, t.clock_in
    FROM timesheets t
    JOIN employees e ON t.employee_id = e.id
    WHERE t.tenant_id = $1 AND t.clock_out IS NULL
    ORDER BY t.clock_in DESC
  `, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActiveShift
	for rows.Next() {
		var a ActiveShift
		if err := rows.Scan(&a.TimesheetID, &a.EmployeeID, &a.EmployeeName, &a.ClockIn); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) List(ctx context.Context, tenantID string, filter Filter) ([]Timesheet, int, error) {
	var where strings.Builder
	where.WriteString("WHERE tenant_id = $1")
	args := []any{tenantID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		fmt.Fprintf(&where, " AND employee_id = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&where, " AND clock_in >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&where, " AND clock_in < $%d", len(args))
	}
	if filter.OpenOnly {
		where.WriteString(" AND clock_out IS NULL")
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM timesheets "+where.String(), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.Limit)
	limitArg := len(args)
	args = append(args, filter.Offset)
	offsetArg := len(args)

	query := fmt.Sprintf("SELECT %s FROM timesheets %s ORDER BY clock_in DESC LIMIT $%d OFFSET $%d",
		tsColumns, where.String(), limitArg, offsetArg)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (s *Store) Get(ctx context.Context, tenantID string, id int64) (Timesheet, error) {
	t, err := scanTimesheet(s.DB.QueryRow(ctx,
		"SELECT "+tsColumns+" FROM timesheets WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrEntryNotFound
	}
	return t, err
}

func (s *Store) Update(ctx context.Context, tenantID string, id int64, clockIn time.Time, clockOut *time.Time, totalHours *float64, workDate string, notes *string, reason, editedBy string, editedAt time.Time) (Timesheet, error) {
	t, err := scanTimesheet(s.DB.QueryRow(ctx, `
    UPDATE timesheets
    SET clock_in = $3,
        clock_out = $4,
        total_hours = $5,
        work_date = $6::date,
        notes = COALESCE($7, notes),
        edit_reason = $8,
        edited_by = $9,
        edited_at = $10,
        updated_at = now()
    WHERE tenant_id = $1 AND id = $2
    RETURNING `+tsColumns,
		tenantID, id, clockIn, clockOut, totalHours, workDate, notes, reason, editedBy, editedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrEntryNotFound
	}
	return t, err
}

func (s *Store) Delete(ctx context.Context, tenantID string, id int64) (Timesheet, error) {
	t, err := scanTimesheet(s.DB.QueryRow(ctx,
		"DELETE FROM timesheets WHERE tenant_id = $1 AND id = $2 RETURNING "+tsColumns, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrEntryNotFound
	}
	return t, err
}

func (s *Store) SummaryByEmployee(ctx context.Context, tenantID string, from, to time.Time) ([]EmployeeSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.employee_id, e.first_name || ' ' || e.last_name,
           COALESCE(SUM(t.total_hours), 0), COUNT(1)
    FROM timesheets t
    JOIN employees e ON t.employee_id = e.id
    WHERE t.tenant_id = $1 AND t.clock_out IS NOT NULL
      AND t.work_date >= $2::date AND t.work_date <= $3::date
    GROUP BY t.employee_id, e.first_name, e.last_name
    ORDER BY e.first_name, e.last_name
  `, tenantID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeSummary
	for rows.Next() {
		var s EmployeeSummary
		if err := rows.Scan(&s.EmployeeID, &s.EmployeeName, &s.TotalHours, &s.ShiftCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (s *Store) CloseAllOpenShifts(ctx context.Context, tenantID string, now time.Time) (int, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timesheets
    SET clock_out = $2,
        total_hours = EXTRACT(EPOCH FROM ($2 - clock_in)) / 3600,
        updated_at = now()
    WHERE tenant_id = $1 AND clock_out IS NULL
  `, tenantID, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) TenantSettings(ctx context.Context, tenantID string) (Settings, error) {
	var out Settings
	err := s.DB.QueryRow(ctx, `
    SELECT timezone, auto_clock_out_time, long_shift_warn_hours
    FROM tenants WHERE id = $1
  `, tenantID).Scan(&out.Timezone, &out.AutoClockOutTime, &out.LongShiftWarnHours)
	return out, err
}

func (s *Store) UpdateTenantSettings(ctx context.Context, tenantID string, in SettingsInput) (Settings, error) {
	var out Settings
	err := s.DB.QueryRow(ctx, `
    UPDATE tenants SET
      timezone = COALESCE($2, timezone),
      auto_clock_out_time = CASE WHEN $3::boolean THEN NULLIF($4, '') ELSE auto_clock_out_time END,
      long_shift_warn_hours = COALESCE($5, long_shift_warn_hours),
      updated_at = now()
    WHERE id = $1
    RETURNING timezone, auto_clock_out_time, long_shift_warn_hours
  `, tenantID, in.Timezone, in.AutoClockOutTime != nil, in.AutoClockOutTime, in.LongShiftWarnHours).
		Scan(&out.Timezone, &out.AutoClockOutTime, &out.LongShiftWarnHours)
	return out, err
}

func (s *Store) ListTenantSettings(ctx context.Context) ([]TenantSettings, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, timezone, auto_clock_out_time, long_shift_warn_hours
    FROM tenants
    WHERE auto_clock_out_time IS NOT NULL
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TenantSettings
	for rows.Next() {
		var ts TenantSettings
		if err := rows.Scan(&ts.TenantID, &ts.Settings.Timezone, &ts.Settings.AutoClockOutTime, &ts.Settings.LongShiftWarnHours); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

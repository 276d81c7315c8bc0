package timeclock

import (
	"context"
	"time"
)

// StoreAPI is the persistence boundary for attendance. Operations that
// must be atomic (shift start, shift close, the nightly sweep) are
// single methods so the store can run them in one transaction.
type StoreAPI interface {
	FindActiveEmployeeByPIN(ctx context.Context, tenantID, pin string) (EmployeeRef, error)

	// StartShift closes any open shift the employee still has, then
	// opens a new one. The closed shift, if any, is returned alongside
	// the new entry.
	StartShift(ctx context.Context, tenantID string, employeeID int64, now time.Time, workDate string) (Timesheet, *Timesheet, error)

	// FinishShift closes the employee's open shift, computing its total
	// hours. Returns ErrNoOpenShift when there is nothing to close.
	FinishShift(ctx context.Context, tenantID string, employeeID int64, now time.Time) (Timesheet, error)

	ActiveShifts(ctx context.Context, tenantID string) ([]ActiveShift, error)

	List(ctx context.Context, tenantID string, filter Filter) ([]Timesheet, int, error)
	Get(ctx context.Context, tenantID string, id int64) (Timesheet, error)
	Update(ctx context.Context, tenantID string, id int64, clockIn time.Time, clockOut *time.Time, totalHours *float64, workDate string, notes *string, reason, editedBy string, editedAt time.Time) (Timesheet, error)
	Delete(ctx context.Context, tenantID string, id int64) (Timesheet, error)

	SummaryByEmployee(ctx context.Context, tenantID string, from, to time.Time) ([]EmployeeSummary, error)

	// CloseAllOpenShifts closes every open shift for the tenant and
	// returns how many were closed.
	CloseAllOpenShifts(ctx context.Context, tenantID string, now time.Time) (int, error)

	TenantSettings(ctx context.Context, tenantID string) (Settings, error)
	UpdateTenantSettings(ctx context.Context, tenantID string, in SettingsInput) (Settings, error)
	ListTenantSettings(ctx context.Context) ([]TenantSettings, error)
}

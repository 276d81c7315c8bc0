package timeclock

import "time"

type Timesheet struct {
	ID         int64      `json:"id"`
	TenantID   string     `json:"tenantId"`
	EmployeeID int64      `json:"employeeId"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut"`
	TotalHours *float64   `json:"totalHours"`
	WorkDate   string     `json:"workDate"`
	Notes      string     `json:"notes"`
	EditReason *string    `json:"editReason,omitempty"`
	EditedBy   *string    `json:"editedBy,omitempty"`
	EditedAt   *time.Time `json:"editedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Open reports whether the shift has not been clocked out yet.
func (t Timesheet) Open() bool {
	return t.ClockOut == nil
}

// EmployeeRef is the minimal employee identity resolved from a PIN.
type EmployeeRef struct {
	ID        int64
	FirstName string
	LastName  string
}

func (e EmployeeRef) FullName() string {
	return e.FirstName + " " + e.LastName
}

// ActiveShift is a row in the floor view: an open shift joined with
// the employee's display name.
type ActiveShift struct {
	TimesheetID  int64     `json:"timesheetId"`
	EmployeeID   int64     `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	ClockIn      time.Time `json:"clockIn"`
	Elapsed      string    `json:"elapsed"`
}

type ClockInResult struct {
	Timesheet    Timesheet  `json:"timesheet"`
	EmployeeName string     `json:"employeeName"`
	AutoClosed   *Timesheet `json:"autoClosed,omitempty"`
	Warning      string     `json:"warning,omitempty"`
}

type ClockOutResult struct {
	Timesheet    Timesheet `json:"timesheet"`
	EmployeeName string    `json:"employeeName"`
	Warning      string    `json:"warning,omitempty"`
}

type Filter struct {
	EmployeeID *int64
	From       *time.Time
	To         *time.Time
	OpenOnly   bool
	Limit      int
	Offset     int
}

type EditInput struct {
	ClockIn  *time.Time `json:"clockIn"`
	ClockOut *time.Time `json:"clockOut"`
	Notes    *string    `json:"notes"`
	Reason   string     `json:"reason"`
}

type EmployeeSummary struct {
	EmployeeID   int64   `json:"employeeId"`
	EmployeeName string  `json:"employeeName"`
	TotalHours   float64 `json:"totalHours"`
	ShiftCount   int     `json:"shiftCount"`
}

// Settings is the per-tenant attendance configuration.
type Settings struct {
	Timezone           string  `json:"timezone"`
	AutoClockOutTime   *string `json:"autoClockOutTime"`
	LongShiftWarnHours float64 `json:"longShiftWarnHours"`
}

type SettingsInput struct {
	Timezone           *string  `json:"timezone"`
	AutoClockOutTime   *string  `json:"autoClockOutTime"`
	LongShiftWarnHours *float64 `json:"longShiftWarnHours"`
}

// TenantSettings pairs settings with their tenant for the scheduler sweep.
type TenantSettings struct {
	TenantID string
	Settings Settings
}

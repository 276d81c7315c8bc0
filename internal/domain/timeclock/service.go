package timeclock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stempel/internal/domain/audit"
	"stempel/internal/domain/notifications"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// AuditTrail appends immutable events for the correction trail.
type AuditTrail interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

// ManagerNotifier fans an in-app notification out to a set of users.
type ManagerNotifier interface {
	NotifyAll(ctx context.Context, tenantID string, userIDs []string, ntype, title, body string)
}

// ManagerDirectory resolves the users who should receive attendance
// alerts for a tenant.
type ManagerDirectory interface {
	ManagerUserIDs(ctx context.Context, tenantID string) ([]string, error)
}

type Service struct {
	store    StoreAPI
	logger   *slog.Logger
	now      func() time.Time
	trail    AuditTrail
	notifier ManagerNotifier
	managers ManagerDirectory
}

func NewService(store StoreAPI, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// WithAlerts attaches the audit trail and manager fan-out used by the
// auto clock-out sweep and by long-shift clock-outs. Without it the
// service still works, it just stays silent.
func (s *Service) WithAlerts(trail AuditTrail, notifier ManagerNotifier, managers ManagerDirectory) *Service {
	s.trail = trail
	s.notifier = notifier
	s.managers = managers
	return s
}

func (s *Service) ClockIn(ctx context.Context, tenantID, pin string) (ClockInResult, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return ClockInResult{}, fmt.Errorf("%w: pin is required", ErrValidation)
	}

	emp, err := s.store.FindActiveEmployeeByPIN(ctx, tenantID, pin)
	if err != nil {
		return ClockInResult{}, err
	}

	loc := s.tenantLocation(ctx, tenantID)
	now := s.now()

	started, autoClosed, err := s.store.StartShift(ctx, tenantID, emp.ID, now, WorkDate(now, loc))
	if err != nil {
		return ClockInResult{}, err
	}

	result := ClockInResult{
		Timesheet:    started,
		EmployeeName: emp.FullName(),
		AutoClosed:   autoClosed,
	}
	if autoClosed != nil {
		result.Warning = fmt.Sprintf("an open shift from %s was closed automatically",
			autoClosed.ClockIn.In(loc).Format("Jan 2 15:04"))
	}
	return result, nil
}

func (s *Service) ClockOut(ctx context.Context, tenantID, pin string) (ClockOutResult, error) {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return ClockOutResult{}, fmt.Errorf("%w: pin is required", ErrValidation)
	}

	emp, err := s.store.FindActiveEmployeeByPIN(ctx, tenantID, pin)
	if err != nil {
		return ClockOutResult{}, err
	}

	closed, err := s.store.FinishShift(ctx, tenantID, emp.ID, s.now())
	if err != nil {
		return ClockOutResult{}, err
	}

	result := ClockOutResult{Timesheet: closed, EmployeeName: emp.FullName()}
	if settings, serr := s.store.TenantSettings(ctx, tenantID); serr == nil {
		if closed.TotalHours != nil && settings.LongShiftWarnHours > 0 && *closed.TotalHours > settings.LongShiftWarnHours {
			result.Warning = fmt.Sprintf("shift lasted %.1f hours, the times may need a correction", *closed.TotalHours)
			s.alertManagers(ctx, tenantID, notifications.TypeLongShift, "Long shift recorded",
				fmt.Sprintf("%s clocked out after %.1f hours on %s", emp.FullName(), *closed.TotalHours, closed.WorkDate))
		}
	}
	return result, nil
}

// Active returns open shifts for the floor view, newest first, with a
// display-ready elapsed time.
func (s *Service) Active(ctx context.Context, tenantID string) ([]ActiveShift, error) {
	shifts, err := s.store.ActiveShifts(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range shifts {
		shifts[i].Elapsed = FormatElapsed(now.Sub(shifts[i].ClockIn))
	}
	return shifts, nil
}

func (s *Service) ListEntries(ctx context.Context, tenantID string, filter Filter) ([]Timesheet, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.List(ctx, tenantID, filter)
}

func (s *Service) GetEntry(ctx context.Context, tenantID string, id int64) (Timesheet, error) {
	return s.store.Get(ctx, tenantID, id)
}

func (s *Service) EditEntry(ctx context.Context, tenantID string, id int64, editedBy string, in EditInput) (Timesheet, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return Timesheet{}, fmt.Errorf("%w: an edit reason is required", ErrValidation)
	}

	current, err := s.store.Get(ctx, tenantID, id)
	if err != nil {
		return Timesheet{}, err
	}

	clockIn := current.ClockIn
	if in.ClockIn != nil {
		clockIn = *in.ClockIn
	}
	clockOut := current.ClockOut
	if in.ClockOut != nil {
		clockOut = in.ClockOut
	}

	var totalHours *float64
	if clockOut != nil {
		if !clockOut.After(clockIn) {
			return Timesheet{}, fmt.Errorf("%w: clock out must be after clock in", ErrValidation)
		}
		hours := TotalHours(clockIn, *clockOut)
		totalHours = &hours
	}

	loc := s.tenantLocation(ctx, tenantID)
	return s.store.Update(ctx, tenantID, id, clockIn, clockOut, totalHours,
		WorkDate(clockIn, loc), in.Notes, reason, editedBy, s.now())
}

// DeleteEntry removes an entry permanently. The returned row is what
// was removed, so callers can record it in the audit trail.
func (s *Service) DeleteEntry(ctx context.Context, tenantID string, id int64, reason string) (Timesheet, error) {
	if strings.TrimSpace(reason) == "" {
		return Timesheet{}, fmt.Errorf("%w: a deletion reason is required", ErrValidation)
	}
	return s.store.Delete(ctx, tenantID, id)
}

func (s *Service) Summary(ctx context.Context, tenantID string, from, to time.Time) ([]EmployeeSummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end is before range start", ErrValidation)
	}
	return s.store.SummaryByEmployee(ctx, tenantID, from, to)
}

func (s *Service) Settings(ctx context.Context, tenantID string) (Settings, error) {
	return s.store.TenantSettings(ctx, tenantID)
}

func (s *Service) UpdateSettings(ctx context.Context, tenantID string, in SettingsInput) (Settings, error) {
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return Settings{}, fmt.Errorf("%w: unknown timezone %q", ErrValidation, *in.Timezone)
		}
	}
	if in.AutoClockOutTime != nil && *in.AutoClockOutTime != "" {
		if err := ParseWallClock(*in.AutoClockOutTime); err != nil {
			return Settings{}, err
		}
	}
	if in.LongShiftWarnHours != nil && *in.LongShiftWarnHours <= 0 {
		return Settings{}, fmt.Errorf("%w: long shift threshold must be positive", ErrValidation)
	}
	return s.store.UpdateTenantSettings(ctx, tenantID, in)
}

// AutoClockOutDue reports whether the tenant's configured cutoff
// matches the current minute in the tenant's timezone.
func AutoClockOutDue(settings Settings, now time.Time) bool {
	if settings.AutoClockOutTime == nil || *settings.AutoClockOutTime == "" {
		return false
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return now.In(loc).Format("15:04") == *settings.AutoClockOutTime
}

// RunAutoClockOut sweeps every tenant whose cutoff matches the current
// minute and force-closes their open shifts. Returns the total number
// of shifts closed.
func (s *Service) RunAutoClockOut(ctx context.Context, now time.Time) (int, error) {
	tenants, err := s.store.ListTenantSettings(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, t := range tenants {
		if !AutoClockOutDue(t.Settings, now) {
			continue
		}
		closed, err := s.store.CloseAllOpenShifts(ctx, t.TenantID, now)
		if err != nil {
			s.logger.Error("auto clock-out sweep failed", "tenantId", t.TenantID, "error", err)
			continue
		}
		if closed > 0 {
			s.logger.Info("auto clock-out closed open shifts", "tenantId", t.TenantID, "closed", closed)
			cutoff := ""
			if t.Settings.AutoClockOutTime != nil {
				cutoff = *t.Settings.AutoClockOutTime
			}
			if s.trail != nil {
				if err := s.trail.Record(ctx, t.TenantID, "", audit.ActionAutoClockOut, "timesheet", "", "", "",
					nil, map[string]any{"closedShifts": closed, "cutoff": cutoff}); err != nil {
					s.logger.Warn("audit record failed", "action", audit.ActionAutoClockOut, "error", err)
				}
			}
			s.alertManagers(ctx, t.TenantID, notifications.TypeShiftAutoClosed, "Open shifts were auto-closed",
				fmt.Sprintf("%d open shift(s) were closed at the %s cutoff", closed, cutoff))
		}
		total += closed
	}
	return total, nil
}

func (s *Service) alertManagers(ctx context.Context, tenantID, ntype, title, body string) {
	if s.notifier == nil || s.managers == nil {
		return
	}
	ids, err := s.managers.ManagerUserIDs(ctx, tenantID)
	if err != nil {
		s.logger.Warn("manager lookup failed", "tenantId", tenantID, "error", err)
		return
	}
	s.notifier.NotifyAll(ctx, tenantID, ids, ntype, title, body)
}

func (s *Service) tenantLocation(ctx context.Context, tenantID string) *time.Location {
	settings, err := s.store.TenantSettings(ctx, tenantID)
	if err != nil {
		s.logger.Warn("tenant settings lookup failed, using UTC", "tenantId", tenantID, "error", err)
		return time.UTC
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		s.logger.Warn("invalid tenant timezone, using UTC", "tenantId", tenantID, "timezone", settings.Timezone)
		return time.UTC
	}
	return loc
}

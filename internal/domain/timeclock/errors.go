package timeclock

import "errors"

var (
	ErrInvalidPIN       = errors.New("no active employee matches pin")
	ErrAlreadyClockedIn = errors.New("employee already has an open shift")
	ErrNoOpenShift      = errors.New("employee has no open shift")
	ErrEntryNotFound    = errors.New("timesheet entry not found")
	ErrValidation       = errors.New("validation failed")
)

package staff

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrPinTaken         = errors.New("pin already in use")
	ErrValidation       = errors.New("validation failed")
)

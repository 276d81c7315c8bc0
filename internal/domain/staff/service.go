package staff

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

type StoreAPI interface {
	List(ctx context.Context, tenantID string, includeInactive bool) ([]Employee, error)
	Get(ctx context.Context, tenantID string, id int64) (Employee, error)
	Create(ctx context.Context, tenantID string, in CreateEmployeeInput) (Employee, error)
	Update(ctx context.Context, tenantID string, id int64, in UpdateEmployeeInput) (Employee, error)
	Deactivate(ctx context.Context, tenantID string, id int64) error
}

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, tenantID string, includeInactive bool) ([]Employee, error) {
	return s.store.List(ctx, tenantID, includeInactive)
}

func (s *Service) Get(ctx context.Context, tenantID string, id int64) (Employee, error) {
	return s.store.Get(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, tenantID string, in CreateEmployeeInput) (Employee, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Role = strings.TrimSpace(in.Role)

	if in.FirstName == "" || in.LastName == "" {
		return Employee{}, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	if err := ValidatePIN(in.PIN); err != nil {
		return Employee{}, err
	}
	return s.store.Create(ctx, tenantID, in)
}

func (s *Service) Update(ctx context.Context, tenantID string, id int64, in UpdateEmployeeInput) (Employee, error) {
	if in.FirstName != nil {
		trimmed := strings.TrimSpace(*in.FirstName)
		if trimmed == "" {
			return Employee{}, fmt.Errorf("%w: first name cannot be empty", ErrValidation)
		}
		in.FirstName = &trimmed
	}
	if in.LastName != nil {
		trimmed := strings.TrimSpace(*in.LastName)
		if trimmed == "" {
			return Employee{}, fmt.Errorf("%w: last name cannot be empty", ErrValidation)
		}
		in.LastName = &trimmed
	}
	if in.PIN != nil {
		if err := ValidatePIN(*in.PIN); err != nil {
			return Employee{}, err
		}
	}
	return s.store.Update(ctx, tenantID, id, in)
}

func (s *Service) Deactivate(ctx context.Context, tenantID string, id int64) error {
	return s.store.Deactivate(ctx, tenantID, id)
}

// ValidatePIN accepts 4 to 6 digit codes. PINs are unique per tenant
// among active employees so terminal lookups stay unambiguous.
func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", ErrValidation)
	}
	for _, r := range pin {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("%w: pin must contain only digits", ErrValidation)
		}
	}
	return nil
}

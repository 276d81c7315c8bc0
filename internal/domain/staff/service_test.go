package staff

import (
	"context"
	"errors"
	"testing"
)

type fakeStore struct {
	employees map[int64]Employee
	pins      map[int64]string
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{employees: make(map[int64]Employee), pins: make(map[int64]string), nextID: 1}
}

func (f *fakeStore) List(_ context.Context, tenantID string, includeInactive bool) ([]Employee, error) {
	var out []Employee
	for _, e := range f.employees {
		if e.TenantID != tenantID {
			continue
		}
		if !includeInactive && !e.IsActive {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, tenantID string, id int64) (Employee, error) {
	e, ok := f.employees[id]
	if !ok || e.TenantID != tenantID {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeStore) Create(_ context.Context, tenantID string, in CreateEmployeeInput) (Employee, error) {
	for _, e := range f.employees {
		if e.TenantID == tenantID && e.IsActive && f.pins[e.ID] == in.PIN {
			return Employee{}, ErrPinTaken
		}
	}
	e := Employee{ID: f.nextID, TenantID: tenantID, FirstName: in.FirstName, LastName: in.LastName, Role: in.Role, IsActive: true}
	f.pins[e.ID] = in.PIN
	f.employees[e.ID] = e
	f.nextID++
	return e, nil
}

func (f *fakeStore) Update(_ context.Context, tenantID string, id int64, in UpdateEmployeeInput) (Employee, error) {
	e, ok := f.employees[id]
	if !ok || e.TenantID != tenantID {
		return Employee{}, ErrEmployeeNotFound
	}
	if in.FirstName != nil {
		e.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		e.LastName = *in.LastName
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	f.employees[id] = e
	return e, nil
}

func (f *fakeStore) Deactivate(_ context.Context, tenantID string, id int64) error {
	e, ok := f.employees[id]
	if !ok || e.TenantID != tenantID {
		return ErrEmployeeNotFound
	}
	e.IsActive = false
	f.employees[id] = e
	return nil
}

var _ StoreAPI = (*fakeStore)(nil)

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{"four digits", "1234", false},
		{"six digits", "123456", false},
		{"too short", "123", true},
		{"too long", "1234567", true},
		{"letters", "12ab", true},
		{"empty", "", true},
		{"spaces", "12 4", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePIN(%q) error = %v, wantErr %v", tt.pin, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestCreateEmployee(t *testing.T) {
	svc := NewService(newFakeStore())

	e, err := svc.Create(context.Background(), "t1", CreateEmployeeInput{
		FirstName: "  Anna ", LastName: "Berg", Role: "stylist", PIN: "1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.FirstName != "Anna" {
		t.Errorf("first name not trimmed: %q", e.FirstName)
	}
	if !e.IsActive {
		t.Error("new employee should be active")
	}

	_, err = svc.Create(context.Background(), "t1", CreateEmployeeInput{
		FirstName: "Other", LastName: "Person", PIN: "1234",
	})
	if !errors.Is(err, ErrPinTaken) {
		t.Fatalf("duplicate pin: got %v, want ErrPinTaken", err)
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), "t1", CreateEmployeeInput{FirstName: " ", LastName: "Berg", PIN: "1234"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("blank first name: got %v, want ErrValidation", err)
	}

	_, err = svc.Create(context.Background(), "t1", CreateEmployeeInput{FirstName: "Anna", LastName: "Berg", PIN: "12"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("short pin: got %v, want ErrValidation", err)
	}
}

func TestUpdateEmployeeBlankName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	e, err := svc.Create(context.Background(), "t1", CreateEmployeeInput{FirstName: "Anna", LastName: "Berg", PIN: "1234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	blank := "   "
	_, err = svc.Update(context.Background(), "t1", e.ID, UpdateEmployeeInput{FirstName: &blank})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("blank update: got %v, want ErrValidation", err)
	}
}

func TestTenantIsolation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	e, err := svc.Create(context.Background(), "t1", CreateEmployeeInput{FirstName: "Anna", LastName: "Berg", PIN: "1234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), "t2", e.ID); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("cross tenant get: got %v, want ErrEmployeeNotFound", err)
	}
	if err := svc.Deactivate(context.Background(), "t2", e.ID); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("cross tenant deactivate: got %v, want ErrEmployeeNotFound", err)
	}
}

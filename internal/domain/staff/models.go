package staff

import "time"

type Employee struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenantId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateEmployeeInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	PIN       string `json:"pin"`
}

type UpdateEmployeeInput struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	PIN       *string `json:"pin"`
	IsActive  *bool   `json:"isActive"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

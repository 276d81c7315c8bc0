package staff

import (
	"context"
	"errors"

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

const employeeColumns = "id, tenant_id, first_name, last_name, role, is_active, created_at, updated_at"

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.TenantID, &e.FirstName, &e.LastName, &e.Role, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *Store) List(ctx context.Context, tenantID string, includeInactive bool) ([]Employee, error) {
	query := "SELECT " + employeeColumns + " FROM employees WHERE tenant_id = $1"
	if !includeInactive {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY first_name, last_name"

	rows, err := s.DB.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, tenantID string, id int64) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE tenant_id = $1 AND id = $2", tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	return e, err
}

func (s *Store) Create(ctx context.Context, tenantID string, in CreateEmployeeInput) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    INSERT INTO employees (tenant_id, first_name, last_name, role, pin, is_active)
    VALUES ($1, $2, $3, $4, $5, TRUE)
    RETURNING `+employeeColumns,
		tenantID, in.FirstName, in.LastName, in.Role, in.PIN))
	if isUniqueViolation(err) {
		return Employee{}, ErrPinTaken
	}
	return e, err
}

func (s *Store) Update(ctx context.Context, tenantID string, id int64, in UpdateEmployeeInput) (Employee, error) {
	e, err := scanEmployee(s.DB.QueryRow(ctx, `
    UPDATE employees SET
      first_name = COALESCE($3, first_name),
      last_name  = COALESCE($4, last_name),
      role       = COALESCE($5, role),
      pin        = COALESCE($6, pin),
      is_active  = COALESCE($7, is_active),
      updated_at = now()
    WHERE tenant_id = $1 AND id = $2
    RETURNING `+employeeColumns,
		tenantID, id, in.FirstName, in.LastName, in.Role, in.PIN, in.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if isUniqueViolation(err) {
		return Employee{}, ErrPinTaken
	}
	return e, err
}

func (s *Store) Deactivate(ctx context.Context, tenantID string, id int64) error {
	tag, err := s.DB.Exec(ctx,
		"UPDATE employees SET is_active = FALSE, updated_at = now() WHERE tenant_id = $1 AND id = $2", tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

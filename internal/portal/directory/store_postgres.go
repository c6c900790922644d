// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/dberr"
	"github.com/bgecorp/portal/pkg/pagination"
)

// PostgresEmployeeRepository implements the EmployeeRepository interface using pgx.
type PostgresEmployeeRepository struct {
	pool *pgxpool.Pool
}

// NewEmployeeRepository creates a new PostgreSQL implementation of EmployeeRepository.
func NewEmployeeRepository(pool *pgxpool.Pool) *PostgresEmployeeRepository {
	return &PostgresEmployeeRepository{pool: pool}
}

const employeeColumns = `
	id, firstname, lastname, email, title, department, location, avatarurl, createdat, updatedat`

func scanEmployee(row pgx.Row) (*Employee, error) {
	employee := &Employee{}
	err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.Email,
		&employee.Title,
		&employee.Department,
		&employee.Location,
		&employee.AvatarURL,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return employee, nil
}

/*
FindByID retrieves a directory entry by its unique ID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Employee: Hydrated entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresEmployeeRepository) FindByID(context context.Context, id string) (*Employee, error) {
	const query = `
		SELECT ` + employeeColumns + `
		FROM portal.employee
		WHERE id = $1`

	employee, err := scanEmployee(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Employee not found")
		}
		return nil, fmt.Errorf("postgres_employee_repo_find_failed: %w", err)
	}

	return employee, nil
}

/*
List returns a page of directory entries matching the filter.

Description: Department is an exact match, search is a case-insensitive
substring over name and title. Ordered by last name for a stable directory.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []*Employee: Page of entries
  - int: Total matching rows
  - error: Database retrieval failures
*/
func (repository *PostgresEmployeeRepository) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Employee, int, error) {
	const condition = `
		WHERE ($1 = '' OR department = $1)
		  AND ($2 = '' OR firstname ILIKE '%' || $2 || '%'
		                OR lastname ILIKE '%' || $2 || '%'
		                OR title ILIKE '%' || $2 || '%')`

	var total int
	countQuery := "SELECT COUNT(*) FROM portal.employee" + condition
	if err := repository.pool.QueryRow(context, countQuery, filter.Department, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_employee_repo_count_failed: %w", err)
	}

	listQuery := `
		SELECT ` + employeeColumns + `
		FROM portal.employee` + condition + `
		ORDER BY lastname, firstname
		LIMIT $3 OFFSET $4`

	rows, err := repository.pool.Query(context, listQuery, filter.Department, filter.Search, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_employee_repo_list_failed: %w", err)
	}
	defer rows.Close()

	employees := make([]*Employee, 0, params.Limit)
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_employee_repo_list_scan_failed: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_employee_repo_list_rows_failed: %w", err)
	}

	return employees, total, nil
}

/*
Create persists a new directory entry into the portal.employee table.

Parameters:
  - context: context.Context
  - employee: *Employee

Returns:
  - error: apperr.Conflict on duplicate email, or connectivity errors
*/
func (repository *PostgresEmployeeRepository) Create(context context.Context, employee *Employee) error {
	const query = `
		INSERT INTO portal.employee (
			id, firstname, lastname, email, title, department, location, avatarurl, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	if employee.CreatedAt.IsZero() {
		employee.CreatedAt = now
	}
	employee.UpdatedAt = now

	_, err := repository.pool.Exec(context, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Title,
		employee.Department,
		employee.Location,
		employee.AvatarURL,
		employee.CreatedAt,
		employee.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Employee")
	}

	return nil
}

/*
Update persists changes to an existing directory entry.

Parameters:
  - context: context.Context
  - employee: *Employee

Returns:
  - error: apperr.NotFound if the entry vanished, or execution errors
*/
func (repository *PostgresEmployeeRepository) Update(context context.Context, employee *Employee) error {
	const query = `
		UPDATE portal.employee
		SET firstname = $2, lastname = $3, email = $4, title = $5,
		    department = $6, location = $7, avatarurl = $8, updatedat = $9
		WHERE id = $1`

	employee.UpdatedAt = time.Now()
	tag, err := repository.pool.Exec(context, query,
		employee.ID,
		employee.FirstName,
		employee.LastName,
		employee.Email,
		employee.Title,
		employee.Department,
		employee.Location,
		employee.AvatarURL,
		employee.UpdatedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "Employee")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Employee not found")
	}

	return nil
}

/*
Delete removes a directory entry.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound if the entry vanished, or execution errors
*/
func (repository *PostgresEmployeeRepository) Delete(context context.Context, id string) error {
	const query = "DELETE FROM portal.employee WHERE id = $1"

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return fmt.Errorf("postgres_employee_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Employee not found")
	}

	return nil
}

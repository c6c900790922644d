// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bgecorp/portal/pkg/pagination"
	"github.com/bgecorp/portal/pkg/uuid"
)

// # Data Access Contract

// EmployeeRepository defines the data access contract for directory entries.
type EmployeeRepository interface {

	/*
		FindByID returns the directory entry with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Employee: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Employee, error)

	/*
		List returns a page of directory entries with the total count.
		An empty filter matches everything.

		Parameters:
		  - context: context.Context
		  - filter: ListFilter
		  - params: pagination.Params

		Returns:
		  - []*Employee: Page of entries
		  - int: Total matching rows
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter ListFilter, params pagination.Params) ([]*Employee, int, error)

	/*
		Create persists a new directory entry.

		Parameters:
		  - context: context.Context
		  - employee: *Employee

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, employee *Employee) error

	/*
		Update persists changes to an existing entry.

		Parameters:
		  - context: context.Context
		  - employee: *Employee

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, employee *Employee) error

	/*
		Delete removes a directory entry.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}

// ListFilter narrows a directory listing.
type ListFilter struct {
	// Department, when non-empty, restricts results to one department.
	Department string

	// Search, when non-empty, matches against name and title.
	Search string
}

// # Service Layer

// Service orchestrates the directory use cases.
type Service struct {
	employeeRepository EmployeeRepository
	logger             *slog.Logger
}

// NewService constructs a new [Service] with its repository dependency.
func NewService(employeeRepo EmployeeRepository, logger *slog.Logger) *Service {
	return &Service{
		employeeRepository: employeeRepo,
		logger:             logger,
	}
}

/*
Get retrieves a single directory entry.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Employee: The entry
  - error: NotFound or execution failures
*/
func (service *Service) Get(context context.Context, id string) (*Employee, error) {
	return service.employeeRepository.FindByID(context, id)
}

/*
List returns a page of directory entries.

Parameters:
  - context: context.Context
  - filter: ListFilter
  - params: pagination.Params

Returns:
  - []*Employee: Page of entries
  - int: Total matching rows
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, filter ListFilter, params pagination.Params) ([]*Employee, int, error) {
	filter.Department = strings.TrimSpace(filter.Department)
	filter.Search = strings.TrimSpace(filter.Search)
	return service.employeeRepository.List(context, filter, params)
}

// UpsertInput holds the writable fields of a directory entry.
type UpsertInput struct {
	FirstName  string
	LastName   string
	Email      string
	Title      string
	Department string
	Location   string
	AvatarURL  string
}

/*
Create adds a new directory entry.

Parameters:
  - context: context.Context
  - input: UpsertInput

Returns:
  - *Employee: Created entry
  - error: Conflict or storage failures
*/
func (service *Service) Create(context context.Context, input UpsertInput) (*Employee, error) {
	employee := &Employee{
		ID:         uuid.New(),
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      strings.ToLower(strings.TrimSpace(input.Email)),
		Title:      input.Title,
		Department: input.Department,
		Location:   input.Location,
		AvatarURL:  input.AvatarURL,
	}

	if err := service.employeeRepository.Create(context, employee); err != nil {
		return nil, fmt.Errorf("directory_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "directory entry created",
		slog.String("employee_id", employee.ID),
	)

	return employee, nil
}

/*
Update replaces the writable fields of an existing entry.

Parameters:
  - context: context.Context
  - id: string
  - input: UpsertInput

Returns:
  - *Employee: Updated entry
  - error: NotFound or storage failures
*/
func (service *Service) Update(context context.Context, id string, input UpsertInput) (*Employee, error) {
	employee, err := service.employeeRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	employee.FirstName = input.FirstName
	employee.LastName = input.LastName
	employee.Email = strings.ToLower(strings.TrimSpace(input.Email))
	employee.Title = input.Title
	employee.Department = input.Department
	employee.Location = input.Location
	employee.AvatarURL = input.AvatarURL

	if err := service.employeeRepository.Update(context, employee); err != nil {
		return nil, fmt.Errorf("directory_service_update_failed: %w", err)
	}

	return employee, nil
}

/*
Delete removes a directory entry.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: NotFound or storage failures
*/
func (service *Service) Delete(context context.Context, id string) error {
	if err := service.employeeRepository.Delete(context, id); err != nil {
		return err
	}

	service.logger.InfoContext(context, "directory entry deleted",
		slog.String("employee_id", id),
	)

	return nil
}

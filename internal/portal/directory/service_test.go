// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package directory_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/portal/directory"
	"github.com/bgecorp/portal/pkg/pagination"
)

// fakeEmployeeRepo is an in-memory EmployeeRepository.
type fakeEmployeeRepo struct {
	byID       map[string]*directory.Employee
	lastFilter directory.ListFilter
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{byID: map[string]*directory.Employee{}}
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id string) (*directory.Employee, error) {
	employee, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("Employee")
	}
	clone := *employee
	return &clone, nil
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter directory.ListFilter, params pagination.Params) ([]*directory.Employee, int, error) {
	r.lastFilter = filter

	matches := make([]*directory.Employee, 0, len(r.byID))
	for _, employee := range r.byID {
		if filter.Department != "" && employee.Department != filter.Department {
			continue
		}
		matches = append(matches, employee)
	}
	return matches, len(matches), nil
}

func (r *fakeEmployeeRepo) Create(_ context.Context, employee *directory.Employee) error {
	for _, existing := range r.byID {
		if existing.Email == employee.Email {
			return apperr.Conflict("Employee already exists")
		}
	}
	clone := *employee
	r.byID[employee.ID] = &clone
	return nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, employee *directory.Employee) error {
	if _, ok := r.byID[employee.ID]; !ok {
		return apperr.NotFound("Employee")
	}
	clone := *employee
	r.byID[employee.ID] = &clone
	return nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.NotFound("Employee")
	}
	delete(r.byID, id)
	return nil
}

func newTestService(repo *fakeEmployeeRepo) *directory.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return directory.NewService(repo, logger)
}

/*
TestCreate_NormalizesEmail verifies the entry is stored with a lowercase,
trimmed email and a generated ID.
*/
func TestCreate_NormalizesEmail(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	employee, err := service.Create(context.Background(), directory.UpsertInput{
		FirstName:  "Mai",
		LastName:   "Tran",
		Email:      "  Mai.Tran@BGEcorp.com ",
		Title:      "Accountant",
		Department: "Finance",
	})

	require.NoError(t, err)
	assert.Equal(t, "mai.tran@bgecorp.com", employee.Email)
	assert.NotEmpty(t, employee.ID)
}

/*
TestCreate_DuplicateEmail verifies a second entry with the same address is
rejected with a conflict.
*/
func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	input := directory.UpsertInput{FirstName: "Mai", LastName: "Tran", Email: "mai.tran@bgecorp.com"}
	_, err := service.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = service.Create(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestList_TrimsFilterInput verifies query-string whitespace does not reach
the repository.
*/
func TestList_TrimsFilterInput(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	_, _, err := service.List(context.Background(), directory.ListFilter{
		Department: "  Finance ",
		Search:     " tran\t",
	}, pagination.Params{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Equal(t, "Finance", repo.lastFilter.Department)
	assert.Equal(t, "tran", repo.lastFilter.Search)
}

/*
TestUpdate_ReplacesWritableFields verifies an update is a full replace of
the writable fields while the ID survives.
*/
func TestUpdate_ReplacesWritableFields(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), directory.UpsertInput{
		FirstName:  "Mai",
		LastName:   "Tran",
		Email:      "mai.tran@bgecorp.com",
		Title:      "Accountant",
		Department: "Finance",
	})
	require.NoError(t, err)

	updated, err := service.Update(context.Background(), created.ID, directory.UpsertInput{
		FirstName:  "Mai",
		LastName:   "Tran",
		Email:      "MAI.TRAN@bgecorp.com",
		Title:      "Senior Accountant",
		Department: "Finance",
		Location:   "Hanoi",
	})

	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Senior Accountant", updated.Title)
	assert.Equal(t, "Hanoi", updated.Location)
	assert.Equal(t, strings.ToLower("MAI.TRAN@bgecorp.com"), updated.Email)
}

/*
TestUpdate_UnknownEntry verifies updating a missing entry surfaces NotFound.
*/
func TestUpdate_UnknownEntry(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	_, err := service.Update(context.Background(), "no-such-id", directory.UpsertInput{
		FirstName: "Mai",
		LastName:  "Tran",
		Email:     "mai.tran@bgecorp.com",
	})

	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestDelete_RemovesEntry verifies deletion and that a second delete reports
NotFound.
*/
func TestDelete_RemovesEntry(t *testing.T) {
	repo := newFakeEmployeeRepo()
	service := newTestService(repo)

	created, err := service.Create(context.Background(), directory.UpsertInput{
		FirstName: "Mai",
		LastName:  "Tran",
		Email:     "mai.tran@bgecorp.com",
	})
	require.NoError(t, err)

	require.NoError(t, service.Delete(context.Background(), created.ID))

	_, err = service.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

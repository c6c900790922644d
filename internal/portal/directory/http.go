// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/middleware"
	requestutil "github.com/bgecorp/portal/internal/platform/request"
	"github.com/bgecorp/portal/internal/platform/respond"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/internal/platform/validate"
	"github.com/bgecorp/portal/pkg/pagination"
)

// Handler implements the directory HTTP endpoints.
type Handler struct {
	directoryService *Service
	resolver         middleware.AccessResolver
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, resolver middleware.AccessResolver) *Handler {
	return &Handler{directoryService: service, resolver: resolver}
}

// Routes returns a [chi.Router] configured with the directory routes.
//
// # Authorization
//
// Reading requires the "directory" capability; maintenance additionally
// requires the admin role.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireCapability(handler.resolver, capability.KeyDirectory))

	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Post("/", handler.create)
		r.Put("/{id}", handler.update)
		r.Delete("/{id}", handler.remove)
	})

	return router
}

type upsertRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Location   string `json:"location"`
	AvatarURL  string `json:"avatar_url"`
}

func (input upsertRequest) validate() error {
	v := &validate.Validator{}
	v.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldTitle, input.Title).
		Required(FieldDepartment, input.Department)
	return v.Err()
}

func (input upsertRequest) toInput() UpsertInput {
	return UpsertInput{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Title:      input.Title,
		Department: input.Department,
		Location:   input.Location,
		AvatarURL:  input.AvatarURL,
	}
}

/*
List returns a page of directory entries.

GET /api/v1/directory?department=&q=&page=&limit=

Response:
  - 200: Paginated list of employees
  - 403: ErrForbidden: Caller lacks the directory capability
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := ListFilter{
		Department: request.URL.Query().Get("department"),
		Search:     request.URL.Query().Get("q"),
	}

	employees, total, err := handler.directoryService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, employees, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Get returns a single directory entry.

GET /api/v1/directory/{id}

Response:
  - 200: Employee
  - 404: ErrNotFound: No such entry
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	employee, err := handler.directoryService.Get(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, employee)
}

/*
Create adds a directory entry.

POST /api/v1/directory

Response:
  - 201: Employee: Created entry
  - 400: ErrValidation: Missing or malformed fields
  - 409: ErrConflict: Email already present
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input upsertRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	employee, err := handler.directoryService.Create(request.Context(), input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, employee)
}

/*
Update replaces a directory entry.

PUT /api/v1/directory/{id}

Response:
  - 200: Employee: Updated entry
  - 404: ErrNotFound: No such entry
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input upsertRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	employee, err := handler.directoryService.Update(request.Context(), requestutil.Param(request, "id"), input.toInput())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, employee)
}

/*
Remove deletes a directory entry.

DELETE /api/v1/directory/{id}

Response:
  - 204: No Content
  - 404: ErrNotFound: No such entry
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.directoryService.Delete(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bgecorp/portal/internal/platform/middleware"
	requestutil "github.com/bgecorp/portal/internal/platform/request"
	"github.com/bgecorp/portal/internal/platform/respond"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/internal/platform/validate"
	"github.com/bgecorp/portal/pkg/pagination"
)

// Handler implements the administrative account endpoints.
type Handler struct {
	adminService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{adminService: service}
}

// Routes returns a [chi.Router] configured with the admin account routes.
//
// # Authorization
//
// Every route requires at least the admin role; superadmins pass the same
// gate through the role hierarchy.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireRole(sec.RoleAdmin))

	router.Get("/pending", handler.listPending)
	router.Get("/approved", handler.listApproved)
	router.Post("/{id}/approve", handler.approve)
	router.Put("/{id}/capabilities", handler.setCapabilities)
	router.Delete("/{id}", handler.reject)

	return router
}

// # Request Payloads

type approveRequest struct {
	Role string `json:"role"`
}

type setCapabilitiesRequest struct {
	Capabilities map[string]bool `json:"capabilities"`
}

/*
ListPending returns accounts awaiting approval.

GET /api/v1/admin/accounts/pending

Response:
  - 200: Paginated list of pending accounts, newest first
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) listPending(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.adminService.ListPending(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
ListApproved returns active accounts.

GET /api/v1/admin/accounts/approved

Response:
  - 200: Paginated list of approved accounts, newest first
  - 403: ErrForbidden: Caller is not an administrator
*/
func (handler *Handler) listApproved(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.adminService.ListApproved(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Approve activates a pending account.

POST /api/v1/admin/accounts/{id}/approve

Description: Assigns the requested role and seeds its default permission map.

Request:
  - Body: approveRequest (Role)

Response:
  - 200: User: The activated account
  - 400: ErrValidation: Unknown role
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "id")

	var input approveRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required("role", input.Role).
		OneOf("role", input.Role, string(sec.RoleViewer), string(sec.RoleAdmin), string(sec.RoleSuperadmin))

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.adminService.Approve(request.Context(), identityID, sec.UserRole(input.Role))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Reject removes a registration.

DELETE /api/v1/admin/accounts/{id}

Description: Hard delete. The account is gone and the email may register
again from scratch.

Response:
  - 204: No Content: Account removed
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "id")

	if err := handler.adminService.Reject(request.Context(), identityID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
SetCapabilities replaces an account's permission map.

PUT /api/v1/admin/accounts/{id}/capabilities

Description: Full replace, not a merge. Keys are normalized server-side.

Request:
  - Body: setCapabilitiesRequest (Capabilities)

Response:
  - 200: User: The account with its new permission map
  - 400: ErrValidation: Unnormalizable capability key
  - 404: ErrNotFound: No such account
*/
func (handler *Handler) setCapabilities(writer http.ResponseWriter, request *http.Request) {
	identityID := requestutil.Param(request, "id")

	var input setCapabilitiesRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Capabilities == nil {
		respond.Error(writer, request, validate.RequiredError("capabilities", "is required"))
		return
	}

	user, err := handler.adminService.SetCapabilities(request.Context(), identityID, input.Capabilities)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package navigation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/middleware"
	requestutil "github.com/bgecorp/portal/internal/platform/request"
	"github.com/bgecorp/portal/internal/platform/respond"
)

// AccessResolver resolves the guard snapshot for an authenticated account.
// Satisfied by the auth service.
type AccessResolver interface {
	EffectiveAccess(ctx context.Context, userID string) (capability.Access, error)
}

// Handler serves the filtered navigation menu.
type Handler struct {
	resolver AccessResolver
}

// NewHandler constructs a new [Handler] with its resolver dependency.
func NewHandler(resolver AccessResolver) *Handler {
	return &Handler{resolver: resolver}
}

// Routes returns a [chi.Router] with the navigation endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequireAuth)
	router.Get("/", handler.menu)

	return router
}

/*
Menu returns the navigation entries the caller may see.

GET /api/v1/navigation

Description: Filters the full menu catalog through the caller's effective
capability set. A pending account receives an empty menu plus its state, so
the client can park it on the waiting page.

Response:
  - 200: {state, items, landing}
  - 401: ErrUnauthorized: Missing token or account no longer exists
*/
func (handler *Handler) menu(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	access, err := handler.resolver.EffectiveAccess(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"state":   access.State.String(),
		"items":   Filter(access),
		"landing": Landing(access),
	})
}

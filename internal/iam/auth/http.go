// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
HTTP delivery layer for the portal authentication lifecycle.

It implements the gateway from account creation through session management,
password recovery, and the federated login round trip.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Handles JWT orchestration and refresh token cookie injection.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/constants"
	"github.com/bgecorp/portal/internal/platform/middleware"
	requestutil "github.com/bgecorp/portal/internal/platform/request"
	"github.com/bgecorp/portal/internal/platform/respond"
	"github.com/bgecorp/portal/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the account lifecycle entry
// points (Registration, Login, Federated Login, Password Reset callbacks).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register       : Creates a new pending account.
//   - POST /login          : Authenticates and returns a JWT.
//   - GET  /oidc/start     : Begins the federated login round trip.
//   - GET  /oidc/callback  : Completes the federated login round trip.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)
	router.Get("/oidc/start", handler.oidcStart)
	router.Get("/oidc/callback", handler.oidcCallback)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// setRefreshCookie writes the refresh token cookie for the session.
//
// A remembered session carries an explicit expiry; a non-remembered one is
// session-scoped so the browser drops it on close, which is the short-lived
// login mode.
func setRefreshCookie(writer http.ResponseWriter, session *LoginSession) {
	cookie := &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	if session.Remembered {
		cookie.Expires = session.RefreshTokenExpiresAt
	}
	http.SetCookie(writer, cookie)
}

/*
Register handles the creation of a new pending account.

POST /api/v1/auth/register

Description: Validates input, enforces the email-domain allowlist, and
persists an unapproved account awaiting administrator review.

Request:
  - Body: registerRequest (FirstName, LastName, Email, Password)

Response:
  - 201: User: Created account, pending approval
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 403: DomainNotAllowed: Email domain outside the allowlist
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldFirstName, input.FirstName).
		Required(FieldLastName, input.LastName).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, runs the approval gate, generates JWT
access tokens, and injects a secure refresh token cookie into the response.

Request:
  - Body: loginRequest (Email, Password, RememberMe)

Response:
  - 200: Session: Access token and identity snapshot
  - 401: InvalidCredentials: Unknown email or wrong password
  - 403: PendingApproval: Account awaiting administrator approval
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:      input.Email,
		Password:   input.Password,
		RememberMe: input.RememberMe,
		UserAgent:  request.UserAgent(),
		IPAddress:  getClientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldUser:        session.User,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Invalidates the refresh token (if present) and clears the
security cookie from the client. Always succeeds.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)

	if err == nil && cookie != nil && cookie.Value != "" {
		_ = handler.authService.Logout(request.Context(), cookie.Value)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
Refresh issues a new access token using a valid refresh token.

POST /api/v1/auth/refresh

Description: Rotates the session by validating the refresh token cookie and
issuing a fresh access token and an updated refresh token in the same
lifetime mode.

Response:
  - 200: RefreshResponse: New access token credentials
  - 401: ErrUnauthorized: Missing or invalid refresh token
  - 403: PendingApproval: Approval was revoked since the last refresh
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	session, err := handler.authService.RefreshSession(
		request.Context(),
		cookie.Value,
		request.UserAgent(),
		getClientIP(request),
	)

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)

	respond.OK(writer, map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

/*
Me resolves the caller's identity snapshot.

GET /api/v1/auth/me

Description: Returns the role, approval state, and effective capability set
the client route guard recomputes its state from on every navigation.

Response:
  - 200: Identity: Role, state, and capability snapshot
  - 401: ErrUnauthorized: Missing token or account no longer exists
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.authService.CurrentIdentity(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, identity)
}

// getClientIP tries to extract the real IP address of a user over proxy environments.
func getClientIP(request *http.Request) string {

	ip := request.Header.Get(constants.HeaderXRealIP)
	if ip == "" {
		ip = request.Header.Get(constants.HeaderXForwardedFor)
	}

	if ip == "" {
		ip = request.RemoteAddr
	}
	return ip
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Issues a single-use reset ticket and delivers the reset link
out-of-band.

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Success: Reset link sent
  - 403: PendingApproval: Account not yet approved
  - 404: ErrNotFound: No account with this email
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	_, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "A reset link has been sent to your email.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Consumes the reset ticket and updates the account password.
A ticket authorizes exactly one reset.

Request:
  - Body: resetPasswordRequest (Token, Password)

Response:
  - 200: Success: Password updated
  - 400: InvalidResetTicket: Unknown, expired, or already used ticket
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ConsumeReset(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Federated Login

/*
OIDCStart begins the federated login round trip.

GET /api/v1/auth/oidc/start

Description: Issues a one-time state value, mirrors it in a short-lived
cookie, and redirects the browser to the identity provider.

Response:
  - 302: Redirect to the provider authorization endpoint
  - 503: ServiceUnavailable: Federated login not configured
*/
func (handler *Handler) oidcStart(writer http.ResponseWriter, request *http.Request) {
	state, authURL, err := handler.authService.StartFederatedLogin(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.OIDCStateCookieName,
		Value:    state,
		Path:     "/api/v1/auth/oidc",
		MaxAge:   int(OIDCStateTTL / time.Second),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(writer, request, authURL, http.StatusFound)
}

/*
OIDCCallback completes the federated login round trip.

GET /api/v1/auth/oidc/callback

Description: Verifies the state against both the cookie and the server-side
record, redeems the authorization code, establishes the session, and sends
the browser back to the portal. Failures redirect to the login page with an
error code rather than rendering JSON, since the caller is a browser
mid-redirect.

Response:
  - 302: Redirect to the portal (session cookie set) or to /login?error=...
*/
func (handler *Handler) oidcCallback(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	state := query.Get("state")
	code := query.Get("code")

	portalBase := handler.authService.policy.PortalBaseURL

	// The state must match the cookie set at the start of the round trip.
	stateCookie, err := request.Cookie(constants.OIDCStateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state || code == "" {
		redirectWithError(writer, request, portalBase, "invalid_state")
		return
	}

	// Single use either way.
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.OIDCStateCookieName,
		Value:    "",
		Path:     "/api/v1/auth/oidc",
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	session, err := handler.authService.CompleteFederatedLogin(
		request.Context(),
		state,
		code,
		request.UserAgent(),
		getClientIP(request),
	)
	if err != nil {
		code := "login_failed"
		if appErr := apperr.As(err); appErr != nil {
			code = appErr.Code
		}
		redirectWithError(writer, request, portalBase, code)
		return
	}

	setRefreshCookie(writer, session)

	// The client bootstraps its access token through /refresh on arrival.
	http.Redirect(writer, request, portalBase, http.StatusFound)
}

// redirectWithError sends the browser to the portal login page carrying an
// error code in the query string.
func redirectWithError(writer http.ResponseWriter, request *http.Request, portalBase, code string) {
	target := portalBase + "/login?error=" + url.QueryEscape(code)
	http.Redirect(writer, request, target, http.StatusFound)
}

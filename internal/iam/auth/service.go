// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
Package auth implements the core identity and access management (IAM) system.

It handles everything from registration and secure password hashing through the
administrator approval gate to session lifecycle management via JWT and Refresh
tokens, plus the restricted federated login flow.

Architecture:

  - Service: Orchestrates business logic (Register, Login, FederatedLogin, Reset).
  - Repository: Abstracted interfaces for Postgres (Accounts, Sessions) and Redis (Tickets, State).
  - Security: Leverages Bcrypt and RSA-signed JWTs.

The package ensures that identity data remains consistent and secure throughout
the portal's lifecycle.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/notify"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given account.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - role: The role of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - A signed JWT string, or an err if signing fails.
	GenerateAccessToken(userID, email, role string, timeToLive time.Duration) (string, error)
}

// Policy holds the registration and federated-login rules the service
// enforces. Extracted from configuration at wiring time so tests can supply
// their own without touching the environment.
type Policy struct {
	// AllowedEmailDomains is the lowercase domain allowlist. Registration
	// and federated login both reject emails outside this set.
	AllowedEmailDomains []string

	// BootstrapEmail is the single address allowed to self-provision a
	// superadmin account through federated login.
	BootstrapEmail string

	// PortalBaseURL is where the browser client lives. Reset links and
	// federated login redirects are built against it.
	PortalBaseURL string
}

// DomainAllowed reports whether the email's domain is on the allowlist.
func (p Policy) DomainAllowed(email string) bool {
	domain := emailDomain(email)
	for _, allowed := range p.AllowedEmailDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

// emailDomain extracts the lowercase domain part of an email address.
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// Service implements the identity and access use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, the approval
// gate, or login logic must be reviewed by the security team.
type Service struct {
	userRepository    UserRepository
	sessionRepository SessionRepository
	resetRepository   ResetTicketRepository
	stateRepository   OIDCStateRepository
	tokenProvider     TokenProvider
	identityProvider  IdentityProvider
	notifier          notify.Notifier
	policy            Policy
	logger            *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
//
// identityProvider may be nil when federated login is not configured; the
// federated operations then fail with ServiceUnavailable.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTicketRepository,
	stateRepo OIDCStateRepository,
	tokenProv TokenProvider,
	identityProv IdentityProvider,
	notifier notify.Notifier,
	policy Policy,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:    userRepo,
		sessionRepository: sessionRepo,
		resetRepository:   resetRepo,
		stateRepository:   stateRepo,
		tokenProvider:     tokenProv,
		identityProvider:  identityProv,
		notifier:          notifier,
		policy:            policy,
		logger:            logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new portal member.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

/*
Register validates, hashes, and persists a brand new portal account.

Description: The account is created unapproved with the viewer role and an
empty permission map; an administrator must approve it before first login.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity, still pending approval
  - err: DomainNotAllowed, Conflict (if the email exists), or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// The allowlist runs before anything else, including the existence check.
	if !service.policy.DomainAllowed(email) {
		return nil, apperr.DomainNotAllowed(emailDomain(email))
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(ctx, email)
	if err == nil {
		return nil, apperr.Conflict("An account with this email already exists")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         sec.RoleViewer,
		Approved:     false,
		Permissions:  capability.Set{},
	}

	// Persist the user to the database
	if err := service.userRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Best-effort acknowledgement; a delivery failure never undoes the registration.
	notify.Send(ctx, service.logger, "registration_received", func(ctx context.Context) error {
		return service.notifier.RegistrationReceived(ctx, user.Email)
	})

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
	UserAgent  string
	IPAddress  string
}

// LoginSession represents a successfully established portal session.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	Remembered            bool
	User                  *User
}

/*
Login validates credentials and issues security tokens.

Description: Verifies identity, performs constant-time password comparison,
runs the approval gate, and initializes a new session. The session lifetime
depends on the caller's "remember me" choice.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: InvalidCredentials, PendingApproval, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := service.userRepository.FindByEmail(context, email)

	// If (err != nil) the account does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}

	// A federated-only account has no secret; password login must look
	// exactly like a wrong password.
	if user.PasswordHash == "" {
		return nil, apperr.InvalidCredentials()
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	// Approval gate. The identity is legitimate, just not yet authorized.
	if !user.Approved {
		return nil, apperr.PendingApproval()
	}

	return service.establishSession(context, user, input.RememberMe, input.UserAgent, input.IPAddress)
}

/*
FederatedLogin turns a verified identity assertion into a portal session.

Description: Enforces the email-domain allowlist, auto-provisions the
bootstrap superadmin on first sight, binds the external subject id to an
existing account, and runs the same approval gate as local login.

Parameters:
  - context: context.Context
  - assertion: *Assertion (verified by the identity provider layer)
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Transport-ready session identifiers
  - err: DomainNotAllowed, RegistrationRestricted, PendingApproval, or internal failures
*/
func (service *Service) FederatedLogin(context context.Context, assertion *Assertion, userAgent, ipAddress string) (*LoginSession, error) {
	email := strings.ToLower(strings.TrimSpace(assertion.Email))

	// The allowlist runs before any lookup or provisioning.
	if !service.policy.DomainAllowed(email) {
		return nil, apperr.DomainNotAllowed(emailDomain(email))
	}

	// Prefer the stable subject binding; fall back to email for accounts
	// that registered locally and are federating for the first time.
	user, err := service.userRepository.FindByExternalSubject(context, assertion.Subject)
	if err != nil && apperr.IsCode(err, "NOT_FOUND") {
		user, err = service.userRepository.FindByEmail(context, email)
	}

	if err != nil {
		// A store failure must not masquerade as an unseen identity.
		if !apperr.IsCode(err, "NOT_FOUND") {
			return nil, fmt.Errorf("auth_service_federated_lookup_failed: %w", err)
		}

		// Unseen identity. Only the bootstrap address may self-provision,
		// and it arrives as an approved superadmin.
		if email != service.policy.BootstrapEmail {
			return nil, apperr.RegistrationRestricted()
		}

		user = &User{
			ID:              uuid.New(),
			Email:           email,
			FirstName:       assertion.FirstName,
			LastName:        assertion.LastName,
			AvatarURL:       assertion.AvatarURL,
			Role:            sec.RoleSuperadmin,
			Approved:        true,
			Permissions:     capability.DefaultForRole(sec.RoleSuperadmin),
			ExternalSubject: assertion.Subject,
		}
		if err := service.userRepository.Create(context, user); err != nil {
			return nil, fmt.Errorf("auth_service_bootstrap_failed: %w", err)
		}

		service.logger.InfoContext(context, "bootstrap superadmin provisioned",
			slog.String("email", email),
		)
	} else {
		// Known account. Bind the subject id and backfill the avatar.
		if err := service.userRepository.UpdateIdentityBinding(context, user.ID, assertion.Subject, assertion.AvatarURL); err != nil {
			return nil, fmt.Errorf("auth_service_bind_identity_failed: %w", err)
		}
		user.ExternalSubject = assertion.Subject
		if assertion.AvatarURL != "" {
			user.AvatarURL = assertion.AvatarURL
		}

		// Same approval gate as local login.
		if !user.Approved {
			return nil, apperr.PendingApproval()
		}
	}

	// Federated sessions are always remembered; the provider round trip is
	// too heavy to repeat every browser restart.
	return service.establishSession(context, user, true, userAgent, ipAddress)
}

// establishSession issues the access/refresh token pair and persists the
// tracking session. The refresh lifetime depends on the remember choice.
func (service *Service) establishSession(context context.Context, user *User, remember bool, userAgent, ipAddress string) (*LoginSession, error) {

	// Generate short-lived Access Token
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Email, string(user.Role), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	ttl := ShortSessionTTL
	if remember {
		ttl = RefreshTokenTTL
	}

	// Create and persist the tracking session
	expiresAt := time.Now().Add(ttl)
	session := &Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		TokenHash:  sec.HashToken(refreshToken),
		UserAgent:  userAgent,
		IPAddress:  ipAddress,
		Remembered: remember,
		ExpiresAt:  expiresAt,
		IsRevoked:  false,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		Remembered:            remember,
		User:                  user,
	}, nil
}

/*
Logout permanently revokes the caller's active session.

Description: Ensures that a tracked refresh token can never be used again.
Idempotent: an unknown or already-revoked token is treated as success.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken string) error {

	tokenHash := sec.HashToken(refreshToken)

	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) session is already gone or invalid, we consider logout successful (idempotent operation).
	if err != nil {
		return nil
	}

	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// # Session Management

/*
RefreshSession implements the Refresh Token Rotation mechanism.

Description: Verifies the existing refresh token, revokes it to prevent reuse
(replay attack mitigation), re-runs the approval gate, and issues a fresh pair
of rotated tokens in the same lifetime mode the session started in.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: New session credentials
  - err: Unauthorized, PendingApproval, or storage failures
*/
func (service *Service) RefreshSession(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {

	tokenHash := sec.HashToken(refreshToken)
	session, err := service.sessionRepository.FindByTokenHash(context, tokenHash)

	// If (err != nil) the token is either expired, already revoked, or completely invalid.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	// Rotation: Revoke the old session to prevent replay attacks
	if err := service.sessionRepository.Revoke(context, session.ID); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	// Fetch the account associated with this session. A rejected account
	// has no row anymore, which ends the session here.
	user, err := service.userRepository.FindByID(context, session.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}

	// Approval can be revoked between refreshes.
	if !user.Approved {
		return nil, apperr.PendingApproval()
	}

	return service.establishSession(context, user, session.Remembered, userAgent, ipAddress)
}

// # Identity Snapshot

// Identity is the immutable snapshot the client recomputes its own route
// guard from. It is derived per call, never cached server-side.
type Identity struct {
	User         *User            `json:"user"`
	Role         sec.UserRole     `json:"role"`
	Approved     bool             `json:"approved"`
	State        string           `json:"state"`
	Capabilities []capability.Key `json:"capabilities"`
}

/*
CurrentIdentity resolves the caller's role, approval status, and effective
capability set.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Identity: Snapshot for the client route guard
  - err: Unauthorized if the account no longer exists
*/
func (service *Service) CurrentIdentity(context context.Context, userID string) (*Identity, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}

	effective := capability.Resolve(user.Role, user.Permissions)
	state := capability.StateOf(true, user.Approved)

	return &Identity{
		User:         user,
		Role:         user.Role,
		Approved:     user.Approved,
		State:        state.String(),
		Capabilities: effective.Granted(),
	}, nil
}

/*
EffectiveAccess resolves the guard snapshot for an authenticated account.

Description: Implements the middleware AccessResolver contract; the server
side route gate and the client guard both evaluate the same decision table
over this value.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - capability.Access: Guard snapshot
  - err: Unauthorized if the account no longer exists
*/
func (service *Service) EffectiveAccess(context context.Context, userID string) (capability.Access, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return capability.Access{}, apperr.Unauthorized("Account no longer exists")
	}

	return capability.Access{
		State:      capability.StateOf(true, user.Approved),
		Effective:  capability.Resolve(user.Role, user.Permissions),
		Superadmin: user.Role == sec.RoleSuperadmin,
	}, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Issues a single-use reset ticket, displacing any previous one,
and delivers the reset link out-of-band. Unlike login, this operation does
distinguish unknown accounts: the portal is internal, so enumeration is not a
concern and a clear error helps the help desk.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: The issued ticket token
  - err: NotFound, PendingApproval, or generation errors
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := service.userRepository.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.NotFound("Account not found with this email")
	}

	// A pending account cannot log in, so a password reset is premature.
	if !user.Approved {
		return "", apperr.PendingApproval()
	}

	// A federated-only account has no password to reset.
	if user.PasswordHash == "" {
		return "", apperr.NotFound("This account has no password; use the company sign-in")
	}

	token, err := sec.GenerateSecureToken(ResetTicketLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_ticket_failed: %w", err)
	}

	if err := service.resetRepository.Set(ctx, token, user.ID, ResetTicketTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_ticket_failed: %w", err)
	}

	// Best-effort delivery; the ticket stands even if the mail never lands.
	resetURL := service.policy.PortalBaseURL + "/reset-password?token=" + token
	notify.Send(ctx, service.logger, "password_reset", func(ctx context.Context) error {
		return service.notifier.PasswordReset(ctx, user.Email, resetURL)
	})

	return token, nil
}

/*
ConsumeReset completes the forgot-password flow.

Description: Atomically consumes the ticket (a second call with the same
token fails), hashes the new password, updates the account, and revokes all
active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: InvalidResetTicket or update failures
*/
func (service *Service) ConsumeReset(context context.Context, token, newPassword string) error {

	// Consumption is atomic: retrieval deletes the ticket.
	userID, err := service.resetRepository.Consume(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Revoke EVERY active session for this account
	_ = service.sessionRepository.RevokeAll(context, userID)

	return nil
}

// # Federated Round Trip

/*
StartFederatedLogin issues a state value and builds the provider
authorization URL.

Parameters:
  - context: context.Context

Returns:
  - string: The state value, to be mirrored in a browser cookie
  - string: The provider authorization URL
  - err: ServiceUnavailable when federated login is not configured
*/
func (service *Service) StartFederatedLogin(context context.Context) (string, string, error) {
	if service.identityProvider == nil {
		return "", "", apperr.ServiceUnavailable("Federated login is not configured")
	}

	state, err := sec.GenerateSecureToken(OIDCStateLength)
	if err != nil {
		return "", "", fmt.Errorf("auth_service_oidc_state_failed: %w", err)
	}

	if err := service.stateRepository.Set(context, state, OIDCStateTTL); err != nil {
		return "", "", fmt.Errorf("auth_service_oidc_state_save_failed: %w", err)
	}

	return state, service.identityProvider.AuthURL(state), nil
}

/*
CompleteFederatedLogin validates the callback state, redeems the code, and
hands the verified assertion to [Service.FederatedLogin].

Parameters:
  - context: context.Context
  - state: string
  - code: string
  - userAgent: string
  - ipAddress: string

Returns:
  - *LoginSession: Established session
  - err: Unauthorized, DomainNotAllowed, RegistrationRestricted, PendingApproval
*/
func (service *Service) CompleteFederatedLogin(context context.Context, state, code, userAgent, ipAddress string) (*LoginSession, error) {
	if service.identityProvider == nil {
		return nil, apperr.ServiceUnavailable("Federated login is not configured")
	}

	// A state can complete at most one callback.
	if err := service.stateRepository.Consume(context, state); err != nil {
		return nil, err
	}

	assertion, err := service.identityProvider.Exchange(context, code)
	if err != nil {
		return nil, err
	}

	return service.FederatedLogin(context, assertion, userAgent, ipAddress)
}

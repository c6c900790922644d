// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

/*
Package auth implements the portal identity and session management layer.

It defines the core domain entities (User, Session) and logic for authentication,
the approval gate, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to portal identity.
*/
package auth

import (
	"time"

	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the company portal.
//
// # Approval Lifecycle
//
// A freshly registered user has Approved = false and an empty permission map.
// An administrator later approves the account, which assigns the role and
// seeds Permissions, or rejects it, which removes the record entirely.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"` // Explicitly omitted from JSON for security. Empty for federated-only accounts.
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	AvatarURL    string         `json:"avatar_url,omitempty"`
	Role         sec.UserRole   `json:"role"`
	Approved     bool           `json:"approved"`
	Permissions  capability.Set `json:"permissions"`
	// ExternalSubject is the federated identity provider's stable subject id.
	// Empty for purely local accounts.
	ExternalSubject string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsFederated reports whether the account is bound to an external identity provider.
func (u *User) IsFederated() bool {
	return u.ExternalSubject != ""
}

// FullName returns the display name used in notifications and admin listings.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	// Remembered records the "remember me" choice so rotation keeps the
	// session in the same lifetime mode it started in.
	Remembered bool      `json:"remembered"`
	ExpiresAt  time.Time `json:"expires_at"`
	IsRevoked  bool      `json:"is_revoked"`
	CreatedAt  time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldToken       = "token"
	FieldNewPassword = "new_password"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
	FieldMessage     = "message"
)

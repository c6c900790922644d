// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/config"
)

// # Federated Identity

// Assertion is the externally verified identity extracted from a provider's
// ID token. It is the only shape the service layer accepts for federated
// login, so token verification can never be skipped by a caller.
type Assertion struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// IdentityProvider defines the contract for the federated login round trip.
//
// # Why an interface?
//
// The concrete implementation talks to a live OIDC issuer; tests substitute
// a canned assertion instead.
type IdentityProvider interface {
	// AuthURL builds the provider authorization URL carrying the given state.
	AuthURL(state string) string

	// Exchange redeems an authorization code and returns the verified assertion.
	Exchange(ctx context.Context, code string) (*Assertion, error)
}

// OIDCProvider implements [IdentityProvider] over a discovered OpenID
// Connect issuer.
type OIDCProvider struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

/*
NewOIDCProvider discovers the configured issuer and prepares the relying
party plumbing.

Description: Performs OIDC discovery (network call) at startup so a
misconfigured issuer fails fast instead of on the first login.

Parameters:
  - context: context.Context
  - cfg: *config.Config

Returns:
  - *OIDCProvider: Ready relying party
  - error: Discovery or configuration failures
*/
func NewOIDCProvider(context context.Context, cfg *config.Config) (*OIDCProvider, error) {

	// Discover endpoints and signing keys from the issuer metadata.
	provider, err := oidc.NewProvider(context, cfg.OIDCIssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc_discovery_failed: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID})

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.OIDCClientID,
		ClientSecret: cfg.OIDCClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  cfg.OIDCRedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	return &OIDCProvider{
		provider:     provider,
		verifier:     verifier,
		oauth2Config: oauth2Config,
	}, nil
}

// AuthURL builds the provider authorization URL carrying the given state.
func (p *OIDCProvider) AuthURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

/*
Exchange redeems an authorization code and verifies the resulting ID token.

Description: The assertion is only as trustworthy as the ID token signature,
so verification failures surface as Unauthorized rather than internal errors.

Parameters:
  - context: context.Context
  - code: string (authorization code from the provider callback)

Returns:
  - *Assertion: Verified identity claims
  - error: apperr.Unauthorized or provider failures
*/
func (p *OIDCProvider) Exchange(context context.Context, code string) (*Assertion, error) {

	// Redeem the authorization code for a token set.
	oauth2Token, err := p.oauth2Config.Exchange(context, code)
	if err != nil {
		return nil, apperr.Unauthorized("Identity provider rejected the login")
	}

	// The ID token rides along in the token response extras.
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return nil, apperr.Unauthorized("Identity provider response is missing the ID token")
	}

	// Verify signature, audience, issuer, and expiry.
	idToken, err := p.verifier.Verify(context, rawIDToken)
	if err != nil {
		return nil, apperr.Unauthorized("Identity token failed verification")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc_claims_parse_failed: %w", err)
	}

	// An unverified email must never satisfy the domain allowlist.
	if claims.Email == "" || !claims.EmailVerified {
		return nil, apperr.Unauthorized("Identity provider did not supply a verified email")
	}

	return &Assertion{
		Subject:   idToken.Subject,
		Email:     claims.Email,
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		AvatarURL: claims.Picture,
	}, nil
}

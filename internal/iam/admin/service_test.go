// Copyright (c) 2026 BGE Corp. All rights reserved.
// Author: platform-team@bgecorp.com

package admin_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgecorp/portal/internal/iam/admin"
	"github.com/bgecorp/portal/internal/iam/auth"
	"github.com/bgecorp/portal/internal/iam/capability"
	"github.com/bgecorp/portal/internal/platform/apperr"
	"github.com/bgecorp/portal/internal/platform/sec"
	"github.com/bgecorp/portal/pkg/pagination"
)

// # In-Memory Fakes

type fakeUserRepo struct {
	users map[string]*auth.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*auth.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("Account")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (r *fakeUserRepo) FindByExternalSubject(_ context.Context, subject string) (*auth.User, error) {
	for _, u := range r.users {
		if u.ExternalSubject == subject && subject != "" {
			return u, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (r *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateIdentityBinding(_ context.Context, userID, subject, avatarURL string) error {
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, newHash string) error {
	return nil
}

func (r *fakeUserRepo) Approve(_ context.Context, userID, role string, permissions capability.Set) error {
	u, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("Account")
	}
	u.Approved = true
	u.Role = sec.UserRole(role)
	u.Permissions = permissions
	return nil
}

func (r *fakeUserRepo) ReplacePermissions(_ context.Context, userID string, permissions capability.Set) error {
	u, ok := r.users[userID]
	if !ok {
		return apperr.NotFound("Account")
	}
	u.Permissions = permissions
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperr.NotFound("Account")
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) ListByApproval(_ context.Context, approved bool, _ pagination.Params) ([]*auth.User, int, error) {
	var out []*auth.User
	for _, u := range r.users {
		if u.Approved == approved {
			out = append(out, u)
		}
	}
	return out, len(out), nil
}

type fakeSessionRepo struct {
	revokedFor []string
}

func (r *fakeSessionRepo) Create(_ context.Context, _ *auth.Session) error { return nil }

func (r *fakeSessionRepo) FindByTokenHash(_ context.Context, _ string) (*auth.Session, error) {
	return nil, apperr.NotFound("Session")
}

func (r *fakeSessionRepo) Revoke(_ context.Context, _ string) error { return nil }

func (r *fakeSessionRepo) RevokeAll(_ context.Context, userID string) error {
	r.revokedFor = append(r.revokedFor, userID)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) error { return nil }

type recordingNotifier struct {
	approved []string
	rejected []string
}

func (n *recordingNotifier) RegistrationReceived(_ context.Context, _ string) error { return nil }

func (n *recordingNotifier) AccountApproved(_ context.Context, email string) error {
	n.approved = append(n.approved, email)
	return nil
}

func (n *recordingNotifier) AccountRejected(_ context.Context, email string) error {
	n.rejected = append(n.rejected, email)
	return nil
}

func (n *recordingNotifier) PasswordReset(_ context.Context, _, _ string) error { return nil }

// # Test Harness

type harness struct {
	service  *admin.Service
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	notifier *recordingNotifier
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	users := newFakeUserRepo()
	sessions := &fakeSessionRepo{}
	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &harness{
		service:  admin.NewService(users, sessions, notifier, logger),
		users:    users,
		sessions: sessions,
		notifier: notifier,
	}
}

func (h *harness) seedPending(t *testing.T, id, email string) *auth.User {
	t.Helper()
	user := &auth.User{
		ID:          id,
		Email:       email,
		Role:        sec.RoleViewer,
		Approved:    false,
		Permissions: capability.Set{},
		CreatedAt:   time.Now(),
	}
	require.NoError(t, h.users.Create(context.Background(), user))
	return user
}

// # Approval

/*
TestApprove_SeedsRoleDefaults verifies approval assigns the role and seeds
the default permission map for it.
*/
func TestApprove_SeedsRoleDefaults(t *testing.T) {
	h := newHarness(t)
	h.seedPending(t, "u1", "new@bgecorp.com")

	user, err := h.service.Approve(context.Background(), "u1", sec.RoleViewer)
	require.NoError(t, err)

	assert.True(t, user.Approved)
	assert.Equal(t, sec.RoleViewer, user.Role)
	assert.True(t, user.Permissions.Has(capability.KeyDashboard))
	assert.True(t, user.Permissions.Has(capability.KeySettings))
	assert.True(t, user.Permissions.Has(capability.KeyHelp))
	assert.False(t, user.Permissions.Has(capability.KeyFinance))
	assert.Equal(t, []string{"new@bgecorp.com"}, h.notifier.approved)
}

/*
TestApprove_AdminDefaults verifies the admin role seeds the wider map.
*/
func TestApprove_AdminDefaults(t *testing.T) {
	h := newHarness(t)
	h.seedPending(t, "u1", "lead@bgecorp.com")

	user, err := h.service.Approve(context.Background(), "u1", sec.RoleAdmin)
	require.NoError(t, err)

	for _, key := range []capability.Key{
		capability.KeyDashboard, capability.KeyHR, capability.KeyInventory,
		capability.KeyProjects, capability.KeyFinance, capability.KeyDirectory,
		capability.KeyAdmin,
	} {
		assert.True(t, user.Permissions.Has(key), "expected %s granted", key)
	}
}

/*
TestApprove_UnknownRole verifies role validation.
*/
func TestApprove_UnknownRole(t *testing.T) {
	h := newHarness(t)
	h.seedPending(t, "u1", "new@bgecorp.com")

	_, err := h.service.Approve(context.Background(), "u1", sec.UserRole("owner"))

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)
}

/*
TestApprove_MissingAccount verifies NotFound surfaces.
*/
func TestApprove_MissingAccount(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Approve(context.Background(), "nope", sec.RoleViewer)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

// # Rejection

/*
TestReject_DeletesAccount verifies rejection is a hard delete with session
cleanup and a farewell notification.
*/
func TestReject_DeletesAccount(t *testing.T) {
	h := newHarness(t)
	h.seedPending(t, "u1", "doomed@bgecorp.com")

	require.NoError(t, h.service.Reject(context.Background(), "u1"))

	_, err := h.users.FindByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, []string{"u1"}, h.sessions.revokedFor)
	assert.Equal(t, []string{"doomed@bgecorp.com"}, h.notifier.rejected)

	// A second reject finds nothing.
	err = h.service.Reject(context.Background(), "u1")
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}

// # Permission Management

/*
TestSetCapabilities_FullReplace verifies the stored map is replaced, not merged.
*/
func TestSetCapabilities_FullReplace(t *testing.T) {
	h := newHarness(t)
	user := h.seedPending(t, "u1", "member@bgecorp.com")
	user.Approved = true
	user.Permissions = capability.Set{capability.KeyDashboard: true, capability.KeyHR: true}

	updated, err := h.service.SetCapabilities(context.Background(), "u1", map[string]bool{
		"projects": true,
		"settings": false,
	})
	require.NoError(t, err)

	assert.True(t, updated.Permissions.Has(capability.KeyProjects))
	assert.False(t, updated.Permissions.Has(capability.KeyDashboard))
	assert.False(t, updated.Permissions.Has(capability.KeyHR))
	// Explicit false survives as a stored override.
	granted, stored := updated.Permissions[capability.KeySettings]
	assert.True(t, stored)
	assert.False(t, granted)
}

/*
TestSetCapabilities_NormalizesKeys verifies casing and whitespace variants
collapse to canonical keys.
*/
func TestSetCapabilities_NormalizesKeys(t *testing.T) {
	h := newHarness(t)
	user := h.seedPending(t, "u1", "member@bgecorp.com")
	user.Approved = true

	updated, err := h.service.SetCapabilities(context.Background(), "u1", map[string]bool{
		"Expense Reports": true,
	})
	require.NoError(t, err)

	assert.True(t, updated.Permissions.Has(capability.Key("expense-reports")))
}

// # Listings

/*
TestListings_SplitByApproval verifies pending and approved listings partition
the accounts.
*/
func TestListings_SplitByApproval(t *testing.T) {
	h := newHarness(t)
	h.seedPending(t, "p1", "one@bgecorp.com")
	h.seedPending(t, "p2", "two@bgecorp.com")
	active := h.seedPending(t, "a1", "three@bgecorp.com")
	active.Approved = true

	pending, pendingTotal, err := h.service.ListPending(context.Background(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)
	approved, approvedTotal, err := h.service.ListApproved(context.Background(), pagination.Params{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Len(t, pending, 2)
	assert.Equal(t, 2, pendingTotal)
	assert.Len(t, approved, 1)
	assert.Equal(t, 1, approvedTotal)
}

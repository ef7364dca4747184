package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/repository"
	"github.com/poolforyou/poolforyou-api/internal/utils"
)

// Operation names a protected action.
type Operation string

const (
	OpViewProfile    Operation = "profile.view"
	OpLogout         Operation = "session.logout"
	OpViewForm       Operation = "form.view"
	OpCreateUser     Operation = "users.create"
	OpCreateReport   Operation = "reports.create"
	OpListOwnReports Operation = "reports.list_own"
	OpListAllReports Operation = "reports.list_all"
	OpUpdateStatus   Operation = "reports.update_status"
	OpAttachPhotos   Operation = "reports.attach_photos"
)

var (
	anyRole   = []model.Role{model.RoleAdmin, model.RoleTechnician, model.RoleLifeguard}
	fieldRole = []model.Role{model.RoleTechnician, model.RoleLifeguard}
	adminOnly = []model.Role{model.RoleAdmin}
)

// Permissions is the allow-list of roles for every protected operation.
// An operation missing from the table is denied to everyone.
var Permissions = map[Operation][]model.Role{
	OpViewProfile:    anyRole,
	OpLogout:         anyRole,
	OpViewForm:       anyRole,
	OpCreateUser:     adminOnly,
	OpCreateReport:   fieldRole,
	OpListOwnReports: fieldRole,
	OpListAllReports: adminOnly,
	OpUpdateStatus:   adminOnly,
	OpAttachPhotos:   anyRole,
}

// AccessControl resolves bearer tokens to users and enforces role membership.
type AccessControl struct {
	users   UserStore
	tokens  *utils.TokenIssuer
	revoked RevocationList
}

// NewAccessControl builds the access layer.  revoked may be nil, in which
// case session tokens cannot be revoked and stay valid until they expire.
func NewAccessControl(users UserStore, tokens *utils.TokenIssuer, revoked RevocationList) *AccessControl {
	return &AccessControl{users: users, tokens: tokens, revoked: revoked}
}

// ResolveIdentity verifies a session token and loads the user it names.
func (a *AccessControl) ResolveIdentity(ctx context.Context, token string) (model.User, error) {
	s, err := a.tokens.VerifySessionToken(token)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	if a.revoked != nil {
		gone, err := a.revoked.IsRevoked(ctx, s.ID)
		if err != nil {
			return model.User{}, storageFailure("check revocation", err)
		}
		if gone {
			return model.User{}, ErrUnauthorized
		}
	}
	u, err := a.users.GetByEmail(ctx, s.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, ErrUnauthorized
		}
		return model.User{}, storageFailure("load user", err)
	}
	return u, nil
}

// RequireRole passes u through when its role is in allowed.
func RequireRole(u model.User, allowed []model.Role) (model.User, error) {
	for _, r := range allowed {
		if u.Role == r {
			return u, nil
		}
	}
	return model.User{}, ErrForbidden
}

// Authorize checks u against the allow-list of op.
func (a *AccessControl) Authorize(u model.User, op Operation) (model.User, error) {
	allowed, ok := Permissions[op]
	if !ok {
		return model.User{}, fmt.Errorf("%w: unknown operation %q", ErrForbidden, op)
	}
	return RequireRole(u, allowed)
}

// Revoke adds the session's token id to the revocation list.
func (a *AccessControl) Revoke(ctx context.Context, token string) error {
	if a.revoked == nil {
		return ErrRevocationDisabled
	}
	s, err := a.tokens.VerifySessionToken(token)
	if err != nil {
		return ErrUnauthorized
	}
	if err := a.revoked.Revoke(ctx, s.ID, s.Exp); err != nil {
		return storageFailure("revoke session", err)
	}
	return nil
}

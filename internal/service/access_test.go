package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolforyou/poolforyou-api/internal/model"
	"github.com/poolforyou/poolforyou-api/internal/service"
	"github.com/poolforyou/poolforyou-api/internal/utils"
)

func TestRequireRole(t *testing.T) {
	tech := model.User{ID: 1, Email: "tech@pool.es", Role: model.RoleTechnician}
	admin := model.User{ID: 2, Email: "admin@pool.es", Role: model.RoleAdmin}

	_, err := service.RequireRole(tech, []model.Role{model.RoleAdmin})
	assert.ErrorIs(t, err, service.ErrForbidden)

	got, err := service.RequireRole(admin, []model.Role{model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, admin, got)

	got, err = service.RequireRole(tech, []model.Role{model.RoleLifeguard, model.RoleTechnician})
	require.NoError(t, err)
	assert.Equal(t, tech, got)
}

func TestPermissionsTable(t *testing.T) {
	ac := service.NewAccessControl(newMemUsers(), newIssuer(), nil)
	roles := []model.Role{model.RoleAdmin, model.RoleTechnician, model.RoleLifeguard}

	want := map[service.Operation][]model.Role{
		service.OpCreateUser:     {model.RoleAdmin},
		service.OpCreateReport:   {model.RoleTechnician, model.RoleLifeguard},
		service.OpListOwnReports: {model.RoleTechnician, model.RoleLifeguard},
		service.OpListAllReports: {model.RoleAdmin},
		service.OpUpdateStatus:   {model.RoleAdmin},
		service.OpAttachPhotos:   {model.RoleAdmin, model.RoleTechnician, model.RoleLifeguard},
		service.OpViewForm:       {model.RoleAdmin, model.RoleTechnician, model.RoleLifeguard},
	}

	for op, allowed := range want {
		for _, r := range roles {
			_, err := ac.Authorize(model.User{Role: r}, op)
			if contains(allowed, r) {
				assert.NoError(t, err, "%s as %s", op, r)
			} else {
				assert.ErrorIs(t, err, service.ErrForbidden, "%s as %s", op, r)
			}
		}
	}

	_, err := ac.Authorize(model.User{Role: model.RoleAdmin}, service.Operation("reports.delete"))
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func contains(rs []model.Role, r model.Role) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}

func TestResolveIdentity(t *testing.T) {
	users := newMemUsers()
	tokens := newIssuer()
	ac := service.NewAccessControl(users, tokens, nil)
	ctx := context.Background()

	stored := users.put(model.User{Name: "Ana", Email: "tech@pool.es", Role: model.RoleTechnician, IsActive: true})

	tok, err := tokens.IssueSessionToken("tech@pool.es", "technician")
	require.NoError(t, err)
	u, err := ac.ResolveIdentity(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, u.ID)

	t.Run("unknown subject", func(t *testing.T) {
		ghost, err := tokens.IssueSessionToken("ghost@pool.es", "admin")
		require.NoError(t, err)
		_, err = ac.ResolveIdentity(ctx, ghost.Token)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		old := utils.NewTokenIssuer("test-secret", time.Hour, time.Hour).
			WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
		expired, err := old.IssueSessionToken("tech@pool.es", "technician")
		require.NoError(t, err)
		_, err = ac.ResolveIdentity(ctx, expired.Token)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("activation token is not a session", func(t *testing.T) {
		act, err := tokens.IssueActivationToken("tech@pool.es")
		require.NoError(t, err)
		_, err = ac.ResolveIdentity(ctx, act)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := ac.ResolveIdentity(ctx, "")
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})
}

func TestRevocation(t *testing.T) {
	users := newMemUsers()
	tokens := newIssuer()
	ctx := context.Background()
	users.put(model.User{Name: "Ana", Email: "tech@pool.es", Role: model.RoleTechnician, IsActive: true})

	tok, err := tokens.IssueSessionToken("tech@pool.es", "technician")
	require.NoError(t, err)

	t.Run("disabled by default", func(t *testing.T) {
		ac := service.NewAccessControl(users, tokens, nil)
		assert.ErrorIs(t, ac.Revoke(ctx, tok.Token), service.ErrRevocationDisabled)
		_, err := ac.ResolveIdentity(ctx, tok.Token)
		assert.NoError(t, err)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		ac := service.NewAccessControl(users, tokens, newMemRevoked())
		other, err := tokens.IssueSessionToken("tech@pool.es", "technician")
		require.NoError(t, err)

		require.NoError(t, ac.Revoke(ctx, tok.Token))
		_, err = ac.ResolveIdentity(ctx, tok.Token)
		assert.ErrorIs(t, err, service.ErrUnauthorized)

		_, err = ac.ResolveIdentity(ctx, other.Token)
		assert.NoError(t, err, "other sessions stay valid")
	})
}

package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	data := domain.BootstrapData{Email: "root@tasksetu.test", Password: testPassword, FirstName: "Root"}

	_, err := e.bootstrap.Bootstrap(ctx, "wrong", data)
	require.ErrorIs(t, err, service.ErrBootstrapUnauthorized)

	done, err := e.bootstrap.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	u, err := e.bootstrap.Bootstrap(ctx, "bootstrap-secret", data)
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, u.Role)
	require.Empty(t, u.OrganizationID)

	_, err = e.bootstrap.Bootstrap(ctx, "bootstrap-secret", domain.BootstrapData{Email: "two@tasksetu.test", Password: testPassword})
	require.ErrorIs(t, err, service.ErrBootstrapAlready)

	res, err := e.accounts.Login(ctx, data.Email, testPassword, "")
	require.NoError(t, err)
	require.Equal(t, domain.RoleSuperAdmin, res.User.Role)

	disabled := &service.BootstrapService{Store: e.tenants.Store}
	_, err = disabled.Bootstrap(ctx, "", data)
	require.ErrorIs(t, err, service.ErrBootstrapDisabled)
}

func TestHousekeeping(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	org, admin := e.newOrg(t, "Acme", 5)
	e.invite(t, org, admin, "old@acme.test", "member")

	hk := service.NewHousekeepingService(e.tenants.Store, slogx.Discard(), time.Hour, 24*time.Hour)
	hk.Clock = e.clock.Now

	e.clock.Advance(service.DefaultInviteTTL + time.Hour)
	hk.Cleanup(ctx)
	members, err := e.members.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2, "expired invite kept during retention")

	e.clock.Advance(24 * time.Hour)
	hk.Cleanup(ctx)
	members, err = e.members.ListMembers(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
}

func TestHousekeeping_StartStop(t *testing.T) {
	e := newEnv(t)
	hk := service.NewHousekeepingService(e.tenants.Store, slogx.Discard(), time.Hour, 0)
	require.Equal(t, service.DefaultInviteRetention, hk.Retention)
	hk.Start()
	hk.Stop()
}

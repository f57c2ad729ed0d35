package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasksetu/pkg/idx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedOrg(t *testing.T, s store.Store, slug string, seats int) domain.Organization {
	t.Helper()
	org := domain.Organization{
		ID:           idx.New().String(),
		Name:         slug,
		Slug:         slug,
		Type:         domain.OrgTypeCompany,
		Status:       domain.OrgStatusActive,
		LicenseSeats: seats,
		CreatedAt:    t0,
		UpdatedAt:    t0,
	}
	require.NoError(t, s.Organizations().CreateOrganization(context.Background(), org))
	return org
}

func activeUser(orgID, email string, role domain.Role) domain.User {
	return domain.User{
		ID:             idx.New().String(),
		Email:          email,
		PasswordHash:   "$2a$04$hash",
		Role:           role,
		OrganizationID: orgID,
		Status:         domain.StatusActive,
		EmailVerified:  true,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
}

func pendingUser(orgID, email, tokenHash string, expires time.Time) domain.User {
	return domain.User{
		ID:              idx.New().String(),
		Email:           email,
		Role:            domain.RoleMember,
		OrganizationID:  orgID,
		Status:          domain.StatusInvited,
		InviteTokenHash: tokenHash,
		InviteExpiresAt: &expires,
		CreatedAt:       t0,
		UpdatedAt:       t0,
	}
}

func TestOrganizations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)

	t.Run("slug is unique", func(t *testing.T) {
		dup := org
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Organizations().CreateOrganization(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := s.Organizations().GetOrganizationBySlug(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, org.ID, got.ID)
		require.Equal(t, t0, got.CreatedAt)

		_, err = s.Organizations().GetOrganizationByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("updates", func(t *testing.T) {
		later := t0.Add(time.Hour)
		repo := s.Organizations()
		require.NoError(t, repo.UpdateSettings(ctx, org.ID, domain.OrganizationSettings{AllowPublicSignup: true}, later))
		require.NoError(t, repo.SetLicenseSeats(ctx, org.ID, 9, later))
		require.NoError(t, repo.SetStatus(ctx, org.ID, domain.OrgStatusSuspended, later))
		require.NoError(t, repo.UpdateProfile(ctx, org.ID, "Acme Inc", domain.OrgTypeTeam, later))

		got, err := repo.GetOrganizationByID(ctx, org.ID)
		require.NoError(t, err)
		require.True(t, got.Settings.AllowPublicSignup)
		require.Equal(t, 9, got.LicenseSeats)
		require.True(t, got.Suspended())
		require.Equal(t, "Acme Inc", got.Name)
		require.Equal(t, "acme", got.Slug)
		require.Equal(t, later, got.UpdatedAt)

		require.ErrorIs(t, repo.SetLicenseSeats(ctx, "missing", 1, later), store.ErrNotFound)
	})

	t.Run("list", func(t *testing.T) {
		seedOrg(t, s, "globex", 1)
		all, err := s.Organizations().ListOrganizations(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})
}

func TestUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)

	u := activeUser(org.ID, "a@acme.test", domain.RoleOrgAdmin)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := activeUser(org.ID, "a@acme.test", domain.RoleMember)
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	got, err := s.Users().GetUserByEmail(ctx, "a@acme.test")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.RoleOrgAdmin, got.Role)
	require.True(t, got.IsActive())

	_, err = s.Users().GetUserByID(ctx, "nope")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_AcceptInvite(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)

	p := pendingUser(org.ID, "new@acme.test", "hash-1", t0.Add(time.Hour))
	p.FirstName = "Invited"
	require.NoError(t, s.Users().CreateUser(ctx, p))

	t.Run("expired token does not resolve", func(t *testing.T) {
		_, err := s.Users().GetPendingByInviteHash(ctx, "hash-1", t0.Add(2*time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
		_, err = s.Users().AcceptInvite(ctx, store.AcceptInvite{TokenHash: "hash-1", PasswordHash: "pw"}, t0.Add(2*time.Hour))
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("accept once", func(t *testing.T) {
		got, err := s.Users().GetPendingByInviteHash(ctx, "hash-1", t0)
		require.NoError(t, err)
		require.Equal(t, p.ID, got.ID)

		u, err := s.Users().AcceptInvite(ctx, store.AcceptInvite{
			TokenHash:    "hash-1",
			PasswordHash: "pw",
			LastName:     "Person",
		}, t0)
		require.NoError(t, err)
		require.Equal(t, domain.StatusActive, u.Status)
		require.True(t, u.EmailVerified)
		require.Equal(t, "Invited", u.FirstName)
		require.Equal(t, "Person", u.LastName)
		require.Empty(t, u.InviteTokenHash)
		require.Nil(t, u.InviteExpiresAt)
	})

	t.Run("second accept fails", func(t *testing.T) {
		_, err := s.Users().AcceptInvite(ctx, store.AcceptInvite{TokenHash: "hash-1", PasswordHash: "pw2"}, t0)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestUsers_CountSeats(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)
	other := seedOrg(t, s, "globex", 5)

	require.NoError(t, s.Users().CreateUser(ctx, activeUser(org.ID, "a@acme.test", domain.RoleOrgAdmin)))
	inactive := activeUser(org.ID, "b@acme.test", domain.RoleMember)
	inactive.Status = domain.StatusInactive
	require.NoError(t, s.Users().CreateUser(ctx, inactive))
	require.NoError(t, s.Users().CreateUser(ctx, pendingUser(org.ID, "c@acme.test", "h-c", t0.Add(time.Hour))))
	require.NoError(t, s.Users().CreateUser(ctx, pendingUser(org.ID, "d@acme.test", "h-d", t0.Add(-time.Hour))))
	require.NoError(t, s.Users().CreateUser(ctx, activeUser(other.ID, "e@globex.test", domain.RoleMember)))

	active, pending, err := s.Users().CountSeats(ctx, org.ID, t0)
	require.NoError(t, err)
	require.Equal(t, 1, active)
	require.Equal(t, 1, pending)

	admins, err := s.Users().CountActiveByRole(ctx, org.ID, domain.RoleOrgAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, admins)
}

func TestUsers_ResetToken(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)
	u := activeUser(org.ID, "a@acme.test", domain.RoleMember)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "reset-1", t0.Add(30*time.Minute), t0))

	_, err := s.Users().ConsumeResetToken(ctx, "reset-1", "new", t0.Add(31*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().ConsumeResetToken(ctx, "reset-1", "new", t0.Add(10*time.Minute))
	require.NoError(t, err)
	require.Equal(t, "new", got.PasswordHash)
	require.Empty(t, got.ResetTokenHash)

	_, err = s.Users().ConsumeResetToken(ctx, "reset-1", "again", t0.Add(11*time.Minute))
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_PendingOnlyWrites(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)
	u := activeUser(org.ID, "a@acme.test", domain.RoleMember)
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.ErrorIs(t, s.Users().SetInviteToken(ctx, u.ID, "x", t0, t0), store.ErrNotFound)
	require.ErrorIs(t, s.Users().DeletePendingUser(ctx, org.ID, u.ID), store.ErrNotFound)

	p := pendingUser(org.ID, "p@acme.test", "old", t0.Add(time.Hour))
	require.NoError(t, s.Users().CreateUser(ctx, p))
	require.ErrorIs(t, s.Users().SetStatus(ctx, p.ID, domain.StatusActive, t0), store.ErrNotFound)

	require.NoError(t, s.Users().SetInviteToken(ctx, p.ID, "new", t0.Add(2*time.Hour), t0))
	_, err := s.Users().GetPendingByInviteHash(ctx, "old", t0)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.ErrorIs(t, s.Users().DeletePendingUser(ctx, "other-org", p.ID), store.ErrNotFound)
	require.NoError(t, s.Users().DeletePendingUser(ctx, org.ID, p.ID))
}

func TestUsers_Housekeeping(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)

	u := activeUser(org.ID, "a@acme.test", domain.RoleMember)
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().SetResetToken(ctx, u.ID, "r", t0.Add(time.Minute), t0))
	require.NoError(t, s.Users().CreateUser(ctx, pendingUser(org.ID, "old@acme.test", "h1", t0.Add(-48*time.Hour))))
	require.NoError(t, s.Users().CreateUser(ctx, pendingUser(org.ID, "new@acme.test", "h2", t0.Add(48*time.Hour))))

	n, err := s.Users().ClearExpiredTokens(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = s.Users().DeleteExpiredInvites(ctx, t0.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	members, err := s.Users().ListByOrganization(ctx, org.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestWithTx_RollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	org := seedOrg(t, s, "acme", 5)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, activeUser(org.ID, "a@acme.test", domain.RoleMember)))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByEmail(ctx, "a@acme.test")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, activeUser(org.ID, "a@acme.test", domain.RoleMember))
	}))
	_, err = s.Users().GetUserByEmail(ctx, "a@acme.test")
	require.NoError(t, err)
}

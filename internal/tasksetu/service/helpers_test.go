package service_test

import (
	"context"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Passw0rd!"

func TestMain(m *testing.M) {
	cryptox.SetCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingMailer keeps every message so tests can pull tokens out of links.
type recordingMailer struct {
	mu            sync.Mutex
	invites       []domain.InviteMessage
	resets        []domain.ResetMessage
	verifications []domain.VerificationMessage
}

func (m *recordingMailer) SendInvite(_ context.Context, msg domain.InviteMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, msg)
	return nil
}

func (m *recordingMailer) SendPasswordReset(_ context.Context, msg domain.ResetMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, msg)
	return nil
}

func (m *recordingMailer) SendVerification(_ context.Context, msg domain.VerificationMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, msg)
	return nil
}

func (m *recordingMailer) lastInviteToken(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.invites, "no invite sent")
	return tokenFromURL(t, m.invites[len(m.invites)-1].AcceptURL)
}

func (m *recordingMailer) lastResetToken(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.resets, "no reset sent")
	return tokenFromURL(t, m.resets[len(m.resets)-1].ResetURL)
}

func (m *recordingMailer) lastVerifyToken(t *testing.T) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.verifications, "no verification sent")
	return tokenFromURL(t, m.verifications[len(m.verifications)-1].VerifyURL)
}

func tokenFromURL(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	tok := u.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

type env struct {
	clock  *fakeClock
	mailer *recordingMailer
	st     store.Store

	tokens    *service.TokenService
	accounts  *service.AccountService
	tenants   *service.TenantService
	members   *service.MembershipService
	passwords *service.PasswordService
	mfa       *service.MFAService
	bootstrap *service.BootstrapService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := service.NewTokenService([]byte(strings.Repeat("s", 32)), "tasksetu-test", 0)
	require.NoError(t, err)

	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	mailer := &recordingMailer{}
	links := service.Links{BaseURL: "http://app.test/"}

	return &env{
		clock:  clock,
		mailer: mailer,
		st:     st,
		tokens: tokens,
		accounts: &service.AccountService{
			Store: st, Tokens: tokens, Mailer: mailer, Links: links, Clock: clock.Now,
		},
		tenants: &service.TenantService{Store: st, Clock: clock.Now},
		members: &service.MembershipService{
			Store: st, Mailer: mailer, Links: links, Clock: clock.Now,
		},
		passwords: &service.PasswordService{
			Store: st, Mailer: mailer, Links: links, Clock: clock.Now,
		},
		mfa:       &service.MFAService{Store: st, Issuer: "TaskSetu", Clock: clock.Now},
		bootstrap: &service.BootstrapService{Store: st, Token: "bootstrap-secret", Clock: clock.Now},
	}
}

// newOrg registers an organization with the given seat total and returns
// it with its admin.
func (e *env) newOrg(t *testing.T, name string, seats int) (domain.Organization, domain.User) {
	t.Helper()
	ctx := context.Background()
	slug := domain.Slugify(name)
	org, admin, err := e.tenants.RegisterOrganization(ctx, service.RegisterOrganizationInput{
		Name:           name,
		AdminEmail:     "admin@" + slug + ".test",
		AdminPassword:  testPassword,
		AdminFirstName: "Ada",
		AdminLastName:  "Admin",
	})
	require.NoError(t, err)
	org, err = e.tenants.SetLicenseSeats(ctx, org.ID, seats)
	require.NoError(t, err)
	return org, admin
}

// invite invites email as role and returns the raw token from the email.
func (e *env) invite(t *testing.T, org domain.Organization, by domain.User, email, role string) (domain.PendingMembership, string) {
	t.Helper()
	pm, err := e.members.Invite(context.Background(), service.InviteInput{
		Email:          email,
		Role:           role,
		OrganizationID: org.ID,
		InvitedBy:      by.ID,
	})
	require.NoError(t, err)
	return pm, e.mailer.lastInviteToken(t)
}

// join invites and accepts in one go.
func (e *env) join(t *testing.T, org domain.Organization, by domain.User, email, role string) domain.User {
	t.Helper()
	_, token := e.invite(t, org, by, email, role)
	u, err := e.members.AcceptInvite(context.Background(), service.AcceptInviteInput{
		Token:    token,
		Password: testPassword,
	})
	require.NoError(t, err)
	return u
}

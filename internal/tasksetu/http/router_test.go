package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	tshttp "github.com/aussiebroadwan/tasksetu/internal/tasksetu/http"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasksetu/pkg/cryptox"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword   = "Passw0rd!"
	bootstrapToken = "bootstrap-secret"
)

func TestMain(m *testing.M) {
	cryptox.SetCost(bcrypt.MinCost)
	os.Exit(m.Run())
}

type linkMailer struct {
	mu    sync.Mutex
	links []string
}

func (m *linkMailer) add(link string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links = append(m.links, link)
}

func (m *linkMailer) SendInvite(_ context.Context, msg domain.InviteMessage) error {
	m.add(msg.AcceptURL)
	return nil
}

func (m *linkMailer) SendPasswordReset(_ context.Context, msg domain.ResetMessage) error {
	m.add(msg.ResetURL)
	return nil
}

func (m *linkMailer) SendVerification(_ context.Context, msg domain.VerificationMessage) error {
	m.add(msg.VerifyURL)
	return nil
}

func (m *linkMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

// lastToken returns the token of the latest link.
func (m *linkMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links)
	u, err := url.Parse(m.links[len(m.links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

type testServer struct {
	*httptest.Server
	client    *tasksdk.Client
	mailer    *linkMailer
	passwords *service.PasswordService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	tokens, err := service.NewTokenService([]byte(strings.Repeat("k", 32)), "tasksetu-test", 0)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mailer := &linkMailer{}
	links := service.Links{BaseURL: "http://app.test"}

	r := tshttp.NewRouter(st, slogx.Discard(), m, reg)
	r.TokenService = tokens
	r.AccountService = &service.AccountService{Store: st, Tokens: tokens, Mailer: mailer, Metrics: m, Links: links}
	r.TenantService = &service.TenantService{Store: st}
	r.MembershipService = &service.MembershipService{Store: st, Mailer: mailer, Metrics: m, Links: links}
	passwords := &service.PasswordService{Store: st, Mailer: mailer, Metrics: m, Links: links}
	r.PasswordService = passwords
	r.MFAService = &service.MFAService{Store: st, Issuer: "TaskSetu"}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootstrapToken}
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, client: tasksdk.NewClient(srv.URL), mailer: mailer, passwords: passwords}
}

func (s *testServer) registerOrg(t *testing.T, name string) (*tasksdk.Session, *tasksdk.RegisterOrganizationResponse) {
	t.Helper()
	slug := domain.Slugify(name)
	sess, resp, err := s.client.RegisterOrganization(context.Background(), tasksdk.RegisterOrganizationRequest{
		OrganizationName: name,
		AdminEmail:       "admin@" + slug + ".test",
		AdminPassword:    testPassword,
		AdminFirstName:   "Ada",
	})
	require.NoError(t, err)
	return sess, resp
}

// join invites email into the admin's organization and accepts it.
func (s *testServer) join(t *testing.T, admin *tasksdk.Session, email, role string) *tasksdk.Session {
	t.Helper()
	ctx := context.Background()

	res, err := admin.InviteUsers(ctx, tasksdk.InviteSpec{Email: email, Role: role})
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount, res.Errors)

	_, err = s.client.AcceptInvite(ctx, tasksdk.AcceptInviteRequest{
		Token: s.mailer.lastToken(t), Password: testPassword, FirstName: "New",
	})
	require.NoError(t, err)

	sess, _, err := s.client.Login(ctx, tasksdk.LoginRequest{Email: email, Password: testPassword})
	require.NoError(t, err)
	return sess
}

func TestAuthenticate_StatusCodes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.client.WithToken("").Verify(ctx)
	require.Equal(t, http.StatusUnauthorized, tasksdk.StatusCode(err))
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeUnauthorized))

	_, err = s.client.WithToken("not.a.jwt").Verify(ctx)
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidToken))

	sess, resp := s.registerOrg(t, "Acme")
	v, err := sess.Verify(ctx)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, v.UserID)
	require.Equal(t, "org_admin", v.Role)
	require.Equal(t, resp.Organization.ID, v.TenantID)
}

func TestLogin_GenericFailure(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.registerOrg(t, "Acme")

	_, _, err := s.client.Login(ctx, tasksdk.LoginRequest{Email: "admin@acme.test", Password: "wrong-passw0rd"})
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidCredentials))
	wrong := err.Error()

	_, _, err = s.client.Login(ctx, tasksdk.LoginRequest{Email: "ghost@acme.test", Password: "wrong-passw0rd"})
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidCredentials))
	require.Equal(t, wrong, err.Error())
}

func TestForgotPassword_IdenticalBodies(t *testing.T) {
	s := newTestServer(t)
	s.registerOrg(t, "Acme")

	post := func(email string) (int, string) {
		resp, err := http.Post(s.URL+"/api/auth/forgot-password", "application/json",
			strings.NewReader(`{"email":"`+email+`"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	knownStatus, knownBody := post("admin@acme.test")
	unknownStatus, unknownBody := post("nobody@acme.test")
	s.passwords.Wait()

	require.Equal(t, http.StatusOK, knownStatus)
	require.Equal(t, knownStatus, unknownStatus)
	require.Equal(t, knownBody, unknownBody)
	require.Equal(t, 1, s.mailer.count())
}

func TestPasswordResetFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.registerOrg(t, "Acme")

	_, err := s.client.ForgotPassword(ctx, "admin@acme.test")
	require.NoError(t, err)
	s.passwords.Wait()
	token := s.mailer.lastToken(t)

	v, err := s.client.ValidateResetToken(ctx, token)
	require.NoError(t, err)
	require.True(t, v.Valid)
	require.Equal(t, "admin@acme.test", v.Email)

	_, err = s.client.ResetPassword(ctx, token, "N3wPassword")
	require.NoError(t, err)

	_, err = s.client.ResetPassword(ctx, token, "N3wPassword")
	require.Equal(t, http.StatusBadRequest, tasksdk.StatusCode(err))
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidToken))

	_, _, err = s.client.Login(ctx, tasksdk.LoginRequest{Email: "admin@acme.test", Password: "N3wPassword"})
	require.NoError(t, err)
}

func TestInvitationFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, reg := s.registerOrg(t, "Acme")

	res, err := admin.InviteUsers(ctx,
		tasksdk.InviteSpec{Email: "dev@acme.test", Roles: []string{"employee"}},
		tasksdk.InviteSpec{Email: "boss@acme.test", Roles: []string{"admin", "member"}},
		tasksdk.InviteSpec{Email: "admin@acme.test", Role: "member"},
	)
	require.NoError(t, err)
	require.Equal(t, 1, res.SuccessCount)
	require.Len(t, res.Invited, 1)
	require.Equal(t, "member", res.Invited[0].Role)
	require.Equal(t, "invited", res.Invited[0].Status)
	require.Len(t, res.Errors, 2)
	require.Equal(t, tasksdk.ErrorCodeValidation, res.Errors[0].Error)
	require.Equal(t, tasksdk.ErrorCodeAlreadyMember, res.Errors[1].Error)

	token := s.mailer.lastToken(t)
	pending, err := s.client.ResolveInvite(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "dev@acme.test", pending.Email)
	require.Equal(t, reg.Organization.ID, pending.OrganizationID)

	lic, err := admin.License(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, lic.Active)
	require.Equal(t, 1, lic.Pending)
	require.Equal(t, lic.Total, lic.Used+lic.Available)

	u, err := s.client.AcceptInvite(ctx, tasksdk.AcceptInviteRequest{Token: token, Password: testPassword, FirstName: "Dev"})
	require.NoError(t, err)
	require.True(t, u.IsActive)

	_, err = s.client.AcceptInvite(ctx, tasksdk.AcceptInviteRequest{Token: token, Password: testPassword})
	require.Equal(t, http.StatusNotFound, tasksdk.StatusCode(err))
	_, err = s.client.ResolveInvite(ctx, token)
	require.Equal(t, http.StatusNotFound, tasksdk.StatusCode(err))

	members, err := admin.Members(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
}

func TestMemberPermissions(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, _ := s.registerOrg(t, "Acme")
	member := s.join(t, admin, "dev@acme.test", "member")

	org, err := member.Organization(ctx)
	require.NoError(t, err)
	require.Equal(t, "acme", org.Slug)

	_, err = member.License(ctx)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeForbidden))
	_, err = member.InviteUsers(ctx, tasksdk.InviteSpec{Email: "x@acme.test", Role: "member"})
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))
	_, err = member.ListOrganizations(ctx)
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))

	// Another tenant cannot be addressed by a non super admin.
	other, otherReg := s.registerOrg(t, "Globex")
	_, err = admin.ForTenant(otherReg.Organization.ID).Organization(ctx)
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))
	_, err = other.Organization(ctx)
	require.NoError(t, err)
}

func TestDeactivationAppliesToNextRequest(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, reg := s.registerOrg(t, "Acme")
	member := s.join(t, admin, "dev@acme.test", "member")

	v, err := member.Verify(ctx)
	require.NoError(t, err)

	_, err = admin.DeactivateUser(ctx, v.UserID)
	require.NoError(t, err)

	_, err = member.Verify(ctx)
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeAccountInactive))

	_, err = admin.DeactivateUser(ctx, reg.User.ID)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeLastAdmin))

	_, err = admin.ActivateUser(ctx, v.UserID)
	require.NoError(t, err)
	_, err = member.Verify(ctx)
	require.NoError(t, err)
}

func TestRoleChangeAppliesToNextRequest(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, _ := s.registerOrg(t, "Acme")
	member := s.join(t, admin, "dev@acme.test", "member")

	v, err := member.Verify(ctx)
	require.NoError(t, err)
	_, err = member.License(ctx)
	require.Equal(t, http.StatusForbidden, tasksdk.StatusCode(err))

	u, err := admin.ChangeRole(ctx, v.UserID, "orgadmin")
	require.NoError(t, err)
	require.Equal(t, "org_admin", u.Role)

	_, err = member.License(ctx)
	require.NoError(t, err)
}

func TestIndividualCannotManageOrganization(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.client.Register(ctx, tasksdk.RegisterRequest{Email: "solo@example.test", Password: testPassword})
	require.NoError(t, err)

	_, _, err = s.client.Login(ctx, tasksdk.LoginRequest{Email: "solo@example.test", Password: testPassword})
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeEmailNotVerified))

	_, err = s.client.VerifyEmail(ctx, "bogus")
	require.Equal(t, http.StatusBadRequest, tasksdk.StatusCode(err))
	_, err = s.client.VerifyEmail(ctx, s.mailer.lastToken(t))
	require.NoError(t, err)

	sess, _, err := s.client.Login(ctx, tasksdk.LoginRequest{Email: "solo@example.test", Password: testPassword})
	require.NoError(t, err)

	_, err = sess.Organization(ctx)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeForbidden))

	roles, err := sess.Roles(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"super_admin", "org_admin", "member", "individual"}, roles.Roles)
	require.Equal(t, "member", roles.Aliases["employee"])
}

func TestSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	admin, reg := s.registerOrg(t, "Acme")

	req := tasksdk.BootstrapRequest{Email: "root@tasksetu.test", Password: testPassword, FirstName: "Root", LastName: "User"}
	_, err := s.client.Bootstrap(ctx, "wrong", req)
	require.Equal(t, http.StatusUnauthorized, tasksdk.StatusCode(err))
	_, err = s.client.Bootstrap(ctx, bootstrapToken, req)
	require.NoError(t, err)
	_, err = s.client.Bootstrap(ctx, bootstrapToken, req)
	require.Equal(t, http.StatusConflict, tasksdk.StatusCode(err))

	root, _, err := s.client.Login(ctx, tasksdk.LoginRequest{Email: req.Email, Password: testPassword})
	require.NoError(t, err)

	orgs, err := root.ListOrganizations(ctx)
	require.NoError(t, err)
	require.Len(t, orgs, 1)

	_, err = root.Organization(ctx)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeInvalidRequest))
	org, err := root.ForTenant(reg.Organization.ID).Organization(ctx)
	require.NoError(t, err)
	require.Equal(t, "acme", org.Slug)

	updated, err := root.SetLicenseSeats(ctx, reg.Organization.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 3, updated.LicenseSeats)

	_, err = root.SetOrganizationStatus(ctx, reg.Organization.ID, "suspended")
	require.NoError(t, err)
	_, err = admin.Verify(ctx)
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeAccountInactive))
	_, _, err = s.client.Login(ctx, tasksdk.LoginRequest{Email: "admin@acme.test", Password: testPassword})
	require.True(t, tasksdk.IsCode(err, tasksdk.ErrorCodeOrganizationSuspended))
}

func TestSystemEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	live, err := s.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := s.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)

	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "tasksetu_http_requests_total")
}

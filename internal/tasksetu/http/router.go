package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/domain"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/metrics"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/service"
	"github.com/aussiebroadwan/tasksetu/internal/tasksetu/store"
	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/aussiebroadwan/tasksetu/api/tasksetu" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

var (
	orgAdmin   = []string{domain.RoleOrgAdmin.String(), domain.RoleSuperAdmin.String()}
	superAdmin = []string{domain.RoleSuperAdmin.String()}
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	logger   *slog.Logger
	store    store.Store
	gatherer prometheus.Gatherer

	TokenService      *service.TokenService
	AccountService    *service.AccountService
	TenantService     *service.TenantService
	MembershipService *service.MembershipService
	PasswordService   *service.PasswordService
	MFAService        *service.MFAService
	BootstrapService  *service.BootstrapService
	RolesService      service.RolesService
}

// NewRouter creates a router with the logging and metrics middleware
// installed. gatherer backs /metrics and may be nil to leave it out.
func NewRouter(st store.Store, logger *slog.Logger, m *metrics.Metrics, gatherer prometheus.Gatherer) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		logger:   logger,
		store:    st,
		gatherer: gatherer,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		m.Middleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerPassword()
	r.registerInvites()
	r.registerMFA()
	r.registerOrganization()
	r.registerAdmin()
	r.registerRoles()
	r.registerBootstrap()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						TaskSetu Identity API
//	@version					0.1.0
//	@description				Accounts, organizations, memberships and invitations for TaskSetu.
//	@description
//	@description				Session tokens are HS256 JWTs. Every authenticated request re-reads the caller,
//	@description				so role changes and deactivation apply immediately.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tasksetu
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authenticated verifies the session and re-reads the caller.
func (r *Router) authenticated() httpx.Middleware {
	return httpx.Authenticate(r.TokenService.Verifier, IdentityLoader(r.AccountService))
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP + email to slow down credential stuffing
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{AccountService: r.AccountService},
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("GET /api/auth/verify",
		httpx.Chain(&VerifyHandler{AccountService: r.AccountService},
			r.authenticated(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Self-service account creation - moderate rate limit by IP
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(&RegisterHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/register-organization",
		httpx.Chain(&RegisterOrganizationHandler{TenantService: r.TenantService, TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/signup/{slug}",
		httpx.Chain(&SignupHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/verify-email",
		httpx.Chain(&VerifyEmailHandler{AccountService: r.AccountService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{PasswordService: r.PasswordService}

	// POST /forgot-password - strict, keyed on IP + email so one address cannot be flooded
	r.Mux.Handle("POST /api/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("GET /api/auth/reset-password/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			r.authenticated(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerInvites() {
	h := &InviteHandler{MembershipService: r.MembershipService}

	r.Mux.Handle("GET /api/auth/invite",
		httpx.Chain(http.HandlerFunc(h.HandleResolve),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /accept-invite - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /api/auth/accept-invite",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /api/auth/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			r.authenticated(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// Code checks - strict rate limit by user (prevent brute force of TOTP codes)
	r.Mux.Handle("POST /api/auth/mfa/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			r.authenticated(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /api/auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			r.authenticated(),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerOrganization() {
	h := &OrganizationHandler{
		TenantService:     r.TenantService,
		MembershipService: r.MembershipService,
	}

	member := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authenticated(),
			httpx.RequireOrganization(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		)
	}
	admin := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			r.authenticated(),
			httpx.RequireOrganization(),
			httpx.RequireRole(orgAdmin...),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /api/organization", member(h.HandleGet))
	r.Mux.Handle("PATCH /api/organization", admin(h.HandleUpdateProfile, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /api/organization/settings", admin(h.HandleSettings, httpx.ModerateLimit))
	r.Mux.Handle("GET /api/organization/license", admin(h.HandleLicense, httpx.LenientLimit))
	r.Mux.Handle("GET /api/organization/users-detailed", admin(h.HandleMembers, httpx.LenientLimit))
	r.Mux.Handle("POST /api/organization/invite-users", admin(h.HandleInvite, httpx.ModerateLimit))
	r.Mux.Handle("POST /api/organization/resend-invite/{userId}", admin(h.HandleResend, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /api/organization/revoke-invite/{userId}", admin(h.HandleRevoke, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /api/organization/users/{id}/activate", admin(h.HandleActivate, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /api/organization/users/{id}/deactivate", admin(h.HandleDeactivate, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /api/organization/users/{id}/role", admin(h.HandleChangeRole, httpx.ModerateLimit))
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{TenantService: r.TenantService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			r.authenticated(),
			httpx.RequireRole(superAdmin...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /api/admin/organizations", secured(h.HandleList))
	r.Mux.Handle("PATCH /api/admin/organizations/{id}/license", secured(h.HandleLicense))
	r.Mux.Handle("PATCH /api/admin/organizations/{id}/status", secured(h.HandleStatus))
}

func (r *Router) registerRoles() {
	r.Mux.Handle("GET /api/roles",
		httpx.Chain(&RolesHandler{RolesService: r.RolesService},
			r.authenticated(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	r.Mux.Handle("POST /api/bootstrap",
		httpx.Chain(&BootstrapHandler{BootstrapService: r.BootstrapService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.store),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	if r.gatherer != nil {
		r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	}
}

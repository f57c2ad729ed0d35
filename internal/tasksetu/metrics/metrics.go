// Package metrics holds the Prometheus collectors of the service. A nil
// *Metrics is valid and records nothing, which keeps tests free of
// registry setup.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/tasksetu/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasksetu"

// Login results.
const (
	LoginSuccess     = "success"
	LoginFailure     = "invalid_credentials"
	LoginRefused     = "refused"
	LoginMFARequired = "mfa_required"
)

// Invitation results.
const (
	InviteCreated  = "created"
	InviteRejected = "rejected"
	InviteAccepted = "accepted"
	InviteResent   = "resent"
	InviteRevoked  = "revoked"
	InviteNoSeat   = "seat_limit"
)

// Password reset stages.
const (
	ResetRequested = "requested"
	ResetCompleted = "completed"
	ResetRejected  = "rejected"
)

// Mail kinds.
const (
	MailInvite       = "invite"
	MailReset        = "password_reset"
	MailVerification = "verification"
)

type Metrics struct {
	logins         *prometheus.CounterVec
	invitations    *prometheus.CounterVec
	passwordResets *prometheus.CounterVec
	mailFailures   *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		invitations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invitations_total",
			Help:      "Invitation lifecycle events by result.",
		}, []string{"result"}),
		passwordResets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_resets_total",
			Help:      "Password reset events by stage.",
		}, []string{"stage"}),
		mailFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mail_failures_total",
			Help:      "Emails that could not be handed to the mail collaborator.",
		}, []string{"kind"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"method"}),
	}
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Invitation(result string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(result).Inc()
}

func (m *Metrics) PasswordReset(stage string) {
	if m == nil {
		return
	}
	m.passwordResets.WithLabelValues(stage).Inc()
}

func (m *Metrics) MailFailure(kind string) {
	if m == nil {
		return
	}
	m.mailFailures.WithLabelValues(kind).Inc()
}

// Middleware counts requests and observes their latency. Paths are not
// used as labels to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &slogx.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.Status)).Inc()
		m.httpDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasksetu/pkg/httpx"
	"github.com/aussiebroadwan/tasksetu/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type memLoader map[string]httpx.Identity

func (m memLoader) LoadIdentity(_ context.Context, userID string) (httpx.Identity, error) {
	id, ok := m[userID]
	if !ok {
		return httpx.Identity{}, httpx.ErrIdentityNotFound
	}
	return id, nil
}

func newSigner(t *testing.T) *jwtx.HS256 {
	t.Helper()
	h, err := jwtx.NewHS256([]byte(strings.Repeat("k", jwtx.MinSecretBytes)), "tasksetu")
	require.NoError(t, err)
	return h
}

func sign(t *testing.T, h *jwtx.HS256, sub string, issuedAt time.Time) string {
	t.Helper()
	tok, err := h.Sign(jwtx.NewSessionClaims(sub, sub+"@example.com", "member", "org-1", time.Hour, "tasksetu", issuedAt))
	require.NoError(t, err)
	return tok
}

func serve(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestAuthenticate(t *testing.T) {
	signer := newSigner(t)
	loader := memLoader{
		"alice": {UserID: "alice", Role: "member", TenantID: "org-1", Active: true},
		"bob":   {UserID: "bob", Role: "member", TenantID: "org-1", Active: false},
	}

	var seen httpx.Identity
	h := httpx.Authenticate(signer, loader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httpx.MustIdentity(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing token", func(t *testing.T) {
		rec := serve(h, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), `"unauthorized"`)
	})

	t.Run("garbage token", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, serve(h, "abc.def.ghi").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok := sign(t, signer, "alice", time.Now().Add(-2*time.Hour))
		require.Equal(t, http.StatusForbidden, serve(h, tok).Code)
	})

	t.Run("deleted subject", func(t *testing.T) {
		require.Equal(t, http.StatusForbidden, serve(h, sign(t, signer, "carol", time.Now())).Code)
	})

	t.Run("inactive subject", func(t *testing.T) {
		rec := serve(h, sign(t, signer, "bob", time.Now()))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "account_inactive")
	})

	t.Run("active subject", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, serve(h, sign(t, signer, "alice", time.Now())).Code)
		require.Equal(t, "alice", seen.UserID)
	})

	t.Run("deactivation applies to the next request", func(t *testing.T) {
		tok := sign(t, signer, "alice", time.Now())
		require.Equal(t, http.StatusNoContent, serve(h, tok).Code)

		a := loader["alice"]
		a.Active = false
		loader["alice"] = a
		require.Equal(t, http.StatusForbidden, serve(h, tok).Code)
	})

	t.Run("loader failure", func(t *testing.T) {
		broken := httpx.IdentityLoaderFunc(func(context.Context, string) (httpx.Identity, error) {
			return httpx.Identity{}, errors.New("db down")
		})
		h := httpx.Authenticate(signer, broken)(okHandler())
		require.Equal(t, http.StatusInternalServerError, serve(h, sign(t, signer, "alice", time.Now())).Code)
	})
}

func TestRequireRole(t *testing.T) {
	h := httpx.RequireRole("org_admin", "super_admin")(okHandler())

	do := func(id *httpx.Identity) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id != nil {
			req = req.WithContext(httpx.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do(&httpx.Identity{Role: "org_admin"}))
	require.Equal(t, http.StatusForbidden, do(&httpx.Identity{Role: "member"}))
	require.Equal(t, http.StatusForbidden, do(nil))
}

func TestRequireOrganization(t *testing.T) {
	h := httpx.RequireOrganization()(okHandler())

	do := func(id httpx.Identity) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(httpx.WithIdentity(req.Context(), id))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, do(httpx.Identity{Role: "member", TenantID: "org-1"}))
	require.Equal(t, http.StatusOK, do(httpx.Identity{Role: "super_admin", SuperAdmin: true}))
	require.Equal(t, http.StatusForbidden, do(httpx.Identity{Role: "individual"}))
}

func TestCanAccessTenant(t *testing.T) {
	member := httpx.Identity{TenantID: "org-1"}
	require.True(t, httpx.CanAccessTenant(member, "org-1"))
	require.False(t, httpx.CanAccessTenant(member, "org-2"))
	require.False(t, httpx.CanAccessTenant(httpx.Identity{}, ""))
	require.True(t, httpx.CanAccessTenant(httpx.Identity{SuperAdmin: true}, "org-2"))
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer   abc")
	tok, ok := httpx.BearerToken(req)
	require.True(t, ok)
	require.Equal(t, "abc", tok)

	req.Header.Set("Authorization", "Basic abc")
	_, ok = httpx.BearerToken(req)
	require.False(t, ok)
}

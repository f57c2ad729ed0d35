package httpx

import (
	"context"
	"errors"
)

// Identity is the caller as resolved from a fresh store read, not from the
// token claims. Role and TenantID can therefore change between requests.
type Identity struct {
	UserID     string
	Email      string
	Role       string
	TenantID   string
	Active     bool
	SuperAdmin bool
}

// HasTenant reports whether the caller belongs to an organization.
func (id Identity) HasTenant() bool { return id.TenantID != "" }

// IdentityLoader resolves the current state of a token subject.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (Identity, error)
}

// IdentityLoaderFunc adapts a function to IdentityLoader.
type IdentityLoaderFunc func(ctx context.Context, userID string) (Identity, error)

func (f IdentityLoaderFunc) LoadIdentity(ctx context.Context, userID string) (Identity, error) {
	return f(ctx, userID)
}

// ErrIdentityNotFound is returned by loaders when the subject no longer exists.
var ErrIdentityNotFound = errors.New("httpx: identity not found")

type identityKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by Authenticate.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// MustIdentity is IdentityFromContext for handlers mounted behind
// Authenticate. It panics when the middleware is missing from the chain.
func MustIdentity(ctx context.Context) Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("httpx: handler mounted without Authenticate")
	}
	return id
}

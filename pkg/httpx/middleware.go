// Package httpx holds the HTTP plumbing shared by the server and its tests:
// middleware composition, the authenticated identity carried on a request,
// the authentication and authorization gates, JSON helpers and rate limits.
package httpx

import "net/http"

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with mw so that mw[0] is the outermost layer and runs first.
func Chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

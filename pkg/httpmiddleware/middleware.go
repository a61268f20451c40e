// Package httpmiddleware provides the HTTP hardening layer: panic recovery,
// CORS, request IDs, rate limiting and request logging.
package httpmiddleware

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to next so that the first middleware listed is
// the outermost one.
func Wrap(next http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		next = middlewares[i](next)
	}
	return next
}

// Package middleware holds the HTTP middleware for the server: the
// authorization gate and the request identity plumbing.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
	clientIPKey
)

// WithIdentity returns a context carrying the authenticated user id and,
// for cookie-authenticated requests, the session id (empty for bearer auth).
func WithIdentity(ctx context.Context, userID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetUserID returns the authenticated user id from the context, or "" when the
// request did not pass the authorization gate.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// GetSessionID returns the cookie session id from the context, or "" when the
// request authenticated with a bearer token (or not at all).
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// ClientIPContext stores the client IP in the request context so code that
// only sees a context (e.g. the audit logger) can read it.
func ClientIPContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetClientIP returns the client IP stored by ClientIPContext, or "" outside
// a request.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// ClientIP extracts the client IP from the request, preferring the first
// X-Forwarded-For entry when the server sits behind a proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

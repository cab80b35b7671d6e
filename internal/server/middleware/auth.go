package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/security"
	"shopfront-backend/internal/server/httpjson"
	sessiondomain "shopfront-backend/internal/session/domain"
	userdomain "shopfront-backend/internal/user/domain"
)

// SessionCookieName is the cookie carrying the opaque session token for
// browser clients.
const SessionCookieName = "shopfront_session"

// TokenVerifier verifies a bearer token and returns the embedded user id.
type TokenVerifier interface {
	Verify(tokenString string) (userID string, err error)
}

// UserGetter resolves a user id against storage.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// SessionGetter resolves a session token hash against storage.
type SessionGetter interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*sessiondomain.Session, error)
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}

// Gate is the authorization gate. It admits a request over either credential:
// a Bearer token in the Authorization header, or the session cookie. Bearer
// wins when both are present. Admitted requests carry the resolved user id
// (and session id for cookie auth) in the context; everything else gets a
// reason-coded 401 and never reaches a handler.
type Gate struct {
	tokens   TokenVerifier
	users    UserGetter
	sessions SessionGetter
	log      logging.Logger
}

// NewGate returns a Gate with the given dependencies.
func NewGate(tokens TokenVerifier, users UserGetter, sessions SessionGetter, log logging.Logger) *Gate {
	return &Gate{tokens: tokens, users: users, sessions: sessions, log: log}
}

// Optional wraps next so that a valid credential binds identity into the
// context but an absent or bad one does not reject the request. Used by
// logout, where "already signed out" is a success.
func (g *Gate) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			if userID, err := g.tokens.Verify(strings.TrimSpace(auth[len("Bearer "):])); err == nil {
				if user, err := g.users.GetByID(r.Context(), userID); err == nil && user != nil {
					next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user.ID, "")))
					return
				}
			}
		}
		if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
			session, err := g.sessions.GetByTokenHash(r.Context(), security.HashSessionToken(c.Value))
			if err == nil && session != nil {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), session.UserID, session.ID)))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Require wraps next so that only authenticated requests reach it.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			g.admitBearer(w, r, next, auth)
			return
		}
		if c, err := r.Cookie(SessionCookieName); err == nil && c.Value != "" {
			g.admitCookie(w, r, next, c.Value)
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnauthenticated, "authentication required")
	})
}

func (g *Gate) admitBearer(w http.ResponseWriter, r *http.Request, next http.Handler, auth string) {
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeMalformedToken, "authorization header is not a bearer token")
		return
	}
	userID, err := g.tokens.Verify(strings.TrimSpace(auth[len(prefix):]))
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeExpiredToken, "token expired")
			return
		}
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeMalformedToken, "invalid token")
		return
	}
	// A valid signature is not enough: the user must still exist.
	user, err := g.users.GetByID(r.Context(), userID)
	if err != nil {
		g.log.Error(r.Context(), "auth gate user lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if user == nil {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnknownUser, "unknown user")
		return
	}
	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user.ID, "")))
}

func (g *Gate) admitCookie(w http.ResponseWriter, r *http.Request, next http.Handler, token string) {
	session, err := g.sessions.GetByTokenHash(r.Context(), security.HashSessionToken(token))
	if err != nil {
		g.log.Error(r.Context(), "auth gate session lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if session == nil {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeMalformedToken, "invalid session")
		return
	}
	now := time.Now().UTC()
	if !session.Active(now) {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeExpiredToken, "session expired")
		return
	}
	user, err := g.users.GetByID(r.Context(), session.UserID)
	if err != nil {
		g.log.Error(r.Context(), "auth gate user lookup failed", "error", err)
		httpjson.Internal(w)
		return
	}
	if user == nil {
		httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeUnknownUser, "unknown user")
		return
	}

	// Best-effort; a failed touch never blocks the request.
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := g.sessions.UpdateLastSeen(ctx, id, now); err != nil {
			g.log.Warn(ctx, "session last-seen update failed", "error", err)
		}
	}(session.ID)

	next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), user.ID, session.ID)))
}

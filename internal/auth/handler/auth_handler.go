// Package handler exposes signup, login, and logout over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"shopfront-backend/internal/audit"
	auditdomain "shopfront-backend/internal/audit/domain"
	"shopfront-backend/internal/auth/service"
	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/server/httpjson"
	"shopfront-backend/internal/server/middleware"
	"shopfront-backend/internal/telemetry"
	userdomain "shopfront-backend/internal/user/domain"
	"shopfront-backend/internal/validation"
)

// AuthService is the service surface the handler needs.
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*userdomain.User, error)
	Login(ctx context.Context, email, password, ip string) (*service.LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandler handles /signup, /login, and /logout.
type AuthHandler struct {
	auth         AuthService
	audit        audit.AuditLogger
	emitter      telemetry.EventEmitter
	log          logging.Logger
	cookieSecure bool
}

// NewAuthHandler returns an AuthHandler. cookieSecure controls the Secure flag
// on the session cookie; disable it only for local HTTP development.
func NewAuthHandler(auth AuthService, auditLog audit.AuditLogger, emitter telemetry.EventEmitter, log logging.Logger, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		audit:        auditLog,
		emitter:      emitter,
		log:          log,
		cookieSecure: cookieSecure,
	}
}

type signupRequestDTO struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type loginResponseDTO struct {
	CurrentUser userDTO   `json:"current_user"`
	Token       string    `json:"token"`
	Exp         time.Time `json:"exp"`
}

func toUserDTO(u *userdomain.User) userDTO {
	return userDTO{ID: u.ID, Email: u.Email, Username: u.Username, CreatedAt: u.CreatedAt}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.Password == "" {
		v := validation.NewError()
		v.Add("password", "is required")
		httpjson.ValidationError(w, v)
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailAlreadyRegistered), errors.Is(err, service.ErrDuplicateUser):
			httpjson.Error(w, http.StatusConflict, httpjson.CodeDuplicateResource, "email or username already taken")
		default:
			if v := validation.AsError(err); v != nil {
				httpjson.ValidationError(w, v)
				return
			}
			h.log.Error(r.Context(), "signup failed", "error", err)
			httpjson.Internal(w)
		}
		return
	}

	h.audit.LogEvent(r.Context(), user.ID, auditdomain.ActionRegister, "user", "")
	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(user.ID, telemetry.EventUserRegistered, nil))
	httpjson.Respond(w, http.StatusCreated, toUserDTO(user))
}

// Login handles POST /login. Success returns the user, a bearer token with its
// expiry, and sets the session cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequestDTO
	if !httpjson.Decode(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password, middleware.ClientIP(r))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit.LogEvent(r.Context(), "", auditdomain.ActionLoginFailure, "session", req.Email)
			httpjson.Error(w, http.StatusUnauthorized, httpjson.CodeInvalidCredentials, "invalid email or password")
			return
		}
		h.log.Error(r.Context(), "login failed", "error", err)
		httpjson.Internal(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    res.SessionToken,
		Path:     "/",
		Expires:  res.SessionExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.audit.LogEvent(r.Context(), res.User.ID, auditdomain.ActionLogin, "session", "")
	telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(res.User.ID, telemetry.EventUserLogin, nil))
	httpjson.Respond(w, http.StatusOK, loginResponseDTO{
		CurrentUser: toUserDTO(res.User),
		Token:       res.Token,
		Exp:         res.TokenExpiresAt,
	})
}

// Logout handles DELETE /logout. Idempotent: signing out twice, or without a
// live session, still succeeds. API clients get 204; browser-navigational
// requests (Accept: text/html) get a redirect to /. The gate does not guard
// this route, so an expired session can still be cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	if err := h.auth.Logout(r.Context(), sessionID); err != nil {
		h.log.Error(r.Context(), "logout failed", "error", err)
		httpjson.Internal(w)
		return
	}

	// Expire the cookie regardless of whether a session row was revoked.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if userID := middleware.GetUserID(r.Context()); userID != "" {
		h.audit.LogEvent(r.Context(), userID, auditdomain.ActionLogout, "session", "")
		telemetry.EmitAsync(h.emitter, r.Context(), telemetry.NewEvent(userID, telemetry.EventUserLogout, nil))
	}

	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// wantsHTML reports whether the request came from browser navigation rather
// than an API client.
func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}

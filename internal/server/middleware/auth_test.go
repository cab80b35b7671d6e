package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shopfront-backend/internal/logging"
	"shopfront-backend/internal/security"
	"shopfront-backend/internal/server/httpjson"
	sessiondomain "shopfront-backend/internal/session/domain"
	userdomain "shopfront-backend/internal/user/domain"
)

type memUsers struct {
	byID map[string]*userdomain.User
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return m.byID[id], nil
}

type memSessions struct {
	byHash map[string]*sessiondomain.Session
}

func (m *memSessions) GetByTokenHash(ctx context.Context, hash string) (*sessiondomain.Session, error) {
	return m.byHash[hash], nil
}

func (m *memSessions) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	return nil
}

func newTestGate(t *testing.T, ttl time.Duration) (*Gate, *security.TokenProvider, *memUsers, *memSessions) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider(ttl)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	users := &memUsers{byID: map[string]*userdomain.User{}}
	sessions := &memSessions{byHash: map[string]*sessiondomain.Session{}}
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewGate(tokens, users, sessions, log), tokens, users, sessions
}

func serveGate(g *Gate, r *http.Request) (*httptest.ResponseRecorder, string) {
	var gotUserID string
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w, gotUserID
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httpjson.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Code
}

func TestGate_NoCredentials(t *testing.T) {
	g, _, _, _ := newTestGate(t, time.Hour)
	w, _ := serveGate(g, httptest.NewRequest("GET", "/products", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != httpjson.CodeUnauthenticated {
		t.Errorf("code: got %q", code)
	}
}

func TestGate_ValidBearer(t *testing.T) {
	g, tokens, users, _ := newTestGate(t, time.Hour)
	users.byID["u1"] = &userdomain.User{ID: "u1", Email: "a@b.com", Username: "a"}
	token, _, err := tokens.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/products", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w, userID := serveGate(g, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", w.Code, w.Body.String())
	}
	if userID != "u1" {
		t.Errorf("context user id: got %q, want u1", userID)
	}
}

func TestGate_ExpiredBearer(t *testing.T) {
	g, _, users, _ := newTestGate(t, time.Hour)
	users.byID["u1"] = &userdomain.User{ID: "u1"}

	expired, err := security.NewTestTokenProvider(-time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	token, _, err := expired.Issue("u1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/products", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w, _ := serveGate(g, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != httpjson.CodeExpiredToken {
		t.Errorf("code: got %q, want %q", code, httpjson.CodeExpiredToken)
	}
}

func TestGate_MalformedBearer(t *testing.T) {
	g, _, _, _ := newTestGate(t, time.Hour)

	for _, auth := range []string{"Bearer not.a.jwt", "Basic abc", "Bearer "} {
		r := httptest.NewRequest("GET", "/products", nil)
		r.Header.Set("Authorization", auth)
		w, _ := serveGate(g, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%q: status %d, want 401", auth, w.Code)
			continue
		}
		if code := errorCode(t, w); code != httpjson.CodeMalformedToken {
			t.Errorf("%q: code %q, want %q", auth, code, httpjson.CodeMalformedToken)
		}
	}
}

func TestGate_ValidTokenUnknownUser(t *testing.T) {
	g, tokens, _, _ := newTestGate(t, time.Hour)
	token, _, err := tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := httptest.NewRequest("GET", "/products", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w, _ := serveGate(g, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status: got %d, want 401", w.Code)
	}
	if code := errorCode(t, w); code != httpjson.CodeUnknownUser {
		t.Errorf("code: got %q, want %q", code, httpjson.CodeUnknownUser)
	}
}

func TestGate_SessionCookie(t *testing.T) {
	g, _, users, sessions := newTestGate(t, time.Hour)
	users.byID["u1"] = &userdomain.User{ID: "u1"}

	token, err := security.NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	sessions.byHash[security.HashSessionToken(token)] = &sessiondomain.Session{
		ID:        "s1",
		UserID:    "u1",
		TokenHash: security.HashSessionToken(token),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	r := httptest.NewRequest("GET", "/cart", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})

	var gotSessionID string
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSessionID = GetSessionID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (%s)", w.Code, w.Body.String())
	}
	if gotSessionID != "s1" {
		t.Errorf("context session id: got %q, want s1", gotSessionID)
	}
}

func TestGate_ExpiredOrRevokedSession(t *testing.T) {
	g, _, users, sessions := newTestGate(t, time.Hour)
	users.byID["u1"] = &userdomain.User{ID: "u1"}

	revoked := time.Now().Add(-time.Minute)
	for name, s := range map[string]*sessiondomain.Session{
		"expired": {ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(-time.Hour)},
		"revoked": {ID: "s2", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour), RevokedAt: &revoked},
	} {
		t.Run(name, func(t *testing.T) {
			token, _ := security.NewSessionToken()
			s.TokenHash = security.HashSessionToken(token)
			sessions.byHash[s.TokenHash] = s

			r := httptest.NewRequest("GET", "/cart", nil)
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
			w, _ := serveGate(g, r)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401", w.Code)
			}
			if code := errorCode(t, w); code != httpjson.CodeExpiredToken {
				t.Errorf("code: got %q, want %q", code, httpjson.CodeExpiredToken)
			}
		})
	}
}

func TestGate_BearerWinsOverCookie(t *testing.T) {
	g, tokens, users, sessions := newTestGate(t, time.Hour)
	users.byID["bearer-user"] = &userdomain.User{ID: "bearer-user"}
	users.byID["cookie-user"] = &userdomain.User{ID: "cookie-user"}

	token, _, err := tokens.Issue("bearer-user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	cookieToken, _ := security.NewSessionToken()
	sessions.byHash[security.HashSessionToken(cookieToken)] = &sessiondomain.Session{
		ID: "s1", UserID: "cookie-user",
		TokenHash: security.HashSessionToken(cookieToken),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	r := httptest.NewRequest("GET", "/cart", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookieToken})
	w, userID := serveGate(g, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", w.Code)
	}
	if userID != "bearer-user" {
		t.Errorf("user id: got %q, want bearer-user", userID)
	}
}

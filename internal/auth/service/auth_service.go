// Package service implements registration, login, and logout on top of the
// user and session repositories. Login issues both a stateless bearer token
// and a server-side cookie session, so API clients and browsers authenticate
// the same account through either channel.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopfront-backend/internal/db"
	"shopfront-backend/internal/security"
	sessiondomain "shopfront-backend/internal/session/domain"
	userdomain "shopfront-backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrDuplicateUser          = errors.New("email or username already taken")
	// ErrInvalidCredentials covers both an unknown email and a wrong password,
	// so the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// LoginResult holds everything a transport needs after a successful login:
// the authenticated user, the bearer token for API clients, and the raw
// session token for the browser cookie.
type LoginResult struct {
	User             *userdomain.User
	Token            string
	TokenExpiresAt   time.Time
	SessionID        string
	SessionToken     string
	SessionExpiresAt time.Time
}

// dummyHash is a valid bcrypt hash compared against when the email is unknown,
// keeping the timing of both failure paths similar.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string) error
}

// AuthService implements register, login, and logout.
type AuthService struct {
	users      UserRepo
	sessions   SessionRepo
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	sessionTTL time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, sessions SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		sessionTTL: sessionTTL,
	}
}

// Register creates a user with the given email, username, and password.
// Returns ErrEmailAlreadyRegistered or ErrDuplicateUser on conflict.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*userdomain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can still hit the unique index.
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates with email/password, issues a bearer token, and creates
// a cookie session. Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a bcrypt compare so the unknown-email path takes about as long
		// as a wrong-password one.
		_ = s.hasher.Compare(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, tokenExp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	sessionToken, err := security.NewSessionToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	session := &sessiondomain.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: security.HashSessionToken(sessionToken),
		ExpiresAt: now.Add(s.sessionTTL),
		IPAddress: ip,
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &LoginResult{
		User:             user,
		Token:            token,
		TokenExpiresAt:   tokenExp,
		SessionID:        session.ID,
		SessionToken:     sessionToken,
		SessionExpiresAt: session.ExpiresAt,
	}, nil
}

// Logout revokes the session with the given id. Idempotent: revoking a missing
// or already-revoked session succeeds, so repeated logouts return the same
// result as the first.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"shopfront-backend/internal/session/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const sessionColumns = `id, user_id, token_hash, expires_at, revoked_at, last_seen_at, ip_address, created_at`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

// GetByTokenHash returns the session whose stored token hash matches, or nil
// if not found. The caller decides whether an expired or revoked session still
// authenticates.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = $1`, tokenHash)
	return scanSession(row)
}

// Create persists the session. The session must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, token_hash, expires_at, revoked_at, last_seen_at, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.TokenHash, s.ExpiresAt,
		timeToNullTime(s.RevokedAt), timeToNullTime(s.LastSeenAt),
		sql.NullString{String: s.IPAddress, Valid: s.IPAddress != ""}, s.CreatedAt)
	return err
}

// Revoke marks the session with the given id as revoked. Revoking an already
// revoked or missing session is a no-op, which keeps logout idempotent.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`,
		id, time.Now().UTC())
	return err
}

// RevokeAllByUser revokes all sessions for the given user.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`,
		userID, time.Now().UTC())
	return err
}

// UpdateLastSeen sets the session's last-seen timestamp for the given id.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_seen_at = $2 WHERE id = $1`, id, at)
	return err
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func scanSession(row *sql.Row) (*domain.Session, error) {
	var (
		s          domain.Session
		revokedAt  sql.NullTime
		lastSeenAt sql.NullTime
		ip         sql.NullString
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &revokedAt, &lastSeenAt, &ip, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	if lastSeenAt.Valid {
		s.LastSeenAt = &lastSeenAt.Time
	}
	if ip.Valid {
		s.IPAddress = ip.String
	}
	return &s, nil
}

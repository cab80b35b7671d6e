// Package audit records security-relevant events (logins, logouts, resource
// mutations) to a persistent trail. Writes are best-effort and never fail the
// request that triggered them.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopfront-backend/internal/audit/domain"
	auditrepo "shopfront-backend/internal/audit/repository"
	"shopfront-backend/internal/logging"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	log         logging.Logger
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor
// for client IP. ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, log logging.Logger) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, log: log}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Save(ctx, entry); err != nil {
		l.log.Warn(ctx, "audit event write failed", "action", action, "resource", resource, "error", err)
	}
}

// Noop is an AuditLogger that discards events. Useful in tests.
type Noop struct{}

func (Noop) LogEvent(ctx context.Context, userID, action, resource, metadata string) {}

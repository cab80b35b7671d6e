package domain

import "time"

// Actions recorded in the audit trail.
const (
	ActionRegister     = "register"
	ActionLogin        = "login"
	ActionLoginFailure = "login_failure"
	ActionLogout       = "logout"
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
)

// AuditLog is a single security-relevant event. UserID may be empty for
// unauthenticated events such as failed logins.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

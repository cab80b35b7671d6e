// Package telemetry defines best-effort product telemetry events and the
// plumbing that ships them to a broker without blocking request handlers.
package telemetry

import "time"

// Event types emitted by the application.
const (
	EventUserRegistered = "user_registered"
	EventUserLogin      = "user_login"
	EventUserLogout     = "user_logout"
	EventCartItemAdded  = "cart_item_added"
	EventCartItemRemove = "cart_item_removed"
)

// Event is a single telemetry event. UserID may be empty for anonymous events.
type Event struct {
	UserID    string            `json:"user_id,omitempty"`
	EventType string            `json:"event_type"`
	Source    string            `json:"source"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewEvent returns an Event stamped with the current time.
func NewEvent(userID, eventType string, metadata map[string]string) *Event {
	return &Event{
		UserID:    userID,
		EventType: eventType,
		Source:    "shopfront-backend",
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
}

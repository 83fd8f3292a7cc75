package events

import (
	"strings"
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated         EventType = "user.created"
	EventUserUpdated         EventType = "user.updated"
	EventUserDeleted         EventType = "user.deleted"
	EventSubscriptionAdded   EventType = "subscription.added"
	EventSubscriptionDeleted EventType = "subscription.deleted"
)

// AllEventTypes lists every type in declaration order.
var AllEventTypes = []EventType{
	EventUserCreated,
	EventUserUpdated,
	EventUserDeleted,
	EventSubscriptionAdded,
	EventSubscriptionDeleted,
}

// Resource names the entity kind an event is about, e.g. "user".
func (t EventType) Resource() string {
	resource, _, _ := strings.Cut(string(t), ".")
	return resource
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	ResourceID int64       `json:"resource_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload,omitempty"`
}

// UserPayload carries the user state after a create or update.
type UserPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubscriptionAddedPayload payload.
type SubscriptionAddedPayload struct {
	UserID      int64  `json:"user_id"`
	ServiceName string `json:"service_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Active      bool   `json:"active"`
}

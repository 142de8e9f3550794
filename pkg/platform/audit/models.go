package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose so stores and
// relays can apply different retention and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// which organizations were told about which obligations, and by whom.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// Subject is the aggregate the event is about, e.g. a batch ID.
	Subject   string
	ActorID   string
	RequestID string
	Details   map[string]any
}

type AuditEvent string

const (
	EventObligationsPublished AuditEvent = "obligations_published"
	EventPublishNoop          AuditEvent = "publish_noop"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventObligationsPublished: CategoryCompliance,
	EventPublishNoop:          CategoryCompliance,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. The Postgres implementation writes to the
// transactional outbox, so Append joins any transaction carried by ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// ComplianceEvent captures regulatory-significant actions requiring guaranteed persistence.
// Use with the compliance publisher for fail-closed semantics.
type ComplianceEvent struct {
	Timestamp time.Time // set automatically if zero
	Action    AuditEvent
	Subject   string
	ActorID   string // operator who performed the action (required)
	RequestID string
	Details   map[string]any
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the stored Event shape.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:  CategoryCompliance,
		Timestamp: e.Timestamp,
		Action:    string(e.Action),
		Subject:   e.Subject,
		ActorID:   e.ActorID,
		RequestID: e.RequestID,
		Details:   e.Details,
	}
}

// OutboxEntry is a persisted event waiting to be relayed to the message broker.
type OutboxEntry struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}

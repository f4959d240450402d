// Package audit captures an append-only trail of workflow decisions. Events
// are written to a postgres outbox inside the same transaction as the change
// they describe; a background worker publishes them to Kafka, which is the
// durable source of truth for the trail.
package audit

import (
	"context"
	"time"

	id "astrarium/pkg/domain"
)

// Action names follow a domain.verb convention.
const (
	ActionDiscoverySubmitted = "discovery.submitted"
	ActionDiscoveryModerated = "discovery.moderated"
	ActionDiscoveryUpdated   = "discovery.updated"
	ActionDiscoveryDeleted   = "discovery.deleted"
	ActionBodyUpdated        = "body.updated"
	ActionBodyDeleted        = "body.deleted"
)

// Event is one audit record. ActorID is the authenticated user performing
// the action, not necessarily the dossier owner.
type Event struct {
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	ActorID     string    `json:"actor_id,omitempty"`
	ActorRole   string    `json:"actor_role,omitempty"`
	DiscoveryID string    `json:"discovery_id,omitempty"`
	BodyID      string    `json:"body_id,omitempty"`
	Subtype     string    `json:"subtype,omitempty"`
	Decision    string    `json:"decision,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Store is the persistence sink for events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit stamps and persists an event. Callers inside a database transaction
// get outbox atomicity for free because the store honors the context tx.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// ActorString renders a user id for event fields, empty for the zero id.
func ActorString(userID id.UserID) string {
	if userID.IsNil() {
		return ""
	}
	return userID.String()
}

package events

import (
	"context"
	"time"
)

const (
	ContactCreated  = "contact.created"
	ContactUpdated  = "contact.updated"
	ContactTrashed  = "contact.trashed"
	ContactRestored = "contact.restored"
	ContactPurged   = "contact.purged"
	TrashEmptied    = "trash.emptied"
	ContactMerged   = "contact.merged"
)

// Event is the payload written to the lifecycle topic. Key is the username so
// all events of one user land on the same partition.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Username   string    `json:"username"`
	ContactIDs []string  `json:"contact_ids,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Noop drops every event. Used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

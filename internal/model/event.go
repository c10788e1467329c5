package model

import "github.com/google/uuid"

type EventKind string

const (
	// EventNone is the zero kind: nothing to broadcast.
	EventNone      EventKind = ""
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventPublished EventKind = "published"
	EventDeleted   EventKind = "deleted"
)

// Event is a lifecycle notification broadcast to connected observers.
// Deleted events carry only the id; the record no longer exists.
type Event struct {
	Kind    EventKind `json:"kind"`
	ID      uuid.UUID `json:"id"`
	Article *Article  `json:"article,omitempty"`
}

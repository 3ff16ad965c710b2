package realtime

import "time"

// EventType names a push message sent to dashboard clients
type EventType string

const (
	// EventQueuesRefreshed tells clients to refetch every queue
	EventQueuesRefreshed EventType = "queues_refreshed"
	// EventCommitmentChanged tells clients one deal's hygiene state moved
	EventCommitmentChanged EventType = "commitment_changed"
)

// Event is the JSON envelope pushed over the websocket
// ⭐ SSOT: the only message shape clients receive on /ws
type Event struct {
	Type   EventType `json:"type"`
	At     time.Time `json:"at"`
	DealID string    `json:"deal_id,omitempty"`
	Source string    `json:"source,omitempty"` // job or endpoint that caused the event
}

// Publisher is what producers of events depend on
type Publisher interface {
	Publish(event Event)
}

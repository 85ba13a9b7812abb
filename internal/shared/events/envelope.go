package events

import "time"

// Envelope is the shared event shape used across agora contexts.
// Recipients carries the user ids the external notification dispatcher
// should address; delivery itself is out of scope for the core.
type Envelope struct {
	EventID        string         `json:"event_id"`
	EventType      string         `json:"event_type"`
	SourceService  string         `json:"source_service"`
	OccurredAtUTC  time.Time      `json:"occurred_at_utc"`
	EntityKind     string         `json:"entity_kind"`
	EntityID       string         `json:"entity_id"`
	Recipients     []string       `json:"recipients,omitempty"`
	PayloadVersion int            `json:"payload_version"`
	Payload        map[string]any `json:"payload,omitempty"`
}

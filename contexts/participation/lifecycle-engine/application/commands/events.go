package commands

import (
	"time"

	"agora/contexts/participation/lifecycle-engine/domain/entities"
	"agora/internal/shared/events"
)

const sourceService = "participation/lifecycle-engine"

func newLifecycleEnvelope(
	eventID string,
	eventType string,
	target entities.EntityRef,
	occurredAt time.Time,
	recipients []string,
	payload map[string]any,
) events.Envelope {
	return events.Envelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  sourceService,
		OccurredAtUTC:  occurredAt.UTC(),
		EntityKind:     string(target.Kind),
		EntityID:       target.ID,
		Recipients:     recipients,
		PayloadVersion: 1,
		Payload:        payload,
	}
}

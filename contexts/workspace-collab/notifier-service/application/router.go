package application

import (
	"strings"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
)

// Wire event types accepted from the intake topics.
const (
	EventTypeDocumentPublish         = "documents.publish"
	EventTypeDocumentUpdateDebounced = "documents.update.debounced"
	EventTypeCollectionCreate        = "collections.create"
)

// ParseEvent maps a wire event type onto the closed event union.
// Unknown event types return ok=false and must be treated as a no-op,
// never as an error.
func ParseEvent(eventType string, entityID string, sourceTag string) (entities.Event, bool) {
	switch strings.TrimSpace(eventType) {
	case EventTypeDocumentPublish:
		return entities.DocumentChanged{
			DocumentID: entityID,
			Kind:       entities.DocumentPublished,
			SourceTag:  sourceTag,
		}, true
	case EventTypeDocumentUpdateDebounced:
		return entities.DocumentChanged{
			DocumentID: entityID,
			Kind:       entities.DocumentUpdated,
			SourceTag:  sourceTag,
		}, true
	case EventTypeCollectionCreate:
		return entities.CollectionCreated{CollectionID: entityID}, true
	default:
		return nil, false
	}
}

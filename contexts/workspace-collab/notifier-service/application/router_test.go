package application

import (
	"testing"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
)

func TestParseEventRoutesKnownTypes(t *testing.T) {
	event, ok := ParseEvent(EventTypeDocumentPublish, "doc_1", "")
	if !ok {
		t.Fatal("expected publish event to route")
	}
	published, ok := event.(entities.DocumentChanged)
	if !ok || published.Kind != entities.DocumentPublished {
		t.Fatalf("expected published document event, got %#v", event)
	}

	event, ok = ParseEvent(EventTypeDocumentUpdateDebounced, "doc_1", "import")
	if !ok {
		t.Fatal("expected debounced update event to route")
	}
	updated, ok := event.(entities.DocumentChanged)
	if !ok || updated.Kind != entities.DocumentUpdated || updated.SourceTag != "import" {
		t.Fatalf("expected updated document event with source tag, got %#v", event)
	}

	event, ok = ParseEvent(EventTypeCollectionCreate, "col_1", "")
	if !ok {
		t.Fatal("expected collection event to route")
	}
	if created, ok := event.(entities.CollectionCreated); !ok || created.CollectionID != "col_1" {
		t.Fatalf("expected collection created event, got %#v", event)
	}
}

func TestParseEventIgnoresUnknownTypes(t *testing.T) {
	for _, eventType := range []string{"documents.delete", "users.signin", "", "documents.update"} {
		if _, ok := ParseEvent(eventType, "id", ""); ok {
			t.Fatalf("expected %q to be a no-op", eventType)
		}
	}
}

package memory

import (
	"context"
	"testing"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	"herald/internal/shared/outbox"
)

func outboxFixture(id string) outbox.Message {
	return outbox.Message{
		OutboxID:  id,
		EventType: "notifications.document",
		Payload:   []byte(`{}`),
		Status:    "pending",
		CreatedAt: time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC),
	}
}

func TestListSubscribersFiltersAndKeepsOrder(t *testing.T) {
	store := NewStore()
	for _, userID := range []string{"user_1", "user_actor", "user_2"} {
		store.AddSubscriber(entities.Subscriber{
			UserID:    userID,
			TeamID:    "team_1",
			EventKind: entities.SubscriptionDocumentPublish,
		})
	}
	store.AddSubscriber(entities.Subscriber{
		UserID:    "user_3",
		TeamID:    "team_2",
		EventKind: entities.SubscriptionDocumentPublish,
	})
	store.AddSubscriber(entities.Subscriber{
		UserID:    "user_4",
		TeamID:    "team_1",
		EventKind: entities.SubscriptionDocumentUpdate,
	})

	subscribers, err := store.ListSubscribers(
		context.Background(),
		"team_1",
		entities.SubscriptionDocumentPublish,
		"user_actor",
	)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(subscribers) != 2 {
		t.Fatalf("expected two subscribers, got %d", len(subscribers))
	}
	if subscribers[0].UserID != "user_1" || subscribers[1].UserID != "user_2" {
		t.Fatalf("expected insertion order without actor, got %+v", subscribers)
	}
}

func TestFindRecentViewBoundary(t *testing.T) {
	store := NewStore()
	viewedAt := time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)
	store.AddView(entities.ViewRecord{
		UserID:     "user_1",
		DocumentID: "doc_1",
		ViewedAt:   viewedAt,
	})

	view, err := store.FindRecentView(context.Background(), "user_1", "doc_1", viewedAt.Add(-time.Minute))
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if view == nil {
		t.Fatal("expected view after cutoff")
	}

	view, err = store.FindRecentView(context.Background(), "user_1", "doc_1", viewedAt)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if view != nil {
		t.Fatal("expected no view at exact cutoff")
	}
}

func TestGetDocumentMissingReturnsDomainError(t *testing.T) {
	store := NewStore()
	_, err := store.GetDocument(context.Background(), "doc_gone")
	if err != domainerrors.ErrDocumentNotFound {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestOutboxLifecycle(t *testing.T) {
	store := NewStore()
	// Covered in the relay tests; only the idempotent insert matters here.
	if err := store.InsertOutbox(context.Background(), outboxFixture("out_1")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertOutbox(context.Background(), outboxFixture("out_1")); err != nil {
		t.Fatalf("duplicate insert should be ignored: %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending row, got %d", len(pending))
	}
}

package postgresadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"herald/contexts/workspace-collab/notifier-service/adapters/memory"
	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/internal/shared/events"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type sequenceIDs struct {
	next int
}

func (g *sequenceIDs) NewID(_ context.Context) (string, error) {
	g.next++
	return fmt.Sprintf("out_%d", g.next), nil
}

func TestOutboxDispatcherEnqueuesDocumentNotification(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	dispatcher := OutboxDispatcher{
		Outbox: store,
		Clock:  fixedClock{now: now},
		IDGen:  &sequenceIDs{},
	}

	err := dispatcher.SendDocumentNotification(context.Background(), entities.DocumentNotification{
		RecipientEmail:   "user_1@example.com",
		RecipientName:    "User One",
		EventLabel:       entities.LabelPublished,
		Document:         entities.Document{ID: "doc_1", Title: "Runbook"},
		Collection:       entities.Collection{ID: "col_1", Name: "Engineering"},
		Team:             entities.Team{ID: "team_1", Name: "Acme", URL: "https://acme.example.com"},
		Actor:            entities.User{ID: "user_actor", Name: "Ada"},
		UnsubscribeToken: "tok-user_1",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(pending))
	}
	if pending[0].EventType != EventTypeDocumentNotification {
		t.Fatalf("expected %s, got %s", EventTypeDocumentNotification, pending[0].EventType)
	}

	var envelope events.Envelope
	if err := json.Unmarshal(pending[0].Payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.SourceService != sourceServiceName {
		t.Fatalf("expected source %s, got %s", sourceServiceName, envelope.SourceService)
	}
	if !envelope.OccurredAt.Equal(now) {
		t.Fatalf("expected clock time, got %s", envelope.OccurredAt)
	}

	var payload documentNotificationPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.RecipientEmail != "user_1@example.com" ||
		payload.EventLabel != "published" ||
		payload.UnsubscribeToken != "tok-user_1" {
		t.Fatalf("payload incomplete: %+v", payload)
	}
}

func TestOutboxDispatcherEnqueuesCollectionNotification(t *testing.T) {
	store := memory.NewStore()
	dispatcher := OutboxDispatcher{
		Outbox: store,
		Clock:  fixedClock{now: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)},
		IDGen:  &sequenceIDs{},
	}

	err := dispatcher.SendCollectionNotification(context.Background(), entities.CollectionNotification{
		RecipientEmail:   "user_6@example.com",
		EventLabel:       entities.LabelCreated,
		Collection:       entities.Collection{ID: "col_1", Name: "Handbook", TeamID: "team_1"},
		Actor:            entities.User{ID: "user_5", Name: "Eve"},
		UnsubscribeToken: "tok-user_6",
	})
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != EventTypeCollectionNotification {
		t.Fatalf("expected one collection outbox row, got %+v", pending)
	}
}

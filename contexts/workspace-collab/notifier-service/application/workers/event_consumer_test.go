package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"herald/contexts/workspace-collab/notifier-service/adapters/memory"
	"herald/contexts/workspace-collab/notifier-service/application"
	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/contexts/workspace-collab/notifier-service/ports"
)

type stubBus struct {
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func newStubBus() *stubBus {
	return &stubBus{handlers: make(map[string]func(context.Context, ports.EventEnvelope) error)}
}

func (s *stubBus) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler func(context.Context, ports.EventEnvelope) error,
) error {
	s.handlers[topic] = handler
	return nil
}

func newConsumerFixture(t *testing.T) (*memory.Store, *stubBus, EventConsumer) {
	t.Helper()
	store := memory.NewStore()
	service := application.Service{
		Documents:     store,
		Collections:   store,
		Teams:         store,
		Subscriptions: store,
		Access:        store,
		Views:         store,
		Dispatcher:    store,
	}
	bus := newStubBus()
	consumer := EventConsumer{
		Subscriber: bus,
		Service:    service,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("consumer start failed: %v", err)
	}
	return store, bus, consumer
}

func publishEnvelope(t *testing.T, eventType string, payload any) ports.EventEnvelope {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return ports.EventEnvelope{
		EventID:       "evt_1",
		EventType:     eventType,
		SourceService: "workspace-app",
		OccurredAt:    time.Date(2026, time.March, 10, 10, 0, 0, 0, time.UTC),
		SchemaVersion: 1,
		Data:          data,
	}
}

func TestEventConsumerSubscribesIntakeTopics(t *testing.T) {
	_, bus, _ := newConsumerFixture(t)

	for _, topic := range []string{
		application.EventTypeDocumentPublish,
		application.EventTypeDocumentUpdateDebounced,
		application.EventTypeCollectionCreate,
	} {
		if bus.handlers[topic] == nil {
			t.Fatalf("expected subscription on %s", topic)
		}
	}
}

func TestEventConsumerProcessesDocumentPublish(t *testing.T) {
	store, bus, _ := newConsumerFixture(t)

	permission := "read_write"
	store.AddTeam(entities.Team{ID: "team_1", Name: "Acme"})
	store.AddCollection(entities.Collection{
		ID: "col_1", TeamID: "team_1", CreatedByID: "user_actor", Permission: &permission,
	})
	store.AddDocument(entities.Document{
		ID:               "doc_1",
		TeamID:           "team_1",
		CollectionID:     "col_1",
		LastModifiedByID: "user_actor",
		UpdatedAt:        time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	})
	store.AddSubscriber(entities.Subscriber{
		UserID:    "user_1",
		TeamID:    "team_1",
		EventKind: entities.SubscriptionDocumentPublish,
		Email:     "user_1@example.com",
	})
	store.GrantAccess("user_1", "col_1")

	handler := bus.handlers[application.EventTypeDocumentPublish]
	envelope := publishEnvelope(t, application.EventTypeDocumentPublish, map[string]string{
		"document_id": "doc_1",
	})
	if err := handler(context.Background(), envelope); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if sent := store.DocumentNotifications(); len(sent) != 1 {
		t.Fatalf("expected one delivery request, got %d", len(sent))
	}
}

func TestEventConsumerRejectsPayloadWithoutEntityID(t *testing.T) {
	_, bus, _ := newConsumerFixture(t)

	handler := bus.handlers[application.EventTypeCollectionCreate]
	envelope := publishEnvelope(t, application.EventTypeCollectionCreate, map[string]string{})
	if err := handler(context.Background(), envelope); err == nil {
		t.Fatal("expected invalid payload to error for redrive")
	}
}

func TestEventConsumerIgnoresForeignEventTypes(t *testing.T) {
	store, _, consumer := newConsumerFixture(t)

	envelope := publishEnvelope(t, "users.signin", map[string]string{"user_id": "user_1"})
	if err := consumer.handle(context.Background(), envelope); err != nil {
		t.Fatalf("expected foreign event type to no-op, got %v", err)
	}
	if sent := store.DocumentNotifications(); len(sent) != 0 {
		t.Fatalf("expected no delivery requests, got %d", len(sent))
	}
}

package postgresadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/contexts/workspace-collab/notifier-service/ports"
	"herald/internal/shared/events"
	"herald/internal/shared/outbox"
)

const (
	sourceServiceName = "herald-notifier"

	EventTypeDocumentNotification   = "notifications.document"
	EventTypeCollectionNotification = "notifications.collection"
)

// OutboxDispatcher accepts delivery requests by persisting them as outbox
// rows. The relay worker publishes pending rows to the outbound topic; the
// mailer that consumes it lives outside this repo.
type OutboxDispatcher struct {
	Outbox ports.OutboxRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type documentNotificationPayload struct {
	RecipientEmail   string `json:"recipient_email"`
	RecipientName    string `json:"recipient_name"`
	EventLabel       string `json:"event_label"`
	DocumentID       string `json:"document_id"`
	DocumentTitle    string `json:"document_title"`
	CollectionID     string `json:"collection_id"`
	CollectionName   string `json:"collection_name"`
	TeamID           string `json:"team_id"`
	TeamName         string `json:"team_name"`
	TeamURL          string `json:"team_url"`
	ActorID          string `json:"actor_id"`
	ActorName        string `json:"actor_name"`
	UnsubscribeToken string `json:"unsubscribe_token"`
}

type collectionNotificationPayload struct {
	RecipientEmail   string `json:"recipient_email"`
	RecipientName    string `json:"recipient_name"`
	EventLabel       string `json:"event_label"`
	CollectionID     string `json:"collection_id"`
	CollectionName   string `json:"collection_name"`
	TeamID           string `json:"team_id"`
	ActorID          string `json:"actor_id"`
	ActorName        string `json:"actor_name"`
	UnsubscribeToken string `json:"unsubscribe_token"`
}

func (d OutboxDispatcher) SendDocumentNotification(
	ctx context.Context,
	request entities.DocumentNotification,
) error {
	payload := documentNotificationPayload{
		RecipientEmail:   request.RecipientEmail,
		RecipientName:    request.RecipientName,
		EventLabel:       string(request.EventLabel),
		DocumentID:       request.Document.ID,
		DocumentTitle:    request.Document.Title,
		CollectionID:     request.Collection.ID,
		CollectionName:   request.Collection.Name,
		TeamID:           request.Team.ID,
		TeamName:         request.Team.Name,
		TeamURL:          request.Team.URL,
		ActorID:          request.Actor.ID,
		ActorName:        request.Actor.Name,
		UnsubscribeToken: request.UnsubscribeToken,
	}
	return d.enqueue(ctx, EventTypeDocumentNotification, payload)
}

func (d OutboxDispatcher) SendCollectionNotification(
	ctx context.Context,
	request entities.CollectionNotification,
) error {
	payload := collectionNotificationPayload{
		RecipientEmail:   request.RecipientEmail,
		RecipientName:    request.RecipientName,
		EventLabel:       string(request.EventLabel),
		CollectionID:     request.Collection.ID,
		CollectionName:   request.Collection.Name,
		TeamID:           request.Collection.TeamID,
		ActorID:          request.Actor.ID,
		ActorName:        request.Actor.Name,
		UnsubscribeToken: request.UnsubscribeToken,
	}
	return d.enqueue(ctx, EventTypeCollectionNotification, payload)
}

func (d OutboxDispatcher) enqueue(ctx context.Context, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	id, err := d.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if d.Clock != nil {
		now = d.Clock.Now().UTC()
	}

	envelope := events.Envelope{
		EventID:       id,
		EventType:     eventType,
		SourceService: sourceServiceName,
		OccurredAt:    now,
		SchemaVersion: 1,
		Data:          data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	if err := d.Outbox.InsertOutbox(ctx, outbox.Message{
		OutboxID:  id,
		EventType: eventType,
		Payload:   raw,
		Status:    outboxStatusPending,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	if d.Logger != nil {
		d.Logger.Debug("delivery request enqueued",
			"event", "notifier_delivery_enqueued",
			"module", "workspace-collab/notifier-service",
			"layer", "adapter",
			"outbox_id", id,
			"event_type", eventType,
		)
	}
	return nil
}

package ports

import (
	"context"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/internal/shared/events"
	"herald/internal/shared/outbox"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// DocumentStore returns a document with its collaborator list and acting
// user populated. Returns domainerrors.ErrDocumentNotFound when absent.
type DocumentStore interface {
	GetDocument(ctx context.Context, documentID string) (entities.Document, error)
}

// CollectionStore returns a collection with its creator populated.
// Returns domainerrors.ErrCollectionNotFound when absent.
type CollectionStore interface {
	GetCollection(ctx context.Context, collectionID string) (entities.Collection, error)
}

// TeamStore returns domainerrors.ErrTeamNotFound when absent.
type TeamStore interface {
	GetTeam(ctx context.Context, teamID string) (entities.Team, error)
}

// SubscriptionStore lists the active subscriptions of a team for one event
// kind, joined with subscriber identity and status. The acting user is
// excluded at this query boundary so self-notification can never happen.
type SubscriptionStore interface {
	ListSubscribers(
		ctx context.Context,
		teamID string,
		eventKind entities.SubscriptionKind,
		excludeUserID string,
	) ([]entities.Subscriber, error)
}

// AccessStore returns the set of collection ids the user can currently read.
type AccessStore interface {
	AccessibleCollectionIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ViewStore returns the user's view of the document strictly after the
// given instant, or nil when there is none.
type ViewStore interface {
	FindRecentView(
		ctx context.Context,
		userID string,
		documentID string,
		after time.Time,
	) (*entities.ViewRecord, error)
}

// Dispatcher accepts delivery requests for surviving candidates. Formatting,
// sending, and retries are its concern, not the notifier's.
type Dispatcher interface {
	SendDocumentNotification(ctx context.Context, request entities.DocumentNotification) error
	SendCollectionNotification(ctx context.Context, request entities.CollectionNotification) error
}

// OutboxRepository persists and drains pending delivery envelopes.
type OutboxRepository interface {
	InsertOutbox(ctx context.Context, message outbox.Message) error
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

type EventEnvelope = events.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"herald/contexts/workspace-collab/notifier-service/application"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	"herald/contexts/workspace-collab/notifier-service/ports"
)

const defaultConsumerGroupName = "notifier-service-cg"

// intakeTopics are the upstream change-tracking topics the notifier
// listens on. Anything else on the bus is not our concern.
var intakeTopics = []string{
	application.EventTypeDocumentPublish,
	application.EventTypeDocumentUpdateDebounced,
	application.EventTypeCollectionCreate,
}

type documentEventPayload struct {
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
}

type collectionEventPayload struct {
	CollectionID string `json:"collection_id"`
}

// EventConsumer feeds intake events into the decision service. Handler
// errors propagate to the bus so the event can be redriven; a missed
// decision is recomputed from current state on redelivery.
type EventConsumer struct {
	Subscriber    ports.EventSubscriber
	Service       application.Service
	ConsumerGroup string
	Logger        *slog.Logger
}

func (c EventConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	group := c.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroupName
	}
	for _, topic := range intakeTopics {
		if err := c.Subscriber.Subscribe(ctx, topic, group, c.handle); err != nil {
			logger.Error("notifier consumer subscribe failed",
				"event", "notifier_consumer_subscribe_failed",
				"module", "workspace-collab/notifier-service",
				"layer", "worker",
				"topic", topic,
				"consumer_group", group,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("notifier consumer subscribed",
		"event", "notifier_consumer_subscribed",
		"module", "workspace-collab/notifier-service",
		"layer", "worker",
		"topics", strings.Join(intakeTopics, ","),
		"consumer_group", group,
	)
	return nil
}

func (c EventConsumer) handle(ctx context.Context, envelope ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	entityID, sourceTag, err := c.decode(envelope)
	if err != nil {
		logger.Error("notifier event decode failed",
			"event", "notifier_event_decode_failed",
			"module", "workspace-collab/notifier-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
		return err
	}

	event, ok := application.ParseEvent(envelope.EventType, entityID, sourceTag)
	if !ok {
		logger.Debug("notifier event type ignored",
			"event", "notifier_event_type_ignored",
			"module", "workspace-collab/notifier-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
		)
		return nil
	}

	if err := c.Service.Process(ctx, event); err != nil {
		logger.Error("notifier event processing failed",
			"event", "notifier_event_processing_failed",
			"module", "workspace-collab/notifier-service",
			"layer", "worker",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (c EventConsumer) decode(envelope ports.EventEnvelope) (entityID string, sourceTag string, err error) {
	switch envelope.EventType {
	case application.EventTypeCollectionCreate:
		var payload collectionEventPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return "", "", err
		}
		if strings.TrimSpace(payload.CollectionID) == "" {
			return "", "", domainerrors.ErrInvalidEvent
		}
		return payload.CollectionID, "", nil
	case application.EventTypeDocumentPublish, application.EventTypeDocumentUpdateDebounced:
		var payload documentEventPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return "", "", err
		}
		if strings.TrimSpace(payload.DocumentID) == "" {
			return "", "", domainerrors.ErrInvalidEvent
		}
		return payload.DocumentID, payload.Source, nil
	default:
		return "", "", nil
	}
}

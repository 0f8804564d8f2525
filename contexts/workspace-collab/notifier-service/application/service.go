package application

import (
	"context"
	"log/slog"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	"herald/contexts/workspace-collab/notifier-service/ports"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Service is the notification decision workflow. Process is the single
// entry point: it routes the event to a workflow, loads the subject,
// applies the suppression policy per candidate, and dispatches one
// delivery request per surviving subscriber.
//
// Processing runs under at-least-once intake. Re-invoking with the same
// event recomputes the decision from current state and may re-notify;
// exactly-once across retries is not guaranteed.
type Service struct {
	Documents     ports.DocumentStore
	Collections   ports.CollectionStore
	Teams         ports.TeamStore
	Subscriptions ports.SubscriptionStore
	Access        ports.AccessStore
	Views         ports.ViewStore
	Dispatcher    ports.Dispatcher
	Concurrency   int
	Logger        *slog.Logger
}

func (s Service) Process(ctx context.Context, event entities.Event) error {
	switch e := event.(type) {
	case entities.DocumentChanged:
		return s.processDocumentChanged(ctx, e)
	case entities.CollectionCreated:
		return s.processCollectionCreated(ctx, e)
	default:
		ResolveLogger(s.Logger).Warn("event variant not routed",
			"event", "notifier_event_not_routed",
			"module", "workspace-collab/notifier-service",
			"layer", "application",
		)
		return nil
	}
}

// DocumentDecisionSet is the evaluated outcome of a document event before
// dispatch: the loaded subject graph plus one decision per candidate.
type DocumentDecisionSet struct {
	Document   entities.Document
	Collection entities.Collection
	Team       entities.Team
	Decisions  []Decision
}

// CollectionDecisionSet is the evaluated outcome of a collection event.
type CollectionDecisionSet struct {
	Collection entities.Collection
	Decisions  []Decision
}

func (s Service) processDocumentChanged(ctx context.Context, event entities.DocumentChanged) error {
	logger := ResolveLogger(s.Logger)

	set, err := s.PreviewDocumentChange(ctx, event)
	if err != nil {
		if domainerrors.IsBenignNotFound(err) {
			logger.Info("document event dropped, subject missing",
				"event", "notifier_document_subject_missing",
				"module", "workspace-collab/notifier-service",
				"layer", "application",
				"document_id", event.DocumentID,
				"reason", err.Error(),
			)
			return nil
		}
		return err
	}

	sent := 0
	for _, decision := range set.Decisions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !decision.Notify {
			continue
		}
		request := entities.DocumentNotification{
			RecipientEmail:   decision.Subscriber.Email,
			RecipientName:    decision.Subscriber.Name,
			EventLabel:       event.Label(),
			Document:         set.Document,
			Collection:       set.Collection,
			Team:             set.Team,
			Actor:            set.Document.UpdatedBy,
			UnsubscribeToken: decision.Subscriber.UnsubscribeToken,
		}
		if err := s.Dispatcher.SendDocumentNotification(ctx, request); err != nil {
			return err
		}
		sent++
	}

	logger.Info("document event decided",
		"event", "notifier_document_event_decided",
		"module", "workspace-collab/notifier-service",
		"layer", "application",
		"document_id", event.DocumentID,
		"label", string(event.Label()),
		"candidates", len(set.Decisions),
		"notified", sent,
	)
	return nil
}

func (s Service) processCollectionCreated(ctx context.Context, event entities.CollectionCreated) error {
	logger := ResolveLogger(s.Logger)

	set, err := s.PreviewCollectionCreated(ctx, event)
	if err != nil {
		if domainerrors.IsBenignNotFound(err) {
			logger.Info("collection event dropped, subject missing",
				"event", "notifier_collection_subject_missing",
				"module", "workspace-collab/notifier-service",
				"layer", "application",
				"collection_id", event.CollectionID,
			)
			return nil
		}
		return err
	}

	sent := 0
	for _, decision := range set.Decisions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !decision.Notify {
			continue
		}
		request := entities.CollectionNotification{
			RecipientEmail:   decision.Subscriber.Email,
			RecipientName:    decision.Subscriber.Name,
			EventLabel:       entities.LabelCreated,
			Collection:       set.Collection,
			Actor:            set.Collection.CreatedBy,
			UnsubscribeToken: decision.Subscriber.UnsubscribeToken,
		}
		if err := s.Dispatcher.SendCollectionNotification(ctx, request); err != nil {
			return err
		}
		sent++
	}

	logger.Info("collection event decided",
		"event", "notifier_collection_event_decided",
		"module", "workspace-collab/notifier-service",
		"layer", "application",
		"collection_id", event.CollectionID,
		"candidates", len(set.Decisions),
		"notified", sent,
	)
	return nil
}

// PreviewDocumentChange computes the decision for a document event without
// dispatching anything. Not-found errors on the subject graph surface as
// domain errors so callers can distinguish a missing subject from an empty
// candidate list.
func (s Service) PreviewDocumentChange(
	ctx context.Context,
	event entities.DocumentChanged,
) (DocumentDecisionSet, error) {
	var set DocumentDecisionSet

	// Bulk imports never notify.
	if event.SourceTag == entities.SourceTagImport {
		ResolveLogger(s.Logger).Debug("document event skipped, import source",
			"event", "notifier_document_import_skipped",
			"module", "workspace-collab/notifier-service",
			"layer", "application",
			"document_id", event.DocumentID,
		)
		return set, nil
	}

	document, err := s.Documents.GetDocument(ctx, event.DocumentID)
	if err != nil {
		return set, err
	}
	collection, err := s.Collections.GetCollection(ctx, document.CollectionID)
	if err != nil {
		return set, err
	}
	team, err := s.Teams.GetTeam(ctx, document.TeamID)
	if err != nil {
		return set, err
	}

	subscribers, err := s.Subscriptions.ListSubscribers(
		ctx,
		document.TeamID,
		event.SubscriptionKind(),
		document.LastModifiedByID,
	)
	if err != nil {
		return set, err
	}

	decisions, err := s.evaluateDocumentCandidates(ctx, document, event.Label(), subscribers)
	if err != nil {
		return set, err
	}

	set.Document = document
	set.Collection = collection
	set.Team = team
	set.Decisions = decisions
	return set, nil
}

// PreviewCollectionCreated computes the decision for a collection event
// without dispatching anything.
func (s Service) PreviewCollectionCreated(
	ctx context.Context,
	event entities.CollectionCreated,
) (CollectionDecisionSet, error) {
	var set CollectionDecisionSet

	collection, err := s.Collections.GetCollection(ctx, event.CollectionID)
	if err != nil {
		return set, err
	}
	set.Collection = collection

	// Private collections are never notifiable.
	if collection.Permission == nil {
		ResolveLogger(s.Logger).Debug("collection event skipped, not shareable",
			"event", "notifier_collection_not_shareable",
			"module", "workspace-collab/notifier-service",
			"layer", "application",
			"collection_id", event.CollectionID,
		)
		return set, nil
	}

	subscribers, err := s.Subscriptions.ListSubscribers(
		ctx,
		collection.TeamID,
		entities.SubscriptionCollectionCreate,
		collection.CreatedByID,
	)
	if err != nil {
		return set, err
	}

	policy := CollectionPolicy{}
	decisions := make([]Decision, 0, len(subscribers))
	for _, subscriber := range subscribers {
		if err := ctx.Err(); err != nil {
			return CollectionDecisionSet{}, err
		}
		decisions = append(decisions, policy.Evaluate(subscriber))
	}
	set.Decisions = decisions
	return set, nil
}

// evaluateDocumentCandidates runs the document policy over every candidate
// with bounded parallelism. Each evaluation issues at least one store read,
// so the limit caps in-flight lookups. Decisions keep subscriber-list order.
func (s Service) evaluateDocumentCandidates(
	ctx context.Context,
	document entities.Document,
	label entities.EventLabel,
	subscribers []entities.Subscriber,
) ([]Decision, error) {
	policy := DocumentPolicy{
		Access: s.Access,
		Views:  s.Views,
		Logger: s.Logger,
	}

	decisions := make([]Decision, len(subscribers))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency())
	for i, subscriber := range subscribers {
		i, subscriber := i, subscriber
		group.Go(func() error {
			decision, err := policy.Evaluate(groupCtx, document, label, subscriber)
			if err != nil {
				return err
			}
			decisions[i] = decision
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return decisions, nil
}

func (s Service) concurrency() int {
	if s.Concurrency <= 0 {
		return defaultConcurrency
	}
	return s.Concurrency
}

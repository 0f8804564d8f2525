package application

import (
	"context"
	"log/slog"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/contexts/workspace-collab/notifier-service/ports"
)

// Suppression reasons surfaced on decisions and in preview responses.
const (
	ReasonEligible        = "eligible"
	ReasonSuspended       = "subscriber_suspended"
	ReasonNotCollaborator = "not_a_collaborator"
	ReasonNoAccess        = "no_collection_access"
	ReasonAlreadyViewed   = "viewed_after_update"
)

// Decision is the outcome for one candidate subscriber.
type Decision struct {
	Subscriber entities.Subscriber
	Notify     bool
	Reason     string
}

func notify(subscriber entities.Subscriber) Decision {
	return Decision{Subscriber: subscriber, Notify: true, Reason: ReasonEligible}
}

func suppress(subscriber entities.Subscriber, reason string) Decision {
	return Decision{Subscriber: subscriber, Notify: false, Reason: reason}
}

// DocumentPolicy applies the ordered document suppression rules to one
// candidate. The first matching rule suppresses; otherwise notify.
// Rules that need store reads propagate store errors instead of skipping
// the candidate, since a partial notification list is worse than a retry.
type DocumentPolicy struct {
	Access ports.AccessStore
	Views  ports.ViewStore
	Logger *slog.Logger
}

func (p DocumentPolicy) Evaluate(
	ctx context.Context,
	document entities.Document,
	label entities.EventLabel,
	subscriber entities.Subscriber,
) (Decision, error) {
	if decision, done := suspendedRule(subscriber); done {
		return decision, nil
	}
	if decision, done := collaboratorRule(document, label, subscriber); done {
		return decision, nil
	}

	accessible, err := p.Access.AccessibleCollectionIDs(ctx, subscriber.UserID)
	if err != nil {
		return Decision{}, err
	}
	if _, ok := accessible[document.CollectionID]; !ok {
		return suppress(subscriber, ReasonNoAccess), nil
	}

	view, err := p.Views.FindRecentView(ctx, subscriber.UserID, document.ID, document.UpdatedAt)
	if err != nil {
		return Decision{}, err
	}
	if view != nil {
		ResolveLogger(p.Logger).Info("notification suppressed, already viewed",
			"event", "notifier_suppressed_already_viewed",
			"module", "workspace-collab/notifier-service",
			"layer", "application",
			"document_id", document.ID,
			"user_id", subscriber.UserID,
			"viewed_at", view.ViewedAt.UTC().Format(time.RFC3339),
		)
		return suppress(subscriber, ReasonAlreadyViewed), nil
	}

	return notify(subscriber), nil
}

// CollectionPolicy applies the collection-created rules: only the
// suspended-subscriber rule.
type CollectionPolicy struct{}

func (CollectionPolicy) Evaluate(subscriber entities.Subscriber) Decision {
	if decision, done := suspendedRule(subscriber); done {
		return decision
	}
	return notify(subscriber)
}

func suspendedRule(subscriber entities.Subscriber) (Decision, bool) {
	if subscriber.IsSuspended {
		return suppress(subscriber, ReasonSuspended), true
	}
	return Decision{}, false
}

// collaboratorRule suppresses update notifications for users who never
// edited the document. Publish notifications go to the whole team.
func collaboratorRule(
	document entities.Document,
	label entities.EventLabel,
	subscriber entities.Subscriber,
) (Decision, bool) {
	if label != entities.LabelUpdated {
		return Decision{}, false
	}
	if document.IsCollaborator(subscriber.UserID) {
		return Decision{}, false
	}
	return suppress(subscriber, ReasonNotCollaborator), true
}

package httpadapter

import (
	"context"
	"log/slog"
	"strings"

	"herald/contexts/workspace-collab/notifier-service/application"
	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	httptransport "herald/contexts/workspace-collab/notifier-service/transport/http"
)

// Handler exposes dry-run decision previews. Previews never dispatch.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) PreviewDocumentHandler(
	ctx context.Context,
	req httptransport.PreviewDocumentRequest,
) (httptransport.PreviewDocumentResponse, error) {
	var resp httptransport.PreviewDocumentResponse

	event, ok := application.ParseEvent(req.EventType, strings.TrimSpace(req.DocumentID), req.Source)
	if !ok {
		return resp, domainerrors.ErrInvalidEvent
	}
	documentEvent, ok := event.(entities.DocumentChanged)
	if !ok || documentEvent.DocumentID == "" {
		return resp, domainerrors.ErrInvalidEvent
	}

	set, err := h.Service.PreviewDocumentChange(ctx, documentEvent)
	if err != nil {
		return resp, err
	}

	resp.Status = "success"
	resp.Data.DocumentID = documentEvent.DocumentID
	resp.Data.Label = string(documentEvent.Label())
	resp.Data.Candidates = toCandidateDecisions(set.Decisions)
	resp.Data.NotifyCount = countNotify(set.Decisions)
	return resp, nil
}

func (h Handler) PreviewCollectionHandler(
	ctx context.Context,
	req httptransport.PreviewCollectionRequest,
) (httptransport.PreviewCollectionResponse, error) {
	var resp httptransport.PreviewCollectionResponse

	collectionID := strings.TrimSpace(req.CollectionID)
	if collectionID == "" {
		return resp, domainerrors.ErrInvalidEvent
	}

	set, err := h.Service.PreviewCollectionCreated(ctx, entities.CollectionCreated{CollectionID: collectionID})
	if err != nil {
		return resp, err
	}

	resp.Status = "success"
	resp.Data.CollectionID = collectionID
	resp.Data.Label = string(entities.LabelCreated)
	resp.Data.Candidates = toCandidateDecisions(set.Decisions)
	resp.Data.NotifyCount = countNotify(set.Decisions)
	return resp, nil
}

func toCandidateDecisions(decisions []application.Decision) []httptransport.CandidateDecision {
	out := make([]httptransport.CandidateDecision, 0, len(decisions))
	for _, decision := range decisions {
		out = append(out, httptransport.CandidateDecision{
			UserID: decision.Subscriber.UserID,
			Email:  decision.Subscriber.Email,
			Notify: decision.Notify,
			Reason: decision.Reason,
		})
	}
	return out
}

func countNotify(decisions []application.Decision) int {
	count := 0
	for _, decision := range decisions {
		if decision.Notify {
			count++
		}
	}
	return count
}

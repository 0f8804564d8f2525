package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	"herald/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository reads the workspace tables the upstream application owns and
// writes only the notification outbox. Every port read is a consistent
// single-query snapshot.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetDocument(ctx context.Context, documentID string) (entities.Document, error) {
	var row documentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(documentID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Document{}, domainerrors.ErrDocumentNotFound
		}
		return entities.Document{}, r.logError("notifier_repo_get_document_failed", err,
			"document_id", strings.TrimSpace(documentID),
		)
	}

	document := row.toEntity()
	actor, err := r.getUser(ctx, row.LastModifiedByID)
	if err != nil {
		return entities.Document{}, r.logError("notifier_repo_get_document_actor_failed", err,
			"document_id", strings.TrimSpace(documentID),
			"user_id", row.LastModifiedByID,
		)
	}
	document.UpdatedBy = actor
	return document, nil
}

func (r *Repository) GetCollection(ctx context.Context, collectionID string) (entities.Collection, error) {
	var row collectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(collectionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Collection{}, domainerrors.ErrCollectionNotFound
		}
		return entities.Collection{}, r.logError("notifier_repo_get_collection_failed", err,
			"collection_id", strings.TrimSpace(collectionID),
		)
	}

	collection := row.toEntity()
	creator, err := r.getUser(ctx, row.CreatedByID)
	if err != nil {
		return entities.Collection{}, r.logError("notifier_repo_get_collection_creator_failed", err,
			"collection_id", strings.TrimSpace(collectionID),
			"user_id", row.CreatedByID,
		)
	}
	collection.CreatedBy = creator
	return collection, nil
}

func (r *Repository) GetTeam(ctx context.Context, teamID string) (entities.Team, error) {
	var row teamModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(teamID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Team{}, domainerrors.ErrTeamNotFound
		}
		return entities.Team{}, r.logError("notifier_repo_get_team_failed", err,
			"team_id", strings.TrimSpace(teamID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListSubscribers(
	ctx context.Context,
	teamID string,
	eventKind entities.SubscriptionKind,
	excludeUserID string,
) ([]entities.Subscriber, error) {
	var rows []subscriberRow
	err := r.db.WithContext(ctx).
		Table("notification_subscriptions AS s").
		Select("s.user_id, s.team_id, s.event_kind, s.unsubscribe_token, u.email, u.name, u.suspended_at").
		Joins("JOIN users u ON u.id = s.user_id").
		Where("s.team_id = ?", strings.TrimSpace(teamID)).
		Where("s.event_kind = ?", string(eventKind)).
		Where("s.user_id <> ?", strings.TrimSpace(excludeUserID)).
		Order("s.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("notifier_repo_list_subscribers_failed", err,
			"team_id", strings.TrimSpace(teamID),
			"event_kind", string(eventKind),
		)
	}

	subscribers := make([]entities.Subscriber, 0, len(rows))
	for _, row := range rows {
		subscribers = append(subscribers, row.toEntity())
	}
	return subscribers, nil
}

func (r *Repository) AccessibleCollectionIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var collectionIDs []string
	err := r.db.WithContext(ctx).
		Table("collection_users").
		Where("user_id = ?", strings.TrimSpace(userID)).
		Pluck("collection_id", &collectionIDs).
		Error
	if err != nil {
		return nil, r.logError("notifier_repo_accessible_collections_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}

	ids := make(map[string]struct{}, len(collectionIDs))
	for _, id := range collectionIDs {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (r *Repository) FindRecentView(
	ctx context.Context,
	userID string,
	documentID string,
	after time.Time,
) (*entities.ViewRecord, error) {
	var row viewModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("document_id = ?", strings.TrimSpace(documentID)).
		Where("viewed_at > ?", after.UTC()).
		Order("viewed_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, r.logError("notifier_repo_find_recent_view_failed", err,
			"user_id", strings.TrimSpace(userID),
			"document_id", strings.TrimSpace(documentID),
		)
	}
	view := row.toEntity()
	return &view, nil
}

func (r *Repository) InsertOutbox(ctx context.Context, message outbox.Message) error {
	row := outboxModelFromMessage(message)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logWarn("notifier_repo_outbox_duplicate_ignored",
				"outbox_id", message.OutboxID,
			)
			return nil
		}
		return r.logError("notifier_repo_outbox_insert_failed", err,
			"outbox_id", message.OutboxID,
			"event_type", message.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var rows []notificationOutboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("notifier_repo_outbox_list_failed", err)
	}

	messages := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toMessage())
	}
	return messages, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&notificationOutboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":  outboxStatusPublished,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("notifier_repo_outbox_mark_sent_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		r.logWarn("notifier_repo_outbox_mark_sent_not_found",
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) getUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		// Actor rows outlive documents in practice; a missing one is an
		// infrastructure-level inconsistency, not a benign race.
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "workspace-collab/notifier-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("notifier repository operation failed", fields...)
	return err
}

func (r *Repository) logWarn(event string, attrs ...any) {
	fields := make([]any, 0, len(attrs)+5)
	fields = append(fields,
		"event", event,
		"module", "workspace-collab/notifier-service",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	r.logger.Warn("notifier repository warning", fields...)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

package postgresadapter

import (
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	"herald/internal/shared/outbox"
)

type documentModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	Title            string    `gorm:"column:title"`
	TeamID           string    `gorm:"column:team_id"`
	CollectionID     string    `gorm:"column:collection_id"`
	LastModifiedByID string    `gorm:"column:last_modified_by_id"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
	CollaboratorIDs  []string  `gorm:"column:collaborator_ids;type:text[]"`
}

func (documentModel) TableName() string {
	return "documents"
}

func (m documentModel) toEntity() entities.Document {
	return entities.Document{
		ID:               m.ID,
		Title:            m.Title,
		TeamID:           m.TeamID,
		CollectionID:     m.CollectionID,
		LastModifiedByID: m.LastModifiedByID,
		UpdatedAt:        m.UpdatedAt.UTC(),
		CollaboratorIDs:  append([]string(nil), m.CollaboratorIDs...),
	}
}

type collectionModel struct {
	ID          string  `gorm:"column:id;primaryKey"`
	Name        string  `gorm:"column:name"`
	TeamID      string  `gorm:"column:team_id"`
	CreatedByID string  `gorm:"column:created_by_id"`
	Permission  *string `gorm:"column:permission"`
}

func (collectionModel) TableName() string {
	return "collections"
}

func (m collectionModel) toEntity() entities.Collection {
	return entities.Collection{
		ID:          m.ID,
		Name:        m.Name,
		TeamID:      m.TeamID,
		CreatedByID: m.CreatedByID,
		Permission:  m.Permission,
	}
}

type teamModel struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name"`
	URL  string `gorm:"column:url"`
}

func (teamModel) TableName() string {
	return "teams"
}

func (m teamModel) toEntity() entities.Team {
	return entities.Team{
		ID:   m.ID,
		Name: m.Name,
		URL:  m.URL,
	}
}

type userModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	Name        string     `gorm:"column:name"`
	Email       string     `gorm:"column:email"`
	SuspendedAt *time.Time `gorm:"column:suspended_at"`
}

func (userModel) TableName() string {
	return "users"
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		IsSuspended: m.SuspendedAt != nil,
	}
}

// subscriberRow is the scan target for the subscriptions-users join.
type subscriberRow struct {
	UserID           string     `gorm:"column:user_id"`
	TeamID           string     `gorm:"column:team_id"`
	EventKind        string     `gorm:"column:event_kind"`
	UnsubscribeToken string     `gorm:"column:unsubscribe_token"`
	Email            string     `gorm:"column:email"`
	Name             string     `gorm:"column:name"`
	SuspendedAt      *time.Time `gorm:"column:suspended_at"`
}

func (m subscriberRow) toEntity() entities.Subscriber {
	return entities.Subscriber{
		UserID:           m.UserID,
		TeamID:           m.TeamID,
		EventKind:        entities.SubscriptionKind(m.EventKind),
		UnsubscribeToken: m.UnsubscribeToken,
		Email:            m.Email,
		Name:             m.Name,
		IsSuspended:      m.SuspendedAt != nil,
	}
}

type viewModel struct {
	UserID     string    `gorm:"column:user_id"`
	DocumentID string    `gorm:"column:document_id"`
	ViewedAt   time.Time `gorm:"column:viewed_at"`
}

func (viewModel) TableName() string {
	return "views"
}

func (m viewModel) toEntity() entities.ViewRecord {
	return entities.ViewRecord{
		UserID:     m.UserID,
		DocumentID: m.DocumentID,
		ViewedAt:   m.ViewedAt.UTC(),
	}
}

type notificationOutboxModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	EventType  string     `gorm:"column:event_type"`
	Payload    []byte     `gorm:"column:payload"`
	Status     string     `gorm:"column:status"`
	RetryCount int        `gorm:"column:retry_count"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (notificationOutboxModel) TableName() string {
	return "notification_outbox"
}

func outboxModelFromMessage(message outbox.Message) notificationOutboxModel {
	status := message.Status
	if status == "" {
		status = outboxStatusPending
	}
	return notificationOutboxModel{
		ID:         message.OutboxID,
		EventType:  message.EventType,
		Payload:    append([]byte(nil), message.Payload...),
		Status:     status,
		RetryCount: message.RetryCount,
		CreatedAt:  message.CreatedAt.UTC(),
		SentAt:     message.SentAt,
	}
}

func (m notificationOutboxModel) toMessage() outbox.Message {
	return outbox.Message{
		OutboxID:   m.ID,
		EventType:  m.EventType,
		Payload:    append([]byte(nil), m.Payload...),
		Status:     m.Status,
		RetryCount: m.RetryCount,
		CreatedAt:  m.CreatedAt.UTC(),
		SentAt:     m.SentAt,
	}
}

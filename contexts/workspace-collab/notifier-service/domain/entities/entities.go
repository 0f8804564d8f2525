package entities

import "time"

// SubscriptionKind is the event kind a standing subscription listens for.
type SubscriptionKind string

const (
	SubscriptionDocumentPublish  SubscriptionKind = "documents.publish"
	SubscriptionDocumentUpdate   SubscriptionKind = "documents.update"
	SubscriptionCollectionCreate SubscriptionKind = "collections.create"
)

// EventLabel is the human-readable label carried on a delivery request.
type EventLabel string

const (
	LabelPublished EventLabel = "published"
	LabelUpdated   EventLabel = "updated"
	LabelCreated   EventLabel = "created"
)

type User struct {
	ID          string
	Name        string
	Email       string
	IsSuspended bool
}

type Team struct {
	ID   string
	Name string
	URL  string
}

type Document struct {
	ID               string
	Title            string
	TeamID           string
	CollectionID     string
	LastModifiedByID string
	UpdatedAt        time.Time
	CollaboratorIDs  []string
	UpdatedBy        User
}

// IsCollaborator reports whether the user has ever edited the document.
func (d Document) IsCollaborator(userID string) bool {
	for _, id := range d.CollaboratorIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type Collection struct {
	ID          string
	Name        string
	TeamID      string
	CreatedByID string
	// Permission is nil for private collections, which are never notifiable.
	Permission *string
	CreatedBy  User
}

// Subscriber is a subscription joined with the owning user's current status.
type Subscriber struct {
	UserID           string
	TeamID           string
	EventKind        SubscriptionKind
	UnsubscribeToken string
	Email            string
	Name             string
	IsSuspended      bool
}

type ViewRecord struct {
	UserID     string
	DocumentID string
	ViewedAt   time.Time
}

// DocumentNotification is one delivery request for a document event.
type DocumentNotification struct {
	RecipientEmail   string
	RecipientName    string
	EventLabel       EventLabel
	Document         Document
	Collection       Collection
	Team             Team
	Actor            User
	UnsubscribeToken string
}

// CollectionNotification is one delivery request for a collection event.
type CollectionNotification struct {
	RecipientEmail   string
	RecipientName    string
	EventLabel       EventLabel
	Collection       Collection
	Actor            User
	UnsubscribeToken string
}

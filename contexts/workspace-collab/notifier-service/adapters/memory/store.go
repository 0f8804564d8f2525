package memory

import (
	"context"
	"sync"
	"time"

	"herald/contexts/workspace-collab/notifier-service/domain/entities"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	"herald/internal/shared/outbox"
)

// Store is the in-memory adapter behind every notifier port. It backs the
// package tests and the demo wiring; production reads go through the
// postgres adapter instead.
type Store struct {
	mu sync.RWMutex

	documentsByID   map[string]entities.Document
	collectionsByID map[string]entities.Collection
	teamsByID       map[string]entities.Team
	subscribers     []entities.Subscriber
	viewsByUserDoc  map[string]entities.ViewRecord
	accessByUser    map[string]map[string]struct{}

	outboxByID  map[string]outbox.Message
	outboxOrder []string

	sentDocuments   []entities.DocumentNotification
	sentCollections []entities.CollectionNotification
}

func NewStore() *Store {
	return &Store{
		documentsByID:   make(map[string]entities.Document),
		collectionsByID: make(map[string]entities.Collection),
		teamsByID:       make(map[string]entities.Team),
		viewsByUserDoc:  make(map[string]entities.ViewRecord),
		accessByUser:    make(map[string]map[string]struct{}),
		outboxByID:      make(map[string]outbox.Message),
	}
}

func (s *Store) AddDocument(document entities.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentsByID[document.ID] = document
}

func (s *Store) AddCollection(collection entities.Collection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collectionsByID[collection.ID] = collection
}

func (s *Store) AddTeam(team entities.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teamsByID[team.ID] = team
}

func (s *Store) AddSubscriber(subscriber entities.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, subscriber)
}

// AddView records the user's latest view of a document, replacing any
// earlier one.
func (s *Store) AddView(view entities.ViewRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewsByUserDoc[view.UserID+"|"+view.DocumentID] = view
}

func (s *Store) GrantAccess(userID string, collectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accessByUser[userID] == nil {
		s.accessByUser[userID] = make(map[string]struct{})
	}
	s.accessByUser[userID][collectionID] = struct{}{}
}

func (s *Store) GetDocument(_ context.Context, documentID string) (entities.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documentsByID[documentID]
	if !ok {
		return entities.Document{}, domainerrors.ErrDocumentNotFound
	}
	return document, nil
}

func (s *Store) GetCollection(_ context.Context, collectionID string) (entities.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, ok := s.collectionsByID[collectionID]
	if !ok {
		return entities.Collection{}, domainerrors.ErrCollectionNotFound
	}
	return collection, nil
}

func (s *Store) GetTeam(_ context.Context, teamID string) (entities.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teamsByID[teamID]
	if !ok {
		return entities.Team{}, domainerrors.ErrTeamNotFound
	}
	return team, nil
}

func (s *Store) ListSubscribers(
	_ context.Context,
	teamID string,
	eventKind entities.SubscriptionKind,
	excludeUserID string,
) ([]entities.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []entities.Subscriber
	for _, subscriber := range s.subscribers {
		if subscriber.TeamID != teamID || subscriber.EventKind != eventKind {
			continue
		}
		if subscriber.UserID == excludeUserID {
			continue
		}
		matched = append(matched, subscriber)
	}
	return matched, nil
}

func (s *Store) AccessibleCollectionIDs(_ context.Context, userID string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make(map[string]struct{}, len(s.accessByUser[userID]))
	for id := range s.accessByUser[userID] {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *Store) FindRecentView(
	_ context.Context,
	userID string,
	documentID string,
	after time.Time,
) (*entities.ViewRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	view, ok := s.viewsByUserDoc[userID+"|"+documentID]
	if !ok || !view.ViewedAt.After(after) {
		return nil, nil
	}
	copied := view
	return &copied, nil
}

func (s *Store) SendDocumentNotification(_ context.Context, request entities.DocumentNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentDocuments = append(s.sentDocuments, request)
	return nil
}

func (s *Store) SendCollectionNotification(_ context.Context, request entities.CollectionNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sentCollections = append(s.sentCollections, request)
	return nil
}

// DocumentNotifications returns the recorded document delivery requests
// in dispatch order.
func (s *Store) DocumentNotifications() []entities.DocumentNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.DocumentNotification(nil), s.sentDocuments...)
}

// CollectionNotifications returns the recorded collection delivery
// requests in dispatch order.
func (s *Store) CollectionNotifications() []entities.CollectionNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.CollectionNotification(nil), s.sentCollections...)
}

func (s *Store) InsertOutbox(_ context.Context, message outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.outboxByID[message.OutboxID]; ok {
		return nil
	}
	s.outboxByID[message.OutboxID] = message
	s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []outbox.Message
	for _, id := range s.outboxOrder {
		message := s.outboxByID[id]
		if message.Status != "pending" {
			continue
		}
		pending = append(pending, message)
		if len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	message, ok := s.outboxByID[outboxID]
	if !ok {
		return nil
	}
	message.Status = "published"
	message.SentAt = &sentAt
	s.outboxByID[outboxID] = message
	return nil
}

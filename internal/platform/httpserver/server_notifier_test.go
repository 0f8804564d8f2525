package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	notifierservice "herald/contexts/workspace-collab/notifier-service"
	"herald/contexts/workspace-collab/notifier-service/domain/entities"
)

func newTestServer(t *testing.T) (*Server, *notifierservice.Module) {
	t.Helper()
	module := notifierservice.NewInMemoryModule(nil)
	server := New(module, nil, ":0")
	return server, &module
}

func seedPreviewWorld(module *notifierservice.Module) {
	permission := "read_write"
	store := module.Store
	store.AddTeam(entities.Team{ID: "team_1", Name: "Acme"})
	store.AddCollection(entities.Collection{
		ID: "col_1", TeamID: "team_1", CreatedByID: "user_actor", Permission: &permission,
	})
	store.AddDocument(entities.Document{
		ID:               "doc_1",
		TeamID:           "team_1",
		CollectionID:     "col_1",
		LastModifiedByID: "user_actor",
		UpdatedAt:        time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	})
	store.AddSubscriber(entities.Subscriber{
		UserID:    "user_1",
		TeamID:    "team_1",
		EventKind: entities.SubscriptionDocumentPublish,
		Email:     "user_1@example.com",
	})
	store.GrantAccess("user_1", "col_1")
}

func TestPreviewDocumentEndpoint(t *testing.T) {
	server, module := newTestServer(t)
	seedPreviewWorld(module)

	body := `{"document_id":"doc_1","event_type":"documents.publish"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/preview-document", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"notify_count":1`) {
		t.Fatalf("expected one eligible candidate: %s", rec.Body.String())
	}
	if sent := module.Store.DocumentNotifications(); len(sent) != 0 {
		t.Fatalf("preview must not dispatch, got %d requests", len(sent))
	}
}

func TestPreviewDocumentMissingSubjectReturns404(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"document_id":"doc_gone","event_type":"documents.publish"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/preview-document", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPreviewDocumentUnknownEventTypeReturns400(t *testing.T) {
	server, _ := newTestServer(t)

	body := `{"document_id":"doc_1","event_type":"documents.delete"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/preview-document", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPreviewCollectionEndpoint(t *testing.T) {
	server, module := newTestServer(t)
	permission := "read"
	module.Store.AddCollection(entities.Collection{
		ID: "col_1", TeamID: "team_1", CreatedByID: "user_5", Permission: &permission,
	})
	module.Store.AddSubscriber(entities.Subscriber{
		UserID:    "user_6",
		TeamID:    "team_1",
		EventKind: entities.SubscriptionCollectionCreate,
		Email:     "user_6@example.com",
	})

	body := `{"collection_id":"col_1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/preview-collection", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"user_id":"user_6"`) {
		t.Fatalf("expected user_6 in candidates: %s", rec.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	notifierservice "herald/contexts/workspace-collab/notifier-service"
	domainerrors "herald/contexts/workspace-collab/notifier-service/domain/errors"
	notifierhttp "herald/contexts/workspace-collab/notifier-service/transport/http"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	notifier notifierservice.Module
}

func New(notifier notifierservice.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		notifier: notifier,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /v1/notifications/preview-document", s.handlePreviewDocument)
	s.mux.HandleFunc("POST /v1/notifications/preview-collection", s.handlePreviewCollection)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	var req notifierhttp.PreviewDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	resp, err := s.notifier.Handler.PreviewDocumentHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreviewCollection(w http.ResponseWriter, r *http.Request) {
	var req notifierhttp.PreviewCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return
	}

	resp, err := s.notifier.Handler.PreviewCollectionHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidEvent):
		writeError(w, http.StatusBadRequest, "invalid_event", err.Error())
	case domainerrors.IsBenignNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("preview request failed",
			"event", "http_preview_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, notifierhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

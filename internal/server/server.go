package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/vincentbai/browsetrace-recorder/internal/config"
	"github.com/vincentbai/browsetrace-recorder/internal/database"
	"github.com/vincentbai/browsetrace-recorder/internal/emitter"
	"github.com/vincentbai/browsetrace-recorder/internal/models"
	"github.com/vincentbai/browsetrace-recorder/internal/pipeline"
	"github.com/vincentbai/browsetrace-recorder/internal/report"
)

// Store is the session persistence the server needs.
type Store interface {
	CreateSession(startURL string, startedAt int64) (models.Session, error)
	GetSession(id string, withEvents bool) (models.Session, error)
	ListSessions() ([]models.Session, error)
	InsertEvents(sessionID string, events []models.RawEvent) error
	StopSession(id string, endedAt int64) error
	DeleteSession(id string) error
}

type Server struct {
	store         Store
	config        config.ServerConfig
	defaultFormat string
	logger        *zap.Logger
	validator     *batchValidator
	server        *http.Server
	now           func() int64
}

func NewServer(store Store, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		store:         store,
		config:        cfg.Server,
		defaultFormat: cfg.Recorder.DefaultFormat,
		logger:        logger.Named("server"),
		validator:     newBatchValidator(),
		now:           func() int64 { return time.Now().UnixMilli() },
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func (s *Server) handleFormats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, pipeline.Formats())
}

type createSessionRequest struct {
	StartURL string `json:"start_url"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, request *http.Request) {
	var body createSessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, request.Body, s.config.MaxBodyBytes)).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if body.StartURL == "" {
		http.Error(w, "start_url is required", http.StatusBadRequest)
		return
	}
	session, err := s.store.CreateSession(body.StartURL, s.now())
	if err != nil {
		s.logger.Error("Failed to create session", zap.Error(err))
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	s.logger.Info("Recording started", zap.String("session_id", session.ID), zap.String("start_url", session.StartURL))
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions, err := s.store.ListSessions()
	if err != nil {
		s.logger.Error("Failed to list sessions", zap.Error(err))
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, request *http.Request) {
	session, ok := s.loadSession(w, request.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleEvents(w http.ResponseWriter, request *http.Request) {
	sessionID := request.PathValue("id")
	payload, err := io.ReadAll(http.MaxBytesReader(w, request.Body, s.config.MaxBodyBytes))
	if err != nil {
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
		return
	}
	batch, err := s.validator.decode(payload)
	if err != nil {
		s.logger.Debug("Rejected event batch", zap.String("session_id", sessionID), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(batch.Events) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.store.InsertEvents(sessionID, batch.Events); err != nil {
		switch {
		case errors.Is(err, database.ErrSessionNotFound):
			http.Error(w, "Session not found", http.StatusNotFound)
		case errors.Is(err, database.ErrSessionStopped):
			http.Error(w, "Session is not recording", http.StatusConflict)
		case errors.Is(err, database.ErrInvalidEvent):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			s.logger.Error("Database error", zap.String("session_id", sessionID), zap.Error(err))
			http.Error(w, "Failed to store events", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent) // success, no body
}

func (s *Server) handleStop(w http.ResponseWriter, request *http.Request) {
	sessionID := request.PathValue("id")
	if err := s.store.StopSession(sessionID, s.now()); err != nil {
		s.writeStoreError(w, sessionID, err)
		return
	}
	s.logger.Info("Recording stopped", zap.String("session_id", sessionID))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, request *http.Request) {
	sessionID := request.PathValue("id")
	if err := s.store.DeleteSession(sessionID); err != nil {
		s.writeStoreError(w, sessionID, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSteps(w http.ResponseWriter, request *http.Request) {
	session, ok := s.loadSession(w, request.PathValue("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, pipeline.Steps(session.Events, session.StartURL))
}

func (s *Server) handleScript(w http.ResponseWriter, request *http.Request) {
	formatKey := request.URL.Query().Get("format")
	if formatKey == "" {
		formatKey = s.defaultFormat
	}
	format, ok := emitter.Lookup(formatKey)
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown format %q", formatKey), http.StatusBadRequest)
		return
	}
	session, ok := s.loadSession(w, request.PathValue("id"))
	if !ok {
		return
	}

	script := pipeline.GenerateScript(session.Events, session.StartURL, format.Key)
	s.logger.Info("Script generated",
		zap.String("session_id", session.ID),
		zap.String("format", format.Key),
		zap.Int("events", len(session.Events)),
		zap.String("size", humanize.Bytes(uint64(len(script)))))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	io.WriteString(w, script)
}

func (s *Server) handleReport(w http.ResponseWriter, request *http.Request) {
	session, ok := s.loadSession(w, request.PathValue("id"))
	if !ok {
		return
	}
	html := pipeline.BuildReport(session.Events, session.Metadata(s.now()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.FileName))
	io.WriteString(w, html)
}

func (s *Server) loadSession(w http.ResponseWriter, id string) (models.Session, bool) {
	session, err := s.store.GetSession(id, true)
	if err != nil {
		s.writeStoreError(w, id, err)
		return models.Session{}, false
	}
	return session, true
}

func (s *Server) writeStoreError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, database.ErrSessionNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.logger.Error("Database error", zap.String("session_id", sessionID), zap.Error(err))
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /formats", s.handleFormats)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /sessions/{id}/events", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDelete)
	mux.HandleFunc("POST /sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("POST /sessions/{id}/stop", s.handleStop)
	mux.HandleFunc("GET /sessions/{id}/steps", s.handleSteps)
	mux.HandleFunc("GET /sessions/{id}/script", s.handleScript)
	mux.HandleFunc("GET /sessions/{id}/report", s.handleReport)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	serveErrors := make(chan error, 1)
	go func() {
		s.logger.Info("BrowserTrace recorder listening", zap.String("address", s.config.Address))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrors <- err
		}
		close(serveErrors)
	}()

	select {
	case err := <-serveErrors:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownContext, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownContext); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("Server exited")
	return nil
}

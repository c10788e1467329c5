package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"newsdesk/internal/notify"
	"newsdesk/internal/publisher"
	"newsdesk/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server is the HTTP collaborator in front of the publication core.
// Session issuance lives upstream; the authenticated author id arrives in
// the X-Author-ID header and ownership is enforced by the publisher before
// any side effect.
type Server struct {
	store  store.Store
	pub    *publisher.Publisher
	hub    *notify.Hub
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

func NewServer(st store.Store, pub *publisher.Publisher, hub *notify.Hub, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		pub:    pub,
		hub:    hub,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/articles", s.handleList).Methods("GET")
	api.HandleFunc("/articles", s.requireAuthor(s.handleCreate)).Methods("POST")
	api.HandleFunc("/articles/{id}", s.handleGet).Methods("GET")
	api.HandleFunc("/articles/{id}", s.requireAuthor(s.handleUpdate)).Methods("PUT")
	api.HandleFunc("/articles/{id}", s.requireAuthor(s.handleDelete)).Methods("DELETE")
	api.HandleFunc("/articles/{id}/publish", s.requireAuthor(s.handlePublish)).Methods("POST")
	api.HandleFunc("/events", s.handleEvents).Methods("GET")
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
		// No WriteTimeout: the event stream holds its connection open.
		ReadHeaderTimeout: 15 * time.Second,
	}

	s.logger.Info("Web server listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, author string)

// requireAuthor rejects requests that carry no authenticated author id.
func (s *Server) requireAuthor(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		author := r.Header.Get("X-Author-ID")
		if author == "" {
			s.respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next(w, r, author)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"message": msg})
}

// writeFailure maps core errors onto HTTP statuses.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "Article not found")
	case errors.Is(err, publisher.ErrForbidden):
		s.respondError(w, http.StatusForbidden, "You are not authorized to perform this action")
	default:
		s.logger.Error("Request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

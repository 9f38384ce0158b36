package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tasktalk/internal/config"
	"tasktalk/internal/interpreter"
	"tasktalk/internal/notify"
	"tasktalk/internal/observability"
	"tasktalk/internal/tasks"
)

type Server struct {
	cfg       config.Config
	interp    *interpreter.Interpreter
	store     tasks.Store
	storeMode string
	notifier  notify.Notifier
	metrics   *observability.Metrics
	stages    *observability.CommandStageWindow
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

func New(
	cfg config.Config,
	interp *interpreter.Interpreter,
	store tasks.Store,
	storeMode string,
	notifier notify.Notifier,
	metrics *observability.Metrics,
	stages *observability.CommandStageWindow,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewNoopNotifier()
	}
	return &Server{
		cfg:       cfg,
		interp:    interp,
		store:     store,
		storeMode: storeMode,
		notifier:  notifier,
		metrics:   metrics,
		stages:    stages,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up. Other websites must
				// not be able to drive a user's task list.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/chat/ws", s.handleChatWS)

	r.Get("/v1/tasks", s.handleListTasks)
	r.Post("/v1/tasks", s.handleCreateTask)
	r.Put("/v1/tasks/{id}", s.handleUpdateTask)
	r.Delete("/v1/tasks/{id}", s.handleDeleteTask)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"store_mode": s.storeMode,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "ready",
		"store_mode": s.storeMode,
	})
}

func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	if s.stages == nil {
		respondJSON(w, http.StatusOK, observability.CommandStageSnapshot{})
		return
	}
	respondJSON(w, http.StatusOK, s.stages.Snapshot())
}

// principal extracts the authenticated user id placed on the request by the
// upstream auth layer. Authentication itself is out of scope here; an empty
// header means the request never passed through it.
func principal(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

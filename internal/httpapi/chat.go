package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"tasktalk/internal/interpreter"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}

	result, err := s.interp.Interpret(r.Context(), owner, req.Message)
	if err != nil {
		s.respondInterpretError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) respondInterpretError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interpreter.ErrUpstream):
		respondError(w, http.StatusBadGateway, "upstream_unavailable",
			"The assistant is unavailable right now. Your tasks were not changed.")
	case errors.Is(err, interpreter.ErrStore):
		respondError(w, http.StatusInternalServerError, "store_failure",
			"Something went wrong saving your tasks. Please try again.")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// handleChatWS runs a simple request/response chat loop over a websocket.
// Each inbound {"message": ...} produces exactly one reply; commands from
// one connection are processed in order.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		owner = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if s.metrics != nil {
		s.metrics.ActiveWSChats.Inc()
		defer s.metrics.ActiveWSChats.Dec()
	}

	conn.SetReadLimit(64 << 10)
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var req chatRequest
		if err := json.Unmarshal(data, &req); err != nil || strings.TrimSpace(req.Message) == "" {
			s.writeWS(conn, errorResponse{Error: "message is required", Code: "invalid_request"})
			continue
		}

		result, err := s.interp.Interpret(r.Context(), owner, req.Message)
		if err != nil {
			s.writeWS(conn, wsErrorFor(err))
			continue
		}
		s.writeWS(conn, result)
	}
}

func (s *Server) writeWS(conn *websocket.Conn, v any) {
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(v); err != nil {
		s.logger.Debug("ws write failed", zap.Error(err))
	}
}

func wsErrorFor(err error) errorResponse {
	switch {
	case errors.Is(err, interpreter.ErrUpstream):
		return errorResponse{
			Error: "The assistant is unavailable right now. Your tasks were not changed.",
			Code:  "upstream_unavailable",
		}
	case errors.Is(err, interpreter.ErrStore):
		return errorResponse{
			Error: "Something went wrong saving your tasks. Please try again.",
			Code:  "store_failure",
		}
	default:
		return errorResponse{Error: err.Error(), Code: "internal_error"}
	}
}

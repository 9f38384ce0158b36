package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tasktalk/internal/tasks"
)

type taskWriteRequest struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	var filter tasks.Filter
	if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
		p, ok := tasks.ParsePriority(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_request", "unknown priority "+raw)
			return
		}
		filter.Priority = &p
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		st, ok := tasks.ParseStatus(raw)
		if !ok {
			respondError(w, http.StatusBadRequest, "invalid_request", "unknown status "+raw)
			return
		}
		filter.Status = &st
	}

	limit := s.cfg.ReadLimitDefault
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}

	list, err := s.store.FindMany(r.Context(), owner, filter, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}

	var req taskWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	params, errMsg := buildCreateParams(req)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", errMsg)
		return
	}

	task, err := s.store.Create(r.Context(), owner, params)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}

	// Notification delivery is best-effort and must not delay or fail the
	// create.
	if email := strings.TrimSpace(r.Header.Get("X-User-Email")); email != "" {
		go func(email string, task tasks.Task) {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.notifier.TaskCreated(ctx, email, task); err != nil {
				s.logger.Warn("task notification failed",
					zap.String("task_id", task.ID),
					zap.Error(err))
			}
		}(email, task)
	}

	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing task id")
		return
	}
	if !s.ownsTask(w, r, owner, taskID) {
		return
	}

	var req taskWriteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	params, errMsg := buildUpdateParams(req)
	if errMsg != "" {
		respondError(w, http.StatusBadRequest, "invalid_request", errMsg)
		return
	}

	task, err := s.store.Update(r.Context(), taskID, params)
	if err != nil {
		if errors.Is(err, tasks.ErrStoreNotFound) {
			respondError(w, http.StatusNotFound, "task_not_found", "task not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	owner := principal(r)
	if owner == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing user identity")
		return
	}
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing task id")
		return
	}
	if !s.ownsTask(w, r, owner, taskID) {
		return
	}

	deleted, err := s.store.Delete(r.Context(), taskID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, "task_not_found", "task not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// ownsTask verifies the task exists and belongs to the principal. A foreign
// task is reported identically to a missing one so ids cannot be probed.
func (s *Server) ownsTask(w http.ResponseWriter, r *http.Request, owner, taskID string) bool {
	task, err := s.store.Get(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, tasks.ErrStoreNotFound) {
			respondError(w, http.StatusNotFound, "task_not_found", "task not found")
			return false
		}
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return false
	}
	if task.OwnerID != owner {
		respondError(w, http.StatusNotFound, "task_not_found", "task not found")
		return false
	}
	return true
}

func buildCreateParams(req taskWriteRequest) (tasks.CreateParams, string) {
	var params tasks.CreateParams
	params.Description = strings.TrimSpace(req.Description)
	if params.Description == "" {
		return params, "description is required"
	}
	if raw := strings.TrimSpace(req.Priority); raw != "" {
		p, ok := tasks.ParsePriority(raw)
		if !ok {
			return params, "unknown priority " + raw
		}
		params.Priority = p
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		st, ok := tasks.ParseStatus(raw)
		if !ok {
			return params, "unknown status " + raw
		}
		params.Status = st
	}
	if raw := strings.TrimSpace(req.Deadline); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, "deadline must be RFC3339"
		}
		t = t.UTC()
		params.Deadline = &t
	}
	return params, ""
}

func buildUpdateParams(req taskWriteRequest) (tasks.UpdateParams, string) {
	var params tasks.UpdateParams
	if desc := strings.TrimSpace(req.Description); desc != "" {
		params.Description = &desc
	}
	if raw := strings.TrimSpace(req.Priority); raw != "" {
		p, ok := tasks.ParsePriority(raw)
		if !ok {
			return params, "unknown priority " + raw
		}
		params.Priority = &p
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		st, ok := tasks.ParseStatus(raw)
		if !ok {
			return params, "unknown status " + raw
		}
		params.Status = &st
	}
	if raw := strings.TrimSpace(req.Deadline); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, "deadline must be RFC3339"
		}
		t = t.UTC()
		params.Deadline = &t
	}
	return params, ""
}

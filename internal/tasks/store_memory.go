package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a simple in-process task store for local/dev use and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]Task
	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]Task),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Create(_ context.Context, ownerID string, p CreateParams) (Task, error) {
	p = p.withDefaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	task := Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      p.Status,
		Deadline:    p.Deadline,
		CreatedAt:   s.clock(),
	}
	s.byID[task.ID] = task
	return task, nil
}

func (s *MemoryStore) Get(_ context.Context, taskID string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.byID[taskID]
	if !ok {
		return Task{}, ErrStoreNotFound
	}
	return task, nil
}

func (s *MemoryStore) FindMany(_ context.Context, ownerID string, f Filter, limit int) ([]Task, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, limit)
	for _, task := range s.byID {
		if task.OwnerID != ownerID || !f.Matches(task) {
			continue
		}
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, taskID string, p UpdateParams) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.byID[taskID]
	if !ok {
		return Task{}, ErrStoreNotFound
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Deadline != nil {
		task.Deadline = p.Deadline
	}
	s.byID[taskID] = task
	return task, nil
}

func (s *MemoryStore) Delete(_ context.Context, taskID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[taskID]; !ok {
		return false, nil
	}
	delete(s.byID, taskID)
	return true, nil
}

func (s *MemoryStore) Close() error { return nil }

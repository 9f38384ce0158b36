package interpreter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"tasktalk/internal/tasks"
)

// fakeStore records every call so tests can assert the at-most-one-mutation
// guarantee directly.
type fakeStore struct {
	items map[string]tasks.Task
	seq   int

	createCalls int
	deleteCalls int
	findCalls   int

	failCreate  bool
	failFind    bool
	failDelete  bool
	deleteRaces bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{items: map[string]tasks.Task{}}
}

func (s *fakeStore) put(ownerID, id string, p tasks.Priority, createdAt time.Time) tasks.Task {
	task := tasks.Task{
		ID:          id,
		OwnerID:     ownerID,
		Description: "task " + id,
		Priority:    p,
		Status:      tasks.StatusTodo,
		CreatedAt:   createdAt,
	}
	s.items[id] = task
	return task
}

func (s *fakeStore) Create(_ context.Context, ownerID string, p tasks.CreateParams) (tasks.Task, error) {
	s.createCalls++
	if s.failCreate {
		return tasks.Task{}, errors.New("boom")
	}
	s.seq++
	task := tasks.Task{
		ID:          fmt.Sprintf("t%03d", s.seq),
		OwnerID:     ownerID,
		Description: p.Description,
		Priority:    p.Priority,
		Status:      p.Status,
		Deadline:    p.Deadline,
		CreatedAt:   time.Now().UTC(),
	}
	if task.Priority == "" {
		task.Priority = tasks.PriorityNormal
	}
	if task.Status == "" {
		task.Status = tasks.StatusTodo
	}
	s.items[task.ID] = task
	return task, nil
}

func (s *fakeStore) Get(_ context.Context, taskID string) (tasks.Task, error) {
	task, ok := s.items[taskID]
	if !ok {
		return tasks.Task{}, tasks.ErrStoreNotFound
	}
	return task, nil
}

func (s *fakeStore) FindMany(_ context.Context, ownerID string, f tasks.Filter, limit int) ([]tasks.Task, error) {
	s.findCalls++
	if s.failFind {
		return nil, errors.New("boom")
	}
	if limit <= 0 {
		limit = 20
	}
	out := make([]tasks.Task, 0, limit)
	for _, task := range s.items {
		if task.OwnerID == ownerID && f.Matches(task) {
			out = append(out, task)
		}
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

func (s *fakeStore) Update(_ context.Context, taskID string, p tasks.UpdateParams) (tasks.Task, error) {
	task, ok := s.items[taskID]
	if !ok {
		return tasks.Task{}, tasks.ErrStoreNotFound
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
	s.items[taskID] = task
	return task, nil
}

func (s *fakeStore) Delete(_ context.Context, taskID string) (bool, error) {
	s.deleteCalls++
	if s.failDelete {
		return false, errors.New("boom")
	}
	if s.deleteRaces {
		// Simulate a concurrent delete winning between resolve and delete.
		delete(s.items, taskID)
		return false, nil
	}
	if _, ok := s.items[taskID]; !ok {
		return false, nil
	}
	delete(s.items, taskID)
	return true, nil
}

func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) mutations() int { return s.createCalls + s.deleteCalls }

// stubClassifier returns scripted outputs in order, repeating the last one.
type stubClassifier struct {
	outputs []string
	err     error
	calls   int
}

func (c *stubClassifier) Classify(_ context.Context, _, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	idx := c.calls - 1
	if idx >= len(c.outputs) {
		idx = len(c.outputs) - 1
	}
	return c.outputs[idx], nil
}

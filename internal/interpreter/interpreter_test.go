package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tasktalk/internal/tasks"
)

func TestInterpretCreateEndToEnd(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{`{
		"action": "CREATE",
		"payload": {"description": "Submit project report", "priority": "URGENT", "deadline": "2026-08-31T17:00:00Z"},
		"response": "I've added 'Submit project report' to your tasks, due tomorrow at 5 PM."
	}`}}
	store := newFakeStore()
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "Add a task: Submit project report tomorrow at 5pm, urgent")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if !result.ActionTaken {
		t.Fatalf("ActionTaken = false, want true")
	}
	if result.ResponseText != "I've added 'Submit project report' to your tasks, due tomorrow at 5 PM." {
		t.Fatalf("ResponseText = %q, want model text passthrough", result.ResponseText)
	}

	list, err := store.FindMany(context.Background(), "u1", tasks.Filter{}, 0)
	if err != nil {
		t.Fatalf("FindMany() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want exactly one created task", len(list))
	}
	created := list[0]
	if created.Description != "Submit project report" {
		t.Fatalf("Description = %q", created.Description)
	}
	if created.Priority != tasks.PriorityUrgent {
		t.Fatalf("Priority = %q, want URGENT", created.Priority)
	}
	want := time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC)
	if created.Deadline == nil || !created.Deadline.Equal(want) {
		t.Fatalf("Deadline = %v, want %v", created.Deadline, want)
	}
}

func TestInterpretDeleteMostRecentWins(t *testing.T) {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.put("u1", "t1", tasks.PriorityUrgent, base)
	store.put("u1", "t2", tasks.PriorityUrgent, base.Add(time.Hour))
	store.put("u1", "t3", tasks.PriorityUrgent, base.Add(2*time.Hour))

	classifier := &stubClassifier{outputs: []string{`{
		"action": "DELETE",
		"payload": {"filter": {"priority": "URGENT"}},
		"response": "I've deleted your most recent urgent task."
	}`}}
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "delete my urgent task")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if !result.ActionTaken {
		t.Fatalf("ActionTaken = false, want true")
	}
	if _, err := store.Get(context.Background(), "t3"); !errors.Is(err, tasks.ErrStoreNotFound) {
		t.Fatalf("t3 still present, want it deleted first")
	}

	// The same command again removes the task created at t2.
	result, err = interp.Interpret(context.Background(), "u1", "delete my urgent task")
	if err != nil {
		t.Fatalf("Interpret() second error = %v", err)
	}
	if !result.ActionTaken {
		t.Fatalf("second ActionTaken = false, want true")
	}
	if _, err := store.Get(context.Background(), "t2"); !errors.Is(err, tasks.ErrStoreNotFound) {
		t.Fatalf("t2 still present, want it deleted second")
	}
	if _, err := store.Get(context.Background(), "t1"); err != nil {
		t.Fatalf("t1 missing, want oldest task untouched")
	}
	if store.deleteCalls != 2 {
		t.Fatalf("deleteCalls = %d, want 2", store.deleteCalls)
	}
}

func TestInterpretMalformedOutputTouchesNothing(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{"Sure thing, consider it done!"}}
	store := newFakeStore()
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "do the thing")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if result.ActionTaken {
		t.Fatalf("ActionTaken = true for undecodable output")
	}
	if result.ResponseText != replyParseError {
		t.Fatalf("ResponseText = %q, want generic fallback", result.ResponseText)
	}
	if store.mutations() != 0 || store.findCalls != 0 {
		t.Fatalf("store touched (%d mutations, %d finds), want zero calls", store.mutations(), store.findCalls)
	}
}

func TestInterpretDeleteNoMatchNeverClaimsDeletion(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{`{
		"action": "DELETE",
		"payload": {"filter": {"priority": "URGENT"}},
		"response": "I've deleted your most recent urgent task. Anything else?"
	}`}}
	store := newFakeStore()
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "delete my urgent task")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if result.ActionTaken {
		t.Fatalf("ActionTaken = true with nothing to delete")
	}
	if result.ResponseText != replyNoDelete {
		t.Fatalf("ResponseText = %q, want fixed override", result.ResponseText)
	}
	if strings.Contains(result.ResponseText, "I've deleted") {
		t.Fatalf("response still claims a deletion: %q", result.ResponseText)
	}
}

func TestInterpretNoneIsIdempotent(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{`{
		"action": "NONE",
		"response": "I can only help with your task list."
	}`}}
	store := newFakeStore()
	store.put("u1", "t1", tasks.PriorityNormal, time.Now().UTC())
	interp := New(classifier, store, nil, nil, nil, Options{})

	for i := 0; i < 4; i++ {
		result, err := interp.Interpret(context.Background(), "u1", "what's the weather?")
		if err != nil {
			t.Fatalf("Interpret() error = %v", err)
		}
		if result.ActionTaken {
			t.Fatalf("ActionTaken = true for NONE")
		}
		if result.ResponseText != "I can only help with your task list." {
			t.Fatalf("ResponseText = %q", result.ResponseText)
		}
	}
	if store.mutations() != 0 {
		t.Fatalf("mutations = %d, want 0 across replays", store.mutations())
	}
}

func TestInterpretReadListsTasks(t *testing.T) {
	store := newFakeStore()
	store.put("u1", "t1", tasks.PriorityUrgent, time.Now().UTC())
	classifier := &stubClassifier{outputs: []string{`{
		"action": "READ",
		"payload": {"filter": {"priority": "URGENT"}},
		"response": "Here are your urgent tasks:"
	}`}}
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "show my urgent tasks")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if result.ActionTaken {
		t.Fatalf("ActionTaken = true for read")
	}
	if !strings.Contains(result.ResponseText, "task t1") {
		t.Fatalf("ResponseText = %q, want the task listed", result.ResponseText)
	}
}

func TestInterpretUpstreamFailure(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("connection refused")}
	store := newFakeStore()
	interp := New(classifier, store, nil, nil, nil, Options{})

	_, err := interp.Interpret(context.Background(), "u1", "add a task: buy milk")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("Interpret() error = %v, want ErrUpstream", err)
	}
	if store.mutations() != 0 {
		t.Fatalf("mutations = %d, want 0 after upstream failure", store.mutations())
	}
}

func TestInterpretStoreFailureSurfaces(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{`{
		"action": "CREATE",
		"payload": {"description": "buy milk"},
		"response": "Added!"
	}`}}
	store := newFakeStore()
	store.failCreate = true
	interp := New(classifier, store, nil, nil, nil, Options{})

	_, err := interp.Interpret(context.Background(), "u1", "add a task: buy milk")
	if !errors.Is(err, ErrStore) {
		t.Fatalf("Interpret() error = %v, want ErrStore", err)
	}
}

func TestInterpretEmptyCommandSkipsUpstream(t *testing.T) {
	classifier := &stubClassifier{outputs: []string{`{"action": "NONE", "response": "x"}`}}
	store := newFakeStore()
	interp := New(classifier, store, nil, nil, nil, Options{})

	result, err := interp.Interpret(context.Background(), "u1", "   ")
	if err != nil {
		t.Fatalf("Interpret() error = %v", err)
	}
	if result.ActionTaken {
		t.Fatalf("ActionTaken = true for empty command")
	}
	if classifier.calls != 0 {
		t.Fatalf("classifier.calls = %d, want 0 for empty command", classifier.calls)
	}
}

// Package interpreter turns untrusted upstream model output into at most one
// task store mutation per command. The model proposes an action and a
// conversational reply; nothing it claims is trusted until it has been
// decoded, validated and dispatched here.
package interpreter

import (
	"errors"
	"time"

	"tasktalk/internal/tasks"
)

type Action string

const (
	ActionCreate Action = "CREATE"
	ActionDelete Action = "DELETE"
	ActionRead   Action = "READ"
	ActionNone   Action = "NONE"
)

// RejectionReason explains why a command degraded into a no-op. Upstream and
// store failures are not rejections; they surface as request-level errors.
type RejectionReason string

const (
	RejectionNone       RejectionReason = ""
	RejectionParseError RejectionReason = "parse_error"
	RejectionValidation RejectionReason = "validation_error"
	RejectionNotFound   RejectionReason = "not_found"
)

// CreateIntent is the normalized payload of a validated CREATE.
type CreateIntent struct {
	Description string
	Priority    tasks.Priority
	Status      tasks.Status
	Deadline    *time.Time
}

// Intent is the tagged, validated representation of what a command should
// do. Exactly one of Create/Filter is set, matching the action; both are nil
// for NONE.
type Intent struct {
	Action Action
	Create *CreateIntent
	Filter *tasks.Filter
}

// Outcome is the single value threaded through the pipeline. It is never
// partially applied: Dispatched is true only when a mutation was committed,
// and ResponseText never asserts an effect the other fields contradict.
type Outcome struct {
	Intent         Intent
	Dispatched     bool
	AffectedTaskID string
	ResponseText   string
	Rejection      RejectionReason
	Tasks          []tasks.Task
}

var (
	// ErrUpstream marks a failed or timed-out model call. No mutation was
	// attempted.
	ErrUpstream = errors.New("upstream model failure")

	// ErrStore marks a persistence failure. The dispatcher issues at most
	// one mutating call per command, so no partial state is left behind.
	ErrStore = errors.New("task store failure")
)

package tasks

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ParsePriority normalizes a raw priority value. The second return is false
// when the value is not a member of the enum; callers decide whether that is
// a rejection or a default.
func ParsePriority(raw string) (Priority, bool) {
	switch Priority(strings.ToUpper(strings.TrimSpace(raw))) {
	case PriorityLow:
		return PriorityLow, true
	case PriorityNormal:
		return PriorityNormal, true
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityUrgent:
		return PriorityUrgent, true
	default:
		return "", false
	}
}

func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusTodo:
		return StatusTodo, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusDone:
		return StatusDone, true
	default:
		return "", false
	}
}

type Task struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateParams is the normalized payload for a new task. Zero-valued
// Priority/Status are filled with the defaults by the store.
type CreateParams struct {
	Description string     `json:"description"`
	Priority    Priority   `json:"priority,omitempty"`
	Status      Status     `json:"status,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// UpdateParams carries partial task updates; nil fields are left untouched.
type UpdateParams struct {
	Description *string    `json:"description,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// Filter selects tasks by exact attribute match. Nil fields are
// unconstrained.
type Filter struct {
	Priority *Priority `json:"priority,omitempty"`
	Status   *Status   `json:"status,omitempty"`
}

func (f Filter) Empty() bool {
	return f.Priority == nil && f.Status == nil
}

// Matches reports whether the task satisfies every constrained field.
func (f Filter) Matches(t Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	return true
}

func (p CreateParams) withDefaults() CreateParams {
	if p.Priority == "" {
		p.Priority = PriorityNormal
	}
	if p.Status == "" {
		p.Status = StatusTodo
	}
	return p
}
